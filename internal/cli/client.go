package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/dinoauth/internal/common"
	"github.com/spf13/cobra"
)

const defaultAddr = "http://localhost:8000"

var httpClient = &http.Client{Timeout: 30 * time.Second}

// apiError is the body the server sends with every non-2xx response.
type apiError struct {
	Error string `json:"error"`
}

// call sends an optional JSON body to addr+path and decodes a 2xx response
// into out.
func call(ctx context.Context, method, addr, path, token string, in, out any) error {
	var body bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(addr, "/")+path, &body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var e apiError
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = resp.Status
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// NewLoginCmd creates the login subcommand.
func NewLoginCmd() *cobra.Command {
	var addr, email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a bearer token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := getPassword(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			var out struct {
				JWT string `json:"jwt"`
			}
			in := map[string]string{"email": email, "password": string(password)}
			if err := call(cmd.Context(), http.MethodPost, addr, "/login", "", in, &out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.JWT)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "server base URL")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// NewWhoamiCmd creates the whoami subcommand.
func NewWhoamiCmd() *cobra.Command {
	var addr, token string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the user a token belongs to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				return fmt.Errorf("%w: token is required (--token or DINO_TOKEN)", common.ErrorValidation)
			}

			var out struct {
				Email string `json:"email"`
				Name  string `json:"name"`
			}
			if err := call(cmd.Context(), http.MethodGet, addr, "/users", token, nil, &out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", out.Name, out.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "server base URL")
	cmd.Flags().StringVar(&token, "token", os.Getenv("DINO_TOKEN"), "bearer token (defaults to $DINO_TOKEN)")

	return cmd
}
