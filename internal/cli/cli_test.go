package cli

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/dinoauth/internal/common"
	"github.com/dmitrijs2005/dinoauth/internal/server/repositories/users"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { readPassword = orig })
}

func stubDirectory(t *testing.T) *users.MemoryRepository {
	t.Helper()
	repo := users.NewMemoryRepository()
	orig := openDirectory
	openDirectory = func(context.Context, string) (users.Repository, *sql.DB, error) { return repo, nil, nil }
	t.Cleanup(func() { openDirectory = orig })
	return repo
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestUserAddListDelete(t *testing.T) {
	repo := stubDirectory(t)
	stubPassword(t, "hunter2")

	out, err := run(t, "user", "add", "--database", "memory://", "--cost", "4", "--email", "ann@example.com", "--name", "Ann")
	require.NoError(t, err)
	id, err := uuid.Parse(strings.TrimSpace(out))
	require.NoError(t, err, out)

	stored, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", stored.Email)
	assert.NotContains(t, stored.PasswordHash, "hunter2")

	out, err = run(t, "user", "list", "--database", "memory://")
	require.NoError(t, err)
	assert.Contains(t, out, "EMAIL")
	assert.Contains(t, out, "ann@example.com")
	assert.Contains(t, out, id.String())

	out, err = run(t, "user", "delete", "--database", "memory://", "--id", id.String())
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted "+id.String())

	_, err = run(t, "user", "delete", "--database", "memory://", "--id", id.String())
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUser_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	stubDirectory(t)

	_, err := run(t, "user", "list")
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestUserDelete_InvalidID(t *testing.T) {
	stubDirectory(t)

	_, err := run(t, "user", "delete", "--database", "memory://", "--id", "not-a-uuid")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestUserAdd_EmptyPassword(t *testing.T) {
	stubDirectory(t)
	stubPassword(t, "")

	_, err := run(t, "user", "add", "--database", "memory://", "--email", "ann@example.com")
	assert.ErrorIs(t, err, errEmptyPassword)
}

// fakeServer answers /login and /users the way dinoauth does.
func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var in struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Email != "ann@example.com" || in.Password != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"access denied"}`))
			return
		}
		_, _ = w.Write([]byte(`{"jwt":"tok.en.value"}`))
	})
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok.en.value" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		_, _ = w.Write([]byte(`{"email":"ann@example.com","name":"Ann"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginAndWhoami(t *testing.T) {
	srv := fakeServer(t)
	stubPassword(t, "hunter2")

	out, err := run(t, "login", "--addr", srv.URL, "--email", "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "tok.en.value\n", out)

	out, err = run(t, "whoami", "--addr", srv.URL+"/", "--token", "tok.en.value")
	require.NoError(t, err)
	assert.Equal(t, "Ann <ann@example.com>\n", out)
}

func TestLogin_Denied(t *testing.T) {
	srv := fakeServer(t)
	stubPassword(t, "wrong")

	_, err := run(t, "login", "--addr", srv.URL, "--email", "ann@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "access denied")
}

func TestWhoami_Errors(t *testing.T) {
	srv := fakeServer(t)
	t.Setenv("DINO_TOKEN", "")

	_, err := run(t, "whoami", "--addr", srv.URL)
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = run(t, "whoami", "--addr", srv.URL, "--token", "forged")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unauthorized")
}

func TestWhoami_TokenFromEnv(t *testing.T) {
	srv := fakeServer(t)
	t.Setenv("DINO_TOKEN", "tok.en.value")

	out, err := run(t, "whoami", "--addr", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Ann <ann@example.com>\n", out)
}
