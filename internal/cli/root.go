// Package cli implements dinoctl, the administration and client tool for a
// dinoauth deployment. User management talks to the directory database
// directly; login and whoami talk to a running server over HTTP.
package cli

import (
	"github.com/dmitrijs2005/dinoauth/internal/buildinfo"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the dinoctl root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dinoctl",
		Short:         "Manage and query a dinoauth deployment",
		Version:       buildinfo.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewUserCmd())
	cmd.AddCommand(NewLoginCmd())
	cmd.AddCommand(NewWhoamiCmd())

	return cmd
}
