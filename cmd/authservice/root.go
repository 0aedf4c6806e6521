package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the authservice CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authservice",
		Short: "authservice - credential and session backend",
		Long: `authservice registers users, validates logins with an optional
emailed second factor, and issues, revokes and verifies session tokens.

Configuration is read from the environment.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
