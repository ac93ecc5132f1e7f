// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Pegasus CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pegasus",
		Short: "Pegasus - a stateful game service",
		Long: `Pegasus is a stateful network game service. Clients authenticate
with a versioned handshake; accounts are provisioned on first login.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())

	return cmd
}
