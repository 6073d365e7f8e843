package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "landlord-cli",
		Short: "CLI for interacting with the Landlord work-item coordination API",
		Long:  "A command-line tool for creating and driving stories and tasks through the Landlord API.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadCLIConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().String("config", "", "Config file path")
	cmd.PersistentFlags().String("api-url", "http://localhost:8081", "Landlord API base URL (versioned paths are appended if missing)")

	if err := bindCLIFlags(cmd); err != nil {
		cmd.PrintErrln(fmt.Sprintf("failed to bind flags: %v", err))
	}

	cmd.AddCommand(newStoryCommand())
	cmd.AddCommand(newTaskCommand())
	cmd.AddCommand(newInterpretCommand())

	return cmd
}
