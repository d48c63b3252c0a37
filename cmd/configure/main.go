package main

import (
	"fmt"
	"os"

	"github.com/benvon/ordia/cmd/configure/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "ordia-configure",
		Short: "Configuration tool for the Ordia API",
		Long:  "CLI tool for managing user accounts, CORS settings and schema migrations",
	}

	rootCmd.AddCommand(commands.NewUsersCmd())
	rootCmd.AddCommand(commands.NewCorsCmd())
	rootCmd.AddCommand(commands.NewMigrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
