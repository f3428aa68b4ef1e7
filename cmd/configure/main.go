package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/studyhub/studyhub-api/cmd/configure/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "studyhub-configure",
		Short: "Configuration tool for StudyHub API",
		Long:  "CLI tool for managing CORS, rate limit and other runtime settings",
	}

	rootCmd.AddCommand(commands.NewCorsCmd())
	rootCmd.AddCommand(commands.NewRatelimitCmd())
	rootCmd.AddCommand(commands.NewListCmd())
	rootCmd.AddCommand(commands.NewTestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
