package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "healthwatchctl",
	Short: "Healthwatch API health monitoring server",
	Long:  `healthwatchctl manages the Healthwatch server, its database schema and its configuration.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
