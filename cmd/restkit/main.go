package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/restkit/restkit/pkg/tui"
)

var rootCmd = &cobra.Command{
	Use:   "restkit",
	Short: "restkit - terminal API testing and load generation",
	Long: `restkit is a terminal UI for building collections of HTTP endpoints,
firing single requests against them, and running concurrent load tests with
live latency and throughput metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "warning: failed to load .env file: %v\n", err)
		}

		if err := tui.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "restkit: %v\n", err)
			os.Exit(1)
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
