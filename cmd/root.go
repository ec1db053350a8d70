package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "anomaly-service",
	Short: "Anomaly service: event ingestion, video records, dashboard, quota",
	Long:  `HTTP API for CCTV anomaly events. Commands: api, migrate, seed.`,
	RunE:  runAPI, // default: run API (same as "anomaly-service api")
}

func init() {
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

// Execute runs the root command and returns the error (for main to log.Fatal).
func Execute() error {
	return rootCmd.Execute()
}
