package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nodesift/nodesift/internal/config"
)

var (
	cfg     config.Config
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "nodesift",
	Short: "Geth node telemetry → SQLite / partitioned JSONL processor",
	Long: "Turns raw geth operational telemetry (trace logs, memstats dumps, txpool\n" +
		"snapshot logs) into a queryable SQLite store and partitioned gzip JSONL records.",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DBPath, "db", os.Getenv("NODESIFT_DB"), "SQLite store path (or set NODESIFT_DB)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.BoolVar(&verbose, "verbose", false, "Enable debug logging")
}
