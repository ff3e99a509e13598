package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nodesift/nodesift/internal/exitcode"
	"github.com/nodesift/nodesift/internal/ingest"
	"github.com/nodesift/nodesift/internal/logging"
	"github.com/nodesift/nodesift/internal/store"
)

var memstatsCmd = &cobra.Command{
	Use:   "memstats",
	Short: "Split memstats gauge logs into the memstats table",
	RunE:  runMemstats,
}

func init() {
	memstatsCmd.Flags().StringVar(&cfg.LogsDir, "logs", "", "Directory of memstats log files (required)")
	_ = memstatsCmd.MarkFlagRequired("logs")
	rootCmd.AddCommand(memstatsCmd)
}

func runMemstats(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, verbose)
	ctx := context.Background()

	if err := cfg.ValidateLogsRun(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	st, err := store.Open(ctx, cfg.DBPath, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to open store")
		os.Exit(exitcode.StoreError)
	}
	defer st.Close()

	summary, err := ingest.RunMemstats(ctx, st, log, &cfg)
	if err != nil {
		log.Error().Err(err).Msg("memstats run failed")
		os.Exit(exitcode.TransformError)
	}

	fmt.Printf("Memstats run complete: %d/%d files loaded, %d rows inserted (%.1fs)\n",
		summary.FilesLoaded, summary.FilesFound, summary.RowsInserted, summary.DurationTotal.Seconds())
	return nil
}
