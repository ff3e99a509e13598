package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nodesift/nodesift/internal/classify"
	"github.com/nodesift/nodesift/internal/config"
	"github.com/nodesift/nodesift/internal/exitcode"
	"github.com/nodesift/nodesift/internal/ingest"
	"github.com/nodesift/nodesift/internal/logging"
	"github.com/nodesift/nodesift/internal/store"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Classify geth trace logs into the minute-bucketed metrics store",
	RunE:  runMetrics,
}

func init() {
	f := metricsCmd.Flags()
	f.StringVar(&cfg.LogsDir, "logs", "", "Directory of geth log files (required)")
	f.StringVar(&cfg.RulesFile, "rules", "", "YAML classification rules (default: built-in table)")
	f.StringVar(&cfg.DefaultYear, "year", config.DefaultYear, "Year for log files whose names carry no date")
	_ = metricsCmd.MarkFlagRequired("logs")
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, verbose)
	ctx := context.Background()

	if err := cfg.ValidateLogsRun(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	rules := classify.DefaultRules
	if cfg.RulesFile != "" {
		var err error
		rules, err = classify.LoadRules(cfg.RulesFile)
		if err != nil {
			log.Error().Err(err).Msg("failed to load classification rules")
			os.Exit(exitcode.ValidationError)
		}
	}

	st, err := store.Open(ctx, cfg.DBPath, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to open store")
		os.Exit(exitcode.StoreError)
	}
	defer st.Close()

	summary, err := ingest.RunMetrics(ctx, st, log, &cfg, rules)
	if err != nil {
		if pe, ok := err.(*ingest.PipelineError); ok {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("metrics run failed")
			switch pe.Phase {
			case "discover":
				os.Exit(exitcode.ValidationError)
			default:
				os.Exit(exitcode.TransformError)
			}
		}
		log.Error().Err(err).Msg("metrics run failed")
		os.Exit(exitcode.TransformError)
	}

	fmt.Printf("Metrics run complete: %d/%d files loaded, %d rows inserted (%.1fs)\n",
		summary.FilesLoaded, summary.FilesFound, summary.RowsInserted, summary.DurationTotal.Seconds())
	return nil
}
