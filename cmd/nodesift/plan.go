package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nodesift/nodesift/internal/exitcode"
	"github.com/nodesift/nodesift/internal/logging"
	"github.com/nodesift/nodesift/internal/normalize"
	"github.com/nodesift/nodesift/internal/shred"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry-run stats for a snapshot file (no writes)",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&cfg.FilePath, "file", "", "Path to raw snapshot log file (required)")
	_ = planCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, verbose)

	if err := cfg.ValidateFile(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	sha, err := normalize.FileHash(cfg.FilePath)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash file")
		os.Exit(exitcode.ValidationError)
	}

	stat, err := os.Stat(cfg.FilePath)
	if err != nil {
		log.Error().Err(err).Msg("failed to stat file")
		os.Exit(exitcode.ValidationError)
	}

	res, err := shred.New().Plan(cfg.FilePath)
	if err != nil {
		log.Error().Err(err).Msg("failed to scan file")
		os.Exit(exitcode.ValidationError)
	}

	fmt.Println("=== nodesift plan ===")
	fmt.Printf("File:       %s\n", cfg.FilePath)
	fmt.Printf("SHA-256:    %s\n", sha)
	fmt.Printf("Size:       %d bytes\n", stat.Size())
	fmt.Printf("Partition:  snapshot_date=%s\n", res.PartitionDate)
	fmt.Printf("Lines:      %d (%d valid envelopes, %d malformed)\n",
		res.LinesRead, res.ValidEnvelopes, res.MalformedLines)
	fmt.Printf("Pending:    %d transactions reported across snapshots\n", res.PendingTotal)
	fmt.Printf("Queued:     %d transactions reported across snapshots\n", res.QueuedTotal)

	return nil
}
