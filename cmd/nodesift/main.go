package main

import (
	"os"

	"github.com/nodesift/nodesift/internal/exitcode"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitcode.UsageError)
	}
}
