// Command deltaflow is a thin cobra CLI wrapper over the internal/field,
// internal/arrow, and internal/tree library surface (spec.md §6). CLI
// ergonomics are explicitly out of scope for this spec; this binary
// exists only so the library surface is exercised end-to-end, the same
// role cmd/ckb/main.go plays over the teacher's internal/* packages.
package main

import (
	"os"

	"deltaflow/internal/logging"
)

func main() {
	logger := logging.NewLogger(logging.Config{Format: "human", Level: "info"})

	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}
