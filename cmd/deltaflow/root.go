package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "deltaflow",
	Short: "deltaflow - content-addressed version control for tabular datasets",
	Long: `deltaflow is a content-addressed version control store for tabular
datasets. Register an immutable baseline table (an origin), evolve it
through a named working cursor (an arrow), and commit minimal deltas
against the arrow's current head.`,
}

func init() {
	rootCmd.AddCommand(touchCmd)
	rootCmd.AddCommand(originCmd)
	rootCmd.AddCommand(arrowCmd)
	rootCmd.AddCommand(treeCmd)
}
