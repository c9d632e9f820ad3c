package main

import (
	"fmt"

	"deltaflow/internal/field"

	"github.com/spf13/cobra"
)

var touchCmd = &cobra.Command{
	Use:   "touch <path>",
	Short: "Initialize an empty field directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := field.Touch(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "initialized field at %s\n", args[0])
		return nil
	},
}
