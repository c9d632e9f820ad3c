package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var originCmd = &cobra.Command{
	Use:   "origin",
	Short: "Manage origin tables",
}

var originAddCmd = &cobra.Command{
	Use:   "add <path> <name> <csv>",
	Short: "Register an immutable baseline table from a CSV file",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		fieldPath, name, csvPath := args[0], args[1], args[2]

		f, err := openField(fieldPath)
		if err != nil {
			return err
		}
		data, err := loadCSV(csvPath)
		if err != nil {
			return err
		}
		id, err := f.AddOrigin(data, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", id)
		return nil
	},
}

func init() {
	originCmd.AddCommand(originAddCmd)
}
