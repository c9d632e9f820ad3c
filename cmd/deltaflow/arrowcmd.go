package main

import (
	"fmt"
	"strconv"
	"strings"

	"deltaflow/internal/stage"
	"deltaflow/internal/table"

	"github.com/spf13/cobra"
)

var arrowCmd = &cobra.Command{
	Use:   "arrow",
	Short: "Manage arrows (named mutable cursors)",
}

var arrowAddCmd = &cobra.Command{
	Use:   "add <path> <node-id> <name>",
	Short: "Create a new arrow pointing at an existing node",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := openField(args[0])
		if err != nil {
			return err
		}
		return f.AddArrow(args[1], args[2])
	},
}

var arrowPutCmd = &cobra.Command{
	Use:   "put <path> <name> <csv>",
	Short: "Write the minimal differing cells from a CSV patch",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := openField(args[0])
		if err != nil {
			return err
		}
		a, err := f.Arrow(args[1])
		if err != nil {
			return err
		}
		data, err := loadCSV(args[2])
		if err != nil {
			return err
		}
		if err := a.Put(data); err != nil {
			return err
		}
		_, err = a.Commit()
		return err
	},
}

var dropAxisFlag string
var dropMethodFlag string

var arrowDropCmd = &cobra.Command{
	Use:   "drop <path> <name> <labels>",
	Short: "Drop rows or columns, then commit",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := openField(args[0])
		if err != nil {
			return err
		}
		a, err := f.Arrow(args[1])
		if err != nil {
			return err
		}

		axis := table.AxisRows
		if dropAxisFlag == "columns" {
			axis = table.AxisCols
		}
		method := stage.Intersection
		if dropMethodFlag == "difference" {
			method = stage.Difference
		}

		parts := strings.Split(args[2], ",")
		if axis == table.AxisRows {
			labels := make([]int64, len(parts))
			for i, p := range parts {
				n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
				if err != nil {
					return fmt.Errorf("invalid row label %q: %w", p, err)
				}
				labels[i] = n
			}
			if err := a.Drop(labels, axis, method); err != nil {
				return err
			}
		} else {
			labels := make([]string, len(parts))
			for i, p := range parts {
				labels[i] = strings.TrimSpace(p)
			}
			if err := a.Drop(labels, axis, method); err != nil {
				return err
			}
		}
		_, err = a.Commit()
		return err
	},
}

var extendAxisFlag string

var arrowExtendCmd = &cobra.Command{
	Use:   "extend <path> <name> <csv>",
	Short: "Append new rows or columns from a CSV file, then commit",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := openField(args[0])
		if err != nil {
			return err
		}
		a, err := f.Arrow(args[1])
		if err != nil {
			return err
		}
		data, err := loadCSV(args[2])
		if err != nil {
			return err
		}

		axis := table.AxisCols
		if extendAxisFlag == "rows" {
			axis = table.AxisRows
		}
		if err := a.Extend(data, axis); err != nil {
			return err
		}
		_, err = a.Commit()
		return err
	},
}

var arrowUndoCmd = &cobra.Command{
	Use:   "undo <path> <name>",
	Short: "Pop the last uncommitted edit layer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := openField(args[0])
		if err != nil {
			return err
		}
		a, err := f.Arrow(args[1])
		if err != nil {
			return err
		}
		return a.Undo()
	},
}

var arrowCommitCmd = &cobra.Command{
	Use:   "commit <path> <name>",
	Short: "Commit the staged edits, advancing the arrow's head",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := openField(args[0])
		if err != nil {
			return err
		}
		a, err := f.Arrow(args[1])
		if err != nil {
			return err
		}
		id, err := a.Commit()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", id)
		return nil
	},
}

func init() {
	arrowDropCmd.Flags().StringVar(&dropAxisFlag, "axis", "rows", "rows or columns")
	arrowDropCmd.Flags().StringVar(&dropMethodFlag, "method", "intersection", "intersection or difference")
	arrowExtendCmd.Flags().StringVar(&extendAxisFlag, "axis", "columns", "rows or columns")

	arrowCmd.AddCommand(arrowAddCmd)
	arrowCmd.AddCommand(arrowPutCmd)
	arrowCmd.AddCommand(arrowDropCmd)
	arrowCmd.AddCommand(arrowExtendCmd)
	arrowCmd.AddCommand(arrowUndoCmd)
	arrowCmd.AddCommand(arrowCommitCmd)
}
