package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Inspect the Tree: origins, arrows, nodes, lineage",
}

var treeOutlineCmd = &cobra.Command{
	Use:   "outline <path> <node-id>",
	Short: "Print the origin-to-head outline for a node, recomputing every header hash",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := openField(args[0])
		if err != nil {
			return err
		}
		outline, err := f.Tree().Outline(args[1])
		if err != nil {
			return err
		}
		for _, e := range outline {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", e.NodeID, e.HeaderHash)
		}
		return nil
	},
}

var treeArrowsCmd = &cobra.Command{
	Use:   "arrows <path>",
	Short: "List arrows and their current heads",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := openField(args[0])
		if err != nil {
			return err
		}
		arrows, err := f.Tree().Arrows()
		if err != nil {
			return err
		}
		for name, head := range arrows {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, head)
		}
		return nil
	},
}

func init() {
	treeCmd.AddCommand(treeOutlineCmd)
	treeCmd.AddCommand(treeArrowsCmd)
}
