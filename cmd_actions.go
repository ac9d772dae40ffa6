package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"blog_ai_editor/toolbar"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the AI toolbar actions",
	Run: func(cmd *cobra.Command, args []string) {
		printActions(cmd.OutOrStdout())
	},
}

func printActions(w io.Writer) {
	for _, s := range toolbar.Sections() {
		fmt.Fprintf(w, "%s\n", s.Group)
		for _, a := range s.Actions {
			fmt.Fprintf(w, "  %-20s %s %s (%s)\n", a.ID, a.Icon, a.Label, a.Precondition)
		}
	}
}
