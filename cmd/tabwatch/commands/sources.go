package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tabwatch/lib/sources"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Lists the built-in source specs.",
	Run: func(cmd *cobra.Command, args []string) {
		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"source", "strategy", "concurrency", "delay"})
		for _, spec := range sources.All() {
			t.AppendRow(table.Row{
				spec.Source,
				fmt.Sprintf("%T", spec.Strategy()),
				spec.Concurrency,
				spec.Delay,
			})
		}
		t.Render()
	},
}
