package commands

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tabwatch/lib/dataset/runstore"
)

const runDurationPrecision = 100 * time.Millisecond

var (
	runsDB    *string
	runsLimit *int
)

func init() {
	runsDB = runsCmd.Flags().String("db", "runs.db", "The sqlite database run summaries were archived in.")
	runsLimit = runsCmd.Flags().Int("limit", 10, "How many runs to show, newest first.")
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs [--db <runs.db>] [--limit <n>]",
	Short: "Shows archived crawl runs.",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := runstore.Open(*runsDB)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.ListRuns(cmd.Context(), *runsLimit)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"id", "started", "duration", "records", "failed sources"})
		for _, run := range runs {
			failed := 0
			for _, src := range run.Sources {
				if src.FailureKind != "" {
					failed++
				}
			}
			t.AppendRow(table.Row{
				run.ID,
				run.StartedAt.Format("2006-01-02 15:04:05"),
				run.Duration.Round(runDurationPrecision),
				run.Records,
				failed,
			})
		}
		t.Render()
		return nil
	},
}
