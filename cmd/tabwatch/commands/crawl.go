package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tabwatch/lib/crawl"
	"tabwatch/lib/dataset"
	"tabwatch/lib/dataset/runstore"
	"tabwatch/lib/sources"
)

var (
	crawlOut       *string
	crawlDB        *string
	crawlOverrides *string
	crawlSources   *[]string
	crawlSplit     *string
)

func init() {
	crawlOut = crawlCmd.Flags().String("out", "data.csv", "The file to write the combined dataset to.")
	crawlDB = crawlCmd.Flags().String("db", "runs.db", "The sqlite database to archive run summaries in.")
	crawlOverrides = crawlCmd.Flags().String("overrides", "", "A directory of per-source json5 override files.")
	crawlSources = crawlCmd.Flags().StringSlice("source", nil, "Limit the run to the given source domains.")
	crawlSplit = crawlCmd.Flags().String("split", "", "Also write one <source>.csv per source into this directory.")
	rootCmd.AddCommand(crawlCmd)
}

func selectSpecs() ([]sources.Spec, error) {
	specs := sources.All()
	if len(*crawlSources) > 0 {
		var selected []sources.Spec
		for _, name := range *crawlSources {
			spec, ok := sources.ByName(name)
			if !ok {
				return nil, fmt.Errorf("unknown source %q", name)
			}
			selected = append(selected, spec)
		}
		specs = selected
	}
	if *crawlOverrides != "" {
		return sources.LoadOverrides(*crawlOverrides, specs)
	}
	return specs, nil
}

var crawlCmd = &cobra.Command{
	Use:   "crawl [--out <data.csv>] [--db <runs.db>] [--source <domain>]...",
	Short: "Crawls all (or selected) sources and writes the combined dataset.",
	RunE: func(cmd *cobra.Command, args []string) error {
		specs, err := selectSpecs()
		if err != nil {
			return err
		}

		startedAt := time.Now()
		result := crawl.Run(cmd.Context(), specs, crawl.Options{})
		duration := time.Since(startedAt)

		out, err := os.Create(*crawlOut)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := dataset.WriteCSV(out, result.Records); err != nil {
			return err
		}
		slog.Info("wrote combined dataset",
			"path", *crawlOut,
			"records", len(result.Records),
			"seconds", duration.Seconds(),
		)

		if *crawlSplit != "" {
			if err := splitDataset(*crawlSplit, result); err != nil {
				return err
			}
		}

		if err := archiveRun(cmd, startedAt, duration, result); err != nil {
			// the dataset on disk is the deliverable; a broken archive
			// only costs history
			slog.Error("failed to archive run", "err", err)
		}

		renderReports(cmd, result.Reports)
		return nil
	},
}

// splitDataset writes each crawled source's slice of the combined
// dataset to its own <source>.csv. A crawled source with zero records
// still gets a header-only file so combining the directory later
// reproduces the run faithfully.
func splitDataset(dir string, result crawl.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	bySource := make(map[dataset.Source][]dataset.CanonicalRecord)
	for _, rec := range result.Records {
		bySource[rec.Source] = append(bySource[rec.Source], rec)
	}
	for _, rep := range result.Reports {
		f, err := os.Create(filepath.Join(dir, string(rep.Source)+".csv"))
		if err != nil {
			return err
		}
		err = dataset.WriteCSV(f, bySource[rep.Source])
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func archiveRun(cmd *cobra.Command, startedAt time.Time, duration time.Duration, result crawl.Result) error {
	store, err := runstore.Open(*crawlDB)
	if err != nil {
		return err
	}
	defer store.Close()

	summaries := make([]runstore.SourceSummary, 0, len(result.Reports))
	for _, rep := range result.Reports {
		summaries = append(summaries, runstore.SourceSummary{
			Source:      string(rep.Source),
			Records:     rep.Records,
			Pages:       rep.Pages,
			Skipped:     rep.Skipped,
			FailureKind: rep.FailureKind(),
		})
	}
	_, err = store.RecordRun(cmd.Context(), startedAt, duration, len(result.Records), summaries)
	return err
}

func renderReports(cmd *cobra.Command, reports []crawl.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"source", "records", "pages", "skipped", "status"})
	for _, rep := range reports {
		status := "ok"
		if rep.Err != nil {
			status = rep.FailureKind()
		}
		t.AppendRow(table.Row{rep.Source, rep.Records, rep.Pages, rep.Skipped, status})
	}
	t.Render()
}
