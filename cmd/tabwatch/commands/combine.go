package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tabwatch/lib/dataset"
)

var (
	combineDir *string
	combineOut *string
)

func init() {
	combineDir = combineCmd.Flags().String("dir", ".", "The directory holding per-source <source>.csv files.")
	combineOut = combineCmd.Flags().String("out", "data.csv", "The file to write the combined dataset to.")
	rootCmd.AddCommand(combineCmd)
}

// combineCmd rebuilds the master dataset from per-source files (as
// written by `crawl --split`) without re-crawling anything.
var combineCmd = &cobra.Command{
	Use:   "combine [--dir <dir>] [--out <data.csv>]",
	Short: "Combines per-source csv files into the master dataset.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var results []dataset.SourceResult
		for _, source := range dataset.Sources() {
			path := filepath.Join(*combineDir, string(source)+".csv")
			records, err := readSourceFile(path)
			if errors.Is(err, os.ErrNotExist) {
				slog.Warn("source file missing, skipping", "source", source, "path", path)
				continue
			}
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			results = append(results, dataset.SourceResult{Source: source, Records: records})
		}
		if len(results) == 0 {
			return fmt.Errorf("no source files found in %s", *combineDir)
		}

		records := dataset.Combine(results)
		out, err := os.Create(*combineOut)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := dataset.WriteCSV(out, records); err != nil {
			return err
		}
		slog.Info("wrote combined dataset",
			"path", *combineOut,
			"sources", len(results),
			"records", len(records),
		)
		return nil
	},
}

func readSourceFile(path string) ([]dataset.CanonicalRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dataset.ReadCSV(f)
}
