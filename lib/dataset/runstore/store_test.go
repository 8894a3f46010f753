package runstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordAndListRuns(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	startedAt := time.Unix(1756200000, 0)

	id, err := store.RecordRun(ctx, startedAt, 42*time.Second, 1200, []SourceSummary{
		{Source: "kontakt.az", Records: 700, Pages: 35, Skipped: 2},
		{Source: "tap.az", Records: 500, Pages: 14, FailureKind: "timeout"},
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	_, err = store.RecordRun(ctx, startedAt.Add(time.Hour), 30*time.Second, 900, nil)
	require.NoError(t, err)

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// newest first
	require.Equal(t, 900, runs[0].Records)
	require.Empty(t, runs[0].Sources)

	first := runs[1]
	require.Equal(t, id, first.ID)
	require.Equal(t, startedAt.Unix(), first.StartedAt.Unix())
	require.Equal(t, 1200, first.Records)
	require.Len(t, first.Sources, 2)
	require.Equal(t, "kontakt.az", first.Sources[0].Source)
	require.Equal(t, "timeout", first.Sources[1].FailureKind)
}
