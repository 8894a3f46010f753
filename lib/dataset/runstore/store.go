// Package runstore archives crawl run summaries in a local sqlite
// database so successive runs can be compared.
package runstore

import (
	"context"
	"database/sql"
	_ "embed"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	_ "modernc.org/sqlite"
)

var tracer = otel.Tracer("lib/dataset/runstore")

//go:embed schema.sql
var schema string

// SourceSummary is one source's outcome within a run. FailureKind is
// empty for successful sources.
type SourceSummary struct {
	Source      string
	Records     int
	Pages       int
	Skipped     int
	FailureKind string
}

// Run is one archived crawl.
type Run struct {
	ID        int64
	StartedAt time.Time
	Duration  time.Duration
	Records   int
	Sources   []SourceSummary
}

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the archive at path and applies the schema.
func Open(path string) (Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return Store{}, err
	}
	return Store{db: db}, nil
}

func (s Store) Close() error {
	return s.db.Close()
}

// RecordRun archives one crawl and returns its id.
func (s Store) RecordRun(ctx context.Context, startedAt time.Time, duration time.Duration, records int, sources []SourceSummary) (int64, error) {
	ctx, span := tracer.Start(ctx, "RecordRun")
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO crawl_runs (started_at, duration_s, records) VALUES (?, ?, ?)`,
		startedAt.Unix(), duration.Seconds(), records)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	for _, src := range sources {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO crawl_run_sources (run_id, source, records, pages, skipped, failure_kind)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, src.Source, src.Records, src.Pages, src.Skipped, src.FailureKind)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first, with their
// per-source summaries attached.
func (s Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx, span := tracer.Start(ctx, "ListRuns")
	defer span.End()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, duration_s, records
		 FROM crawl_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt int64
		var seconds float64
		if err := rows.Scan(&r.ID, &startedAt, &seconds, &r.Records); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		r.StartedAt = time.Unix(startedAt, 0)
		r.Duration = time.Duration(seconds * float64(time.Second))
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	for i := range runs {
		sources, err := s.runSources(ctx, runs[i].ID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		runs[i].Sources = sources
	}
	return runs, nil
}

func (s Store) runSources(ctx context.Context, runID int64) ([]SourceSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, records, pages, skipped, failure_kind
		 FROM crawl_run_sources WHERE run_id = ? ORDER BY source`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SourceSummary
	for rows.Next() {
		var src SourceSummary
		if err := rows.Scan(&src.Source, &src.Records, &src.Pages, &src.Skipped, &src.FailureKind); err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, rows.Err()
}
