// Package crawl runs every source spec end to end: governed retrieval,
// pagination, extraction, normalization and per-source deduplication,
// then combines the survivors into the master dataset.
package crawl

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"tabwatch/lib/dataset"
	"tabwatch/lib/extract"
	"tabwatch/lib/fetch"
	"tabwatch/lib/paginate"
	"tabwatch/lib/sources"
)

var tracer = otel.Tracer("lib/crawl")

// Options tunes a run. Zero value uses the real transports.
type Options struct {
	// Primary and Fallback override the per-source transports, for
	// tests. When nil, each source gets its own standard resty client
	// and browser-impersonating fallback.
	Primary  fetch.Transport
	Fallback fetch.Transport
}

// Report is one source's outcome. A source can have both records and an
// error: pages fetched before a failure are still extracted and kept.
type Report struct {
	Source  dataset.Source
	Records int
	Pages   int
	Skipped int
	Err     error
}

// FailureKind renders a report error as a short stable label for the
// run archive. Empty for a clean run.
func (r Report) FailureKind() string {
	if r.Err == nil {
		return ""
	}
	var unavailable *fetch.SourceUnavailableError
	if errors.As(r.Err, &unavailable) {
		return unavailable.Kind.String()
	}
	var drift *extract.SchemaDriftError
	if errors.As(r.Err, &drift) {
		return "schema drift"
	}
	return "error"
}

// Result is a whole run's output.
type Result struct {
	// Records is the combined master dataset, per-source deduplicated,
	// concatenated in canonical source order.
	Records []dataset.CanonicalRecord
	// Reports holds one entry per spec, in spec order.
	Reports []Report
}

// Run crawls all specs in parallel. Sources are fully independent: one
// source failing, hanging or drifting never cancels the others, and its
// partial records still make the combined dataset.
func Run(ctx context.Context, specs []sources.Spec, opts Options) Result {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	reports := make([]Report, len(specs))
	results := make([]dataset.SourceResult, len(specs))

	var wg sync.WaitGroup
	for i, spec := range specs {
		wg.Add(1)
		go func(i int, spec sources.Spec) {
			defer wg.Done()
			results[i], reports[i] = runSource(ctx, spec, opts)
		}(i, spec)
	}
	wg.Wait()

	total := 0
	for _, rep := range reports {
		total += rep.Records
	}
	span.SetAttributes(attribute.Int("records", total))

	return Result{
		Records: dataset.Combine(results),
		Reports: reports,
	}
}

func runSource(ctx context.Context, spec sources.Spec, opts Options) (dataset.SourceResult, Report) {
	ctx, span := tracer.Start(ctx, "runSource")
	defer span.End()
	span.SetAttributes(attribute.String("source", string(spec.Source)))

	primary := opts.Primary
	if primary == nil {
		primary = fetch.NewTransport(fetch.NewStandardClient())
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = fetch.NewTransport(fetch.NewImpersonatingClient())
	}
	governor := fetch.NewGovernor(fetch.GovernorOptions{
		Source:      string(spec.Source),
		Concurrency: spec.Concurrency,
		Delay:       spec.Delay,
		Primary:     primary,
		Fallback:    fallback,
	})

	pages, err := spec.Strategy().Drive(ctx, governor)

	var raws []extract.RawRecord
	skipped := 0
	for _, page := range pages {
		res, xerr := extract.Records(string(spec.Source), page.Index, page.Body, spec.Mapping)
		raws = append(raws, res.Records...)
		skipped += res.Skipped
		if xerr != nil {
			// structural drift poisons the rest of the source, but
			// records extracted before it are kept
			err = errors.Join(err, xerr)
			break
		}
	}

	records := dataset.Dedup(dataset.Unify(spec.Source, raws, spec.Renames))

	report := Report{
		Source:  spec.Source,
		Records: len(records),
		Pages:   len(pages),
		Skipped: skipped,
		Err:     err,
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "source finished with errors",
			"source", spec.Source,
			"pages", len(pages),
			"records", len(records),
			"err", err,
		)
	} else {
		slog.InfoContext(ctx, "source finished",
			"source", spec.Source,
			"pages", len(pages),
			"records", len(records),
			"skipped", skipped,
		)
	}

	return dataset.SourceResult{Source: spec.Source, Records: records}, report
}

var _ paginate.Fetcher = (*fetch.Governor)(nil)
