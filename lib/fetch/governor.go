package fetch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("lib/fetch")

// GovernorOptions configures one source's retrieval governor. Every
// source run constructs its own governor; nothing here is shared across
// sources.
type GovernorOptions struct {
	Source string
	// Concurrency bounds in-flight requests, default 3.
	Concurrency int
	// Delay paces requests irrespective of concurrency, default 1s.
	Delay    time.Duration
	Primary  Transport
	Fallback Transport
}

// Governor bounds concurrency and request rate for one source and owns
// the primary→fallback escalation policy.
type Governor struct {
	source   string
	gate     chan struct{}
	limiter  *rate.Limiter
	primary  Transport
	fallback Transport
}

func NewGovernor(opts GovernorOptions) *Governor {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 3
	}
	delay := opts.Delay
	if delay <= 0 {
		delay = time.Second
	}
	return &Governor{
		source:   opts.Source,
		gate:     make(chan struct{}, concurrency),
		limiter:  rate.NewLimiter(rate.Every(delay), 1),
		primary:  opts.Primary,
		fallback: opts.Fallback,
	}
}

// Fetch performs one governed request: admission gate, pacing delay,
// primary transport, then a single fallback retry for failure kinds that
// look like a bot challenge. There is no multi-attempt retry beyond that
// escalation: the fallback is expensive and a structural block will not
// clear on the third try either.
func (g *Governor) Fetch(ctx context.Context, d Descriptor) (*Response, error) {
	ctx, span := tracer.Start(ctx, "Governor.Fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("source", g.source),
		attribute.String("url", d.URL),
	)

	select {
	case g.gate <- struct{}{}:
	case <-ctx.Done():
		return nil, classify(d.URL, ctx.Err())
	}
	defer func() { <-g.gate }()

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, classify(d.URL, err)
	}

	res, err := g.primary.Do(ctx, d)
	if err == nil {
		return res, nil
	}

	var ferr *Error
	if !errors.As(err, &ferr) || !ferr.Kind.escalates() {
		kind := KindUnknown
		if ferr != nil {
			kind = ferr.Kind
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "primary transport failed, not escalating")
		return nil, &SourceUnavailableError{Source: g.source, Kind: kind, err: err}
	}

	slog.WarnContext(ctx, "primary transport failed, retrying via impersonating client",
		"source", g.source,
		"kind", ferr.Kind.String(),
		"url", d.URL,
	)
	span.AddEvent("fallback", trace.WithAttributes(
		attribute.String("kind", ferr.Kind.String()),
	))

	if werr := g.limiter.Wait(ctx); werr != nil {
		return nil, classify(d.URL, werr)
	}

	res, err = g.fallback.Do(ctx, d)
	if err == nil {
		return res, nil
	}

	kind := KindUnknown
	if errors.As(err, &ferr) {
		kind = ferr.Kind
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "fallback transport failed")
	return nil, &SourceUnavailableError{Source: g.source, Kind: kind, err: err}
}
