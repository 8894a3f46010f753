package paginate

import (
	"context"
	"fmt"
	"log/slog"

	"tabwatch/lib/fetch"
)

// defaultMaxSteps bounds a cursor walk against an upstream that never
// stops reporting more pages.
const defaultMaxSteps = 500

// CursorChain drives sources whose every response hands back an opaque
// continuation token plus a has-more flag. The next request is only
// known once the current response arrives, so the walk is strictly
// sequential.
type CursorChain struct {
	// Prime, when set, is requested once before the walk to pick up
	// session cookies.
	Prime *fetch.Descriptor
	// Request builds the descriptor for one step; cursor is "" on the
	// first step.
	Request func(cursor string) fetch.Descriptor
	// Next reads the continuation token and has-more flag from a body.
	Next func(body string) (cursor string, hasMore bool, err error)
	// MaxSteps defaults to 500.
	MaxSteps int
}

func (s CursorChain) Drive(ctx context.Context, client Fetcher) ([]Page, error) {
	if s.Prime != nil {
		if _, err := client.Fetch(ctx, *s.Prime); err != nil {
			return nil, err
		}
	}

	maxSteps := s.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	var pages []Page
	cursor := ""
	for step := 0; step < maxSteps; step++ {
		desc := s.Request(cursor)
		res, err := client.Fetch(ctx, desc)
		if err != nil {
			return pages, err
		}
		pages = append(pages, Page{Index: step, Body: res.Body, URL: desc.URL})

		next, hasMore, err := s.Next(res.Body)
		if err != nil {
			return pages, err
		}
		if !hasMore {
			return pages, nil
		}
		slog.DebugContext(ctx, "following cursor", "step", step, "cursor", next)
		cursor = next
	}
	return pages, fmt.Errorf("cursor chain exceeded %d steps without terminating", maxSteps)
}
