package paginate

import (
	"context"
	"log/slog"

	"tabwatch/lib/fetch"
)

// OffsetBatch drives sources whose API takes an item offset and declares
// the total item count in every response: the first batch at offset 0
// yields the total, all remaining offsets are computed upfront and
// fetched concurrently.
type OffsetBatch struct {
	BatchSize int
	// Request builds the descriptor for one offset.
	Request func(offset int) fetch.Descriptor
	// Total reads the declared total item count from a response body.
	Total func(body string) (int, error)
}

func (s OffsetBatch) Drive(ctx context.Context, client Fetcher) ([]Page, error) {
	first := s.Request(0)
	res, err := client.Fetch(ctx, first)
	if err != nil {
		return nil, err
	}
	pages := []Page{{Index: 0, Body: res.Body, URL: first.URL}}

	total, err := s.Total(res.Body)
	if err != nil {
		return pages, err
	}
	slog.DebugContext(ctx, "discovered item total", "total", total, "batch_size", s.BatchSize)
	// zero items is an empty result, not an error
	if total <= s.BatchSize {
		return pages, nil
	}

	var reqs []pageRequest
	for offset := s.BatchSize; offset < total; offset += s.BatchSize {
		reqs = append(reqs, pageRequest{
			index: offset / s.BatchSize,
			desc:  s.Request(offset),
		})
	}
	rest, err := fanOut(ctx, client, reqs)
	return append(pages, rest...), err
}
