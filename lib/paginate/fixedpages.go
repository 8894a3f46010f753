package paginate

import (
	"context"
	"log/slog"

	"tabwatch/lib/fetch"
)

// FixedPages drives sources whose listing exposes a page-numbered
// control: page 1 reveals the highest page number, pages 2..last are
// independent of each other and fetched concurrently.
type FixedPages struct {
	// Request builds the descriptor for a 1-indexed page number.
	Request func(page int) fetch.Descriptor
	// LastPage reads the highest referenced page number out of the
	// first page's body. nil means the listing is a single page.
	LastPage func(body string) (int, error)
}

func (s FixedPages) Drive(ctx context.Context, client Fetcher) ([]Page, error) {
	first := s.Request(1)
	res, err := client.Fetch(ctx, first)
	if err != nil {
		return nil, err
	}
	pages := []Page{{Index: 1, Body: res.Body, URL: first.URL}}

	if s.LastPage == nil {
		return pages, nil
	}
	last, err := s.LastPage(res.Body)
	if err != nil {
		return pages, err
	}
	slog.DebugContext(ctx, "discovered page count", "last_page", last)
	if last < 2 {
		return pages, nil
	}

	reqs := make([]pageRequest, 0, last-1)
	for p := 2; p <= last; p++ {
		reqs = append(reqs, pageRequest{index: p, desc: s.Request(p)})
	}
	rest, err := fanOut(ctx, client, reqs)
	return append(pages, rest...), err
}
