package paginate

import (
	"context"

	"tabwatch/lib/fetch"
)

// PageRange fans out a known, pre-computed page interval. It backs the
// data-endpoint half of BuildID sources, where the bootstrap document
// already served page 1 and declared the page count.
type PageRange struct {
	From, To int
	Request  func(page int) fetch.Descriptor
}

func (s PageRange) Drive(ctx context.Context, client Fetcher) ([]Page, error) {
	if s.To < s.From {
		return nil, nil
	}
	reqs := make([]pageRequest, 0, s.To-s.From+1)
	for p := s.From; p <= s.To; p++ {
		reqs = append(reqs, pageRequest{index: p, desc: s.Request(p)})
	}
	return fanOut(ctx, client, reqs)
}
