// Package paginate drives a source's pagination topology through the
// retrieval governor, producing the ordered raw pages a run extracts
// records from.
package paginate

import (
	"context"
	"errors"
	"sort"
	"sync"

	"tabwatch/lib/fetch"
)

// Page is one fetched page or batch, tagged with its source-native
// index. Pages are always handed to extraction in index order so the
// deduplicator's last-seen-wins tie-break stays deterministic no matter
// the order responses completed in.
type Page struct {
	Index int
	Body  string
	URL   string
}

// Fetcher is the slice of the governor a strategy needs. *fetch.Governor
// satisfies it; tests substitute mocks.
type Fetcher interface {
	Fetch(ctx context.Context, d fetch.Descriptor) (*fetch.Response, error)
}

// Strategy drives one source from the beginning: a finite, non-restartable
// walk. On a mid-run failure it returns the pages fetched so far together
// with the error — downstream still extracts and emits them.
type Strategy interface {
	Drive(ctx context.Context, client Fetcher) ([]Page, error)
}

type pageRequest struct {
	index int
	desc  fetch.Descriptor
}

// fanOut dispatches independent page requests concurrently (the governor
// bounds actual parallelism), reassembles results in index order, and on
// the first failure cancels the requests that have not been admitted yet.
func fanOut(ctx context.Context, client Fetcher, reqs []pageRequest) ([]Page, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var mu sync.Mutex
	var pages []Page
	var errlist []error
	var wg sync.WaitGroup

	for _, req := range reqs {
		wg.Add(1)
		go func(req pageRequest) {
			defer wg.Done()

			res, err := client.Fetch(ctx, req.desc)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// pending fetches abort, already-complete pages are kept
				if ctx.Err() == nil {
					errlist = append(errlist, err)
				}
				cancel()
				return
			}
			pages = append(pages, Page{Index: req.index, Body: res.Body, URL: req.desc.URL})
		}(req)
	}
	wg.Wait()

	sort.Slice(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })
	return pages, errors.Join(errlist...)
}
