package paginate

import (
	"context"
	"log/slog"
	"regexp"

	"tabwatch/lib/extract"
	"tabwatch/lib/fetch"
)

// BuildID drives sources that hide their data endpoints behind a
// deployment identifier embedded in the listing HTML (Next.js-style
// buildId). The identifier changes on every upstream redeploy: it is
// re-extracted on every Drive call and never cached across runs.
type BuildID struct {
	Source string
	// Bootstrap fetches the HTML document carrying the identifier.
	Bootstrap fetch.Descriptor
	// Pattern's first capture group is the identifier.
	Pattern *regexp.Regexp
	// Inner builds the strategy for the data endpoints once the
	// identifier is known. The bootstrap body is passed along because
	// it usually embeds page 1's payload and the total item count.
	Inner func(buildID, bootstrapBody string) (Strategy, error)
	// EmitBootstrap includes the bootstrap document itself as page 1,
	// for sources whose first page only exists embedded in it.
	EmitBootstrap bool
}

func (s BuildID) Drive(ctx context.Context, client Fetcher) ([]Page, error) {
	res, err := client.Fetch(ctx, s.Bootstrap)
	if err != nil {
		return nil, err
	}

	groups := s.Pattern.FindStringSubmatch(res.Body)
	if len(groups) < 2 {
		// the site's internal structure changed, not a transient failure
		return nil, &extract.SchemaDriftError{Source: s.Source, Field: "build_id", Page: 1}
	}
	buildID := groups[1]
	slog.DebugContext(ctx, "extracted build identifier", "source", s.Source, "build_id", buildID)

	inner, err := s.Inner(buildID, res.Body)
	if err != nil {
		return nil, err
	}

	var pages []Page
	if s.EmitBootstrap {
		pages = append(pages, Page{Index: 1, Body: res.Body, URL: s.Bootstrap.URL})
	}
	rest, err := inner.Drive(ctx, client)
	return append(pages, rest...), err
}
