package crawl

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tabwatch/lib/dataset"
	"tabwatch/lib/extract"
	"tabwatch/lib/fetch"
	"tabwatch/lib/paginate"
	"tabwatch/lib/sources"
	"tabwatch/lib/telemetry"
)

// mapTransport serves canned pages keyed by URL (query included). An
// entry with a non-nil err fails instead.
type mapTransport struct {
	pages map[string]string
	errs  map[string]error
}

func (m *mapTransport) Do(_ context.Context, d fetch.Descriptor) (*fetch.Response, error) {
	key := d.URL
	if len(d.Query) > 0 {
		key += "?" + d.Query.Encode()
	}
	if err, ok := m.errs[key]; ok {
		return nil, err
	}
	body, ok := m.pages[key]
	if !ok {
		return nil, &fetch.Error{Kind: fetch.KindProtocol, URL: key}
	}
	return &fetch.Response{StatusCode: 200, Body: body}, nil
}

func listingPage(names ...string) string {
	page := "<div class='grid'>"
	for _, n := range names {
		page += fmt.Sprintf(
			`<div class="card"><a class="title" href="/p/%s">%s</a></div>`, n, n)
	}
	return page + "</div>"
}

func cardMapping() extract.Mapping {
	return extract.Mapping{
		ItemSelector: ".card",
		Fields: map[string]extract.Rule{
			"name": {Selector: ".title", Required: true},
			"url":  {Selector: ".title", Attr: "href"},
		},
		IdentityFields: []string{"url"},
	}
}

func pagedSpec(source dataset.Source, base string, last int) sources.Spec {
	return sources.Spec{
		Source:      source,
		Concurrency: 2,
		Delay:       time.Millisecond,
		Strategy: func() paginate.Strategy {
			return paginate.FixedPages{
				Request: func(page int) fetch.Descriptor {
					return fetch.Descriptor{Method: "GET", URL: fmt.Sprintf("%s/%d", base, page)}
				},
				LastPage: func(string) (int, error) { return last, nil },
			}
		},
		Mapping: cardMapping(),
	}
}

func names(recs []dataset.CanonicalRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Name)
	}
	return out
}

func TestRunCombinesSourcesInCanonicalOrder(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:crawl")
	defer cleanup()

	transport := &mapTransport{pages: map[string]string{
		"http://tap/1":     listingPage("tablet-t1", "tablet-t2"),
		"http://kontakt/1": listingPage("tablet-k1"),
		"http://kontakt/2": listingPage("tablet-k2"),
	}}

	// specs handed over in reverse canonical order on purpose
	specs := []sources.Spec{
		pagedSpec(dataset.SourceTapAz, "http://tap", 1),
		pagedSpec(dataset.SourceKontakt, "http://kontakt", 2),
	}
	res := Run(context.Background(), specs, Options{Primary: transport, Fallback: transport})

	require.Equal(t, []string{"tablet-k1", "tablet-k2", "tablet-t1", "tablet-t2"}, names(res.Records))
	for _, rec := range res.Records[:2] {
		require.Equal(t, dataset.SourceKontakt, rec.Source)
	}

	require.Len(t, res.Reports, 2)
	require.Equal(t, dataset.SourceTapAz, res.Reports[0].Source)
	require.NoError(t, res.Reports[0].Err)
	require.Equal(t, 2, res.Reports[0].Records)
	require.Equal(t, 1, res.Reports[0].Pages)
	require.Equal(t, 2, res.Reports[1].Pages)
}

func TestRunDeadSourceDoesNotBlockOthers(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:crawl")
	defer cleanup()

	transport := &mapTransport{
		pages: map[string]string{
			"http://kontakt/1": listingPage("tablet-k1"),
		},
		errs: map[string]error{
			"http://tap/1": &fetch.Error{Kind: fetch.KindConnectionRefused, URL: "http://tap/1"},
		},
	}

	specs := []sources.Spec{
		pagedSpec(dataset.SourceKontakt, "http://kontakt", 1),
		pagedSpec(dataset.SourceTapAz, "http://tap", 1),
	}
	res := Run(context.Background(), specs, Options{Primary: transport, Fallback: transport})

	require.Equal(t, []string{"tablet-k1"}, names(res.Records))

	dead := res.Reports[1]
	require.Error(t, dead.Err)
	require.Zero(t, dead.Records)
	require.Zero(t, dead.Pages)
	require.Equal(t, "connection_refused", dead.FailureKind())
}

func TestRunKeepsRecordsFetchedBeforeFailure(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:crawl")
	defer cleanup()

	transport := &mapTransport{
		pages: map[string]string{
			"http://kontakt/1": listingPage("tablet-k1"),
		},
		errs: map[string]error{
			"http://kontakt/2": &fetch.Error{Kind: fetch.KindConnectionRefused, URL: "http://kontakt/2"},
		},
	}

	specs := []sources.Spec{pagedSpec(dataset.SourceKontakt, "http://kontakt", 2)}
	res := Run(context.Background(), specs, Options{Primary: transport, Fallback: transport})

	require.Equal(t, []string{"tablet-k1"}, names(res.Records))

	rep := res.Reports[0]
	require.Error(t, rep.Err)
	require.Equal(t, 1, rep.Records)
	require.Equal(t, 1, rep.Pages)
	require.Equal(t, "connection_refused", rep.FailureKind())
}

func TestRunSchemaDriftKeepsEarlierPages(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:crawl")
	defer cleanup()

	transport := &mapTransport{pages: map[string]string{
		"http://kontakt/1": listingPage("tablet-k1"),
		// card present but the required name selector resolves nothing
		"http://kontakt/2": `<div class="card"><span class="label">?</span></div>`,
	}}

	specs := []sources.Spec{pagedSpec(dataset.SourceKontakt, "http://kontakt", 2)}
	res := Run(context.Background(), specs, Options{Primary: transport, Fallback: transport})

	require.Equal(t, []string{"tablet-k1"}, names(res.Records))

	rep := res.Reports[0]
	require.Error(t, rep.Err)
	var drift *extract.SchemaDriftError
	require.True(t, errors.As(rep.Err, &drift))
	require.Equal(t, "name", drift.Field)
	require.Equal(t, 2, drift.Page)
	require.Equal(t, "schema drift", rep.FailureKind())
}

func TestRunDeduplicatesWithinSource(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:crawl")
	defer cleanup()

	transport := &mapTransport{pages: map[string]string{
		"http://kontakt/1": listingPage("tablet-a", "tablet-b"),
		"http://kontakt/2": listingPage("tablet-a"),
	}}

	specs := []sources.Spec{pagedSpec(dataset.SourceKontakt, "http://kontakt", 2)}
	res := Run(context.Background(), specs, Options{Primary: transport, Fallback: transport})

	require.Equal(t, []string{"tablet-a", "tablet-b"}, names(res.Records))
	require.Equal(t, 2, res.Reports[0].Records)
	require.Equal(t, 2, res.Reports[0].Pages)
}

func TestFailureKindLabels(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&fetch.SourceUnavailableError{Source: "tap.az", Kind: fetch.KindTimeout}, "timeout"},
		{&extract.SchemaDriftError{Source: "tap.az", Field: "name", Page: 3}, "schema drift"},
		{errors.New("boom"), "error"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, Report{Err: c.err}.FailureKind())
	}
}
