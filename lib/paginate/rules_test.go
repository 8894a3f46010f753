package paginate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaxPageNumberFromHrefs(t *testing.T) {
	body := `<div class="pager">
		<a href="/list?page=2">2</a>
		<a href="/list?page=7">7</a>
		<a href="/list?page=3">3</a>
	</div>`

	last, err := MaxPageNumber(".pager a[href]", "href", `[?&]page=(\d+)`)(body)
	require.NoError(t, err)
	require.Equal(t, 7, last)
}

func TestMaxPageNumberFromText(t *testing.T) {
	body := `<ul class="pagination">
		<li><button class="page-link">1</button></li>
		<li><button class="page-link">12</button></li>
		<li><button class="page-link">Next</button></li>
	</ul>`

	last, err := MaxPageNumber("ul.pagination button.page-link", "", `^(\d+)$`)(body)
	require.NoError(t, err)
	require.Equal(t, 12, last)
}

func TestMaxPageNumberMissingControlMeansSinglePage(t *testing.T) {
	last, err := MaxPageNumber(".pager a", "href", `page=(\d+)`)("<div>no pager</div>")
	require.NoError(t, err)
	require.Equal(t, 1, last)
}

func TestPageCountFromTotal(t *testing.T) {
	body := `<span class="catalog__count">248 məhsul</span>`

	last, err := PageCountFromTotal(".catalog__count", 20, nil)(body)
	require.NoError(t, err)
	require.Equal(t, 13, last)
}

func TestPageCountFromTotalFallsBack(t *testing.T) {
	body := `<div><a href="/list?p=4">4</a></div>`

	last, err := PageCountFromTotal(".catalog__count", 20,
		MaxPageNumber("a[href]", "href", `[?&]p=(\d+)`))(body)
	require.NoError(t, err)
	require.Equal(t, 4, last)
}

func TestTotalFromJSONMissingIsError(t *testing.T) {
	_, err := TotalFromJSON("total")(`{"items": []}`)
	require.Error(t, err)
}

func TestCursorFromJSON(t *testing.T) {
	next := CursorFromJSON("pageInfo.endCursor", "pageInfo.hasNextPage")

	cursor, more, err := next(`{"pageInfo": {"endCursor": "MzY", "hasNextPage": true}}`)
	require.NoError(t, err)
	require.True(t, more)
	require.Equal(t, "MzY", cursor)

	_, more, err = next(`{"pageInfo": {"endCursor": null, "hasNextPage": false}}`)
	require.NoError(t, err)
	require.False(t, more)

	_, _, err = next(`{"unexpected": true}`)
	require.Error(t, err)
}

func TestNextPageIndexCursorCountsUp(t *testing.T) {
	next := NextPageIndexCursor(".shw_more", "true")

	cursor, more, err := next(`<div class="shw_more" hidden>True</div>`)
	require.NoError(t, err)
	require.True(t, more)
	require.Equal(t, "1", cursor)

	cursor, more, err = next(`<div class="shw_more" hidden>True</div>`)
	require.NoError(t, err)
	require.True(t, more)
	require.Equal(t, "2", cursor)

	_, more, err = next(`<div class="shw_more" hidden>False</div>`)
	require.NoError(t, err)
	require.False(t, more)
}

func TestNextPageIndexCursorMissingMarkerStops(t *testing.T) {
	next := NextPageIndexCursor(".shw_more", "true")

	_, more, err := next(`<div>fragment without marker</div>`)
	require.NoError(t, err)
	require.False(t, more)
}
