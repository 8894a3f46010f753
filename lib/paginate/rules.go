package paginate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"tabwatch/lib/htmlutil"
)

// Pagination-control readers. These are small closures bound into source
// specs so the strategies themselves stay free of per-site knowledge.

// MaxPageNumber returns a LastPage func reading the highest page number
// referenced by a pagination control: every Selector match's attribute
// (or text, when attr is "") is run through pattern's first capture
// group and the maximum number wins. A missing control means a single
// page.
func MaxPageNumber(selector, attr, pattern string) func(string) (int, error) {
	re := regexp.MustCompile(pattern)
	return func(body string) (int, error) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			return 0, err
		}
		highest := 1
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			raw := ""
			if attr == "" {
				raw = htmlutil.CleanText(s.Text())
			} else {
				raw = s.AttrOr(attr, "")
			}
			groups := re.FindStringSubmatch(raw)
			if len(groups) < 2 {
				return
			}
			n, err := strconv.Atoi(groups[1])
			if err == nil && n > highest {
				highest = n
			}
		})
		return highest, nil
	}
}

// PageCountFromTotal returns a LastPage func deriving the page count
// from a displayed total item count ("248 məhsul") and a known page
// size, falling back to fallback when the counter is absent.
func PageCountFromTotal(selector string, perPage int, fallback func(string) (int, error)) func(string) (int, error) {
	digits := regexp.MustCompile(`\d+`)
	return func(body string) (int, error) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			return 0, err
		}
		text := htmlutil.CleanText(doc.Find(selector).First().Text())
		m := digits.FindString(text)
		if m == "" {
			if fallback != nil {
				return fallback(body)
			}
			return 1, nil
		}
		total, err := strconv.Atoi(m)
		if err != nil {
			return 0, err
		}
		return (total + perPage - 1) / perPage, nil
	}
}

// TotalFromJSON returns a Total func reading a declared item count at a
// gjson path.
func TotalFromJSON(path string) func(string) (int, error) {
	return func(body string) (int, error) {
		v := gjson.Get(body, path)
		if !v.Exists() {
			return 0, fmt.Errorf("total item count missing at %q", path)
		}
		return int(v.Int()), nil
	}
}

// CursorFromJSON returns a Next func reading a continuation token and
// has-more flag at gjson paths.
func CursorFromJSON(cursorPath, hasMorePath string) func(string) (string, bool, error) {
	return func(body string) (string, bool, error) {
		hasMore := gjson.Get(body, hasMorePath)
		if !hasMore.Exists() {
			return "", false, fmt.Errorf("has-more flag missing at %q", hasMorePath)
		}
		return gjson.Get(body, cursorPath).String(), hasMore.Bool(), nil
	}
}

// NextPageIndexCursor returns a Next func for fragment endpoints that
// paginate by an integer index and embed a has-more marker in the
// markup: the cursor for step N+1 is just N+1, but the marker must be
// observed before requesting it.
func NextPageIndexCursor(selector, trueToken string) func(string) (string, bool, error) {
	index := 0
	return func(body string) (string, bool, error) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			return "", false, err
		}
		el := doc.Find(selector).First()
		if el.Length() == 0 {
			// no marker at all: treat as the last page
			return "", false, nil
		}
		index++
		more := strings.EqualFold(htmlutil.CleanText(el.Text()), trueToken)
		return strconv.Itoa(index), more, nil
	}
}
