package extract

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"tabwatch/lib/htmlutil"
)

// RawRecord maps source-native field names to extracted values, exactly
// as one page yielded them. Canonical renames happen later, in the
// unifier.
type RawRecord map[string]string

// Result is one page's extraction outcome.
type Result struct {
	Records []RawRecord
	// Skipped counts records dropped for having no resolvable identity.
	Skipped int
}

var patternCache sync.Map // pattern string -> *regexp.Regexp

func compiled(pattern string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patternCache.Store(pattern, re)
	return re, nil
}

// Records applies a source mapping to one raw page body and returns the
// raw records it contains. A body with zero items is a valid empty
// result; a body on which a structural assumption fails is schema drift.
func Records(source string, pageIndex int, body string, m Mapping) (Result, error) {
	if m.ItemSelector != "" {
		return htmlRecords(source, pageIndex, body, m)
	}
	return jsonRecords(source, pageIndex, body, m)
}

func htmlRecords(source string, pageIndex int, body string, m Mapping) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return Result{}, &SchemaDriftError{Source: source, Field: "document", Page: pageIndex}
	}

	var out Result
	var drift error
	doc.Find(m.ItemSelector).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		rec := RawRecord{}
		for field, rule := range m.Fields {
			val, err := resolveHTML(item, rule)
			if err != nil {
				drift = &SchemaDriftError{Source: source, Field: field, Page: pageIndex}
				return false
			}
			rec[field] = finishValue(field, val, rule, m)
		}
		out.add(source, pageIndex, rec, m)
		return true
	})
	if drift != nil {
		return out, drift
	}
	return out, nil
}

func jsonRecords(source string, pageIndex int, body string, m Mapping) (Result, error) {
	doc := body
	if m.BlobPattern != "" {
		re, err := compiled(m.BlobPattern)
		if err != nil {
			return Result{}, err
		}
		// only some of a source's pages embed the blob (a bootstrap
		// HTML document vs plain JSON data pages); a non-match leaves
		// the body as-is and drift surfaces at the items paths below
		if groups := re.FindStringSubmatch(body); len(groups) >= 2 {
			doc = groups[1]
		}
	}

	var items gjson.Result
	found := false
	for _, path := range m.ItemsPaths {
		items = gjson.Get(doc, path)
		if items.Exists() {
			found = true
			break
		}
	}
	if !found {
		return Result{}, &SchemaDriftError{Source: source, Field: strings.Join(m.ItemsPaths, "|"), Page: pageIndex}
	}

	var out Result
	var drift error
	items.ForEach(func(_, item gjson.Result) bool {
		rec := RawRecord{}
		for field, rule := range m.Fields {
			val, err := resolveJSON(item, rule)
			if err != nil {
				drift = &SchemaDriftError{Source: source, Field: field, Page: pageIndex}
				return false
			}
			rec[field] = finishValue(field, val, rule, m)
		}
		out.add(source, pageIndex, rec, m)
		return true
	})
	if drift != nil {
		return out, drift
	}
	return out, nil
}

var errRuleUnresolved = &unresolvedError{}

type unresolvedError struct{}

func (*unresolvedError) Error() string { return "required rule unresolved" }

// resolveHTML walks the rule and its Else fallbacks until one yields a
// value. Required only fires once the whole chain came up empty.
func resolveHTML(item *goquery.Selection, rule Rule) (string, error) {
	for r := &rule; r != nil; r = r.Else {
		val, err := resolveHTMLOne(item, *r)
		if err != nil {
			return "", err
		}
		if val != "" {
			return val, nil
		}
	}
	if rule.Required {
		return "", errRuleUnresolved
	}
	return "", nil
}

func resolveHTMLOne(item *goquery.Selection, rule Rule) (string, error) {
	scope := item
	if rule.Selector != "" {
		scope = item.Find(rule.Selector)
		if rule.MatchText != "" {
			re, err := compiled(rule.MatchText)
			if err != nil {
				return "", err
			}
			scope = scope.FilterFunction(func(_ int, s *goquery.Selection) bool {
				return re.MatchString(htmlutil.CleanText(s.Text()))
			})
		}
		if rule.Exists {
			if scope.Length() > 0 {
				return "true", nil
			}
			return "false", nil
		}
		if rule.All {
			var parts []string
			scope.Each(func(_ int, s *goquery.Selection) {
				if t := htmlutil.CleanText(s.Text()); t != "" {
					parts = append(parts, t)
				}
			})
			return strings.Join(parts, "; "), nil
		}
		scope = scope.First()
		if scope.Length() == 0 {
			return "", nil
		}
	}

	var raw string
	if rule.Attr != "" {
		raw, _ = scope.Attr(rule.Attr)
	} else {
		raw = scope.Text()
	}

	return narrow(raw, rule)
}

// resolveJSON walks the rule and its Else fallbacks against one JSON
// item, same contract as resolveHTML.
func resolveJSON(item gjson.Result, rule Rule) (string, error) {
	for r := &rule; r != nil; r = r.Else {
		val, err := resolveJSONOne(item, *r)
		if err != nil {
			return "", err
		}
		if val != "" {
			return val, nil
		}
	}
	if rule.Required {
		return "", errRuleUnresolved
	}
	return "", nil
}

func resolveJSONOne(item gjson.Result, rule Rule) (string, error) {
	raw := item.Raw
	if rule.Path != "" {
		v := item.Get(rule.Path)
		if !v.Exists() {
			return "", nil
		}
		raw = v.String()
	}
	return narrowPattern(raw, rule)
}

// narrow applies the optional Path (for JSON blobs held in attributes)
// and Pattern steps to a value produced by the markup steps.
func narrow(raw string, rule Rule) (string, error) {
	if rule.Path != "" {
		v := gjson.Get(raw, rule.Path)
		if !v.Exists() {
			return "", nil
		}
		raw = v.String()
	}
	return narrowPattern(raw, rule)
}

func narrowPattern(raw string, rule Rule) (string, error) {
	if rule.Pattern == "" {
		return raw, nil
	}
	re, err := compiled(rule.Pattern)
	if err != nil {
		return "", err
	}
	groups := re.FindStringSubmatch(raw)
	if len(groups) < 2 {
		return "", nil
	}
	return groups[1], nil
}

func finishValue(field, val string, rule Rule, m Mapping) string {
	val = cleanValue(rule.Clean, val)
	if val == "" {
		return val
	}
	if rule.Prefix != "" && !strings.HasPrefix(val, "http") {
		return rule.Prefix + val
	}
	if (field == "url" || field == "image_url") && strings.HasPrefix(val, "/") && m.BaseURL != "" {
		val = m.BaseURL + val
	}
	return val
}

// add appends the record unless it lacks an identity, in which case it
// is counted and logged, never fatal.
func (r *Result) add(source string, pageIndex int, rec RawRecord, m Mapping) {
	identified := false
	for _, f := range m.IdentityFields {
		if rec[f] != "" {
			identified = true
			break
		}
	}
	if !identified {
		r.Skipped++
		slog.Warn("skipping record with no identity",
			"source", source,
			"page", pageIndex,
			"name", rec["name"],
		)
		return
	}
	rec["page"] = strconv.Itoa(pageIndex)
	r.Records = append(r.Records, rec)
}
