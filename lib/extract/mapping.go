package extract

// Rule declares how one canonical-bound field is pulled out of an item.
// Exactly one extraction shape applies per rule:
//
//   - Selector (+Attr or text) against the item's markup,
//   - Path, a gjson path into the item's JSON (or into a value produced
//     by Selector/Attr, for JSON blobs embedded in attributes),
//   - Pattern, a regex whose first capture group is taken from whatever
//     text the previous steps produced.
//
// Rules are declarative data: they round-trip through json5 so a mapping
// can live in external configuration and survive site redesigns without
// engine changes.
type Rule struct {
	Selector string `json:"selector,omitempty"`
	Attr     string `json:"attr,omitempty"`
	// MatchText narrows Selector to the first match whose text matches
	// this regex (for option lists like "6 ay" / "12 ay" / "18 ay").
	MatchText string `json:"match_text,omitempty"`
	Path      string `json:"path,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
	Clean     string `json:"clean,omitempty"`
	// All collects every Selector match instead of the first, joining
	// the non-empty values with "; " (badge and label lists).
	All bool `json:"all,omitempty"`
	// Exists resolves to "true"/"false" by Selector presence alone.
	Exists bool `json:"exists,omitempty"`
	// Prefix is prepended to a non-empty resolved value (slug fields
	// that need a product URL base).
	Prefix string `json:"prefix,omitempty"`
	// Else is tried when this rule resolves to an empty value.
	Else *Rule `json:"else,omitempty"`
	// Required marks the rule structural: failing to resolve it (and
	// every Else fallback) is schema drift, not an empty value.
	Required bool `json:"required,omitempty"`
}

// Mapping is one source's declarative extraction contract.
type Mapping struct {
	// ItemSelector scopes HTML bodies to one product card per match.
	ItemSelector string `json:"item_selector,omitempty"`
	// ItemsPaths are gjson paths tried in order to locate the items
	// array in JSON bodies.
	ItemsPaths []string `json:"items_paths,omitempty"`
	// BlobPattern, when set, extracts an embedded JSON document (first
	// capture group) out of an HTML body before ItemsPaths apply.
	BlobPattern string `json:"blob_pattern,omitempty"`
	// Fields maps source-native field names to extraction rules.
	Fields map[string]Rule `json:"fields"`
	// IdentityFields are checked in order; a record resolving none of
	// them has no identity and is skipped.
	IdentityFields []string `json:"identity_fields"`
	// BaseURL absolutizes relative hrefs and image sources.
	BaseURL string `json:"base_url,omitempty"`
}
