// Package sources holds the declarative crawl specs for every
// storefront: endpoint descriptors, pagination strategy, extraction
// mapping, rename table and governor tuning. The engine itself lives
// in lib/paginate and lib/extract; files here are data.
package sources

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dario.cat/mergo"

	"tabwatch/lib/configutil"
	"tabwatch/lib/dataset"
	"tabwatch/lib/extract"
	"tabwatch/lib/fetch"
	"tabwatch/lib/paginate"
)

// Spec declares everything the engine needs to crawl one storefront.
type Spec struct {
	Source dataset.Source
	// Concurrency and Delay tune the source's retrieval governor.
	Concurrency int
	Delay       time.Duration
	// Strategy builds a fresh pagination walk. A new one is constructed
	// per run because some walks carry state (cursor step counters).
	Strategy func() paginate.Strategy
	// Mapping is the extraction contract applied to every page.
	Mapping extract.Mapping
	// Renames maps source-native field names onto the canonical schema.
	Renames dataset.RenameTable
}

// All returns every built-in source spec in the canonical combine
// order.
func All() []Spec {
	return []Spec{
		BakuElectronics(),
		Birmarket(),
		ByTelecom(),
		Irshad(),
		Kontakt(),
		MGStore(),
		SmartElectronics(),
		Soliton(),
		TapAz(),
		Texnohome(),
		WTAz(),
	}
}

// ByName looks a built-in spec up by its source domain.
func ByName(name string) (Spec, bool) {
	for _, s := range All() {
		if string(s.Source) == name {
			return s, true
		}
	}
	return Spec{}, false
}

// Override is the externally configurable portion of a spec: a json5
// file per source lets operators retune the governor or patch an
// extraction mapping after a site redesign without a rebuild.
type Override struct {
	Concurrency int              `json:"concurrency"`
	DelayMS     int              `json:"delay_ms"`
	Mapping     *extract.Mapping `json:"mapping"`
}

// LoadOverrides applies "<source>.json5" files from dir on top of the
// given specs. Missing files are fine; a malformed one is an error.
func LoadOverrides(dir string, specs []Spec) ([]Spec, error) {
	out := make([]Spec, len(specs))
	copy(out, specs)
	for i, spec := range out {
		name := filepath.Join(dir, string(spec.Source)+".json5")
		ov, err := configutil.ReadConfig[Override](name)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("override for %s: %w", spec.Source, err)
		}
		if ov.Concurrency > 0 {
			out[i].Concurrency = ov.Concurrency
		}
		if ov.DelayMS > 0 {
			out[i].Delay = time.Duration(ov.DelayMS) * time.Millisecond
		}
		if ov.Mapping != nil {
			merged := out[i].Mapping
			if err := mergo.Merge(&merged, *ov.Mapping, mergo.WithOverride); err != nil {
				return nil, fmt.Errorf("override for %s: %w", spec.Source, err)
			}
			out[i].Mapping = merged
		}
	}
	return out, nil
}

const (
	acceptHTML     = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptAny      = "*/*"
	acceptLanguage = "az,en-US;q=0.9,en;q=0.8,ru;q=0.7"
)

func htmlGet(rawURL, referer string) fetch.Descriptor {
	return fetch.Descriptor{
		Method: "GET",
		URL:    rawURL,
		Headers: map[string]string{
			"Accept":          acceptHTML,
			"Accept-Language": acceptLanguage,
			"Referer":         referer,
		},
	}
}
