package sources

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tabwatch/lib/dataset"
	"tabwatch/lib/paginate"
)

func TestAllCoversEverySourceInCanonicalOrder(t *testing.T) {
	specs := All()
	canonical := dataset.Sources()
	require.Len(t, specs, len(canonical))
	for i, spec := range specs {
		require.Equal(t, canonical[i], spec.Source)
	}
}

func TestSpecsAreWellFormed(t *testing.T) {
	canonicalFields := make(map[string]bool, len(dataset.Header))
	for _, f := range dataset.Header {
		canonicalFields[f] = true
	}

	for _, spec := range All() {
		name := string(spec.Source)

		require.NotNil(t, spec.Strategy, name)
		require.NotNil(t, spec.Strategy(), name)
		require.NotEmpty(t, spec.Mapping.IdentityFields, name)
		require.NotEmpty(t, spec.Mapping.Fields, name)
		require.Positive(t, spec.Concurrency, name)
		require.Positive(t, spec.Delay, name)

		// exactly one item scope shape
		hasHTML := spec.Mapping.ItemSelector != ""
		hasJSON := len(spec.Mapping.ItemsPaths) > 0
		require.True(t, hasHTML != hasJSON, name)

		// every field must land on a canonical column after renames
		for field := range spec.Mapping.Fields {
			target := field
			if renamed, ok := spec.Renames[field]; ok {
				target = renamed
			}
			require.True(t, canonicalFields[target],
				"%s maps %q to non-canonical column %q", name, field, target)
		}
		for from, to := range spec.Renames {
			require.Contains(t, spec.Mapping.Fields, from, name)
			require.True(t, canonicalFields[to], name)
		}

		for _, identity := range spec.Mapping.IdentityFields {
			require.Contains(t, spec.Mapping.Fields, identity, name)
		}
	}
}

func TestStrategyConstructionIsFreshPerCall(t *testing.T) {
	spec, ok := ByName("smartelectronics.az")
	require.True(t, ok)

	// cursor walks carry step state; sharing one across runs would
	// resume mid-walk
	more := `<div class="shw_more" hidden>True</div>`
	first := spec.Strategy().(paginate.CursorChain)
	cursor, _, err := first.Next(more)
	require.NoError(t, err)
	require.Equal(t, "1", cursor)
	cursor, _, err = first.Next(more)
	require.NoError(t, err)
	require.Equal(t, "2", cursor)

	second := spec.Strategy().(paginate.CursorChain)
	cursor, _, err = second.Next(more)
	require.NoError(t, err)
	require.Equal(t, "1", cursor)
}

func TestByName(t *testing.T) {
	spec, ok := ByName("tap.az")
	require.True(t, ok)
	require.Equal(t, dataset.SourceTapAz, spec.Source)

	_, ok = ByName("unknown.example")
	require.False(t, ok)
}

func TestLoadOverridesRetunesGovernor(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(
		filepath.Join(dir, "kontakt.az.json5"),
		[]byte(`{concurrency: 1, delay_ms: 2500}`),
		0o644,
	)
	require.NoError(t, err)

	specs, err := LoadOverrides(dir, All())
	require.NoError(t, err)

	for _, spec := range specs {
		if spec.Source == dataset.SourceKontakt {
			require.Equal(t, 1, spec.Concurrency)
			require.Equal(t, 2500*time.Millisecond, spec.Delay)
		} else {
			require.Equal(t, time.Second, spec.Delay)
		}
	}
}

func TestLoadOverridesMissingFilesAreFine(t *testing.T) {
	specs, err := LoadOverrides(t.TempDir(), All())
	require.NoError(t, err)
	require.Len(t, specs, len(All()))
}
