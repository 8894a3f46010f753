package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"tabwatch/lib/extract"
)

func rec(source Source, id string, price float64, page int) CanonicalRecord {
	return CanonicalRecord{
		Source:       source,
		ProductID:    id,
		PriceCurrent: &price,
		Page:         page,
	}
}

func TestDedupLastSeenWinsKeepsFirstPosition(t *testing.T) {
	in := []CanonicalRecord{
		rec(SourceKontakt, "a", 100, 1),
		rec(SourceKontakt, "b", 200, 1),
		rec(SourceKontakt, "a", 90, 2),
		rec(SourceKontakt, "c", 300, 2),
	}

	out := Dedup(in)
	require.Len(t, out, 3)
	require.Equal(t, "a", out[0].ProductID)
	require.Equal(t, 90.0, *out[0].PriceCurrent)
	require.Equal(t, 2, out[0].Page)
	require.Equal(t, "b", out[1].ProductID)
	require.Equal(t, "c", out[2].ProductID)
}

func TestDedupIsIdempotent(t *testing.T) {
	in := []CanonicalRecord{
		rec(SourceKontakt, "a", 100, 1),
		rec(SourceKontakt, "a", 90, 2),
		rec(SourceKontakt, "b", 200, 3),
	}

	once := Dedup(in)
	twice := Dedup(once)
	require.Equal(t, once, twice)
}

func TestDedupKeepsIdentitylessRecords(t *testing.T) {
	in := []CanonicalRecord{
		{Source: SourceKontakt},
		{Source: SourceKontakt},
	}
	require.Len(t, Dedup(in), 2)
}

func TestUnifyAppliesRenamesAndParsesNumerics(t *testing.T) {
	raw := []extract.RawRecord{{
		"title":        "Tab A9",
		"price":        "259.99",
		"code":         "SKU-1",
		"availability": "true",
		"rating":       "4.5",
		"quantity":     "3",
		"page":         "2",
	}}
	renames := RenameTable{
		"title":        "name",
		"price":        "price_current",
		"code":         "product_id",
		"availability": "in_stock",
	}

	out := Unify(SourceIrshad, raw, renames)
	require.Len(t, out, 1)

	price := 259.99
	rating := 4.5
	quantity := 3
	want := CanonicalRecord{
		Source:       SourceIrshad,
		Name:         "Tab A9",
		ProductID:    "SKU-1",
		PriceCurrent: &price,
		InStock:      TriTrue,
		Rating:       &rating,
		Quantity:     &quantity,
		Page:         2,
	}
	require.Empty(t, cmp.Diff(want, out[0]))
}

func TestUnifyLeavesUnparseableNumericsAbsent(t *testing.T) {
	raw := []extract.RawRecord{{
		"name":          "Tab",
		"price_current": "qiymət soruşun",
	}}

	out := Unify(SourceKontakt, raw, RenameTable{})
	require.Len(t, out, 1)
	require.Nil(t, out[0].PriceCurrent)
	require.Equal(t, "Tab", out[0].Name)
}

func TestCombineEnforcesCanonicalSourceOrder(t *testing.T) {
	results := []SourceResult{
		{Source: SourceWTAz, Records: []CanonicalRecord{rec(SourceWTAz, "w1", 1, 1)}},
		{Source: SourceKontakt, Records: []CanonicalRecord{rec(SourceKontakt, "k1", 2, 1)}},
		{Source: SourceBakuElectronics, Records: []CanonicalRecord{rec(SourceBakuElectronics, "b1", 3, 1)}},
	}

	out := Combine(results)
	require.Len(t, out, 3)
	require.Equal(t, SourceBakuElectronics, out[0].Source)
	require.Equal(t, SourceKontakt, out[1].Source)
	require.Equal(t, SourceWTAz, out[2].Source)
}

func TestCombineByteIdenticalAcrossRuns(t *testing.T) {
	results := []SourceResult{
		{Source: SourceTapAz, Records: []CanonicalRecord{rec(SourceTapAz, "t1", 5, 1)}},
		{Source: SourceIrshad, Records: []CanonicalRecord{rec(SourceIrshad, "i1", 6, 1)}},
	}
	reversed := []SourceResult{results[1], results[0]}

	var a, b bytes.Buffer
	require.NoError(t, WriteCSV(&a, Combine(results)))
	require.NoError(t, WriteCSV(&b, Combine(reversed)))
	require.Equal(t, a.Bytes(), b.Bytes())
}

func TestCombineIgnoresMissingSources(t *testing.T) {
	out := Combine([]SourceResult{
		{Source: SourceKontakt, Records: nil},
	})
	require.Empty(t, out)
}

func TestWriteCSVHeaderAndCells(t *testing.T) {
	price := 959.0
	term := "24 ay"
	records := []CanonicalRecord{{
		Source:          SourceBirmarket,
		Name:            "Tab S9",
		ProductID:       "p-1",
		PriceCurrent:    &price,
		InstallmentTerm: term,
		InStock:         TriTrue,
		Page:            2,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, strings.Join(Header, ","), lines[0])
	require.Contains(t, lines[1], "birmarket.az,Tab S9,p-1")
	require.Contains(t, lines[1], "959")
	require.Contains(t, lines[1], "24 ay")
}

func TestReadCSVRestoresWrittenRecords(t *testing.T) {
	price := 1899.99
	old := 2099.0
	rating := 4.7
	reviews := 12
	records := []CanonicalRecord{
		{
			Source:          SourceKontakt,
			Name:            "Tab S9 FE",
			SKU:             "sku-9",
			PriceCurrent:    &price,
			PriceOld:        &old,
			InstallmentTerm: "18 ay",
			InStock:         TriTrue,
			Rating:          &rating,
			ReviewCount:     &reviews,
			URL:             "https://kontakt.az/p/tab-s9-fe",
			Page:            3,
		},
		rec(SourceKontakt, "p-2", 259.5, 1),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(records, got))
}

func TestReadCSVRejectsSourcelessFile(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("name,url\nTab,https://x\n"))
	require.Error(t, err)
}

func TestSourcesOrderIsStable(t *testing.T) {
	require.Equal(t, []Source{
		SourceBakuElectronics, SourceBirmarket, SourceByTelecom,
		SourceIrshad, SourceKontakt, SourceMGStore,
		SourceSmartElectronics, SourceSoliton, SourceTapAz,
		SourceTexnohome, SourceWTAz,
	}, Sources())
}
