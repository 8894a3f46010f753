// Package dataset normalizes per-source raw records into one canonical
// schema, deduplicates them, and combines all sources into a single
// master table.
package dataset

// Source identifies one of the scraped storefronts by its domain.
type Source string

const (
	SourceBakuElectronics  Source = "bakuelectronics.az"
	SourceBirmarket        Source = "birmarket.az"
	SourceByTelecom        Source = "bytelecom.az"
	SourceIrshad           Source = "irshad.az"
	SourceKontakt          Source = "kontakt.az"
	SourceMGStore          Source = "mgstore.az"
	SourceSmartElectronics Source = "smartelectronics.az"
	SourceSoliton          Source = "soliton.az"
	SourceTapAz            Source = "tap.az"
	SourceTexnohome        Source = "texnohome.az"
	SourceWTAz             Source = "w-t.az"
)

// Sources returns every known source in the fixed order used for
// combining. The master table is always concatenated in this order so
// unchanged inputs produce byte-identical output.
func Sources() []Source {
	return []Source{
		SourceBakuElectronics,
		SourceBirmarket,
		SourceByTelecom,
		SourceIrshad,
		SourceKontakt,
		SourceMGStore,
		SourceSmartElectronics,
		SourceSoliton,
		SourceTapAz,
		SourceTexnohome,
		SourceWTAz,
	}
}

// TriState is a three-valued boolean flag. The empty string means the
// source did not report the value.
type TriState string

const (
	TriUnknown TriState = ""
	TriTrue    TriState = "true"
	TriFalse   TriState = "false"
)

// CanonicalRecord is one product listing in the unified schema, the
// superset union of every source's fields. Numeric fields are pointers
// so "absent" stays distinguishable from zero; term and label fields
// keep the source's human-readable text ("24 ay").
type CanonicalRecord struct {
	Source Source

	Name      string
	ProductID string
	SKU       string
	Brand     string
	Category  string

	PriceCurrent   *float64
	PriceOld       *float64
	DiscountPct    *float64
	DiscountAmount *float64

	Installment6m          *float64
	Installment12m         *float64
	Installment18m         *float64
	InstallmentMonthly     *float64
	InstallmentTerm        string
	Installment            string
	InstallmentActiveTerm  string
	InstallmentActivePrice *float64

	InStock  TriState
	IsNew    TriState
	IsOnline TriState

	Quantity    *int
	ReviewCount *int
	Rating      *float64

	SpecialOffer string
	Region       string
	UpdatedAt    string
	Status       string
	Kinds        string
	ShopID       string

	URL      string
	ImageURL string

	// Page is the index of the page the record was extracted from,
	// used to order last-seen-wins deduplication.
	Page int
}

// Identity returns the key records are deduplicated on: the first
// non-empty of product id, SKU, URL and name.
func (r CanonicalRecord) Identity() string {
	for _, v := range []string{r.ProductID, r.SKU, r.URL, r.Name} {
		if v != "" {
			return v
		}
	}
	return ""
}
