package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Header is the canonical column order of the master CSV. It never
// changes between runs so downstream diffs stay meaningful.
var Header = []string{
	"source", "name", "product_id", "sku", "brand", "category",
	"price_current", "price_old", "discount_pct", "discount_amount",
	"installment_6m", "installment_12m", "installment_18m",
	"installment_monthly", "installment_term", "installment",
	"installment_active_term", "installment_active_price",
	"in_stock", "is_new", "is_online",
	"quantity", "review_count", "rating",
	"special_offer", "region", "updated_at", "status", "kinds", "shop_id",
	"url", "image_url", "page",
}

// WriteCSV writes the header plus one row per record. Absent numerics
// become empty cells.
func WriteCSV(w io.Writer, recs []CanonicalRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, rec := range recs {
		if err := cw.Write(row(rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(r CanonicalRecord) []string {
	return []string{
		string(r.Source), r.Name, r.ProductID, r.SKU, r.Brand, r.Category,
		fcell(r.PriceCurrent), fcell(r.PriceOld),
		fcell(r.DiscountPct), fcell(r.DiscountAmount),
		fcell(r.Installment6m), fcell(r.Installment12m), fcell(r.Installment18m),
		fcell(r.InstallmentMonthly), r.InstallmentTerm, r.Installment,
		r.InstallmentActiveTerm, fcell(r.InstallmentActivePrice),
		string(r.InStock), string(r.IsNew), string(r.IsOnline),
		icell(r.Quantity), icell(r.ReviewCount), fcell(r.Rating),
		r.SpecialOffer, r.Region, r.UpdatedAt, r.Status, r.Kinds, r.ShopID,
		r.URL, r.ImageURL, strconv.Itoa(r.Page),
	}
}

// ReadCSV reads a table written by WriteCSV back into records. Columns
// are matched by header name, so a file carrying only a subset of the
// canonical columns still reads; the source column is mandatory.
func ReadCSV(r io.Reader) ([]CanonicalRecord, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading dataset header: %w", err)
	}
	sourceCol := -1
	for i, col := range header {
		if col == "source" {
			sourceCol = i
		}
	}
	if sourceCol < 0 {
		return nil, errors.New("dataset file has no source column")
	}

	var out []CanonicalRecord
	for {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading dataset row: %w", err)
		}
		rec := CanonicalRecord{Source: Source(cells[sourceCol])}
		for i, value := range cells {
			if i == sourceCol || i >= len(header) {
				continue
			}
			assign(&rec, rec.Source, header[i], value)
		}
		out = append(out, rec)
	}
	return out, nil
}

func fcell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func icell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
