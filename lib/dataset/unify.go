package dataset

import (
	"log/slog"
	"strconv"
	"strings"

	"tabwatch/lib/extract"
)

// RenameTable maps source-specific field names to canonical ones.
// Unrenamed fields pass through under their own name.
type RenameTable map[string]string

// Unify converts raw extracted records into the canonical schema:
// renames fields, parses numerics, stamps the source. Unparseable
// numeric values are logged and left absent rather than failing the
// source.
func Unify(source Source, raw []extract.RawRecord, renames RenameTable) []CanonicalRecord {
	out := make([]CanonicalRecord, 0, len(raw))
	for _, rr := range raw {
		rec := CanonicalRecord{Source: source}
		for key, value := range rr {
			if canonical, ok := renames[key]; ok {
				key = canonical
			}
			assign(&rec, source, key, value)
		}
		out = append(out, rec)
	}
	return out
}

func assign(rec *CanonicalRecord, source Source, key, value string) {
	if value == "" && key != "page" {
		return
	}
	switch key {
	case "name":
		rec.Name = value
	case "product_id":
		rec.ProductID = value
	case "sku":
		rec.SKU = value
	case "brand":
		rec.Brand = value
	case "category":
		rec.Category = value
	case "price_current":
		rec.PriceCurrent = parseFloat(source, key, value)
	case "price_old":
		rec.PriceOld = parseFloat(source, key, value)
	case "discount_pct":
		rec.DiscountPct = parseFloat(source, key, value)
	case "discount_amount":
		rec.DiscountAmount = parseFloat(source, key, value)
	case "installment_6m":
		rec.Installment6m = parseFloat(source, key, value)
	case "installment_12m":
		rec.Installment12m = parseFloat(source, key, value)
	case "installment_18m":
		rec.Installment18m = parseFloat(source, key, value)
	case "installment_monthly":
		rec.InstallmentMonthly = parseFloat(source, key, value)
	case "installment_term":
		rec.InstallmentTerm = value
	case "installment":
		rec.Installment = value
	case "installment_active_term":
		rec.InstallmentActiveTerm = value
	case "installment_active_price":
		rec.InstallmentActivePrice = parseFloat(source, key, value)
	case "in_stock":
		rec.InStock = tri(value)
	case "is_new":
		rec.IsNew = tri(value)
	case "is_online":
		rec.IsOnline = tri(value)
	case "quantity":
		rec.Quantity = parseInt(source, key, value)
	case "rating":
		rec.Rating = parseFloat(source, key, value)
	case "review_count":
		rec.ReviewCount = parseInt(source, key, value)
	case "kinds":
		rec.Kinds = value
	case "special_offer":
		rec.SpecialOffer = value
	case "region":
		rec.Region = value
	case "updated_at":
		rec.UpdatedAt = value
	case "status":
		rec.Status = value
	case "shop_id":
		rec.ShopID = value
	case "url":
		rec.URL = value
	case "image_url":
		rec.ImageURL = value
	case "page":
		if n := parseInt(source, key, value); n != nil {
			rec.Page = *n
		}
	default:
		slog.Debug("dropping field outside the canonical schema",
			"source", source, "field", key)
	}
}

func tri(value string) TriState {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return TriTrue
	case "false", "0", "no":
		return TriFalse
	}
	return TriUnknown
}

func parseFloat(source Source, key, value string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		slog.Warn("unparseable numeric field",
			"source", source, "field", key, "value", value)
		return nil
	}
	return &f
}

func parseInt(source Source, key, value string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		// some sources report integral counts as floats
		if f, ferr := strconv.ParseFloat(strings.TrimSpace(value), 64); ferr == nil {
			n = int(f)
			return &n
		}
		slog.Warn("unparseable integer field",
			"source", source, "field", key, "value", value)
		return nil
	}
	return &n
}
