package sources

import (
	"time"

	"tabwatch/lib/dataset"
	"tabwatch/lib/extract"
	"tabwatch/lib/fetch"
	"tabwatch/lib/paginate"
)

const (
	wtazBase     = "https://www.w-t.az"
	wtazCategory = wtazBase + "/k3+plansetler"
)

// WTAz serves the whole category on one server-rendered page. Each card
// carries 6/12/18 month financing options as labeled radio inputs with
// the price in a data attribute.
func WTAz() Spec {
	return Spec{
		Source:      dataset.SourceWTAz,
		Concurrency: 1,
		Delay:       time.Second,
		Strategy: func() paginate.Strategy {
			return paginate.FixedPages{
				Request: func(int) fetch.Descriptor {
					return htmlGet(wtazCategory, wtazBase+"/")
				},
			}
		},
		Mapping: extract.Mapping{
			ItemSelector: ".filterProducts .item .productCard",
			BaseURL:      wtazBase,
			Fields: map[string]extract.Rule{
				"product_id": {Selector: "button.addToFavourite[data-id]", Attr: "data-id"},
				"name":       {Selector: ".productName"},
				"price":      {Selector: ".realPrice", Clean: "price"},
				"installment_6m": {
					Selector: "label.month[data-price]", MatchText: `^6\s*ay$`, Attr: "data-price",
				},
				"installment_12m": {
					Selector: "label.month[data-price]", MatchText: `^12\s*ay$`, Attr: "data-price",
				},
				"installment_18m": {
					Selector: "label.month[data-price]", MatchText: `^18\s*ay$`, Attr: "data-price",
				},
				"installment_active_term":  {Selector: "label.month.checked", Clean: "term"},
				"installment_active_price": {Selector: "label.month.checked", Attr: "data-price"},
				"campaign":                 {Selector: ".cashCampaign p, .labels p", All: true},
				"url":                      {Selector: "a.productUrl[href]", Attr: "href"},
				"image_url":                {Selector: ".productImage-img", Attr: "src"},
			},
			IdentityFields: []string{"product_id", "url"},
		},
		Renames: dataset.RenameTable{
			"price":    "price_current",
			"campaign": "special_offer",
		},
	}
}
