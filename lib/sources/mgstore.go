package sources

import (
	"fmt"
	"time"

	"tabwatch/lib/dataset"
	"tabwatch/lib/extract"
	"tabwatch/lib/fetch"
	"tabwatch/lib/paginate"
)

const (
	mgstoreBase     = "https://mgstore.az"
	mgstoreCategory = mgstoreBase + "/az/plansetler"
)

func MGStore() Spec {
	return Spec{
		Source:      dataset.SourceMGStore,
		Concurrency: 3,
		Delay:       time.Second,
		Strategy: func() paginate.Strategy {
			return paginate.FixedPages{
				Request: func(page int) fetch.Descriptor {
					return htmlGet(fmt.Sprintf("%s?page=%d", mgstoreCategory, page), mgstoreBase+"/")
				},
				LastPage: paginate.MaxPageNumber(
					"ul.pagination a[href]", "href", `[?&]page=(\d+)`),
			}
		},
		Mapping: extract.Mapping{
			ItemSelector: ".product-card",
			BaseURL:      mgstoreBase,
			Fields: map[string]extract.Rule{
				"product_id": {
					Attr: "data-id",
					Else: &extract.Rule{Selector: "[data-product-id]", Attr: "data-product-id"},
				},
				"name":          {Selector: ".product-card__title"},
				"price_current": {Selector: ".product-card__price-current", Clean: "price"},
				"price_old":     {Selector: ".product-card__price-old", Clean: "price"},
				"discount_pct":  {Selector: ".product-card__discount", Clean: "percent"},
				"url":           {Selector: "a[href]", Attr: "href"},
				"image_url":     {Selector: ".product-card__image img", Attr: "src"},
			},
			IdentityFields: []string{"product_id", "url"},
		},
		Renames: dataset.RenameTable{},
	}
}
