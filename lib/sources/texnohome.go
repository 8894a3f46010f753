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
	texnohomeBase     = "https://texnohome.az"
	texnohomeCategory = texnohomeBase + "/plansetler"
)

func Texnohome() Spec {
	return Spec{
		Source:      dataset.SourceTexnohome,
		Concurrency: 3,
		Delay:       time.Second,
		Strategy: func() paginate.Strategy {
			return paginate.FixedPages{
				Request: func(page int) fetch.Descriptor {
					return htmlGet(fmt.Sprintf("%s?page=%d", texnohomeCategory, page), texnohomeBase+"/")
				},
				LastPage: paginate.MaxPageNumber(
					".pagination a[href]", "href", `[?&]page=(\d+)`),
			}
		},
		Mapping: extract.Mapping{
			ItemSelector: ".products-grid .product-box",
			BaseURL:      texnohomeBase,
			Fields: map[string]extract.Rule{
				"product_id":    {Attr: "data-product-id"},
				"name":          {Selector: ".product-box__title"},
				"price_current": {Selector: ".price-new", Clean: "price"},
				"price_old":     {Selector: ".price-old", Clean: "price"},
				"labels":        {Selector: ".product-box__labels span", All: true},
				"in_stock":      {Selector: ".stock-status", Clean: "stock"},
				"url":           {Selector: "a[href]", Attr: "href"},
				"image_url":     {Selector: ".product-box__image img", Attr: "src"},
			},
			IdentityFields: []string{"product_id", "url"},
		},
		Renames: dataset.RenameTable{"labels": "special_offer"},
	}
}
