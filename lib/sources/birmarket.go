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
	birmarketBase     = "https://birmarket.az"
	birmarketCategory = birmarketBase + "/categories/17-planshetler"
)

func Birmarket() Spec {
	return Spec{
		Source:      dataset.SourceBirmarket,
		Concurrency: 3,
		Delay:       time.Second,
		Strategy: func() paginate.Strategy {
			return paginate.FixedPages{
				Request: func(page int) fetch.Descriptor {
					u := birmarketCategory
					if page > 1 {
						u = fmt.Sprintf("%s?page=%d", birmarketCategory, page)
					}
					return htmlGet(u, birmarketBase+"/")
				},
				LastPage: paginate.MaxPageNumber(
					".MPProductPagination-PageItem a[href]", "href", `[?&]page=(\d+)`),
			}
		},
		Mapping: extract.Mapping{
			ItemSelector: ".MPProductItem",
			BaseURL:      birmarketBase,
			Fields: map[string]extract.Rule{
				"product_id": {Attr: "data-product-id"},
				"name": {
					Selector: ".MPTitle",
					Else:     &extract.Rule{Selector: "a[href]", Attr: "title"},
				},
				"price_current": {Selector: `[data-info="item-desc-price-new"]`, Clean: "price"},
				"price_old":     {Selector: `[data-info="item-desc-price-old"]`, Clean: "price"},
				"discount_pct":  {Selector: ".MPProductItem-Discount", Clean: "percent"},
				// financing label reads "7.05 ₼ x 24 ay"
				"installment_monthly": {Selector: ".MPInstallment", Clean: "installment_monthly"},
				"installment_term":    {Selector: ".MPInstallment", Clean: "installment_term"},
				"url":                 {Selector: "a[href]", Attr: "href"},
				"image_url": {
					Selector: "picture source[srcset]", Attr: "srcset", Pattern: `^([^?\s]+)`,
					Else: &extract.Rule{Selector: "img", Attr: "src", Pattern: `^([^?\s]+)`},
				},
			},
			IdentityFields: []string{"product_id", "url"},
		},
		Renames: dataset.RenameTable{},
	}
}
