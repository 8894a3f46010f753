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
	bytelecomBase     = "https://bytelecom.az"
	bytelecomCategory = bytelecomBase + "/az/category/plansetler"
)

// ByTelecom renders its cards with Livewire; the product id only exists
// inside the wishlist toggle's wire:click expression.
func ByTelecom() Spec {
	return Spec{
		Source:      dataset.SourceByTelecom,
		Concurrency: 3,
		Delay:       time.Second,
		Strategy: func() paginate.Strategy {
			return paginate.FixedPages{
				Request: func(page int) fetch.Descriptor {
					return htmlGet(fmt.Sprintf("%s?page=%d", bytelecomCategory, page), bytelecomBase+"/")
				},
				LastPage: paginate.MaxPageNumber(
					"ul.pagination li button.page-link, ul.pagination li.page-item", "", `^(\d+)$`),
			}
		},
		Mapping: extract.Mapping{
			ItemSelector: ".categorised-products .product",
			BaseURL:      bytelecomBase,
			Fields: map[string]extract.Rule{
				"product_id": {
					Attr: "wire:click", Pattern: `toggleWishlist\((\d+)\)`,
					Else: &extract.Rule{
						Selector: "button.favourite-product", Attr: "wire:click",
						Pattern: `toggleWishlist\((\d+)\)`,
					},
				},
				"name":          {Selector: "a.product-name"},
				"price_old":     {Selector: ".prices h6.discount-price", Clean: "price"},
				"price_current": {Selector: ".prices h5.price", Clean: "price"},
				"badges":        {Selector: ".badge-item p", All: true},
				"is_new":        {Selector: ".new-product", Exists: true},
				"url":           {Selector: "a[href*='/az/products/']", Attr: "href"},
				"image_url":     {Selector: ".product-img img", Attr: "src"},
			},
			IdentityFields: []string{"product_id", "url"},
		},
		Renames: dataset.RenameTable{"badges": "special_offer"},
	}
}
