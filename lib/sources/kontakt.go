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
	kontaktBase     = "https://kontakt.az"
	kontaktCategory = kontaktBase + "/plansetler-ve-elektron-kitablar/plansetler"
	kontaktPerPage  = 20
)

// Kontakt lists paged catalog HTML. Most product data rides in a
// data-gtm JSON blob on each card, with DOM fallbacks for cards the
// blob is missing or incomplete on.
func Kontakt() Spec {
	return Spec{
		Source:      dataset.SourceKontakt,
		Concurrency: 3,
		Delay:       time.Second,
		Strategy: func() paginate.Strategy {
			return paginate.FixedPages{
				Request: func(page int) fetch.Descriptor {
					return htmlGet(fmt.Sprintf("%s?p=%d", kontaktCategory, page), kontaktBase+"/")
				},
				LastPage: paginate.PageCountFromTotal(
					".catalog__count", kontaktPerPage,
					paginate.MaxPageNumber("a[href*='?p='], a[href*='&p=']", "href", `[?&]p=(\d+)`),
				),
			}
		},
		Mapping: extract.Mapping{
			ItemSelector: ".product-item",
			BaseURL:      kontaktBase,
			Fields: map[string]extract.Rule{
				"name": {
					Attr: "data-gtm", Path: "item_name",
					Else: &extract.Rule{Selector: ".prodItem__title"},
				},
				"brand": {Attr: "data-gtm", Path: "item_brand"},
				"sku": {
					Attr: "data-gtm", Path: "item_id",
					Else: &extract.Rule{Attr: "data-sku"},
				},
				"price_current": {
					Attr: "data-gtm", Path: "price", Clean: "price",
					Else: &extract.Rule{Selector: ".prodItem__prices b"},
				},
				"price_old": {Selector: ".prodItem__prices i", Clean: "price"},
				"discount_amount": {Attr: "data-gtm", Path: "discount"},
				"discount_pct": {
					Selector: ".prodItem__img .label-image-wrapper, [class*='discount'], [class*='label']",
					Clean:    "percent",
				},
				"installment": {Selector: ".prodItem__prices span"},
				"category":    {Attr: "data-gtm", Path: "item_category"},
				"url": {
					Selector: "a[href]:not([href*='compare']):not([href*='wishlist']):not([href*='cart'])",
					Attr:     "href",
				},
				"image_url": {
					Selector: "img[src*='media/catalog']", Attr: "src",
					Else: &extract.Rule{Selector: "img[data-src*='media/catalog']", Attr: "data-src"},
				},
			},
			IdentityFields: []string{"sku", "url"},
		},
		Renames: dataset.RenameTable{},
	}
}
