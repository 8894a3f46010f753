package sources

import (
	"net/url"
	"time"

	"tabwatch/lib/dataset"
	"tabwatch/lib/extract"
	"tabwatch/lib/fetch"
	"tabwatch/lib/paginate"
)

const (
	smartBase     = "https://smartelectronics.az"
	smartListing  = smartBase + "/az/smartfon-ve-aksesuarlar/plansetler"
	smartLoadMore = smartBase + "/az/Catalog/Products/LoadMoreVr/smartfon-ve-aksesuarlar/plansetler"
	smartPageSize = "9"
)

// SmartElectronics serves HTML fragments from a load-more endpoint
// paged by integer index. Each fragment embeds a hidden .shw_more
// marker that must be observed before the next index is requested, so
// the walk is a cursor chain rather than a fan-out.
func SmartElectronics() Spec {
	return Spec{
		Source:      dataset.SourceSmartElectronics,
		Concurrency: 3,
		Delay:       time.Second,
		Strategy: func() paginate.Strategy {
			prime := htmlGet(smartListing, smartBase+"/")
			return paginate.CursorChain{
				Prime: &prime,
				Request: func(cursor string) fetch.Descriptor {
					if cursor == "" {
						cursor = "0"
					}
					return fetch.Descriptor{
						Method: "GET",
						URL:    smartLoadMore,
						Query: url.Values{
							"pageIndex": {cursor},
							"pageSize":  {smartPageSize},
						},
						Headers: map[string]string{
							"Accept":          acceptAny,
							"Accept-Language": acceptLanguage,
							"Referer":         smartListing,
						},
					}
				},
				Next: paginate.NextPageIndexCursor(".shw_more", "true"),
			}
		},
		Mapping: extract.Mapping{
			ItemSelector: ".product_card",
			BaseURL:      smartBase,
			Fields: map[string]extract.Rule{
				"product_id": {
					Selector: "a.add-to-compare[href]", Attr: "href", Pattern: `/(\d+)$`,
					Else: &extract.Rule{Selector: ".product_price p[data-id]", Attr: "data-id"},
				},
				"category": {Selector: ".product_title span"},
				"name": {
					Selector: ".product_title p",
					Else:     &extract.Rule{Selector: "[data-product-name]", Attr: "data-product-name"},
				},
				"price_old":           {Selector: ".product_price span", Clean: "price"},
				"price_current":       {Selector: ".product_price p", Clean: "price"},
				"installment_monthly": {Selector: ".product_credit p[data-target]", Clean: "price"},
				"installment_term":    {Selector: ".product__credit_list_item.active", Clean: "term"},
				// the attribute is phrased as out-of-stock
				"in_stock":     {Selector: "[data-product-out-of-stock]", Attr: "data-product-out-of-stock", Clean: "negate"},
				"promo_labels": {Selector: ".product_percent .swiper-slide", All: true},
				"url":          {Selector: ".product_img > a[href]", Attr: "href"},
				"image_url":    {Selector: ".product_img img", Attr: "src"},
			},
			IdentityFields: []string{"product_id", "url"},
		},
		Renames: dataset.RenameTable{"promo_labels": "special_offer"},
	}
}
