package sources

import (
	"net/url"
	"strconv"
	"time"

	"tabwatch/lib/dataset"
	"tabwatch/lib/extract"
	"tabwatch/lib/fetch"
	"tabwatch/lib/paginate"
)

const (
	solitonBase      = "https://soliton.az"
	solitonAPI       = solitonBase + "/api/products"
	solitonSlug      = "plansetler"
	solitonBatchSize = 24
)

// Soliton exposes a JSON catalog API paged by item offset, declaring
// the total item count in every response.
func Soliton() Spec {
	return Spec{
		Source:      dataset.SourceSoliton,
		Concurrency: 3,
		Delay:       time.Second,
		Strategy: func() paginate.Strategy {
			return paginate.OffsetBatch{
				BatchSize: solitonBatchSize,
				Request: func(offset int) fetch.Descriptor {
					return fetch.Descriptor{
						Method: "GET",
						URL:    solitonAPI,
						Query: url.Values{
							"category": {solitonSlug},
							"offset":   {strconv.Itoa(offset)},
							"limit":    {strconv.Itoa(solitonBatchSize)},
						},
						Headers: map[string]string{
							"Accept":          acceptAny,
							"Accept-Language": acceptLanguage,
							"Referer":         solitonBase + "/",
						},
					}
				},
				Total: paginate.TotalFromJSON("total"),
			}
		},
		Mapping: extract.Mapping{
			ItemsPaths: []string{"items", "data.items"},
			Fields: map[string]extract.Rule{
				"name":          {Path: "name"},
				"product_id":    {Path: "id"},
				"brand_id":      {Path: "brand_id"},
				"price_current": {Path: "price", Clean: "price"},
				"price_old":     {Path: "old_price", Clean: "price"},
				"discount_pct":  {Path: "discount_percent"},
				"in_stock":      {Path: "in_stock", Clean: "stock"},
				"url":           {Path: "slug", Prefix: solitonBase + "/az/mehsul/"},
				"image_url":     {Path: "image"},
			},
			IdentityFields: []string{"product_id", "url"},
		},
		Renames: dataset.RenameTable{"brand_id": "brand"},
	}
}
