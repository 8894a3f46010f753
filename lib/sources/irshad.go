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
	irshadBase      = "https://irshad.az"
	irshadAPI       = irshadBase + "/api/v1/products"
	irshadSlug      = "plansetler"
	irshadBatchSize = 24
)

// Irshad's JSON API reports availability in az-language tokens ("var",
// "yoxdur") rather than booleans.
func Irshad() Spec {
	return Spec{
		Source:      dataset.SourceIrshad,
		Concurrency: 3,
		Delay:       time.Second,
		Strategy: func() paginate.Strategy {
			return paginate.OffsetBatch{
				BatchSize: irshadBatchSize,
				Request: func(offset int) fetch.Descriptor {
					return fetch.Descriptor{
						Method: "GET",
						URL:    irshadAPI,
						Query: url.Values{
							"category_slug": {irshadSlug},
							"offset":        {strconv.Itoa(offset)},
							"limit":         {strconv.Itoa(irshadBatchSize)},
						},
						Headers: map[string]string{
							"Accept":          acceptAny,
							"Accept-Language": acceptLanguage,
							"Referer":         irshadBase + "/",
						},
					}
				},
				Total: paginate.TotalFromJSON("total"),
			}
		},
		Mapping: extract.Mapping{
			ItemsPaths: []string{"data.items", "items"},
			Fields: map[string]extract.Rule{
				"name":          {Path: "name"},
				"code":          {Path: "code"},
				"product_type":  {Path: "product_type"},
				"price_current": {Path: "price", Clean: "price"},
				"price_old":     {Path: "old_price", Clean: "price"},
				"discount_pct":  {Path: "discount_percent"},
				"availability":  {Path: "availability", Clean: "stock"},
				"url":           {Path: "slug", Prefix: irshadBase + "/az/mehsullar/"},
				"image_url":     {Path: "image"},
			},
			IdentityFields: []string{"code", "url"},
		},
		Renames: dataset.RenameTable{
			"code":         "product_id",
			"availability": "in_stock",
			"product_type": "category",
		},
	}
}
