package sources

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"tabwatch/lib/dataset"
	"tabwatch/lib/extract"
	"tabwatch/lib/fetch"
	"tabwatch/lib/paginate"
)

const (
	bakuBase        = "https://www.bakuelectronics.az"
	bakuListing     = bakuBase + "/az/catalog/telefonlar-qadcetler/plansetler"
	bakuProductBase = bakuBase + "/az/mehsullar/"
	bakuDefaultSize = 18
)

var (
	bakuBuildID  = regexp.MustCompile(`"buildId":"([^"]+)"`)
	bakuNextData = regexp.MustCompile(`(?s)<script id="__NEXT_DATA__" type="application/json">(.*?)</script>`)
)

// BakuElectronics is a Next.js storefront: data pages live under
// /_next/data/{buildId}/... and the buildId changes on every deploy, so
// it is read fresh from the listing HTML each run. Page 1 is only
// served embedded in that same HTML.
func BakuElectronics() Spec {
	return Spec{
		Source:      dataset.SourceBakuElectronics,
		Concurrency: 3,
		Delay:       time.Second,
		Strategy: func() paginate.Strategy {
			return paginate.BuildID{
				Source:        string(dataset.SourceBakuElectronics),
				Bootstrap:     htmlGet(bakuListing, bakuBase+"/"),
				Pattern:       bakuBuildID,
				EmitBootstrap: true,
				Inner:         bakuInner,
			}
		},
		Mapping: extract.Mapping{
			BlobPattern: bakuNextData.String(),
			ItemsPaths: []string{
				"props.pageProps.products.products.items",
				"pageProps.products.products.items",
			},
			Fields: map[string]extract.Rule{
				"name":       {Path: "name"},
				"product_id": {Path: "id"},
				"sku":        {Path: "product_code"},
				"price_current": {
					Path: "discounted_price",
					Else: &extract.Rule{Path: "price"},
				},
				"price_old":           {Path: "price"},
				"discount_amount":     {Path: "discount"},
				"installment_monthly": {Path: "perMonth.price"},
				"installment_term":    {Path: "perMonth.month", Clean: "term"},
				"quantity":            {Path: "quantity"},
				"review_count":        {Path: "reviewCount"},
				"rating":              {Path: "rate"},
				"is_online":           {Path: "is_online"},
				"campaign":            {Path: "campaign_widgets.#.title", Clean: "list"},
				"url":                 {Path: "slug", Prefix: bakuProductBase},
				"image_url":           {Path: "image"},
			},
			IdentityFields: []string{"product_id", "url"},
		},
		Renames: dataset.RenameTable{"campaign": "special_offer"},
	}
}

// bakuInner reads the declared item total and page size out of the
// bootstrap document's embedded payload and fans out the remaining data
// pages against the versioned endpoint.
func bakuInner(buildID, bootstrapBody string) (paginate.Strategy, error) {
	groups := bakuNextData.FindStringSubmatch(bootstrapBody)
	if len(groups) < 2 {
		return nil, &extract.SchemaDriftError{
			Source: string(dataset.SourceBakuElectronics),
			Field:  "__NEXT_DATA__",
			Page:   1,
		}
	}
	inner := gjson.Get(groups[1], "props.pageProps.products.products")

	total := int(inner.Get("total").Int())
	size := int(inner.Get("size").Int())
	if size == 0 {
		size = bakuDefaultSize
	}
	if total == 0 {
		return paginate.PageRange{}, nil
	}

	last := (total + size - 1) / size
	dataURL := fmt.Sprintf("%s/_next/data/%s/az/catalog/telefonlar-qadcetler/plansetler.json", bakuBase, buildID)
	return paginate.PageRange{
		From: 2,
		To:   last,
		Request: func(page int) fetch.Descriptor {
			return fetch.Descriptor{
				Method: "GET",
				URL:    dataURL,
				Query: url.Values{
					"slug": {"telefonlar-qadcetler", "plansetler"},
					"page": {strconv.Itoa(page)},
				},
				Headers: map[string]string{
					"Accept":          acceptAny,
					"Accept-Language": acceptLanguage,
					"Referer":         bakuListing,
					"x-nextjs-data":   "1",
				},
			}
		},
	}, nil
}
