package sources

import (
	"time"

	"tabwatch/lib/dataset"
	"tabwatch/lib/extract"
	"tabwatch/lib/fetch"
	"tabwatch/lib/paginate"
)

const (
	tapazBase     = "https://tap.az"
	tapazGraphQL  = tapazBase + "/graphql"
	tapazListing  = tapazBase + "/elanlar/elektronika/plansetler"
	tapazCategory = "Z2lkOi8vdGFwL0NhdGVnb3J5LzYxNg" // gid://tap/Category/616
	tapazPageSize = 36
)

const tapazQuery = `fragment AdBaseFields on Ad {
  id
  title
  price
  updatedAt
  region
  path
  kinds
  legacyResourceId
  isBookmarked
  shop { id __typename }
  photo { url __typename }
  status
  __typename
}

query GetAds_LATEST(
  $adKind: AdKindEnum, $orderType: AdOrderEnum, $keywords: String,
  $first: Int, $after: String, $source: SourceEnum!,
  $filters: AdFilterInput, $keywordsSource: KeywordSourceEnum,
  $sourceLink: String
) {
  ads(
    adKind: $adKind
    first: $first
    after: $after
    source: $source
    orderType: $orderType
    keywords: $keywords
    filters: $filters
    keywordsSource: $keywordsSource
    sourceLink: $sourceLink
  ) {
    nodes { ...AdBaseFields __typename }
    pageInfo { endCursor hasNextPage __typename }
    __typename
  }
}
`

// TapAz is a classifieds marketplace behind a GraphQL API with opaque
// relay cursors, so records are individual seller listings rather than
// store inventory.
func TapAz() Spec {
	return Spec{
		Source:      dataset.SourceTapAz,
		Concurrency: 2,
		Delay:       time.Second,
		Strategy: func() paginate.Strategy {
			prime := htmlGet(tapazListing, tapazBase+"/")
			return paginate.CursorChain{
				Prime:   &prime,
				Request: tapazRequest,
				Next: paginate.CursorFromJSON(
					"data.ads.pageInfo.endCursor",
					"data.ads.pageInfo.hasNextPage",
				),
			}
		},
		Mapping: extract.Mapping{
			ItemsPaths: []string{"data.ads.nodes"},
			BaseURL:    tapazBase,
			Fields: map[string]extract.Rule{
				"title":      {Path: "title"},
				"product_id": {Path: "legacyResourceId"},
				"price":      {Path: "price"},
				"region":     {Path: "region"},
				"updated_at": {Path: "updatedAt"},
				"kinds":      {Path: "kinds", Clean: "list"},
				"status":     {Path: "status"},
				"shop_id":    {Path: "shop.id"},
				"url":        {Path: "path"},
				"image_url":  {Path: "photo.url"},
			},
			IdentityFields: []string{"product_id", "url"},
		},
		Renames: dataset.RenameTable{
			"title": "name",
			"price": "price_current",
		},
	}
}

func tapazRequest(cursor string) fetch.Descriptor {
	var after any
	if cursor != "" {
		after = cursor
	}
	return fetch.Descriptor{
		Method: "POST",
		URL:    tapazGraphQL,
		Headers: map[string]string{
			"Accept":          acceptAny,
			"Accept-Language": acceptLanguage,
			"Origin":          tapazBase,
			"Referer":         tapazListing,
		},
		JSON: map[string]any{
			"operationName": "GetAds_LATEST",
			"variables": map[string]any{
				"first": tapazPageSize,
				"filters": map[string]any{
					"categoryId": tapazCategory,
					"price":      map[string]any{"from": nil, "to": nil},
					"regionId":   nil,
					"propertyOptions": map[string]any{
						"collection": []any{},
						"boolean":    []any{},
						"range":      []any{},
					},
				},
				"sourceLink": tapazListing,
				"source":     "DESKTOP",
				"after":      after,
			},
			"query": tapazQuery,
		},
	}
}
