package dataforseo

import "context"

// applyMarketDefaults fills in the default location/language selection.
func applyMarketDefaults(locationCode int, languageCode string) (int, string) {
	if locationCode <= 0 {
		locationCode = DefaultLocationCode
	}
	if languageCode == "" {
		languageCode = DefaultLanguageCode
	}
	return locationCode, languageCode
}

// SearchVolume returns search volume metrics for the given keywords.
func (c *Client) SearchVolume(ctx context.Context, keywords []string, locationCode int, languageCode string) (*Response, error) {
	locationCode, languageCode = applyMarketDefaults(locationCode, languageCode)
	return c.post(ctx, "keywords_data/google/search_volume/live", map[string]any{
		"location_code": locationCode,
		"language_code": languageCode,
		"keywords":      keywords,
	})
}

// Competitors returns competing domains for the target domain.
func (c *Client) Competitors(ctx context.Context, domain string, locationCode int, languageCode string) (*Response, error) {
	locationCode, languageCode = applyMarketDefaults(locationCode, languageCode)
	return c.post(ctx, "domain_analytics/competitors/live", map[string]any{
		"target":        domain,
		"location_code": locationCode,
		"language_code": languageCode,
	})
}

// Backlinks returns up to limit backlinks pointing at the target domain.
func (c *Client) Backlinks(ctx context.Context, domain string, limit int) (*Response, error) {
	if limit <= 0 {
		limit = 100
	}
	return c.post(ctx, "backlinks/backlinks/live", map[string]any{
		"target": domain,
		"limit":  limit,
	})
}

// SERP returns the organic results page for the keyword.
func (c *Client) SERP(ctx context.Context, keyword string, locationCode int, languageCode string) (*Response, error) {
	locationCode, languageCode = applyMarketDefaults(locationCode, languageCode)
	return c.post(ctx, "serp/google/organic/live/regular", map[string]any{
		"keyword":       keyword,
		"location_code": locationCode,
		"language_code": languageCode,
		"depth":         100,
	})
}

// KeywordIdeas returns keyword suggestions derived from the seed keywords.
func (c *Client) KeywordIdeas(ctx context.Context, seedKeywords []string, locationCode int, languageCode string, limit int) (*Response, error) {
	locationCode, languageCode = applyMarketDefaults(locationCode, languageCode)
	if limit <= 0 {
		limit = 100
	}
	return c.post(ctx, "keywords_data/google/keyword_ideas/live", map[string]any{
		"location_code": locationCode,
		"language_code": languageCode,
		"keywords":      seedKeywords,
		"limit":         limit,
	})
}

// KeywordGaps returns keywords competitors rank for that the domain does not.
func (c *Client) KeywordGaps(ctx context.Context, domain string, competitors []string, locationCode int, languageCode string) (*Response, error) {
	locationCode, languageCode = applyMarketDefaults(locationCode, languageCode)
	targets := append([]string{domain}, competitors...)
	return c.post(ctx, "domain_analytics/keywords_intersections/live", map[string]any{
		"targets":       targets,
		"location_code": locationCode,
		"language_code": languageCode,
		"filters": []map[string]any{
			{
				"filter_type": "not_in",
				"from":        domain,
			},
		},
		"limit": 100,
	})
}
