package insights

import (
	"context"
	"encoding/json"

	lru "github.com/hashicorp/golang-lru/v2"

	"seo-backend/internal/dataforseo"
	"seo-backend/internal/shared/telemetry"
)

// SEOClient is the upstream surface the insights service depends on.
type SEOClient interface {
	SearchVolume(ctx context.Context, keywords []string, locationCode int, languageCode string) (*dataforseo.Response, error)
	KeywordIdeas(ctx context.Context, seedKeywords []string, locationCode int, languageCode string, limit int) (*dataforseo.Response, error)
	Competitors(ctx context.Context, domain string, locationCode int, languageCode string) (*dataforseo.Response, error)
	Backlinks(ctx context.Context, domain string, limit int) (*dataforseo.Response, error)
	SERP(ctx context.Context, keyword string, locationCode int, languageCode string) (*dataforseo.Response, error)
	KeywordGaps(ctx context.Context, domain string, competitors []string, locationCode int, languageCode string) (*dataforseo.Response, error)
	RunOnPageAnalysis(ctx context.Context, target string) (*dataforseo.Response, error)
}

// Service flattens upstream responses into tabular rows, caching raw
// responses so repeated dashboard queries do not burn API credits.
type Service struct {
	seo   SEOClient
	cache *lru.Cache[string, *dataforseo.Response]
}

// NewService constructs an insights service with an LRU response cache of the
// given size.
func NewService(seo SEOClient, cacheSize int) (*Service, error) {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New[string, *dataforseo.Response](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{seo: seo, cache: cache}, nil
}

// Keywords returns search volume rows for the given keywords.
func (s *Service) Keywords(ctx context.Context, keywords []string, locationCode int, languageCode string) ([]dataforseo.KeywordRow, error) {
	resp, err := s.cached(ctx, "keywords", map[string]any{
		"keywords":      keywords,
		"location_code": locationCode,
		"language_code": languageCode,
	}, func(ctx context.Context) (*dataforseo.Response, error) {
		return s.seo.SearchVolume(ctx, keywords, locationCode, languageCode)
	})
	if err != nil {
		return nil, err
	}
	return dataforseo.KeywordRows(resp), nil
}

// KeywordIdeas returns suggestion rows seeded by the given keywords.
func (s *Service) KeywordIdeas(ctx context.Context, seedKeywords []string, locationCode int, languageCode string, limit int) ([]dataforseo.KeywordIdeaRow, error) {
	resp, err := s.cached(ctx, "keyword-ideas", map[string]any{
		"keywords":      seedKeywords,
		"location_code": locationCode,
		"language_code": languageCode,
		"limit":         limit,
	}, func(ctx context.Context) (*dataforseo.Response, error) {
		return s.seo.KeywordIdeas(ctx, seedKeywords, locationCode, languageCode, limit)
	})
	if err != nil {
		return nil, err
	}
	return dataforseo.KeywordIdeaRows(resp), nil
}

// Competitors returns competing-domain rows for the target domain.
func (s *Service) Competitors(ctx context.Context, domain string, locationCode int, languageCode string) ([]dataforseo.CompetitorRow, error) {
	resp, err := s.cached(ctx, "competitors", map[string]any{
		"domain":        domain,
		"location_code": locationCode,
		"language_code": languageCode,
	}, func(ctx context.Context) (*dataforseo.Response, error) {
		return s.seo.Competitors(ctx, domain, locationCode, languageCode)
	})
	if err != nil {
		return nil, err
	}
	return dataforseo.CompetitorRows(resp), nil
}

// Backlinks returns backlink rows and the profile summary for the domain.
func (s *Service) Backlinks(ctx context.Context, domain string, limit int) ([]dataforseo.BacklinkRow, dataforseo.BacklinkSummary, error) {
	resp, err := s.cached(ctx, "backlinks", map[string]any{
		"domain": domain,
		"limit":  limit,
	}, func(ctx context.Context) (*dataforseo.Response, error) {
		return s.seo.Backlinks(ctx, domain, limit)
	})
	if err != nil {
		return nil, dataforseo.BacklinkSummary{}, err
	}
	rows, summary := dataforseo.BacklinkRows(resp)
	return rows, summary, nil
}

// SERP returns organic result rows for the keyword.
func (s *Service) SERP(ctx context.Context, keyword string, locationCode int, languageCode string) ([]dataforseo.SERPRow, error) {
	resp, err := s.cached(ctx, "serp", map[string]any{
		"keyword":       keyword,
		"location_code": locationCode,
		"language_code": languageCode,
	}, func(ctx context.Context) (*dataforseo.Response, error) {
		return s.seo.SERP(ctx, keyword, locationCode, languageCode)
	})
	if err != nil {
		return nil, err
	}
	return dataforseo.SERPRows(resp), nil
}

// ContentGaps returns keywords competitors rank for that the domain does not.
func (s *Service) ContentGaps(ctx context.Context, domain string, competitors []string, locationCode int, languageCode string) ([]dataforseo.ContentGapRow, error) {
	resp, err := s.cached(ctx, "content-gaps", map[string]any{
		"domain":        domain,
		"competitors":   competitors,
		"location_code": locationCode,
		"language_code": languageCode,
	}, func(ctx context.Context) (*dataforseo.Response, error) {
		return s.seo.KeywordGaps(ctx, domain, competitors, locationCode, languageCode)
	})
	if err != nil {
		return nil, err
	}
	return dataforseo.ContentGapRows(resp), nil
}

// OnPage runs the full crawl-and-poll cycle and returns the page report. The
// crawl is slow and billed per run, so ready results are cached by URL.
func (s *Service) OnPage(ctx context.Context, url string) (*dataforseo.OnPageReport, error) {
	resp, err := s.cached(ctx, "onpage", map[string]any{"url": url}, func(ctx context.Context) (*dataforseo.Response, error) {
		return s.seo.RunOnPageAnalysis(ctx, url)
	})
	if err != nil {
		return nil, err
	}
	return dataforseo.FlattenOnPage(resp), nil
}

func (s *Service) cached(ctx context.Context, endpoint string, params map[string]any, fetch func(context.Context) (*dataforseo.Response, error)) (*dataforseo.Response, error) {
	key := cacheKey(endpoint, params)
	if resp, ok := s.cache.Get(key); ok {
		telemetry.Info("insights.cache_hit", map[string]any{"endpoint": endpoint})
		return resp, nil
	}

	resp, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, resp)
	return resp, nil
}

// cacheKey serializes the request parameters into a stable string. Map keys
// are sorted by encoding/json, so equal requests share a key.
func cacheKey(endpoint string, params map[string]any) string {
	raw, err := json.Marshal(params)
	if err != nil {
		return endpoint
	}
	return endpoint + "|" + string(raw)
}
