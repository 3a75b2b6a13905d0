package dataforseo

import (
	"sort"
	"strconv"
	"strings"
)

// Flatteners walk tasks[].result[].items[] and emit one flat row per leaf
// item. A nil response or an absent/empty container yields zero rows, never
// an error.

// KeywordRow is one keyword metrics row.
type KeywordRow struct {
	Keyword      string  `json:"keyword"`
	SearchVolume int64   `json:"searchVolume"`
	CPC          float64 `json:"cpc"`
	Competition  float64 `json:"competition"`
}

// KeywordRows flattens a search volume response.
func KeywordRows(resp *Response) []KeywordRow {
	rows := []KeywordRow{}
	forEachItem(resp, func(item map[string]any) {
		rows = append(rows, KeywordRow{
			Keyword:      str(item, "keyword"),
			SearchVolume: integer(item, "search_volume"),
			CPC:          number(item, "cpc"),
			Competition:  number(item, "competition"),
		})
	})
	return rows
}

// Competition level bucket bounds.
const (
	competitionLowMax    = 0.33
	competitionMediumMax = 0.66
)

// KeywordIdeaRow is one keyword suggestion row.
type KeywordIdeaRow struct {
	Keyword          string  `json:"keyword"`
	SearchVolume     int64   `json:"searchVolume"`
	CPC              float64 `json:"cpc"`
	Competition      float64 `json:"competition"`
	CompetitionLevel string  `json:"competitionLevel"`
	Trend            any     `json:"trend,omitempty"`
}

// KeywordIdeaRows flattens a keyword ideas response and buckets each row into
// a Low/Medium/High competition level.
func KeywordIdeaRows(resp *Response) []KeywordIdeaRow {
	rows := []KeywordIdeaRow{}
	forEachItem(resp, func(item map[string]any) {
		competition := number(item, "competition")
		rows = append(rows, KeywordIdeaRow{
			Keyword:          str(item, "keyword"),
			SearchVolume:     integer(item, "search_volume"),
			CPC:              number(item, "cpc"),
			Competition:      competition,
			CompetitionLevel: CompetitionLevel(competition),
			Trend:            item["trend"],
		})
	})
	return rows
}

// CompetitionLevel buckets a 0..1 competition score.
func CompetitionLevel(competition float64) string {
	switch {
	case competition <= competitionLowMax:
		return "Low"
	case competition <= competitionMediumMax:
		return "Medium"
	default:
		return "High"
	}
}

// CompetitorRow is one competing-domain row.
type CompetitorRow struct {
	Domain         string  `json:"domain"`
	CommonKeywords int64   `json:"commonKeywords"`
	Relevance      float64 `json:"relevance"`
	SETraffic      float64 `json:"seTraffic"`
}

// CompetitorRows flattens a competitors response. Relevance is scaled to a
// percentage.
func CompetitorRows(resp *Response) []CompetitorRow {
	rows := []CompetitorRow{}
	forEachItem(resp, func(item map[string]any) {
		rows = append(rows, CompetitorRow{
			Domain:         str(item, "domain"),
			CommonKeywords: integer(item, "common_keywords"),
			Relevance:      number(item, "relevance") * 100,
			SETraffic:      number(item, "se_traffic"),
		})
	})
	return rows
}

// BacklinkRow is one backlink row.
type BacklinkRow struct {
	SourceURL  string `json:"sourceUrl"`
	TargetURL  string `json:"targetUrl"`
	AnchorText string `json:"anchorText"`
	DomainRank int64  `json:"domainRank"`
	DoFollow   bool   `json:"doFollow"`
	FirstSeen  string `json:"firstSeen"`
}

// BacklinkSummary aggregates the backlink profile.
type BacklinkSummary struct {
	TotalBacklinks   int64 `json:"totalBacklinks"`
	ReferringDomains int64 `json:"referringDomains"`
	DoFollowLinks    int64 `json:"doFollowLinks"`
}

// BacklinkRows flattens a backlinks response into rows plus the profile
// summary carried alongside the items.
func BacklinkRows(resp *Response) ([]BacklinkRow, BacklinkSummary) {
	rows := []BacklinkRow{}
	var summary BacklinkSummary
	forEachResult(resp, func(result TaskResult) {
		if result.Summary != nil {
			summary = BacklinkSummary{
				TotalBacklinks:   integer(result.Summary, "total_count"),
				ReferringDomains: integer(result.Summary, "referring_domains"),
				DoFollowLinks:    integer(result.Summary, "dofollow"),
			}
		}
		for _, item := range result.Items {
			rows = append(rows, BacklinkRow{
				SourceURL:  str(item, "source_url"),
				TargetURL:  str(item, "target_url"),
				AnchorText: str(item, "anchor"),
				DomainRank: integer(item, "domain_rank"),
				DoFollow:   boolean(item, "dofollow"),
				FirstSeen:  str(item, "first_seen"),
			})
		}
	})
	return rows, summary
}

// SERPRow is one organic search result row.
type SERPRow struct {
	Position     int64  `json:"position"`
	URL          string `json:"url"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Domain       string `json:"domain"`
	SERPFeatures string `json:"serpFeatures"`
}

// SERPRows flattens a SERP response, keeping organic items only.
func SERPRows(resp *Response) []SERPRow {
	rows := []SERPRow{}
	forEachItem(resp, func(item map[string]any) {
		if str(item, "type") != "organic" {
			return
		}
		features := []string{}
		for name := range mapField(item, "serp_features") {
			features = append(features, name)
		}
		sort.Strings(features)
		rows = append(rows, SERPRow{
			Position:     integer(item, "rank_absolute"),
			URL:          str(item, "url"),
			Title:        str(item, "title"),
			Description:  str(item, "description"),
			Domain:       str(item, "domain"),
			SERPFeatures: strings.Join(features, ", "),
		})
	})
	return rows
}

// ContentGapRow is one content-gap keyword row.
type ContentGapRow struct {
	Keyword            string  `json:"keyword"`
	SearchVolume       int64   `json:"searchVolume"`
	KeywordDifficulty  float64 `json:"keywordDifficulty"`
	CPC                float64 `json:"cpc"`
	CompetitorRankings string  `json:"competitorRankings"`
}

// ContentGapRows flattens a keywords-intersections response, joining each
// competitor's SERP position into a "domain: position" ranking string.
func ContentGapRows(resp *Response) []ContentGapRow {
	rows := []ContentGapRow{}
	forEachItem(resp, func(item map[string]any) {
		var rankings []string
		for _, entry := range sliceField(item, "keywords_data") {
			serp, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			domain := str(serp, "se_domain")
			position := integer(serp, "position")
			if domain != "" && position != 0 {
				rankings = append(rankings, domain+": "+strconv.FormatInt(position, 10))
			}
		}
		rows = append(rows, ContentGapRow{
			Keyword:            str(item, "keyword"),
			SearchVolume:       integer(item, "search_volume"),
			KeywordDifficulty:  number(item, "keyword_difficulty"),
			CPC:                number(item, "cpc"),
			CompetitorRankings: strings.Join(rankings, ", "),
		})
	})
	return rows
}

// OnPageIssue is one failed page check.
type OnPageIssue struct {
	Issue      string `json:"issue"`
	Importance string `json:"importance"`
	Message    string `json:"message"`
}

// ContentMetrics summarizes page content stats.
type ContentMetrics struct {
	WordCount   int64   `json:"wordCount"`
	TextRatio   float64 `json:"textRatio"`
	UniqueWords int64   `json:"uniqueWords"`
}

// OnPageReport is the flattened on-page analysis for the first crawled page.
type OnPageReport struct {
	URL             string          `json:"url"`
	StatusCode      int64           `json:"statusCode"`
	PageTitle       string          `json:"pageTitle"`
	MetaDescription string          `json:"metaDescription"`
	H1Count         int64           `json:"h1Count"`
	H2Count         int64           `json:"h2Count"`
	ImageCount      int64           `json:"imageCount"`
	InternalLinks   int64           `json:"internalLinks"`
	ExternalLinks   int64           `json:"externalLinks"`
	LoadTime        float64         `json:"loadTime"`
	Content         *ContentMetrics `json:"content,omitempty"`
	Issues          []OnPageIssue   `json:"issues"`
}

// FlattenOnPage extracts the report for the first page item, or nil when the
// response carries no page data.
func FlattenOnPage(resp *Response) *OnPageReport {
	var report *OnPageReport
	forEachResult(resp, func(result TaskResult) {
		if report != nil || len(result.Items) == 0 {
			return
		}
		page := result.Items[0]
		meta := mapField(page, "meta")
		pageMetrics := mapField(page, "page_metrics")
		timing := mapField(page, "page_timing")

		report = &OnPageReport{
			URL:             str(page, "url"),
			StatusCode:      integer(page, "status_code"),
			PageTitle:       str(meta, "title"),
			MetaDescription: str(meta, "description"),
			H1Count:         integer(mapField(pageMetrics, "h1"), "count"),
			H2Count:         integer(mapField(pageMetrics, "h2"), "count"),
			ImageCount:      integer(mapField(pageMetrics, "images"), "count"),
			InternalLinks:   integer(mapField(pageMetrics, "internal_links"), "count"),
			ExternalLinks:   integer(mapField(pageMetrics, "external_links"), "count"),
			LoadTime:        number(timing, "time_to_interactive"),
			Issues:          []OnPageIssue{},
		}

		if content := mapField(pageMetrics, "content"); content != nil {
			report.Content = &ContentMetrics{
				WordCount:   integer(content, "word_count"),
				TextRatio:   number(content, "text_ratio"),
				UniqueWords: integer(content, "unique_words"),
			}
		}

		for name, raw := range mapField(pageMetrics, "checks") {
			check, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if str(check, "status") != "failed" {
				continue
			}
			report.Issues = append(report.Issues, OnPageIssue{
				Issue:      titleCase(name),
				Importance: str(check, "importance"),
				Message:    str(check, "message"),
			})
		}
		sort.Slice(report.Issues, func(i, j int) bool {
			return report.Issues[i].Issue < report.Issues[j].Issue
		})
	})
	return report
}

func forEachResult(resp *Response, fn func(TaskResult)) {
	if resp == nil {
		return
	}
	for _, task := range resp.Tasks {
		for _, result := range task.Result {
			fn(result)
		}
	}
}

func forEachItem(resp *Response, fn func(map[string]any)) {
	forEachResult(resp, func(result TaskResult) {
		for _, item := range result.Items {
			fn(item)
		}
	})
}

func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}

func number(m map[string]any, key string) float64 {
	if m == nil {
		return 0
	}
	if val, ok := m[key].(float64); ok {
		return val
	}
	return 0
}

func integer(m map[string]any, key string) int64 {
	return int64(number(m, key))
}

func boolean(m map[string]any, key string) bool {
	if m == nil {
		return false
	}
	if val, ok := m[key].(bool); ok {
		return val
	}
	return false
}

func mapField(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	if val, ok := m[key].(map[string]any); ok {
		return val
	}
	return nil
}

func sliceField(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	if val, ok := m[key].([]any); ok {
		return val
	}
	return nil
}

func titleCase(snake string) string {
	parts := strings.Split(snake, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
