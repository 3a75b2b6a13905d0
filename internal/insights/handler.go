package insights

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"seo-backend/internal/dataforseo"
	"seo-backend/internal/shared/server/respond"
	"seo-backend/internal/shared/telemetry"
)

// Handler exposes the insight endpoints over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler constructs an insights Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the insight routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/insights/keywords", h.keywords)
	rg.POST("/insights/keyword-ideas", h.keywordIdeas)
	rg.POST("/insights/competitors", h.competitors)
	rg.POST("/insights/backlinks", h.backlinks)
	rg.POST("/insights/serp", h.serp)
	rg.POST("/insights/content-gaps", h.contentGaps)
	rg.POST("/insights/onpage", h.onPage)
}

type marketRequest struct {
	LocationCode int    `json:"locationCode"`
	LanguageCode string `json:"languageCode"`
}

type keywordsRequest struct {
	marketRequest
	Keywords []string `json:"keywords"`
}

type keywordIdeasRequest struct {
	marketRequest
	SeedKeywords []string `json:"seedKeywords"`
	Limit        int      `json:"limit"`
}

type domainRequest struct {
	marketRequest
	Domain string `json:"domain"`
}

type backlinksRequest struct {
	Domain string `json:"domain"`
	Limit  int    `json:"limit"`
}

type serpRequest struct {
	marketRequest
	Keyword string `json:"keyword"`
}

type contentGapsRequest struct {
	marketRequest
	Domain      string   `json:"domain"`
	Competitors []string `json:"competitors"`
}

type onPageRequest struct {
	URL string `json:"url"`
}

type rowsResponse[T any] struct {
	Rows []T `json:"rows"`
}

type backlinksResponse struct {
	Rows    []dataforseo.BacklinkRow   `json:"rows"`
	Summary dataforseo.BacklinkSummary `json:"summary"`
}

func (h *Handler) keywords(c *gin.Context) {
	var req keywordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.Keywords = trimAll(req.Keywords)
	if len(req.Keywords) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "keywords are required", nil)
		return
	}

	rows, err := h.svc.Keywords(c.Request.Context(), req.Keywords, req.LocationCode, req.LanguageCode)
	if err != nil {
		upstreamError(c, "keywords", err)
		return
	}
	respond.OK(c, rowsResponse[dataforseo.KeywordRow]{Rows: rows})
}

func (h *Handler) keywordIdeas(c *gin.Context) {
	var req keywordIdeasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.SeedKeywords = trimAll(req.SeedKeywords)
	if len(req.SeedKeywords) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "seed keywords are required", nil)
		return
	}

	rows, err := h.svc.KeywordIdeas(c.Request.Context(), req.SeedKeywords, req.LocationCode, req.LanguageCode, req.Limit)
	if err != nil {
		upstreamError(c, "keyword-ideas", err)
		return
	}
	respond.OK(c, rowsResponse[dataforseo.KeywordIdeaRow]{Rows: rows})
}

func (h *Handler) competitors(c *gin.Context) {
	var req domainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.Domain = strings.TrimSpace(req.Domain)
	if req.Domain == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "domain is required", nil)
		return
	}

	rows, err := h.svc.Competitors(c.Request.Context(), req.Domain, req.LocationCode, req.LanguageCode)
	if err != nil {
		upstreamError(c, "competitors", err)
		return
	}
	respond.OK(c, rowsResponse[dataforseo.CompetitorRow]{Rows: rows})
}

func (h *Handler) backlinks(c *gin.Context) {
	var req backlinksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.Domain = strings.TrimSpace(req.Domain)
	if req.Domain == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "domain is required", nil)
		return
	}

	rows, summary, err := h.svc.Backlinks(c.Request.Context(), req.Domain, req.Limit)
	if err != nil {
		upstreamError(c, "backlinks", err)
		return
	}
	respond.OK(c, backlinksResponse{Rows: rows, Summary: summary})
}

func (h *Handler) serp(c *gin.Context) {
	var req serpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.Keyword = strings.TrimSpace(req.Keyword)
	if req.Keyword == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "keyword is required", nil)
		return
	}

	rows, err := h.svc.SERP(c.Request.Context(), req.Keyword, req.LocationCode, req.LanguageCode)
	if err != nil {
		upstreamError(c, "serp", err)
		return
	}
	respond.OK(c, rowsResponse[dataforseo.SERPRow]{Rows: rows})
}

func (h *Handler) contentGaps(c *gin.Context) {
	var req contentGapsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.Domain = strings.TrimSpace(req.Domain)
	req.Competitors = trimAll(req.Competitors)
	if req.Domain == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "domain is required", nil)
		return
	}
	if len(req.Competitors) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "competitors are required", nil)
		return
	}

	rows, err := h.svc.ContentGaps(c.Request.Context(), req.Domain, req.Competitors, req.LocationCode, req.LanguageCode)
	if err != nil {
		upstreamError(c, "content-gaps", err)
		return
	}
	respond.OK(c, rowsResponse[dataforseo.ContentGapRow]{Rows: rows})
}

func (h *Handler) onPage(c *gin.Context) {
	var req onPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "url is required", nil)
		return
	}

	report, err := h.svc.OnPage(c.Request.Context(), req.URL)
	if err != nil {
		if errors.Is(err, dataforseo.ErrPollTimeout) {
			respond.Error(c, http.StatusGatewayTimeout, "analysis_timeout", "on-page analysis did not complete in time", nil)
			return
		}
		upstreamError(c, "onpage", err)
		return
	}
	if report == nil {
		respond.Error(c, http.StatusNotFound, "not_found", "no page data returned for url", nil)
		return
	}
	respond.OK(c, report)
}

func upstreamError(c *gin.Context, endpoint string, err error) {
	telemetry.Error("insights.upstream.failed", map[string]any{
		"endpoint":   endpoint,
		"err":        err.Error(),
		"request_id": c.GetString("requestId"),
	})
	respond.Error(c, http.StatusBadGateway, "upstream_error", "seo data provider request failed", nil)
}

func trimAll(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
