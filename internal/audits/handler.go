package audits

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"seo-backend/internal/shared/server/respond"
	"seo-backend/internal/shared/telemetry"
)

// Handler exposes audit runs and history over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler constructs an audits Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the audit routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/audits", h.run)
	rg.GET("/audits", h.list)
	rg.GET("/audits/:id", h.get)
}

type runRequest struct {
	URL          string   `json:"url"`
	SeedKeywords []string `json:"seedKeywords"`
}

func (h *Handler) run(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "url is required", nil)
		return
	}
	if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		respond.Error(c, http.StatusBadRequest, "validation_error", "url must be absolute", nil)
		return
	}

	seeds := make([]string, 0, len(req.SeedKeywords))
	for _, kw := range req.SeedKeywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			seeds = append(seeds, kw)
		}
	}

	audit, err := h.svc.Run(c.Request.Context(), req.URL, seeds)
	if err != nil {
		telemetry.Error("audits.run.failed", map[string]any{
			"url":        req.URL,
			"err":        err.Error(),
			"request_id": c.GetString("requestId"),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to run audit", nil)
		return
	}
	respond.Created(c, audit)
}

func (h *Handler) get(c *gin.Context) {
	audit, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "audit not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load audit", nil)
		return
	}
	respond.OK(c, audit)
}

func (h *Handler) list(c *gin.Context) {
	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)

	audits, err := h.svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list audits", nil)
		return
	}
	respond.OK(c, gin.H{"audits": audits})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return val
}
