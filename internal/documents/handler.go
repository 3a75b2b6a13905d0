package documents

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"seo-backend/internal/shared/server/respond"
	"seo-backend/internal/shared/telemetry"
	"seo-backend/internal/shared/util"
)

const (
	maxUploadBytes = 5 << 20
	maxUploadFiles = 10
)

// Handler exposes document summarization over HTTP.
type Handler struct {
	svc *Service
	env string
}

// NewHandler constructs a documents Handler. env gates the local folder
// shortcut on the summaries endpoint.
func NewHandler(svc *Service, env string) *Handler {
	return &Handler{svc: svc, env: env}
}

// RegisterRoutes mounts the documents routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/summaries", h.summarize)
}

type summariesResponse struct {
	Summaries []Summary `json:"summaries"`
	Markdown  string    `json:"markdown"`
}

func (h *Handler) summarize(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid multipart form", nil)
		return
	}
	// In dev a folder form field summarizes a server-local directory
	// instead of uploaded files.
	if folder := firstValue(form.Value["folder"]); folder != "" {
		if h.env != "dev" && h.env != "local" {
			respond.Error(c, http.StatusBadRequest, "validation_error", "folder summaries are only available in dev environments", nil)
			return
		}
		h.summarizeFolder(c, folder)
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "at least one file is required", nil)
		return
	}
	if len(files) > maxUploadFiles {
		respond.Error(c, http.StatusBadRequest, "validation_error", "too many files", nil)
		return
	}

	docs := make([]Document, 0, len(files))
	for _, fh := range files {
		name, err := util.SanitizeFileName(fh.Filename)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid file name", nil)
			return
		}
		f, err := fh.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read uploaded file", nil)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read uploaded file", nil)
			return
		}
		docs = append(docs, Document{Name: name, Data: data})
	}

	summaries, err := h.svc.Summarize(c.Request.Context(), docs)
	if err != nil {
		telemetry.Error("documents.summaries.failed", map[string]any{
			"err":        err.Error(),
			"request_id": c.GetString("requestId"),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to summarize documents", nil)
		return
	}

	respond.OK(c, summariesResponse{Summaries: summaries, Markdown: Render(summaries)})
}

func (h *Handler) summarizeFolder(c *gin.Context, folder string) {
	summaries, err := h.svc.SummarizeFolder(c.Request.Context(), folder)
	if err != nil {
		telemetry.Error("documents.folder.failed", map[string]any{
			"folder":     folder,
			"err":        err.Error(),
			"request_id": c.GetString("requestId"),
		})
		respond.Error(c, http.StatusBadRequest, "validation_error", "failed to summarize folder", nil)
		return
	}
	respond.OK(c, summariesResponse{Summaries: summaries, Markdown: Render(summaries)})
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
