package documents

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T, env string, llmClient *fakeLLM) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewService(llmClient), env).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, body := range files {
		part, err := writer.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(body)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestSummariesEndpoint(t *testing.T) {
	r := newTestRouter(t, "production", &fakeLLM{})
	body, contentType := multipartBody(t, map[string]string{"notes.txt": "document body"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/summaries", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp summariesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Summaries) != 1 || resp.Summaries[0].Name != "notes.txt" {
		t.Fatalf("summaries = %+v", resp.Summaries)
	}
	if !strings.HasPrefix(resp.Markdown, "### notes.txt\n") {
		t.Fatalf("markdown = %q", resp.Markdown)
	}
}

func TestSummariesEndpointRequiresFiles(t *testing.T) {
	r := newTestRouter(t, "production", &fakeLLM{})
	body, contentType := multipartBody(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/summaries", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func folderBody(t *testing.T, folder string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("folder", folder); err != nil {
		t.Fatalf("write folder field: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestSummariesEndpointFolderInDev(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("document body"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	r := newTestRouter(t, "dev", &fakeLLM{})
	body, contentType := folderBody(t, dir)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/summaries", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp summariesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Summaries) != 1 || resp.Summaries[0].Name != "notes.txt" {
		t.Fatalf("summaries = %+v", resp.Summaries)
	}
}

func TestSummariesEndpointFolderRejectedOutsideDev(t *testing.T) {
	r := newTestRouter(t, "production", &fakeLLM{})
	body, contentType := folderBody(t, t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/summaries", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSummariesEndpointRejectsNonMultipart(t *testing.T) {
	r := newTestRouter(t, "production", &fakeLLM{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/summaries", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
