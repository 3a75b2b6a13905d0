package insights

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

var errUpstream = errors.New("upstream down")

func newTestRouter(t *testing.T, fake *fakeSEO) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, err := NewService(fake, 8)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestKeywordsEndpoint(t *testing.T) {
	fake := newFakeSEO(map[string]any{
		"keyword":       "crm software",
		"search_volume": float64(880),
	})
	r := newTestRouter(t, fake)

	rec := postJSON(t, r, "/api/v1/insights/keywords", `{"keywords":["crm software"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Rows []struct {
			Keyword      string `json:"keyword"`
			SearchVolume int64  `json:"searchVolume"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Rows) != 1 || resp.Rows[0].SearchVolume != 880 {
		t.Fatalf("rows = %+v", resp.Rows)
	}
}

func TestKeywordsEndpointValidation(t *testing.T) {
	r := newTestRouter(t, newFakeSEO())

	for name, body := range map[string]string{
		"empty list":  `{"keywords":[]}`,
		"blank items": `{"keywords":["  ",""]}`,
		"bad json":    `{`,
	} {
		t.Run(name, func(t *testing.T) {
			if rec := postJSON(t, r, "/api/v1/insights/keywords", body); rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestKeywordIdeasEndpointBindsSeedKeywords(t *testing.T) {
	fake := newFakeSEO(map[string]any{
		"keyword":       "golang seo tools",
		"search_volume": float64(210),
		"competition":   0.2,
	})
	r := newTestRouter(t, fake)

	rec := postJSON(t, r, "/api/v1/insights/keyword-ideas", `{"seedKeywords":["golang seo"],"limit":10}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Rows []struct {
			Keyword          string `json:"keyword"`
			CompetitionLevel string `json:"competitionLevel"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Rows) != 1 || resp.Rows[0].CompetitionLevel != "Low" {
		t.Fatalf("rows = %+v", resp.Rows)
	}
}

func TestKeywordIdeasEndpointValidation(t *testing.T) {
	r := newTestRouter(t, newFakeSEO())

	for name, body := range map[string]string{
		"empty list":  `{"seedKeywords":[]}`,
		"blank items": `{"seedKeywords":["  "]}`,
	} {
		t.Run(name, func(t *testing.T) {
			if rec := postJSON(t, r, "/api/v1/insights/keyword-ideas", body); rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestContentGapsEndpointRequiresCompetitors(t *testing.T) {
	r := newTestRouter(t, newFakeSEO())

	rec := postJSON(t, r, "/api/v1/insights/content-gaps", `{"domain":"example.com","competitors":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestBacklinksEndpointIncludesSummary(t *testing.T) {
	fake := newFakeSEO(map[string]any{
		"source_url": "https://blog.example.com/post",
		"target_url": "https://example.com",
	})
	fake.resp.Tasks[0].Result[0].Summary = map[string]any{"total_count": float64(12)}
	r := newTestRouter(t, fake)

	rec := postJSON(t, r, "/api/v1/insights/backlinks", `{"domain":"example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"totalBacklinks":12`) {
		t.Fatalf("body = %s, want summary totals", rec.Body.String())
	}
}

func TestUpstreamFailureReturnsBadGateway(t *testing.T) {
	fake := newFakeSEO()
	fake.err = errUpstream
	r := newTestRouter(t, fake)

	rec := postJSON(t, r, "/api/v1/insights/serp", `{"keyword":"crm software"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "upstream_error") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestOnPageEmptyResultIsNotFound(t *testing.T) {
	fake := newFakeSEO() // no items, flattens to a nil report
	r := newTestRouter(t, fake)

	rec := postJSON(t, r, "/api/v1/insights/onpage", `{"url":"https://example.com"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
