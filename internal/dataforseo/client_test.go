package dataforseo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
)

func decodeJSONBody(req *http.Request, v any) error {
	defer req.Body.Close()
	return json.NewDecoder(req.Body).Decode(v)
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Config{
		Login:           "login",
		Password:        "password",
		BaseURL:         "https://seo.test/v3",
		PollMaxAttempts: 3,
		PollInterval:    time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	httpmock.ActivateNonDefault(client.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New(Config{Login: "only-login"}); err == nil {
		t.Fatal("expected error for missing password")
	}
	if _, err := New(Config{Password: "only-password"}); err == nil {
		t.Fatal("expected error for missing login")
	}
}

func TestSearchVolumeSendsBasicAuthAndDefaults(t *testing.T) {
	client := newTestClient(t)

	var gotAuth string
	var gotBody []map[string]any
	httpmock.RegisterResponder(http.MethodPost, "https://seo.test/v3/keywords_data/google/search_volume/live",
		func(req *http.Request) (*http.Response, error) {
			gotAuth = req.Header.Get("Authorization")
			if err := decodeJSONBody(req, &gotBody); err != nil {
				t.Fatalf("decode request body: %v", err)
			}
			return httpmock.NewStringResponse(http.StatusOK, `{"tasks":[{"id":"1","result":[]}]}`), nil
		})

	resp, err := client.SearchVolume(context.Background(), []string{"golang"}, 0, "")
	if err != nil {
		t.Fatalf("search volume: %v", err)
	}
	if len(resp.Tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(resp.Tasks))
	}

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("login:password"))
	if gotAuth != wantAuth {
		t.Fatalf("authorization = %q, want %q", gotAuth, wantAuth)
	}
	if len(gotBody) != 1 {
		t.Fatalf("request tasks = %d, want 1", len(gotBody))
	}
	if got := gotBody[0]["location_code"]; got != float64(DefaultLocationCode) {
		t.Fatalf("location_code = %v, want %d", got, DefaultLocationCode)
	}
	if got := gotBody[0]["language_code"]; got != DefaultLanguageCode {
		t.Fatalf("language_code = %v, want %s", got, DefaultLanguageCode)
	}
}

func TestDoMissingTasksKey(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, "https://seo.test/v3/backlinks/backlinks/live",
		httpmock.NewStringResponder(http.StatusOK, `{"status_code":20000}`))

	_, err := client.Backlinks(context.Background(), "example.com", 50)
	if !errors.Is(err, ErrMissingTasks) {
		t.Fatalf("error = %v, want ErrMissingTasks", err)
	}
}

func TestDoHTTPErrorStatus(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, "https://seo.test/v3/serp/google/organic/live/regular",
		httpmock.NewStringResponder(http.StatusUnauthorized, `{"status_message":"auth failed"}`))

	if _, err := client.SERP(context.Background(), "golang", 0, ""); err == nil {
		t.Fatal("expected error for 401 response")
	}
}

func TestKeywordGapsIncludesNotInFilter(t *testing.T) {
	client := newTestClient(t)

	var gotBody []map[string]any
	httpmock.RegisterResponder(http.MethodPost, "https://seo.test/v3/domain_analytics/keywords_intersections/live",
		func(req *http.Request) (*http.Response, error) {
			if err := decodeJSONBody(req, &gotBody); err != nil {
				t.Fatalf("decode request body: %v", err)
			}
			return httpmock.NewStringResponse(http.StatusOK, `{"tasks":[]}`), nil
		})

	if _, err := client.KeywordGaps(context.Background(), "mine.com", []string{"rival.com"}, 0, ""); err != nil {
		t.Fatalf("keyword gaps: %v", err)
	}

	targets, ok := gotBody[0]["targets"].([]any)
	if !ok || len(targets) != 2 || targets[0] != "mine.com" || targets[1] != "rival.com" {
		t.Fatalf("targets = %v, want [mine.com rival.com]", gotBody[0]["targets"])
	}
	filters, ok := gotBody[0]["filters"].([]any)
	if !ok || len(filters) != 1 {
		t.Fatalf("filters = %v, want one not_in filter", gotBody[0]["filters"])
	}
	filter := filters[0].(map[string]any)
	if filter["filter_type"] != "not_in" || filter["from"] != "mine.com" {
		t.Fatalf("filter = %v", filter)
	}
}
