package dataforseo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"seo-backend/internal/shared/metrics"
)

const defaultBaseURL = "https://api.dataforseo.com/v3"

// ErrMissingTasks is returned when a response decodes but lacks the top-level
// tasks key, which callers treat the same as an outright failure.
var ErrMissingTasks = errors.New("dataforseo response missing tasks")

// Config controls client construction.
type Config struct {
	Login           string
	Password        string
	BaseURL         string
	Timeout         time.Duration
	PollMaxAttempts int
	PollInterval    time.Duration
}

// Client issues authenticated requests to the DataForSEO v3 API. The
// authorization header is built once at construction and never refreshed.
type Client struct {
	baseURL         string
	authHeader      string
	httpClient      *http.Client
	pollMaxAttempts int
	pollInterval    time.Duration
}

// New constructs a Client. Login and password are required.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Login) == "" || strings.TrimSpace(cfg.Password) == "" {
		return nil, fmt.Errorf("DATAFORSEO_LOGIN and DATAFORSEO_PASSWORD are required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	pollMax := cfg.PollMaxAttempts
	if pollMax <= 0 {
		pollMax = 5
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}

	creds := base64.StdEncoding.EncodeToString([]byte(cfg.Login + ":" + cfg.Password))
	return &Client{
		baseURL:         baseURL,
		authHeader:      "Basic " + creds,
		httpClient:      &http.Client{Timeout: timeout},
		pollMaxAttempts: pollMax,
		pollInterval:    pollInterval,
	}, nil
}

func (c *Client) get(ctx context.Context, endpoint string) (*Response, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil)
}

func (c *Client) post(ctx context.Context, endpoint string, task map[string]any) (*Response, error) {
	// The API expects a task array even for single-task live calls.
	return c.do(ctx, http.MethodPost, endpoint, []map[string]any{task})
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload any) (*Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("dataforseo %s: marshal request: %w", endpoint, err)
		}
		body = bytes.NewReader(data)
	}

	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("dataforseo %s: %w", endpoint, err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncUpstreamRequest(endpoint, "transport_error")
		return nil, fmt.Errorf("dataforseo %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.IncUpstreamRequest(endpoint, "transport_error")
		return nil, fmt.Errorf("dataforseo %s: read body: %w", endpoint, err)
	}
	if resp.StatusCode >= 400 {
		metrics.IncUpstreamRequest(endpoint, "http_error")
		return nil, fmt.Errorf("dataforseo %s: http status %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed Response
	if err := json.Unmarshal(raw, &parsed); err != nil {
		metrics.IncUpstreamRequest(endpoint, "parse_error")
		return nil, fmt.Errorf("dataforseo %s: parse response: %w", endpoint, err)
	}
	if parsed.Tasks == nil {
		metrics.IncUpstreamRequest(endpoint, "missing_tasks")
		return nil, fmt.Errorf("dataforseo %s: %w", endpoint, ErrMissingTasks)
	}

	metrics.IncUpstreamRequest(endpoint, "ok")
	return &parsed, nil
}
