package dataforseo

// Response is the generic DataForSEO v3 response envelope. A response is
// usable only when the top-level tasks key is present.
type Response struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Tasks         []Task `json:"tasks"`
}

// Task is one task entry inside the envelope. Status is only populated by the
// on-page endpoints and reads "ready" once the crawl has finished.
type Task struct {
	ID            string       `json:"id"`
	StatusCode    int          `json:"status_code"`
	StatusMessage string       `json:"status_message"`
	Status        string       `json:"status"`
	Result        []TaskResult `json:"result"`
}

// TaskResult carries the per-task result payload. Items are kept as loose
// maps because each endpoint returns a different item shape; the flatteners
// pick the fields they need.
type TaskResult struct {
	Items   []map[string]any `json:"items"`
	Summary map[string]any   `json:"summary"`
}

// Default market selection, matching the dashboard defaults.
const (
	DefaultLocationCode = 2840 // United States
	DefaultLanguageCode = "en"
)
