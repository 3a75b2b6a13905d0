package audits

import (
	"time"

	"seo-backend/internal/dataforseo"
)

// Audit lifecycle statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// Report is the composite audit document. Legs that failed leave their
// section empty and add a warning instead of failing the whole audit.
type Report struct {
	OnPage       *dataforseo.OnPageReport    `json:"onPage,omitempty"`
	KeywordIdeas []dataforseo.KeywordIdeaRow `json:"keywordIdeas,omitempty"`
	Suggestions  string                      `json:"suggestions,omitempty"`
	Warnings     []string                    `json:"warnings,omitempty"`
}

// Audit represents one audit run for a URL.
type Audit struct {
	ID           string     `json:"id"`
	URL          string     `json:"url"`
	SeedKeywords []string   `json:"seedKeywords,omitempty"`
	Status       string     `json:"status"`
	Report       *Report    `json:"report,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}
