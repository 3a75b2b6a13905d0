package audits

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"seo-backend/internal/dataforseo"
	"seo-backend/internal/llm"
	"seo-backend/internal/shared/metrics"
	"seo-backend/internal/shared/telemetry"
)

// SEOClient is the upstream surface the audit pipeline depends on.
type SEOClient interface {
	RunOnPageAnalysis(ctx context.Context, target string) (*dataforseo.Response, error)
	KeywordIdeas(ctx context.Context, seedKeywords []string, locationCode int, languageCode string, limit int) (*dataforseo.Response, error)
}

// PageFetcher downloads a page and returns its visible text.
type PageFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// Service runs composite SEO audits and persists the reports.
type Service struct {
	repo  Repo
	seo   SEOClient
	pages PageFetcher
	llm   llm.Client
}

// NewService constructs an audit service.
func NewService(repo Repo, seo SEOClient, pages PageFetcher, llmClient llm.Client) *Service {
	return &Service{repo: repo, seo: seo, pages: pages, llm: llmClient}
}

// Run executes the audit legs in order: on-page crawl, keyword ideas for the
// seeds, page text fetch, and LLM suggestions. A failed leg leaves its report
// section empty and adds a warning; the audit only fails outright when every
// leg came back empty.
func (s *Service) Run(ctx context.Context, url string, seedKeywords []string) (Audit, error) {
	now := time.Now().UTC()
	audit := Audit{
		ID:           uuid.NewString(),
		URL:          url,
		SeedKeywords: seedKeywords,
		Status:       StatusRunning,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, audit); err != nil {
		return Audit{}, err
	}
	metrics.IncAuditStarted()

	report := &Report{}

	if resp, err := s.seo.RunOnPageAnalysis(ctx, url); err != nil {
		s.warn(report, audit.ID, "onpage", "On-page analysis did not complete.", err)
	} else if report.OnPage = dataforseo.FlattenOnPage(resp); report.OnPage == nil {
		s.warn(report, audit.ID, "onpage", "On-page analysis returned no page data.", nil)
	}

	if len(seedKeywords) > 0 {
		if resp, err := s.seo.KeywordIdeas(ctx, seedKeywords, 0, "", 0); err != nil {
			s.warn(report, audit.ID, "keyword_ideas", "Keyword ideas could not be fetched.", err)
		} else {
			report.KeywordIdeas = dataforseo.KeywordIdeaRows(resp)
		}
	}

	pageText, err := s.pages.FetchText(ctx, url)
	if err != nil {
		s.warn(report, audit.ID, "page_text", "Page content could not be fetched for suggestions.", err)
	} else if strings.TrimSpace(pageText) == "" {
		s.warn(report, audit.ID, "page_text", "Page contained no visible text.", nil)
	} else {
		generator := newRetryingLLM(s.llm, audit.ID)
		out, err := generator.GenerateText(ctx, llm.SEOSuggestionsPrompt(pageText))
		if err != nil {
			s.warn(report, audit.ID, "suggestions", "AI suggestions are unavailable for this run.", err)
		} else {
			report.Suggestions = strings.TrimSpace(out)
		}
	}

	if err := ctx.Err(); err != nil {
		return Audit{}, err
	}

	audit.Status = reportStatus(report)
	audit.Report = report
	if err := s.repo.UpdateStatus(ctx, audit.ID, audit.Status, report); err != nil {
		return Audit{}, err
	}
	switch audit.Status {
	case StatusFailed:
		metrics.IncAuditFailed()
	default:
		metrics.IncAuditCompleted()
	}

	return s.repo.GetByID(ctx, audit.ID)
}

// Get returns a single audit by ID.
func (s *Service) Get(ctx context.Context, auditID string) (Audit, error) {
	return s.repo.GetByID(ctx, auditID)
}

// List returns recent audits.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Audit, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) warn(report *Report, auditID, leg, message string, err error) {
	fields := map[string]any{
		"audit_id": auditID,
		"leg":      leg,
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	telemetry.Error("audits.leg_failed", fields)
	report.Warnings = append(report.Warnings, message)
}

func reportStatus(report *Report) string {
	hasData := report.OnPage != nil || len(report.KeywordIdeas) > 0 || report.Suggestions != ""
	switch {
	case !hasData:
		return StatusFailed
	case len(report.Warnings) > 0:
		return StatusPartial
	default:
		return StatusCompleted
	}
}
