package documents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"seo-backend/internal/extract"
	"seo-backend/internal/llm"
	"seo-backend/internal/shared/telemetry"
)

// Document is an in-memory document handed to the service for summarization.
type Document struct {
	Name string
	Data []byte
}

// Summary is the model-produced summary of one document.
type Summary struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

// Service extracts document text and produces per-document summaries.
type Service struct {
	llm llm.Client
}

// NewService constructs a document summarization service.
func NewService(client llm.Client) *Service {
	return &Service{llm: client}
}

// Summarize returns one summary per document that yields text and a summary.
// Documents whose extraction or summarization fails are skipped with a log
// line, so one bad file never sinks the batch.
func (s *Service) Summarize(ctx context.Context, docs []Document) ([]Summary, error) {
	summaries := make([]Summary, 0, len(docs))
	for _, doc := range docs {
		text, err := extract.Bytes(doc.Data, filepath.Ext(doc.Name))
		if err != nil {
			telemetry.Error("documents.extract.failed", map[string]any{
				"name": doc.Name,
				"err":  err.Error(),
			})
			continue
		}
		if strings.TrimSpace(text) == "" {
			telemetry.Info("documents.skipped.empty", map[string]any{"name": doc.Name})
			continue
		}

		out, err := s.llm.GenerateText(ctx, llm.SummaryPrompt(doc.Name, text))
		if err != nil {
			telemetry.Error("documents.summarize.failed", map[string]any{
				"name": doc.Name,
				"err":  err.Error(),
			})
			continue
		}
		summaries = append(summaries, Summary{Name: doc.Name, Summary: strings.TrimSpace(out)})
	}
	return summaries, ctx.Err()
}

// SummarizeFolder walks dir, summarizing every regular file with a supported
// extension, in lexical order.
func (s *Service) SummarizeFolder(ctx context.Context, dir string) ([]Summary, error) {
	var docs []Document
	err := filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			telemetry.Error("documents.read.failed", map[string]any{
				"path": path,
				"err":  readErr.Error(),
			})
			return nil
		}
		docs = append(docs, Document{Name: entry.Name(), Data: data})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("summarize folder %s: %w", dir, err)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return s.Summarize(ctx, docs)
}

// Render joins summaries into a single markdown report, one section per
// document.
func Render(summaries []Summary) string {
	sections := make([]string, 0, len(summaries))
	for _, sum := range summaries {
		sections = append(sections, fmt.Sprintf("### %s\n%s", sum.Name, sum.Summary))
	}
	return strings.Join(sections, "\n\n")
}
