package main

// Summarize a folder of documents from the command line:
//   go run ./cmd/summarize -dir ./docs

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"seo-backend/internal/documents"
	"seo-backend/internal/llm/openai"
	"seo-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	dir := flag.String("dir", "", "Folder of documents to summarize")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	flag.Parse()

	if strings.TrimSpace(*dir) == "" {
		exitErr("dir is required")
	}

	client, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), *model)
	if err != nil {
		exitErr(fmt.Sprintf("build llm client: %v", err))
	}

	svc := documents.NewService(client)
	summaries, err := svc.SummarizeFolder(context.Background(), *dir)
	if err != nil {
		exitErr(fmt.Sprintf("summarize folder: %v", err))
	}
	if len(summaries) == 0 {
		exitErr("no documents produced a summary")
	}

	fmt.Println(documents.Render(summaries))
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, "error: "+msg)
	os.Exit(1)
}
