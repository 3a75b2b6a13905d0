package llm

import "fmt"

// MaxPromptInput caps the amount of page or document text forwarded to the
// model.
const MaxPromptInput = 4000

// TruncateInput trims text to MaxPromptInput characters.
func TruncateInput(text string) string {
	if len(text) <= MaxPromptInput {
		return text
	}
	return text[:MaxPromptInput]
}

// SEOSuggestionsPrompt builds the prompt asking for keywords, topic ideas and
// improvements for the given page content.
func SEOSuggestionsPrompt(pageText string) string {
	return "Analyze the following web page content and suggest SEO keywords, " +
		"blog topic ideas, and improvements to increase organic visibility.\n\n" +
		TruncateInput(pageText)
}

// SummaryPrompt builds the prompt asking for a brief summary of a document.
func SummaryPrompt(fileName, text string) string {
	return fmt.Sprintf("Provide a brief summary for the following document '%s':\n%s\n\nSummary:",
		fileName, TruncateInput(text))
}
