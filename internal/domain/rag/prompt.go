package rag

import (
	"fmt"
	"strings"
)

const contextSeparator = "\n\n"

// NoDownloadURL is rendered in place of a missing download link
const NoDownloadURL = "None"

// JoinContext concatenates all chunk texts, repeats included, separated by a blank line
func JoinContext(results []RetrievalResult) string {
	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Text)
	}
	return strings.Join(texts, contextSeparator)
}

// BuildPrompt assembles the single-turn grounded prompt sent to the model
func BuildPrompt(systemPrompt, context, question string) string {
	return fmt.Sprintf("%s\n\nContext: %s\n\nQuestion: %s\nAnswer:\n", systemPrompt, context, question)
}

// RenderAnswer appends a citation block to answer. Without citations the answer is returned unchanged.
func RenderAnswer(answer string, citations []Citation) string {
	if len(citations) == 0 {
		return answer
	}

	lines := make([]string, 0, len(citations))
	for _, c := range citations {
		lines = append(lines, CitationLine(c))
	}
	return answer + "\n\n**Citations:**\n" + strings.Join(lines, "\n")
}

// CitationLine renders one citation as a markdown link line
func CitationLine(c Citation) string {
	url := NoDownloadURL
	if c.DownloadURL != nil {
		url = *c.DownloadURL
	}
	return fmt.Sprintf("**Citation %d**: [%s](%s) - Page %d", c.ID, c.Filename, url, c.PageNumber)
}
