// Package rag defines the values passed through the retrieval-augmented answer
// pipeline and the pure steps that shape them: citation deduplication, prompt
// assembly and answer rendering.
package rag

import "context"

// NoResultsMessage is the answer returned when retrieval yields nothing
const NoResultsMessage = "No relevant documents found."

// DefaultCategory is used when a retrieved chunk carries no category attribute
const DefaultCategory = "Uncategorized"

// Query is a user question, optionally scoped to a category
type Query struct {
	Text     string
	Category *string
}

// NewQuery builds a Query. An empty category is treated as absent.
func NewQuery(text, category string) Query {
	q := Query{Text: text}
	if category != "" {
		q.Category = &category
	}
	return q
}

// CategoryValue returns the category or "" when absent
func (q Query) CategoryValue() string {
	if q.Category == nil {
		return ""
	}
	return *q.Category
}

// RetrievalResult is one chunk returned by the knowledge base, in service relevance order
type RetrievalResult struct {
	Text       string
	SourceURI  string
	PageNumber int
	Category   string
	Score      float64
	Metadata   map[string]any
}

// Citation is a deduplicated reference to one source document
type Citation struct {
	ID          int     `json:"id"`
	SourceURI   string  `json:"source_uri"`
	Filename    string  `json:"filename"`
	DownloadURL *string `json:"download_url"`
	PageNumber  int     `json:"page_number"`
	Category    string  `json:"category"`
	Score       float64 `json:"score"`
	Snippet     string  `json:"snippet"`
}

// AnswerPackage is the pipeline output for one query
type AnswerPackage struct {
	AnswerText   string
	Citations    []Citation
	TotalSources int
}

// EmptyAnswer is the package returned when retrieval finds no chunks
func EmptyAnswer() *AnswerPackage {
	return &AnswerPackage{
		AnswerText:   NoResultsMessage,
		Citations:    []Citation{},
		TotalSources: 0,
	}
}

// Retriever queries the knowledge base
type Retriever interface {
	Retrieve(ctx context.Context, query Query) ([]RetrievalResult, error)
}

// Generator produces a completion for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Presigner turns a source locator into a time-limited download link.
// ok is false when no link is available.
type Presigner interface {
	PresignURI(ctx context.Context, uri string) (url string, ok bool)
}
