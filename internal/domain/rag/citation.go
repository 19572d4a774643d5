package rag

import (
	"context"
	"math"

	"github.com/cvassistant/backend/internal/domain/document"
)

// SnippetLength is the number of characters of chunk text kept in a citation
const SnippetLength = 200

// CitationBuilder collects citations keyed by source URI, first occurrence wins.
// Ids are assigned densely from 1 in insertion order.
type CitationBuilder struct {
	presigner Presigner
	index     map[string]int
	citations []Citation
}

// NewCitationBuilder creates a builder. A nil presigner yields citations without download links.
func NewCitationBuilder(presigner Presigner) *CitationBuilder {
	return &CitationBuilder{
		presigner: presigner,
		index:     make(map[string]int),
		citations: []Citation{},
	}
}

// Add records result and returns its citation id. Repeated source URIs are
// not presigned again and keep the page and score of their first occurrence.
func (b *CitationBuilder) Add(ctx context.Context, result RetrievalResult) int {
	if id, ok := b.index[result.SourceURI]; ok {
		return id
	}

	id := len(b.citations) + 1
	citation := Citation{
		ID:         id,
		SourceURI:  result.SourceURI,
		Filename:   document.ExtractFilename(result.SourceURI),
		PageNumber: result.PageNumber,
		Category:   result.Category,
		Score:      RoundScore(result.Score),
		Snippet:    Snippet(result.Text),
	}
	if b.presigner != nil {
		if url, ok := b.presigner.PresignURI(ctx, result.SourceURI); ok {
			citation.DownloadURL = &url
		}
	}

	b.index[result.SourceURI] = id
	b.citations = append(b.citations, citation)
	return id
}

// Citations returns the collected citations in id order
func (b *CitationBuilder) Citations() []Citation {
	return b.citations
}

// Len returns the number of distinct sources seen
func (b *CitationBuilder) Len() int {
	return len(b.citations)
}

// RoundScore rounds a relevance score to 4 decimal places
func RoundScore(score float64) float64 {
	return math.Round(score*1e4) / 1e4
}

// Snippet returns the first SnippetLength characters of text followed by "..."
func Snippet(text string) string {
	runes := []rune(text)
	if len(runes) > SnippetLength {
		runes = runes[:SnippetLength]
	}
	return string(runes) + "..."
}
