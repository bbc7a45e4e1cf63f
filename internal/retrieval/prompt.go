package retrieval

import (
	"fmt"
	"strings"
)

// SourceRef is one entry of the sources manifest returned with an
// assembled prompt. Ref matches the {{ref:N}} markers the answer
// generator is instructed to emit, so callers can render citations.
type SourceRef struct {
	Ref      int     `json:"ref"`
	Document string  `json:"document"`
	Page     int     `json:"page"`
	Content  string  `json:"content"`
	Score    float64 `json:"score"`
}

// Assembled is a grounded prompt plus the manifest of cited sources.
type Assembled struct {
	Prompt  string      `json:"prompt"`
	Sources []SourceRef `json:"sources"`
}

// Assemble renders ranked chunks into a citation-annotated context
// block followed by the question. Sources are numbered 1..N in ranking
// order, independent of chunk index. With no ranked chunks the question
// is returned bare with an empty manifest, degrading to an un-grounded
// query instead of failing. docNames maps document id to display name.
func Assemble(question string, ranked []Scored, docNames map[uint]string) Assembled {
	if len(ranked) == 0 {
		return Assembled{Prompt: question, Sources: []SourceRef{}}
	}

	var b strings.Builder
	sources := make([]SourceRef, 0, len(ranked))

	b.WriteString("Answer the question using only the numbered sources below.\n\n")
	for i, r := range ranked {
		ref := i + 1
		name := docNames[r.Chunk.DocumentID]
		fmt.Fprintf(&b, "[Source %d: %s, page %d]\n%s\n\n", ref, name, r.Chunk.Page, r.Chunk.Content)
		sources = append(sources, SourceRef{
			Ref:      ref,
			Document: name,
			Page:     r.Chunk.Page,
			Content:  r.Chunk.Content,
			Score:    r.Score,
		})
	}

	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n\nMark every claim with an inline reference {{ref:N}} naming the numbered source it came from. If the sources do not contain the answer, say so instead of guessing.")

	return Assembled{Prompt: b.String(), Sources: sources}
}
