// Package textextract normalizes heterogeneous source content (PDF,
// rich-text, plain text, tabular exports) into plain-text pages ready
// for chunking. Extraction never fails outright: a source that cannot
// be read degrades to a sentinel placeholder page so ingestion can
// still record the document for the caller to inspect and retry.
package textextract

import (
	"strings"

	"docubase/internal/model"
)

// Page is one page of extracted text. Sources without page structure
// produce a single page numbered 1.
type Page struct {
	Number int
	Text   string
}

// Result is the normalized output of extraction for one source.
type Result struct {
	Pages []Page
	// Placeholder is true when extraction degraded to the sentinel note
	// instead of real content.
	Placeholder bool
}

// Normalized joins the page texts into the single text stream chunk
// offsets refer to.
func (r Result) Normalized() string {
	parts := make([]string, len(r.Pages))
	for i, p := range r.Pages {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\n")
}

// Extractor turns raw source bytes into normalized text pages.
type Extractor interface {
	Extract(data []byte) Result
}

// Registry maps source kinds to their extractors.
type Registry struct {
	byKind map[model.SourceKind]Extractor
}

func NewRegistry() *Registry {
	return &Registry{byKind: map[model.SourceKind]Extractor{
		model.SourcePDF:       &PDF{},
		model.SourceRichText:  &RichText{},
		model.SourcePlainText: &Plain{},
		model.SourceTabular:   &Tabular{},
		// Remote tabular bytes arrive pre-fetched; parsing is identical.
		model.SourceTabularRemote: &Tabular{},
	}}
}

// Register replaces the extractor for a kind, the hook for future
// source kinds or an OCR-capable PDF path.
func (r *Registry) Register(kind model.SourceKind, e Extractor) {
	r.byKind[kind] = e
}

func (r *Registry) Lookup(kind model.SourceKind) (Extractor, bool) {
	e, ok := r.byKind[kind]
	return e, ok
}

// placeholder builds the sentinel result for failed extraction.
func placeholder(reason string) Result {
	return Result{
		Pages:       []Page{{Number: 1, Text: "[extraction failed: " + reason + "]"}},
		Placeholder: true,
	}
}
