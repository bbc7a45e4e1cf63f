package textextract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// RichText extracts the textual runs of a DOCX document, discarding
// all formatting. DOCX is a ZIP archive; the body text lives in
// word/document.xml as paragraphs of runs.
type RichText struct{}

func (e *RichText) Extract(data []byte) Result {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return placeholder("unreadable document archive: " + err.Error())
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return placeholder("open document body failed: " + err.Error())
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return placeholder("read document body failed: " + err.Error())
		}

		text := parseDocumentXML(content)
		if strings.TrimSpace(text) == "" {
			return placeholder("document has no text runs")
		}
		return Result{Pages: []Page{{Number: 1, Text: text}}}
	}
	return placeholder("document body not found")
}

type documentXML struct {
	Body struct {
		Paragraphs []struct {
			Runs []struct {
				Text []struct {
					Content string `xml:",chardata"`
				} `xml:"t"`
			} `xml:"r"`
		} `xml:"p"`
	} `xml:"body"`
}

func parseDocumentXML(content []byte) string {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return ""
	}

	var b strings.Builder
	for _, p := range doc.Body.Paragraphs {
		var line strings.Builder
		for _, r := range p.Runs {
			for _, t := range r.Text {
				line.WriteString(t.Content)
			}
		}
		if s := strings.TrimSpace(line.String()); s != "" {
			b.WriteString(s)
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}
