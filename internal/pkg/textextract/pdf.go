package textextract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// minPDFTextLen is the threshold below which a PDF is assumed to be a
// scanned document with no usable text layer. An OCR fallback would
// slot in here behind the same Extractor interface; until then such
// files degrade to the sentinel.
const minPDFTextLen = 16

// PDF extracts the embedded text layer page by page.
type PDF struct{}

func (e *PDF) Extract(data []byte) (res Result) {
	// The pdf library panics on some malformed files; absorb that into
	// the sentinel like any other extraction fault.
	defer func() {
		if rec := recover(); rec != nil {
			res = placeholder(fmt.Sprintf("pdf parse panic: %v", rec))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return placeholder("unreadable pdf: " + err.Error())
	}

	var pages []Page
	total := 0
	for i := 1; i <= reader.NumPage(); i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		total += len(text)
		pages = append(pages, Page{Number: i, Text: text})
	}

	if total < minPDFTextLen {
		return placeholder("no text layer")
	}
	return Result{Pages: pages}
}
