package textextract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docubase/internal/model"
)

func TestRegistry_CoversAllSourceKinds(t *testing.T) {
	reg := NewRegistry()
	kinds := []model.SourceKind{
		model.SourcePDF,
		model.SourceRichText,
		model.SourcePlainText,
		model.SourceTabular,
		model.SourceTabularRemote,
	}
	for _, kind := range kinds {
		_, ok := reg.Lookup(kind)
		assert.True(t, ok, "missing extractor for kind %q", kind)
	}

	_, ok := reg.Lookup(model.SourceKind("audio"))
	assert.False(t, ok)
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	reg := NewRegistry()
	custom := &Plain{}
	reg.Register(model.SourcePDF, custom)

	got, ok := reg.Lookup(model.SourcePDF)
	require.True(t, ok)
	assert.Same(t, custom, got)
}

func TestResult_NormalizedJoinsPages(t *testing.T) {
	r := Result{Pages: []Page{
		{Number: 1, Text: "first page"},
		{Number: 2, Text: "second page"},
	}}

	assert.Equal(t, "first page\nsecond page", r.Normalized())
}

func TestPlain_PassesTextThrough(t *testing.T) {
	var e Plain

	result := e.Extract([]byte("Hello world. Second sentence."))

	require.Len(t, result.Pages, 1)
	assert.False(t, result.Placeholder)
	assert.Equal(t, 1, result.Pages[0].Number)
	assert.Equal(t, "Hello world. Second sentence.", result.Pages[0].Text)
}

func TestPlain_RepairsInvalidUTF8(t *testing.T) {
	var e Plain

	result := e.Extract([]byte{'o', 'k', 0xff, '!'})

	require.Len(t, result.Pages, 1)
	assert.False(t, result.Placeholder)
	assert.Equal(t, "ok�!", result.Pages[0].Text)
}

func TestPlain_EmptySourceIsPlaceholder(t *testing.T) {
	var e Plain

	result := e.Extract([]byte("   \n\t "))

	assert.True(t, result.Placeholder)
	require.Len(t, result.Pages, 1)
	assert.Contains(t, result.Pages[0].Text, "extraction failed")
}

func TestTabular_RendersRowSentences(t *testing.T) {
	var e Tabular
	csvData := "name,role\nAlice,engineer\nBob,designer\n"

	result := e.Extract([]byte(csvData))

	require.Len(t, result.Pages, 1)
	assert.False(t, result.Placeholder)
	lines := strings.Split(result.Pages[0].Text, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Record 1: name: Alice, role: engineer.", lines[0])
	assert.Equal(t, "Record 2: name: Bob, role: designer.", lines[1])
}

func TestTabular_ExtraColumnsGetPositionalNames(t *testing.T) {
	var e Tabular
	csvData := "name\nAlice,extra\n"

	result := e.Extract([]byte(csvData))

	require.False(t, result.Placeholder)
	assert.Equal(t, "Record 1: name: Alice, column 2: extra.", result.Pages[0].Text)
}

func TestTabular_HeaderOnlyIsPlaceholder(t *testing.T) {
	var e Tabular

	result := e.Extract([]byte("name,role\n"))

	assert.True(t, result.Placeholder)
	assert.Contains(t, result.Pages[0].Text, "no data rows")
}

func TestTabular_MalformedCSVIsPlaceholder(t *testing.T) {
	var e Tabular

	result := e.Extract([]byte("a,\"unterminated\nb,c"))

	assert.True(t, result.Placeholder)
	assert.Contains(t, result.Pages[0].Text, "unreadable csv")
}

func TestTabular_EmptyInputIsPlaceholder(t *testing.T) {
	var e Tabular

	result := e.Extract(nil)

	assert.True(t, result.Placeholder)
	assert.Contains(t, result.Pages[0].Text, "empty table")
}

func docxArchive(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestRichText_ExtractsParagraphRuns(t *testing.T) {
	var e RichText
	body := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second paragraph.</w:t></w:r></w:p>
    <w:p></w:p>
  </w:body>
</w:document>`

	result := e.Extract(docxArchive(t, body))

	require.Len(t, result.Pages, 1)
	assert.False(t, result.Placeholder)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", result.Pages[0].Text)
}

func TestRichText_MissingBodyIsPlaceholder(t *testing.T) {
	var e RichText
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/styles.xml")
	require.NoError(t, err)
	_, _ = f.Write([]byte("<styles/>"))
	require.NoError(t, w.Close())

	result := e.Extract(buf.Bytes())

	assert.True(t, result.Placeholder)
	assert.Contains(t, result.Pages[0].Text, "document body not found")
}

func TestRichText_NotAnArchiveIsPlaceholder(t *testing.T) {
	var e RichText

	result := e.Extract([]byte("this is not a zip file"))

	assert.True(t, result.Placeholder)
	assert.Contains(t, result.Pages[0].Text, "unreadable document archive")
}

func TestRichText_NoTextRunsIsPlaceholder(t *testing.T) {
	var e RichText
	body := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p></w:p></w:body></w:document>`

	result := e.Extract(docxArchive(t, body))

	assert.True(t, result.Placeholder)
	assert.Contains(t, result.Pages[0].Text, "no text runs")
}

func TestPDF_GarbageIsPlaceholder(t *testing.T) {
	var e PDF

	result := e.Extract([]byte("not a pdf at all"))

	assert.True(t, result.Placeholder)
	require.Len(t, result.Pages, 1)
	assert.Contains(t, result.Pages[0].Text, "extraction failed")
}

func TestFetchRemote_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("name,role\nAlice,engineer\n"))
	}))
	defer srv.Close()

	body, err := FetchRemote(context.Background(), srv.Client(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "name,role\nAlice,engineer\n", string(body))
}

func TestFetchRemote_NotFoundIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := FetchRemote(context.Background(), srv.Client(), srv.URL)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.Status)
	assert.Equal(t, srv.URL, fetchErr.URL)
	assert.Contains(t, fetchErr.Error(), "status 404")
}

func TestFetchRemote_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := FetchRemote(context.Background(), http.DefaultClient, srv.URL)

	require.Error(t, err)
	var fetchErr *FetchError
	assert.False(t, errors.As(err, &fetchErr))
}
