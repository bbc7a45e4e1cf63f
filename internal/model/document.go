package model

import "time"

// SourceKind tells the extractor how to interpret a document's raw content.
type SourceKind string

const (
	SourcePDF           SourceKind = "pdf"
	SourceRichText      SourceKind = "richtext"
	SourcePlainText     SourceKind = "plaintext"
	SourceTabular       SourceKind = "tabular"
	SourceTabularRemote SourceKind = "tabular_remote"
)

// Valid reports whether k is one of the supported source kinds.
func (k SourceKind) Valid() bool {
	switch k {
	case SourcePDF, SourceRichText, SourcePlainText, SourceTabular, SourceTabularRemote:
		return true
	}
	return false
}

// Document is one ingested source. It is created before extraction starts
// and stays inactive until all its chunks are persisted and stats are set;
// an inactive document is never returned by retrieval.
type Document struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CollectionID uint       `gorm:"not null;index" json:"collection_id"`
	Name         string     `gorm:"size:256;not null" json:"name"`
	SourceRef    string     `gorm:"size:512;not null" json:"source_ref"` // original filename or URL
	Kind         SourceKind `gorm:"size:32;not null" json:"kind"`
	UploadedBy   string     `gorm:"size:128" json:"uploaded_by,omitempty"`
	Active       bool       `gorm:"not null;default:false" json:"active"`
	TotalChunks  int        `gorm:"not null;default:0" json:"total_chunks"`
	TotalPages   int        `gorm:"not null;default:0" json:"total_pages"`
	CreatedAt    time.Time  `json:"created_at"`
}

// DocumentBlob keeps the raw uploaded bytes of a document so it can be
// re-indexed without a re-upload. Remote tabular sources are re-fetched
// instead and have no blob row.
type DocumentBlob struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID uint      `gorm:"not null;uniqueIndex" json:"document_id"`
	Data       []byte    `gorm:"type:longblob" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}
