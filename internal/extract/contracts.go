package extract

import "context"

// Document is the plain-text view of an uploaded vendor PDF: one text block
// per page, line breaks preserved within a page.
type Document struct {
	PageCount int
	Pages     []string
}

// TextExtractor turns raw document bytes into per-page text blocks.
// Implementations are pure: no side effects beyond the decoded buffer.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (*Document, error)
}

// Limits bounds extraction work. Zero values disable the corresponding cap.
type Limits struct {
	MaxBytes int64
	MaxPages int
}
