package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/elyasalemi10/bwa-catalog/internal/common"
)

// PDFExtractor reads text from born-digital PDFs. Scanned-image-only pages
// carry no text objects and come back as empty blocks with the real page
// count, so the caller can report "no products found" instead of failing.
type PDFExtractor struct {
	limits Limits
	logger *slog.Logger
}

func NewPDFExtractor(limits Limits, logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{limits: limits, logger: logger}
}

func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (doc *Document, err error) {
	if e.limits.MaxBytes > 0 && int64(len(data)) > e.limits.MaxBytes {
		return nil, common.NewAppError("UPLOAD_TOO_LARGE",
			fmt.Sprintf("upload exceeds %d bytes", e.limits.MaxBytes), common.ErrInvalidInput)
	}
	if len(data) == 0 {
		return nil, common.NewAppError("EMPTY_UPLOAD", "no bytes received", common.ErrExtraction)
	}

	// ledongthuc/pdf panics on some malformed xref tables.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("pdf reader panic", "panic", r)
			doc = nil
			err = common.NewAppError("MALFORMED_PDF", fmt.Sprintf("reader panic: %v", r), common.ErrExtraction)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Warn("pdf open failed", "error", err)
		return nil, common.NewAppError("MALFORMED_PDF", "not a readable PDF container", common.ErrExtraction)
	}

	n := r.NumPage()
	if n == 0 {
		return nil, common.NewAppError("EMPTY_PDF", "zero extractable pages", common.ErrExtraction)
	}
	if e.limits.MaxPages > 0 && n > e.limits.MaxPages {
		return nil, common.NewAppError("TOO_MANY_PAGES",
			fmt.Sprintf("%d pages exceeds limit of %d", n, e.limits.MaxPages), common.ErrInvalidInput)
	}

	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, assembleLines(p.Content().Text))
	}

	e.logger.Debug("pdf extracted", "pages", n, "bytes", len(data))
	return &Document{PageCount: n, Pages: pages}, nil
}

type textRow struct {
	y     float64
	spans []pdf.Text
}

// assembleLines groups positioned text spans into visual lines. Spans whose
// baselines sit within rowTolerance of each other belong to the same line;
// lines are emitted top to bottom, spans left to right. Adjacent spans are
// concatenated without a space when the horizontal gap is below spaceGap,
// which rejoins char-by-char PDFs into whole tokens.
func assembleLines(texts []pdf.Text) string {
	const (
		rowTolerance = 2.0
		spaceGap     = 1.0
	)

	var rows []textRow
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		placed := false
		for i := range rows {
			if abs(rows[i].y-t.Y) < rowTolerance {
				rows[i].spans = append(rows[i].spans, t)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, textRow{y: t.Y, spans: []pdf.Text{t}})
		}
	}

	// PDF Y grows upward; higher Y renders first.
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].y > rows[j].y })

	var b strings.Builder
	for ri, row := range rows {
		sort.SliceStable(row.spans, func(i, j int) bool { return row.spans[i].X < row.spans[j].X })
		if ri > 0 {
			b.WriteByte('\n')
		}
		var prevEnd float64
		for si, s := range row.spans {
			if si > 0 && s.X-prevEnd > spaceGap {
				b.WriteByte(' ')
			}
			b.WriteString(s.S)
			prevEnd = s.X + s.W
		}
	}
	return b.String()
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
