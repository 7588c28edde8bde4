package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/elyasalemi10/bwa-catalog/internal/common"
	"github.com/elyasalemi10/bwa-catalog/internal/entity"
)

// Header is the job metadata printed at the top of a selection document.
type Header struct {
	ProjectName string    `json:"project_name"`
	Address     string    `json:"address"`
	Contact     string    `json:"contact"`
	Date        time.Time `json:"date"`
}

// Lookup is the read-only catalog slice the exporter needs.
type Lookup interface {
	LookupByCodes(ctx context.Context, codes []string) (map[string]*entity.Product, []string, error)
}

// Service renders selection documents as XLSX workbooks. It is the
// document-merge consumer boundary: it receives reconciled catalog rows plus
// header metadata and produces the final artifact.
type Service struct {
	catalog Lookup
	logger  *slog.Logger
}

func NewService(catalog Lookup, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{catalog: catalog, logger: logger}
}

// ExportSelection resolves codes against the catalog and renders the
// selection workbook. Unknown codes fail the export; a selection document
// must never silently drop a product.
func (s *Service) ExportSelection(ctx context.Context, header Header, codes []string) ([]byte, error) {
	found, _, err := s.catalog.LookupByCodes(ctx, codes)
	if err != nil {
		return nil, common.NewAppError("EXPORT_LOOKUP", "catalog store unreachable", common.ErrCatalogLookup)
	}

	products := make([]*entity.Product, 0, len(codes))
	for _, code := range codes {
		p, ok := found[normalizeCode(code)]
		if !ok {
			return nil, common.NewAppError("EXPORT_UNKNOWN_CODE", "no catalog row for code "+code, common.ErrNotFound)
		}
		products = append(products, p)
	}
	return s.BuildSelectionXLSX(header, products)
}

// BuildSelectionXLSX renders header metadata and product rows into a
// workbook and returns the serialized bytes.
func (s *Service) BuildSelectionXLSX(header Header, products []*entity.Product) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Selections"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	defaultSheet := "Sheet1"
	if idx, _ := f.GetSheetIndex(defaultSheet); idx != -1 && defaultSheet != sheet {
		_ = f.DeleteSheet(defaultSheet)
	}

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	// Job header block
	write(1, 1, "Project")
	write(2, 1, header.ProjectName)
	write(1, 2, "Address")
	write(2, 2, header.Address)
	write(1, 3, "Contact")
	write(2, 3, header.Contact)
	write(1, 4, "Date")
	if !header.Date.IsZero() {
		write(2, 4, header.Date.Format("2006-01-02"))
	}

	headers := []string{
		"Code",
		"Category",
		"Description",
		"Manufacturer Description",
		"Details",
		"Price",
		"Image",
	}
	const tableRow = 6
	for i, h := range headers {
		write(i+1, tableRow, h)
	}

	row := tableRow + 1
	for _, p := range products {
		write(1, row, p.Code)
		write(2, row, p.Category)
		write(3, row, p.Description)
		write(4, row, p.ManufacturerDescription)
		write(5, row, p.ProductDetails)
		write(6, row, p.Price)
		write(7, row, p.ImageURL)
		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 10) // code
	_ = f.SetColWidth(sheet, "B", "B", 16) // category
	_ = f.SetColWidth(sheet, "C", "D", 40) // descriptions
	_ = f.SetColWidth(sheet, "E", "E", 32) // details
	_ = f.SetColWidth(sheet, "F", "F", 12) // price
	_ = f.SetColWidth(sheet, "G", "G", 48) // image url

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"project", header.ProjectName,
		"rows", len(products),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
