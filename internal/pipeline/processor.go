// Package pipeline coordinates the ingestion stages: text extraction, record
// parsing, then either catalog import (mint new codes) or selection matching
// (reconcile against existing rows), depending on caller intent.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/elyasalemi10/bwa-catalog/internal/alloc"
	"github.com/elyasalemi10/bwa-catalog/internal/common"
	"github.com/elyasalemi10/bwa-catalog/internal/entity"
	"github.com/elyasalemi10/bwa-catalog/internal/extract"
	"github.com/elyasalemi10/bwa-catalog/internal/match"
	"github.com/elyasalemi10/bwa-catalog/internal/parser"
)

type Processor struct {
	logger    *slog.Logger
	extractor extract.TextExtractor
	profiles  map[string]parser.Config
	allocator *alloc.Allocator
	matcher   *match.Matcher
}

func NewProcessor(
	logger *slog.Logger,
	extractor extract.TextExtractor,
	profiles map[string]parser.Config,
	allocator *alloc.Allocator,
	matcher *match.Matcher,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if profiles == nil {
		profiles = map[string]parser.Config{}
	}
	return &Processor{
		logger:    logger,
		extractor: extractor,
		profiles:  profiles,
		allocator: allocator,
		matcher:   matcher,
	}
}

// FailedRecord reports one record that could not be imported; the rest of
// the upload still proceeds.
type FailedRecord struct {
	VendorCode string `json:"vendor_code"`
	Error      string `json:"error"`
}

// ImportSummary is the outcome of the bulk-import path for one upload.
type ImportSummary struct {
	UploadID  uuid.UUID         `json:"upload_id"`
	PageCount int               `json:"page_count"`
	Imported  []*entity.Product `json:"imported"`
	Failed    []FailedRecord    `json:"failed,omitempty"`
	CodesSeen []string          `json:"codes_seen"`
	Ambiguous []string          `json:"ambiguous,omitempty"`
}

// SelectionResult is the outcome of the live-selection path for one upload.
type SelectionResult struct {
	UploadID  uuid.UUID         `json:"upload_id"`
	PageCount int               `json:"page_count"`
	Matched   []*entity.Product `json:"matched"`
	NotFound  []string          `json:"not_found"`
	Anomalies []string          `json:"anomalies,omitempty"`
}

// Extract runs the text extractor and record parser for one upload under the
// named vendor profile ("" selects the default profile).
func (p *Processor) Extract(ctx context.Context, data []byte, profileName string) (*entity.ExtractionResult, error) {
	cfg, err := p.profileConfig(profileName)
	if err != nil {
		return nil, err
	}

	doc, err := p.extractor.Extract(ctx, data)
	if err != nil {
		return nil, err
	}

	ps, err := parser.New(cfg, p.logger)
	if err != nil {
		return nil, err
	}
	return ps.Parse(doc), nil
}

// ImportPDF extracts records from a vendor quote and imports each one into
// the catalog under the given category, allocating fresh codes. Per-record
// failures are collected, not fatal.
func (p *Processor) ImportPDF(ctx context.Context, data []byte, category, profileName string) (*ImportSummary, error) {
	res, err := p.Extract(ctx, data, profileName)
	if err != nil {
		p.logger.Error("pipeline.import.extract_failed", "error", err)
		return nil, err
	}

	summary := &ImportSummary{
		UploadID:  uuid.New(),
		PageCount: res.PageCount,
		Imported:  []*entity.Product{},
		CodesSeen: res.AllCodes,
		Ambiguous: res.AmbiguousCodes(),
	}

	for _, rec := range res.Records {
		product := productFromRecord(rec)
		created, err := p.allocator.Import(ctx, category, product)
		if err != nil {
			p.logger.Error("pipeline.import.record_failed", "vendor_code", rec.Code, "error", err)
			summary.Failed = append(summary.Failed, FailedRecord{VendorCode: rec.Code, Error: err.Error()})
			continue
		}
		summary.Imported = append(summary.Imported, created)
	}

	p.logger.Info("pipeline.import.ok",
		"upload_id", summary.UploadID,
		"pages", summary.PageCount,
		"imported", len(summary.Imported),
		"failed", len(summary.Failed),
	)
	return summary, nil
}

// SelectFromPDF extracts code tokens from a vendor document and reconciles
// them against the catalog for a live selection draft.
func (p *Processor) SelectFromPDF(ctx context.Context, data []byte, profileName string) (*SelectionResult, error) {
	res, err := p.Extract(ctx, data, profileName)
	if err != nil {
		p.logger.Error("pipeline.select.extract_failed", "error", err)
		return nil, err
	}

	mres, err := p.matcher.Match(ctx, res.AllCodes)
	if err != nil {
		return nil, err
	}

	out := &SelectionResult{
		UploadID:  uuid.New(),
		PageCount: res.PageCount,
		Matched:   mres.Matched,
		NotFound:  mres.NotFound,
		Anomalies: mres.Anomalies,
	}
	p.logger.Info("pipeline.select.ok",
		"upload_id", out.UploadID,
		"pages", out.PageCount,
		"matched", len(out.Matched),
		"not_found", len(out.NotFound),
	)
	return out, nil
}

func (p *Processor) profileConfig(name string) (parser.Config, error) {
	if name == "" {
		return parser.DefaultConfig(), nil
	}
	cfg, ok := p.profiles[name]
	if !ok {
		return parser.Config{}, common.NewAppError("UNKNOWN_PROFILE",
			fmt.Sprintf("no vendor profile named %q", name), common.ErrInvalidInput)
	}
	return cfg, nil
}

// productFromRecord maps an extracted record onto a catalog row proposal.
// The allocator supplies the catalog code; the vendor's own code token is
// kept in the details so the operator can cross-check the quote.
func productFromRecord(rec entity.ExtractedRecord) entity.Product {
	p := entity.Product{
		Description:             firstWords(rec.ManufacturerDescription, 8),
		ManufacturerDescription: rec.ManufacturerDescription,
		ProductDetails:          "vendor ref " + rec.Code,
	}
	if rec.Notes != nil {
		p.ProductDetails += "; " + *rec.Notes
	}
	if rec.Price != nil {
		p.Price = *rec.Price
	}
	if rec.ImageURL != nil {
		p.ImageURL = *rec.ImageURL
	}
	return p
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
