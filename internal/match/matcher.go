// Package match reconciles extracted code tokens against the existing
// catalog for the live-selection path. It never writes.
package match

import (
	"context"
	"log/slog"
	"strings"

	"github.com/elyasalemi10/bwa-catalog/internal/common"
	"github.com/elyasalemi10/bwa-catalog/internal/entity"
)

// Store is the read-only slice of the catalog the matcher needs.
type Store interface {
	LookupByCodes(ctx context.Context, codes []string) (map[string]*entity.Product, []string, error)
}

// Result partitions the codes seen in a document: every input code lands in
// exactly one of Matched (in first-appearance order) or NotFound.
// Anomalies lists codes answered by more than one catalog row; those still
// match (first row by insertion order) but need operator attention.
type Result struct {
	Matched   []*entity.Product `json:"matched"`
	NotFound  []string          `json:"not_found"`
	Anomalies []string          `json:"anomalies,omitempty"`
}

type Matcher struct {
	store  Store
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{store: store, logger: logger}
}

// Match resolves codes against the catalog with one batched lookup and
// case-insensitive exact equality.
func (m *Matcher) Match(ctx context.Context, codes []string) (*Result, error) {
	res := &Result{Matched: []*entity.Product{}, NotFound: []string{}}
	if len(codes) == 0 {
		return res, nil
	}

	found, anomalies, err := m.store.LookupByCodes(ctx, codes)
	if err != nil {
		return nil, common.NewAppError("MATCH_LOOKUP", "catalog store unreachable", common.ErrCatalogLookup)
	}

	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		key := strings.ToUpper(strings.TrimSpace(code))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if p, ok := found[key]; ok {
			res.Matched = append(res.Matched, p)
		} else {
			res.NotFound = append(res.NotFound, key)
		}
	}
	res.Anomalies = anomalies

	if len(anomalies) > 0 {
		m.logger.Warn("match.duplicate_rows", "codes", anomalies)
	}
	m.logger.Info("match.ok", "requested", len(seen), "matched", len(res.Matched), "not_found", len(res.NotFound))
	return res, nil
}
