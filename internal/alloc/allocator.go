// Package alloc assigns new catalog codes from per-category sequential
// namespaces. The "next number" is never held in process state; it is
// derived from the catalog on every allocation so multiple instances and
// restarts cannot drift from the persisted truth. Concurrent allocations
// under one prefix are serialized by a per-prefix mutex in this process and
// by the store's unique constraint across processes, with a bounded retry
// when the constraint fires anyway.
package alloc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/elyasalemi10/bwa-catalog/constants"
	"github.com/elyasalemi10/bwa-catalog/internal/common"
	"github.com/elyasalemi10/bwa-catalog/internal/entity"
)

const (
	// suffixWidth is the minimum zero-padded width of the numeric portion.
	// Numbers that outgrow it widen rather than truncate.
	suffixWidth = 3

	defaultMaxRetries = 3
)

// Store is the slice of the catalog the allocator needs.
type Store interface {
	MaxCodeForPrefix(ctx context.Context, prefix string) (string, error)
	Insert(ctx context.Context, p *entity.Product) (*entity.Product, error)
}

type Allocator struct {
	store      Store
	logger     *slog.Logger
	maxRetries int

	mu          sync.Mutex
	prefixLocks map[string]*sync.Mutex
}

func New(store Store, logger *slog.Logger) *Allocator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Allocator{
		store:       store,
		logger:      logger,
		maxRetries:  defaultMaxRetries,
		prefixLocks: make(map[string]*sync.Mutex),
	}
}

// Import allocates a fresh code for the product's category and persists the
// row. On a unique-constraint conflict (a concurrent import from another
// instance won the race) the next number is recomputed and the insert
// retried, a bounded number of times.
func (a *Allocator) Import(ctx context.Context, category string, p entity.Product) (*entity.Product, error) {
	prefix := constants.PrefixFor(category)
	lock := a.lockFor(prefix)
	lock.Lock()
	defer lock.Unlock()

	p.Category = category

	for attempt := 1; attempt <= a.maxRetries; attempt++ {
		code, err := a.nextCode(ctx, prefix)
		if err != nil {
			return nil, err
		}
		p.Code = code

		created, err := a.store.Insert(ctx, &p)
		if err == nil {
			a.logger.Info("alloc.import.ok", "code", code, "category", category, "attempt", attempt)
			return created, nil
		}
		if !errors.Is(err, common.ErrCodeExists) {
			return nil, err
		}
		a.logger.Warn("alloc.code_conflict", "code", code, "attempt", attempt)
	}
	return nil, common.NewAppError("ALLOC_RETRIES",
		fmt.Sprintf("could not allocate a code under prefix %s after %d attempts", prefix, a.maxRetries),
		common.ErrAllocationConflict)
}

// nextCode derives the next free code under a prefix from current catalog
// state: highest existing suffix plus one, zero-padded.
func (a *Allocator) nextCode(ctx context.Context, prefix string) (string, error) {
	max, err := a.store.MaxCodeForPrefix(ctx, prefix)
	if err != nil {
		return "", common.NewAppError("ALLOC_READ", "reading max code for "+prefix, common.ErrCatalogLookup)
	}
	next := parseSuffix(max, prefix) + 1
	return fmt.Sprintf("%s%0*d", prefix, suffixWidth, next), nil
}

// parseSuffix extracts the numeric suffix of an existing code. Empty or
// unparseable suffixes count as zero so the sequence starts at 1.
func parseSuffix(code, prefix string) int {
	if len(code) <= len(prefix) {
		return 0
	}
	n, err := strconv.Atoi(code[len(prefix):])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (a *Allocator) lockFor(prefix string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	if l, ok := a.prefixLocks[prefix]; ok {
		return l
	}
	l := &sync.Mutex{}
	a.prefixLocks[prefix] = l
	return l
}
