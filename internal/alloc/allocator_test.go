package alloc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elyasalemi10/bwa-catalog/internal/common"
	"github.com/elyasalemi10/bwa-catalog/internal/entity"
)

// fakeStore mimics the repository's max-code semantics: longest suffix
// first, then lexicographic, with a unique constraint on code.
type fakeStore struct {
	mu     sync.Mutex
	rows   map[string]entity.Product
	nextID int64

	// failInserts forces the first n Inserts to report a code conflict.
	failInserts int
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string]entity.Product{}}
}

func (s *fakeStore) MaxCodeForPrefix(_ context.Context, prefix string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	max := ""
	for code := range s.rows {
		if !strings.HasPrefix(code, prefix) {
			continue
		}
		if len(code) > len(max) || (len(code) == len(max) && code > max) {
			max = code
		}
	}
	return max, nil
}

func (s *fakeStore) Insert(_ context.Context, p *entity.Product) (*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInserts > 0 {
		s.failInserts--
		return nil, common.NewAppError("CODE_EXISTS", "forced conflict", common.ErrCodeExists)
	}
	if _, ok := s.rows[p.Code]; ok {
		return nil, common.NewAppError("CODE_EXISTS", "code "+p.Code+" is taken", common.ErrCodeExists)
	}
	s.nextID++
	out := *p
	out.ID = s.nextID
	s.rows[p.Code] = out
	return &out, nil
}

func (s *fakeStore) seed(codes ...string) {
	for _, c := range codes {
		s.nextID++
		s.rows[c] = entity.Product{ID: s.nextID, Code: c}
	}
}

func TestImport_Sequential(t *testing.T) {
	store := newFakeStore()
	a := New(store, nil)

	for i := 1; i <= 5; i++ {
		p, err := a.Import(context.Background(), "Kitchen", entity.Product{Description: "bench"})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("K%03d", i), p.Code)
		assert.Equal(t, "Kitchen", p.Category)
	}
}

func TestImport_PrefixesAreIndependent(t *testing.T) {
	store := newFakeStore()
	a := New(store, nil)

	k, err := a.Import(context.Background(), "Kitchen", entity.Product{})
	require.NoError(t, err)
	b, err := a.Import(context.Background(), "Bathroom", entity.Product{})
	require.NoError(t, err)

	assert.Equal(t, "K001", k.Code)
	assert.Equal(t, "B001", b.Code)
}

func TestImport_UnknownCategoryUsesCatchAll(t *testing.T) {
	store := newFakeStore()
	a := New(store, nil)

	p, err := a.Import(context.Background(), "Gizmos", entity.Product{})
	require.NoError(t, err)
	assert.Equal(t, "X001", p.Code)
	assert.Equal(t, "Gizmos", p.Category)
}

func TestImport_WidensPastPadding(t *testing.T) {
	store := newFakeStore()
	store.seed("K998", "K999")
	a := New(store, nil)

	p, err := a.Import(context.Background(), "Kitchen", entity.Product{})
	require.NoError(t, err)
	assert.Equal(t, "K1000", p.Code)

	p, err = a.Import(context.Background(), "Kitchen", entity.Product{})
	require.NoError(t, err)
	assert.Equal(t, "K1001", p.Code)
}

func TestImport_RetriesOnConflict(t *testing.T) {
	store := newFakeStore()
	store.failInserts = 2
	a := New(store, nil)

	p, err := a.Import(context.Background(), "Kitchen", entity.Product{})
	require.NoError(t, err)
	assert.Equal(t, "K001", p.Code)
}

func TestImport_GivesUpAfterRetries(t *testing.T) {
	store := newFakeStore()
	store.failInserts = 10
	a := New(store, nil)

	_, err := a.Import(context.Background(), "Kitchen", entity.Product{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrAllocationConflict))
}

func TestImport_Concurrent(t *testing.T) {
	store := newFakeStore()
	a := New(store, nil)

	const n = 20
	codes := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := a.Import(context.Background(), "Tapware", entity.Product{})
			if assert.NoError(t, err) {
				codes <- p.Code
			}
		}()
	}
	wg.Wait()
	close(codes)

	seen := map[string]bool{}
	for code := range codes {
		assert.False(t, seen[code], "code %s allocated twice", code)
		seen[code] = true
	}
	assert.Len(t, seen, n)
}

func TestParseSuffix(t *testing.T) {
	assert.Equal(t, 999, parseSuffix("K999", "K"))
	assert.Equal(t, 1000, parseSuffix("K1000", "K"))
	assert.Equal(t, 0, parseSuffix("", "K"))
	assert.Equal(t, 0, parseSuffix("K", "K"))
	assert.Equal(t, 0, parseSuffix("Kabc", "K"))
}
