package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elyasalemi10/bwa-catalog/internal/common"
	"github.com/elyasalemi10/bwa-catalog/internal/entity"
)

// newTestRepo runs the real repository against a throwaway sqlite file, the
// same code path production uses for non-postgres DSNs.
func newTestRepo(t *testing.T) ProductRepository {
	t.Helper()
	ctx := context.Background()

	store, err := Open(ctx, Config{DSN: filepath.Join(t.TempDir(), "catalog.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	require.NoError(t, store.EnsureSchema(ctx))
	return NewProductRepository(store, nil)
}

func insertProduct(t *testing.T, repo ProductRepository, code, category string) *entity.Product {
	t.Helper()
	p, err := repo.Insert(context.Background(), &entity.Product{
		Code:        code,
		Category:    category,
		Description: "desc for " + code,
		Price:       "45.00",
	})
	require.NoError(t, err)
	return p
}

func TestInsertAndGetByCode(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := insertProduct(t, repo, "B001", "Bathroom")
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByCode(ctx, "B001")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Bathroom", got.Category)

	// lookup is case-insensitive
	got, err = repo.GetByCode(ctx, "b001")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestGetByCode_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByCode(context.Background(), "ZZ999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestInsert_DuplicateCode(t *testing.T) {
	repo := newTestRepo(t)

	insertProduct(t, repo, "K001", "Kitchen")
	_, err := repo.Insert(context.Background(), &entity.Product{Code: "K001", Category: "Kitchen"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrCodeExists))
}

func TestMaxCodeForPrefix(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	t.Run("empty namespace", func(t *testing.T) {
		max, err := repo.MaxCodeForPrefix(ctx, "K")
		require.NoError(t, err)
		assert.Equal(t, "", max)
	})

	insertProduct(t, repo, "K001", "Kitchen")
	insertProduct(t, repo, "K999", "Kitchen")
	insertProduct(t, repo, "B005", "Bathroom")

	t.Run("highest in namespace", func(t *testing.T) {
		max, err := repo.MaxCodeForPrefix(ctx, "K")
		require.NoError(t, err)
		assert.Equal(t, "K999", max)
	})

	t.Run("widened suffix outranks lexicographic order", func(t *testing.T) {
		insertProduct(t, repo, "K1000", "Kitchen")
		max, err := repo.MaxCodeForPrefix(ctx, "K")
		require.NoError(t, err)
		assert.Equal(t, "K1000", max)
	})

	t.Run("other namespace untouched", func(t *testing.T) {
		max, err := repo.MaxCodeForPrefix(ctx, "B")
		require.NoError(t, err)
		assert.Equal(t, "B005", max)
	})
}

func TestListByCategory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	insertProduct(t, repo, "K002", "Kitchen")
	insertProduct(t, repo, "K001", "Kitchen")
	insertProduct(t, repo, "B001", "Bathroom")

	kitchen, err := repo.ListByCategory(ctx, "Kitchen")
	require.NoError(t, err)
	require.Len(t, kitchen, 2)
	assert.Equal(t, "K001", kitchen[0].Code)
	assert.Equal(t, "K002", kitchen[1].Code)

	all, err := repo.ListByCategory(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLookupByCodes(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	insertProduct(t, repo, "BW-001", "Bathroom")
	insertProduct(t, repo, "BW-002", "Tapware")

	found, anomalies, err := repo.LookupByCodes(ctx, []string{"bw-001", "BW-002", "BW-404"})
	require.NoError(t, err)
	assert.Empty(t, anomalies)
	require.Len(t, found, 2)
	assert.Equal(t, "BW-001", found["BW-001"].Code)
	assert.Equal(t, "BW-002", found["BW-002"].Code)
	assert.NotContains(t, found, "BW-404")
}

func TestLookupByCodes_Empty(t *testing.T) {
	repo := newTestRepo(t)

	found, anomalies, err := repo.LookupByCodes(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Empty(t, anomalies)
}

func TestLookupByCodes_CaseVariantAnomaly(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// The unique constraint is on the raw code, so case-variant duplicates
	// can land out of band. They collapse onto one key at lookup time.
	first := insertProduct(t, repo, "BW-001", "Bathroom")
	insertProduct(t, repo, "bw-001", "Bathroom")

	found, anomalies, err := repo.LookupByCodes(ctx, []string{"BW-001"})
	require.NoError(t, err)
	assert.Equal(t, []string{"BW-001"}, anomalies)
	require.Contains(t, found, "BW-001")
	// first row by insertion order wins
	assert.Equal(t, first.ID, found["BW-001"].ID)
}
