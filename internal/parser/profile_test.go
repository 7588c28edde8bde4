package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elyasalemi10/bwa-catalog/internal/common"
)

func TestParseProfile(t *testing.T) {
	t.Run("partial profile merges defaults", func(t *testing.T) {
		cfg, err := ParseProfile([]byte(`{"code_pattern": "^ITM[0-9]{4}$"}`))
		require.NoError(t, err)
		assert.Equal(t, "^ITM[0-9]{4}$", cfg.CodePattern)
		assert.Equal(t, 3, cfg.AdjacencyWindow)
		assert.Equal(t, 2, cfg.MinDescriptionWords)
		assert.Equal(t, "$€£", cfg.CurrencySymbols)
	})

	t.Run("unknown key rejected", func(t *testing.T) {
		_, err := ParseProfile([]byte(`{"code_patern": "^X$"}`))
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrInvalidInput))
	})

	t.Run("wrong type rejected", func(t *testing.T) {
		_, err := ParseProfile([]byte(`{"adjacency_window": "three"}`))
		assert.Error(t, err)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseProfile([]byte(`code_pattern=^X$`))
		assert.Error(t, err)
	})
}

func TestLoadProfiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acme.json"),
		[]byte(`{"code_pattern": "^ACM[0-9]{3}$", "adjacency_window": 5}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"),
		[]byte(`{"adjacency_window": -1}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"),
		[]byte(`ignore me`), 0o644))

	profiles, err := LoadProfiles(dir, nil)
	require.NoError(t, err)

	// Only the valid profile loads; the invalid one is skipped, not fatal.
	require.Contains(t, profiles, "acme")
	assert.NotContains(t, profiles, "broken")
	assert.Equal(t, 5, profiles["acme"].AdjacencyWindow)
}

func TestLoadProfiles_NoDir(t *testing.T) {
	profiles, err := LoadProfiles("", nil)
	require.NoError(t, err)
	assert.Empty(t, profiles)
}
