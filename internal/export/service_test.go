package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/elyasalemi10/bwa-catalog/internal/common"
	"github.com/elyasalemi10/bwa-catalog/internal/entity"
)

type fakeCatalog struct {
	rows map[string]*entity.Product
	err  error
}

func (f *fakeCatalog) LookupByCodes(_ context.Context, codes []string) (map[string]*entity.Product, []string, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	out := make(map[string]*entity.Product)
	for _, c := range codes {
		key := strings.ToUpper(strings.TrimSpace(c))
		if p, ok := f.rows[key]; ok {
			out[key] = p
		}
	}
	return out, nil, nil
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{rows: map[string]*entity.Product{
		"K001": {ID: 1, Code: "K001", Category: "Kitchen", Description: "Island bench", Price: "1200.00"},
		"T001": {ID: 2, Code: "T001", Category: "Tapware", Description: "Basin mixer", Price: "240.00"},
	}}
}

func TestExportSelection(t *testing.T) {
	svc := NewService(testCatalog(), nil)
	header := Header{
		ProjectName: "12 Sample St",
		Address:     "12 Sample St, Melbourne",
		Contact:     "J. Builder",
		Date:        time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
	}

	data, err := svc.ExportSelection(context.Background(), header, []string{"K001", "t001"})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	cell := func(ref string) string {
		v, err := f.GetCellValue("Selections", ref)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Project", cell("A1"))
	assert.Equal(t, "12 Sample St", cell("B1"))
	assert.Equal(t, "2026-08-28", cell("B4"))

	assert.Equal(t, "Code", cell("A6"))
	assert.Equal(t, "Price", cell("F6"))

	// Rows follow the request order, not catalog order.
	assert.Equal(t, "K001", cell("A7"))
	assert.Equal(t, "Island bench", cell("C7"))
	assert.Equal(t, "1200.00", cell("F7"))
	assert.Equal(t, "T001", cell("A8"))
}

func TestExportSelection_UnknownCodeFails(t *testing.T) {
	svc := NewService(testCatalog(), nil)

	_, err := svc.ExportSelection(context.Background(), Header{}, []string{"K001", "Z999"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestExportSelection_StoreFailure(t *testing.T) {
	svc := NewService(&fakeCatalog{err: errors.New("connection refused")}, nil)

	_, err := svc.ExportSelection(context.Background(), Header{}, []string{"K001"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrCatalogLookup))
}

func TestBuildSelectionXLSX_NoDate(t *testing.T) {
	svc := NewService(testCatalog(), nil)

	data, err := svc.BuildSelectionXLSX(Header{ProjectName: "Job"}, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Selections", "B4")
	require.NoError(t, err)
	assert.Equal(t, "", v)
}
