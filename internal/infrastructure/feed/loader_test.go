package feed

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
)

func writeTestWorkbook(t *testing.T, sheets map[string][][]string) string {
	t.Helper()

	f := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range rows {
			for c, v := range row {
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(name, cell, v))
			}
		}
	}

	path := filepath.Join(t.TempDir(), "feed.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParseWorkbook_ParsesAnchorSheetWithKnownAndCustomColumns(t *testing.T) {
	path := writeTestWorkbook(t, map[string][][]string{
		string(entity.CategoryBathtubs): {
			{"Unique ID", "Product Name", "Nominal Dimensions", "Length", "Ranking", "Warranty Years"},
			{"bt-100", "Classic Tub", "60x30", "60", "3", "10"},
		},
	})

	snap, err := ParseWorkbook(path)
	require.NoError(t, err)

	products := snap.ByCategory(entity.CategoryBathtubs)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, "BT-100", p.SKU)
	require.NotNil(t, p.NominalDimensions)
	assert.Equal(t, "60x30", *p.NominalDimensions)
	require.NotNil(t, p.Length)
	assert.True(t, p.Length.Equal(decimal.RequireFromString("60")))
	assert.Equal(t, 3, p.Ranking)
	assert.Equal(t, "10", p.Attributes["Warranty Years"])
}

func TestParseWorkbook_MissingEveryAnchorSheetIsInvalidFeed(t *testing.T) {
	path := writeTestWorkbook(t, map[string][][]string{
		string(entity.CategoryWalls): {
			{"Unique ID", "Product Name"},
			{"w-1", "Wall Panel"},
		},
	})

	_, err := ParseWorkbook(path)
	assert.Error(t, err)
}

func TestParseWorkbook_AnchorSheetMissingNominalDimensionsIsInvalidFeed(t *testing.T) {
	path := writeTestWorkbook(t, map[string][][]string{
		string(entity.CategoryShowers): {
			{"Unique ID", "Product Name"},
			{"sh-1", "Shower Unit"},
		},
	})

	_, err := ParseWorkbook(path)
	assert.Error(t, err)
}

func TestParseWorkbook_BlankSKURowsAreSkipped(t *testing.T) {
	path := writeTestWorkbook(t, map[string][][]string{
		string(entity.CategoryBathtubs): {
			{"Unique ID", "Product Name", "Nominal Dimensions"},
			{"", "Ghost Row", "60x30"},
			{"bt-200", "Real Tub", "60x30"},
		},
	})

	snap, err := ParseWorkbook(path)
	require.NoError(t, err)
	assert.Len(t, snap.ByCategory(entity.CategoryBathtubs), 1)
}

func TestHolder_LoadSwapsCurrentAtomically(t *testing.T) {
	path := writeTestWorkbook(t, map[string][][]string{
		string(entity.CategoryBathtubs): {
			{"Unique ID", "Product Name", "Nominal Dimensions"},
			{"bt-300", "Holder Tub", "60x30"},
		},
	})

	h := NewHolder()
	assert.Nil(t, h.Current())

	snap, err := h.Load(path)
	require.NoError(t, err)
	assert.Same(t, snap, h.Current())
}
