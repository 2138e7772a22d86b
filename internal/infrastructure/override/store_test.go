package override

import (
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeOverrideWorkbook(t *testing.T, pairs [][2]string) string {
	t.Helper()

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "SKU A"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "SKU B"))
	for i, pair := range pairs {
		row := i + 2
		require.NoError(t, f.SetCellValue("Sheet1", cellRef("A", row), pair[0]))
		require.NoError(t, f.SetCellValue("Sheet1", cellRef("B", row), pair[1]))
	}

	path := filepath.Join(t.TempDir(), "overrides.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func cellRef(col string, row int) string {
	ref, _ := excelize.JoinCellName(col, row)
	return ref
}

func TestStore_IsBlacklisted_OrderIndependent(t *testing.T) {
	path := writeOverrideWorkbook(t, [][2]string{{"abc-100", "xyz-200"}})
	s := NewStore("", path)

	assert.True(t, s.IsBlacklisted("ABC-100", "XYZ-200"))
	assert.True(t, s.IsBlacklisted("xyz-200", "abc-100"))
	assert.False(t, s.IsBlacklisted("ABC-100", "OTHER-1"))
}

func TestStore_WhitelistedPartnersOf_FindsBothPositions(t *testing.T) {
	path := writeOverrideWorkbook(t, [][2]string{
		{"A-1", "B-1"},
		{"C-1", "A-1"},
	})
	s := NewStore(path, "")

	partners := s.WhitelistedPartnersOf("a-1")
	sort.Strings(partners)
	assert.Equal(t, []string{"B-1", "C-1"}, partners)
}

func TestStore_MissingFileYieldsEmptySet(t *testing.T) {
	s := NewStore("", "")
	assert.False(t, s.IsBlacklisted("A", "B"))
	assert.Empty(t, s.WhitelistedPartnersOf("A"))
}

func TestStore_ReloadClearsCachedSets(t *testing.T) {
	path := writeOverrideWorkbook(t, [][2]string{{"A-1", "B-1"}})
	s := NewStore("", path)

	require.True(t, s.IsBlacklisted("A-1", "B-1"))

	empty := writeOverrideWorkbook(t, nil)
	s.blacklistPath = empty
	s.Reload()

	assert.False(t, s.IsBlacklisted("A-1", "B-1"))
}
