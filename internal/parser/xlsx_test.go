package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestXLSXExtractor_SkipsHeaderRow(t *testing.T) {
	path := writeXLSX(t, [][]string{
		{"Name", "Age", "City"},
		{"Alice", "30", "NYC"},
		{"Bob", "25", "LA"},
	})
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	got, err := (&XLSXExtractor{}).Extract(strings.NewReader(string(data)), "book.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "Alice 30 NYC\nBob 25 LA", got)
}

func TestXLSXExtractor_LegacyWorkbookFails(t *testing.T) {
	// Legacy .xls files are OLE compound documents, not zip archives.
	_, err := (&XLSXExtractor{}).Extract(strings.NewReader("\xd0\xcf\x11\xe0legacy"), "old.xls")
	assert.Error(t, err)
}
