package parser

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXExtractor handles spreadsheets. Only the first sheet is read, with the
// same header-skipping row flattening as CSV. Legacy binary .xls workbooks
// are not zip archives and fail to open.
type XLSXExtractor struct{}

func (p *XLSXExtractor) Extract(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", eris.Wrap(err, "xlsx: read")
	}
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return "", eris.Wrap(err, "xlsx: open")
	}
	if len(f.Sheets) == 0 {
		return "", nil
	}

	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		if row == nil {
			continue
		}
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return flattenRows(rows), nil
}
