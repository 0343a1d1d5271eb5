package parser

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVExtractor handles CSV files. The first row is a header and is not part
// of the text; each remaining row becomes its cells joined by spaces.
type CSVExtractor struct{}

func (p *CSVExtractor) Extract(r io.Reader, filename string) (string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", eris.Wrap(err, "parse csv")
	}
	return flattenRows(records), nil
}

// flattenRows drops the header row and renders each data row as one line.
func flattenRows(rows [][]string) string {
	if len(rows) <= 1 {
		return ""
	}
	lines := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		lines = append(lines, strings.Join(row, " "))
	}
	return strings.Join(lines, "\n")
}
