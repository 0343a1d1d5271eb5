package parser

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// TextExtractor handles plain text files.
type TextExtractor struct{}

func (p *TextExtractor) Extract(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", eris.Wrap(err, "read text")
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}
