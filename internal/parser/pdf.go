package parser

import (
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
)

// PDFExtractor handles PDF files. It tries the Go library first,
// then falls back to pdftotext if enabled and available.
type PDFExtractor struct {
	FallbackPdftotext bool
}

func (p *PDFExtractor) Extract(r io.Reader, filename string) (string, error) {
	// ledongthuc/pdf opens by path, so spool to a temp file.
	tmp, err := os.CreateTemp("", "docdraft-pdf-*.pdf")
	if err != nil {
		return "", eris.Wrap(err, "create temp file")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", eris.Wrap(err, "write temp file")
	}
	tmp.Close()

	pages, err := pdfPages(tmpPath)
	if (err != nil || len(pages) == 0) && p.FallbackPdftotext {
		if alt, altErr := pdftotextPages(tmpPath); altErr == nil {
			pages, err = alt, nil
		}
	}
	if err != nil {
		return "", eris.Wrap(err, "extract pdf text")
	}
	return joinNonEmpty(pages, "\n"), nil
}

// pdfPages returns the plain text of each page; pages without text are empty.
func pdfPages(path string) ([]string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func pdftotextPages(path string) ([]string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, eris.Wrap(err, "pdftotext")
	}
	// pdftotext separates pages with form feeds.
	return strings.Split(string(out), "\f"), nil
}
