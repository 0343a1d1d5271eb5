package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/rotisserie/eris"
)

// DOCXExtractor handles .docx files: non-empty paragraphs, one per line.
type DOCXExtractor struct{}

func (p *DOCXExtractor) Extract(r io.Reader, filename string) (string, error) {
	paras, err := DOCXParagraphs(r)
	if err != nil {
		return "", err
	}
	return strings.Join(paras, "\n"), nil
}

// DOCXParagraphs returns the trimmed, non-empty body paragraphs of a .docx.
func DOCXParagraphs(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "read docx")
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, eris.Wrap(err, "parse docx")
	}

	var paras []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		if text := docxParagraphText(para); text != "" {
			paras = append(paras, text)
		}
	}
	return paras, nil
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			writeRunText(&buf, c)
		case *docx.Hyperlink:
			if !writeRunText(&buf, &c.Run) {
				buf.WriteString(c.Run.InstrText)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// writeRunText appends the visible text of run and reports whether it had any.
func writeRunText(buf *strings.Builder, run *docx.Run) bool {
	n := buf.Len()
	for _, rc := range run.Children {
		switch x := rc.(type) {
		case *docx.Text:
			buf.WriteString(x.Text)
		case *docx.Tab:
			buf.WriteByte('\t')
		case *docx.BarterRabbet:
			buf.WriteByte('\n')
		}
	}
	return buf.Len() > n
}
