package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

const drawingMLNS = "http://schemas.openxmlformats.org/drawingml/2006/main"

// PPTXExtractor handles .pptx files: the text frame of every shape on every
// slide, in slide order, one shape per line.
type PPTXExtractor struct{}

func (p *PPTXExtractor) Extract(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", eris.Wrap(err, "pptx: read")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", eris.Wrap(err, "pptx: open archive")
	}

	slides := slideFiles(zr.File)
	if len(slides) == 0 {
		return "", eris.New("pptx: no slides found")
	}

	var shapes []string
	for _, f := range slides {
		texts, err := slideShapeTexts(f)
		if err != nil {
			return "", eris.Wrapf(err, "pptx: %s", f.Name)
		}
		shapes = append(shapes, texts...)
	}
	return joinNonEmpty(shapes, "\n"), nil
}

// slideFiles returns ppt/slides/slideN.xml entries ordered by N.
func slideFiles(files []*zip.File) []*zip.File {
	var out []*zip.File
	for _, f := range files {
		if slideNumber(f.Name) > 0 {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return slideNumber(out[i].Name) < slideNumber(out[j].Name)
	})
	return out
}

func slideNumber(name string) int {
	const prefix, suffix = "ppt/slides/slide", ".xml"
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix))
	if err != nil {
		return 0
	}
	return n
}

// slideShapeTexts walks one slide and returns each shape's text frame, with
// paragraphs separated by newlines.
func slideShapeTexts(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var (
		shapes     []string
		paras      []string
		para       strings.Builder
		shapeDepth int
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "sp":
				shapeDepth++
			case t.Name.Local == "t" && t.Name.Space == drawingMLNS:
				inText = shapeDepth > 0
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		case xml.EndElement:
			switch {
			case t.Name.Local == "t" && t.Name.Space == drawingMLNS:
				inText = false
			case t.Name.Local == "p" && t.Name.Space == drawingMLNS && shapeDepth > 0:
				paras = append(paras, para.String())
				para.Reset()
			case t.Name.Local == "sp" && shapeDepth > 0:
				shapeDepth--
				if shapeDepth == 0 {
					shapes = append(shapes, strings.Join(paras, "\n"))
					paras = nil
				}
			}
		}
	}
	return shapes, nil
}
