package parser

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrUnsupported is returned for file extensions with no extractor.
var ErrUnsupported = eris.New("unsupported file extension")

// Extractor converts raw document bytes into plain text.
type Extractor interface {
	Extract(r io.Reader, filename string) (string, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
	".xlsx":     true,
	".xls":      true,
	".pptx":     true,
}

// Options tune format-specific behaviour.
type Options struct {
	PDFFallbackPdftotext bool
}

// ForFile returns the appropriate extractor for a filename.
func ForFile(filename string, opts Options) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".csv":
		return &CSVExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	case ".xlsx", ".xls":
		return &XLSXExtractor{}, nil
	case ".pptx":
		return &PPTXExtractor{}, nil
	default:
		return nil, eris.Wrapf(ErrUnsupported, "%q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// FileExtractor reads files from disk and dispatches on extension.
type FileExtractor struct {
	opts Options
	log  *zap.Logger
}

func NewFileExtractor(opts Options, log *zap.Logger) *FileExtractor {
	return &FileExtractor{opts: opts, log: log}
}

// Extract returns the whitespace-trimmed text of the file at path. On any
// failure the text is empty; the error is logged and returned so callers can
// record a per-file error entry.
func (x *FileExtractor) Extract(path string) (string, error) {
	name := filepath.Base(path)
	log := x.log.With(zap.String("file", name))

	text, err := x.extract(path, name)
	if err != nil {
		log.Warn("extraction failed", zap.Error(err))
		return "", err
	}
	text = strings.TrimSpace(text)
	log.Debug("extracted text", zap.Int("bytes", len(text)))
	return text, nil
}

func (x *FileExtractor) extract(path, name string) (string, error) {
	ex, err := ForFile(name, x.opts)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrap(err, "read file")
	}
	return ex.Extract(bytes.NewReader(data), name)
}

// joinNonEmpty joins trimmed, non-empty parts with sep.
func joinNonEmpty(parts []string, sep string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
