package pipeline

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dgallion1/docdraft/internal/chunker"
	"github.com/dgallion1/docdraft/internal/document"
	"github.com/dgallion1/docdraft/internal/navigator"
	"github.com/dgallion1/docdraft/internal/parser"
)

// TextExtractor returns the plain text of a file on disk.
type TextExtractor interface {
	Extract(path string) (string, error)
}

// Batch is a set of ingested files. Inputs keeps every file in input order,
// with a nil Source for files that produced no text.
type Batch struct {
	Inputs  []navigator.Input
	Sources []document.Source
	Errors  []document.FileError
}

// Set indexes the batch's sources by name.
func (b Batch) Set() *document.Set {
	return document.NewSet(b.Sources)
}

// Loader extracts and chunks files.
type Loader struct {
	extractor TextExtractor
	chunkCfg  chunker.Config
	log       *zap.Logger
}

func NewLoader(extractor TextExtractor, chunkCfg chunker.Config, log *zap.Logger) *Loader {
	return &Loader{extractor: extractor, chunkCfg: chunkCfg, log: log}
}

// NewFileLoader builds a Loader over the standard format extractors.
func NewFileLoader(opts parser.Options, log *zap.Logger) *Loader {
	return NewLoader(parser.NewFileExtractor(opts, log), chunker.DefaultConfig(), log)
}

// DefaultInfo is the description used for a file the caller gave none for.
func DefaultInfo(name string) string {
	return fmt.Sprintf("Pour le fichier %s, la position est dossier source. Contenu : contenu générique.", name)
}

// Load extracts and chunks each path in order. infos pair with paths by
// index. A file that yields no text becomes an error entry and contributes
// no source; the rest of the batch is unaffected.
func (l *Loader) Load(paths, infos []string) Batch {
	var b Batch
	for i, path := range paths {
		name := filepath.Base(path)
		info := ""
		if i < len(infos) {
			info = infos[i]
		}
		if info == "" {
			info = DefaultInfo(name)
		}

		in := navigator.Input{Name: name, Info: info}
		text, err := l.extractor.Extract(path)
		if err != nil || text == "" {
			reason := "no text extracted"
			if err != nil {
				reason = err.Error()
			}
			b.Errors = append(b.Errors, document.FileError{
				File:    name,
				Message: fmt.Sprintf("extraction failed for %s: %s", name, reason),
			})
			b.Inputs = append(b.Inputs, in)
			continue
		}

		src := document.Source{
			Name:   name,
			Info:   info,
			Chunks: chunker.Split(text, name, l.chunkCfg),
		}
		l.log.Info("file loaded",
			zap.String("file", name),
			zap.Int("words", chunker.CountWords(text)),
			zap.Int("chunks", len(src.Chunks)),
		)
		b.Sources = append(b.Sources, src)
		in.Source = &src
		b.Inputs = append(b.Inputs, in)
	}
	return b
}
