package document

import (
	"path/filepath"

	"golang.org/x/text/unicode/norm"
)

// Chunk is a word window over a document's text.
type Chunk struct {
	Position    int    // 1-based, dense within one document
	Text        string // Space-joined words of the window
	Words       int    // Word count of the window
	LowPriority bool   // Window is shorter than the low-priority threshold
	Source      string // Owning document name (lookup key only)
}

// Source is a chunked document paired with the user-supplied file info.
type Source struct {
	Name   string
	Info   string
	Chunks []Chunk
}

// Chunk returns the chunk at a 1-based position.
func (s Source) Chunk(pos int) (Chunk, bool) {
	if pos < 1 || pos > len(s.Chunks) {
		return Chunk{}, false
	}
	return s.Chunks[pos-1], true
}

// Ref is a (document, chunk position) pair selected for drafting.
type Ref struct {
	File     string `json:"file" yaml:"file"`
	Position int    `json:"position" yaml:"position"`
}

// Work is drafted prose attributed to a chunk.
type Work struct {
	Ref
	Text string `json:"text" yaml:"text"`
}

// FileError is a per-file failure that did not abort the batch.
type FileError struct {
	File    string `json:"file" yaml:"file"`
	Message string `json:"message" yaml:"message"`
}

// Key normalises a file name for lookups: base name in Unicode NFC, so an
// upload whose accents arrive decomposed still matches its chunk list entry.
func Key(name string) string {
	return norm.NFC.String(filepath.Base(name))
}

// Set indexes sources by normalised name.
type Set struct {
	byKey map[string]Source
}

// NewSet builds a Set. Later duplicates replace earlier ones.
func NewSet(sources []Source) *Set {
	s := &Set{byKey: make(map[string]Source, len(sources))}
	for _, src := range sources {
		s.byKey[Key(src.Name)] = src
	}
	return s
}

// Find looks a source up by file name.
func (s *Set) Find(name string) (Source, bool) {
	src, ok := s.byKey[Key(name)]
	return src, ok
}

// AllRefs expands one file to a reference per chunk.
func (s *Set) AllRefs(name string) []Ref {
	src, ok := s.Find(name)
	if !ok {
		return nil
	}
	refs := make([]Ref, 0, len(src.Chunks))
	for _, c := range src.Chunks {
		refs = append(refs, Ref{File: src.Name, Position: c.Position})
	}
	return refs
}
