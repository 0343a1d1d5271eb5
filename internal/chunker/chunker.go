package chunker

import (
	"strings"

	"github.com/dgallion1/docdraft/internal/document"
)

// Config controls the word windows.
type Config struct {
	WindowSize  int // Words per window, counted from the window's offset.
	Step        int // Distance between consecutive window offsets.
	BackOverlap int // Words a window reaches back before its offset.
	LowPriority int // Windows with fewer words than this are flagged.
}

// DefaultConfig returns the fixed windowing used by the pipeline.
func DefaultConfig() Config {
	return Config{
		WindowSize:  700,
		Step:        600,
		BackOverlap: 100,
		LowPriority: 150,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.WindowSize <= 0 {
		c.WindowSize = d.WindowSize
	}
	if c.Step <= 0 {
		c.Step = d.Step
	}
	if c.BackOverlap < 0 {
		c.BackOverlap = d.BackOverlap
	}
	if c.LowPriority <= 0 {
		c.LowPriority = d.LowPriority
	}
	return c
}

// Split cuts text into positioned word windows belonging to source.
//
// Text of at most WindowSize words yields exactly one chunk. Otherwise a
// window starts at every multiple of Step below the word count and spans
// [offset-BackOverlap, offset+WindowSize), clipped to the text. The result
// covers the text with redundancy; it is not a partition.
func Split(text, source string, cfg Config) []document.Chunk {
	cfg = cfg.withDefaults()
	words := strings.Fields(text)
	total := len(words)

	if total <= cfg.WindowSize {
		return []document.Chunk{newChunk(words, 1, source, cfg)}
	}

	chunks := make([]document.Chunk, 0, total/cfg.Step+1)
	for offset := 0; offset < total; offset += cfg.Step {
		start := max(0, offset-cfg.BackOverlap)
		end := min(offset+cfg.WindowSize, total)
		chunks = append(chunks, newChunk(words[start:end], len(chunks)+1, source, cfg))
	}
	return chunks
}

func newChunk(words []string, pos int, source string, cfg Config) document.Chunk {
	return document.Chunk{
		Position:    pos,
		Text:        strings.Join(words, " "),
		Words:       len(words),
		LowPriority: len(words) < cfg.LowPriority,
		Source:      source,
	}
}
