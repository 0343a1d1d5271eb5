package navigator

import (
	"context"
	"strconv"
	"strings"

	"github.com/dgallion1/docdraft/internal/document"
)

// FileContext is what a strategy knows about the file being navigated.
type FileContext struct {
	Name      string
	Info      string // User-supplied file description
	Synthesis string // Full project synthesis
	Digest    string // Condensed project synthesis
	Total     int    // Number of chunks
}

// State is the navigation state handed to a strategy for one step.
type State struct {
	File    FileContext
	Guess   string
	Visited []int // In visit order, including Chunk
	Chunk   document.Chunk
}

// Strategy decides how a file is navigated.
type Strategy interface {
	// InitialGuess estimates the file's relevance before any chunk is read.
	// An error skips the file.
	InitialGuess(ctx context.Context, file FileContext) (string, error)
	// PickNext judges the current chunk and chooses the next one. A
	// *MalformedError comes with a usable, coerced Decision; any other
	// error abandons the file.
	PickNext(ctx context.Context, st State) (Decision, error)
}

// LinearStrategy walks chunks in order and selects every chunk that is not
// low priority. It makes no generation calls.
type LinearStrategy struct{}

func (LinearStrategy) InitialGuess(_ context.Context, file FileContext) (string, error) {
	return file.Info, nil
}

func (LinearStrategy) PickNext(_ context.Context, st State) (Decision, error) {
	d := Decision{Relevant: !st.Chunk.LowPriority, Next: Fin}
	if pos := st.Chunk.Position; pos < st.File.Total {
		d.Next = At(pos + 1)
	}
	if d.Relevant {
		d.Rationale = "morceau substantiel"
	} else {
		d.Rationale = "morceau trop court"
	}
	return d, nil
}

// formatVisited renders positions as "[1, 3]".
func formatVisited(visited []int) string {
	parts := make([]string, len(visited))
	for i, v := range visited {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
