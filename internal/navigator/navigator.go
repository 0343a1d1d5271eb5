// Package navigator walks a document's chunks under the control of a
// Strategy, collecting the chunks worth drafting.
package navigator

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/dgallion1/docdraft/internal/document"
)

// StopReason records why navigation of a file ended.
type StopReason string

const (
	StopFin                StopReason = "fin"
	StopOutOfRange         StopReason = "out_of_range"
	StopRevisit            StopReason = "revisit"
	StopMalformed          StopReason = "malformed"
	StopGenerationError    StopReason = "generation_error"
	StopInitialGuessFailed StopReason = "initial_guess_failed"
	StopNoContent          StopReason = "no_content"
)

// Step is one visited chunk.
type Step struct {
	Position  int    `json:"position" yaml:"position"`
	Relevant  bool   `json:"relevant" yaml:"relevant"`
	Rationale string `json:"rationale,omitempty" yaml:"rationale,omitempty"`
	Guess     string `json:"guess" yaml:"guess"`
	Next      string `json:"next" yaml:"next"`
	Prose     string `json:"prose,omitempty" yaml:"-"`
	Warning   string `json:"warning,omitempty" yaml:"warning,omitempty"`
}

// Trace is the navigation record of one file.
type Trace struct {
	File         string     `json:"file" yaml:"file"`
	Chunks       int        `json:"chunks" yaml:"chunks"`
	InitialGuess string     `json:"initial_guess,omitempty" yaml:"initial_guess,omitempty"`
	Steps        []Step     `json:"steps,omitempty" yaml:"steps,omitempty"`
	Stop         StopReason `json:"stop" yaml:"stop"`
	StoppedAt    int        `json:"stopped_at,omitempty" yaml:"stopped_at,omitempty"` // Pointer value that ended the run
	Error        string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// Input names one file of the batch. A nil Source means the file produced
// no content.
type Input struct {
	Name   string
	Info   string
	Source *document.Source
}

// Result aggregates a batch run.
type Result struct {
	Selected []document.Ref
	Works    []document.Work
	Traces   []Trace
}

// Navigator runs a Strategy over each file of a batch, sequentially.
type Navigator struct {
	strategy Strategy
	log      *zap.Logger
}

func New(strategy Strategy, log *zap.Logger) *Navigator {
	return &Navigator{strategy: strategy, log: log}
}

// Run navigates every input in order. synthesis is the full project
// synthesis; digest its condensed form.
func (n *Navigator) Run(ctx context.Context, inputs []Input, synthesis, digest string) Result {
	var res Result
	for _, in := range inputs {
		tr, selected, works := n.navigateFile(ctx, in, synthesis, digest)
		res.Traces = append(res.Traces, tr)
		res.Selected = append(res.Selected, selected...)
		res.Works = append(res.Works, works...)
	}
	n.log.Info("navigation complete",
		zap.Int("files", len(inputs)),
		zap.Int("selected", len(res.Selected)),
	)
	return res
}

func (n *Navigator) navigateFile(ctx context.Context, in Input, synthesis, digest string) (Trace, []document.Ref, []document.Work) {
	log := n.log.With(zap.String("file", in.Name))
	tr := Trace{File: in.Name}

	if in.Source == nil || len(in.Source.Chunks) == 0 {
		log.Warn("no content for file")
		tr.Stop = StopNoContent
		return tr, nil, nil
	}
	src := in.Source
	tr.Chunks = len(src.Chunks)

	file := FileContext{
		Name:      in.Name,
		Info:      in.Info,
		Synthesis: synthesis,
		Digest:    digest,
		Total:     len(src.Chunks),
	}

	guess, err := n.strategy.InitialGuess(ctx, file)
	if err != nil {
		log.Error("initial guess failed, skipping file", zap.Error(err))
		tr.Stop = StopInitialGuessFailed
		tr.Error = err.Error()
		return tr, nil, nil
	}
	tr.InitialGuess = guess
	log.Info("initial guess", zap.String("guess", guess))

	var (
		selected  []document.Ref
		works     []document.Work
		visited   = make(map[int]bool)
		order     []int
		next      = At(1)
		malformed bool
	)

	for {
		if next.IsFin() {
			tr.Stop = StopFin
			if malformed {
				tr.Stop = StopMalformed
			}
			break
		}
		pos := next.Position()
		chunk, ok := src.Chunk(pos)
		if !ok {
			log.Info("pointer out of range", zap.Int("pointer", pos), zap.Int("chunks", tr.Chunks))
			tr.Stop, tr.StoppedAt = StopOutOfRange, pos
			break
		}
		if visited[pos] {
			log.Warn("chunk already visited", zap.Int("chunk", pos))
			tr.Stop, tr.StoppedAt = StopRevisit, pos
			break
		}
		visited[pos] = true
		order = append(order, pos)

		st := State{
			File:    file,
			Guess:   guess,
			Visited: append([]int(nil), order...),
			Chunk:   chunk,
		}
		d, err := n.strategy.PickNext(ctx, st)

		var mal *MalformedError
		if err != nil && !errors.As(err, &mal) {
			log.Error("chunk evaluation failed, ending file", zap.Int("chunk", pos), zap.Error(err))
			tr.Stop, tr.StoppedAt = StopGenerationError, pos
			tr.Error = err.Error()
			break
		}

		step := Step{
			Position:  pos,
			Relevant:  d.Relevant,
			Rationale: d.Rationale,
			Next:      d.Next.String(),
			Prose:     d.Prose,
		}
		if mal != nil {
			log.Warn("malformed response", zap.Int("chunk", pos), zap.Strings("fields", mal.Fields), zap.String("raw", mal.Raw))
			step.Warning = mal.Error()
			malformed = mal.Has(FieldNext)
		}

		if d.Guess != "" {
			guess = d.Guess
		}
		step.Guess = guess
		tr.Steps = append(tr.Steps, step)

		if d.Relevant {
			ref := document.Ref{File: src.Name, Position: pos}
			selected = append(selected, ref)
			if d.Prose != "" {
				works = append(works, document.Work{Ref: ref, Text: d.Prose})
			}
			log.Info("chunk selected", zap.Int("chunk", pos))
		}
		log.Debug("navigation step",
			zap.Int("chunk", pos),
			zap.Bool("relevant", d.Relevant),
			zap.String("next", step.Next),
		)

		next = d.Next
	}

	return tr, selected, works
}
