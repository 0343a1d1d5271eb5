// Package pipeline wires ingestion, the generation stages and artifact
// writes behind one Service used by the CLI and the HTTP front-end.
package pipeline

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dgallion1/docdraft/internal/artifact"
	"github.com/dgallion1/docdraft/internal/composer"
	"github.com/dgallion1/docdraft/internal/config"
	"github.com/dgallion1/docdraft/internal/document"
	"github.com/dgallion1/docdraft/internal/drafting"
	"github.com/dgallion1/docdraft/internal/llm"
	"github.com/dgallion1/docdraft/internal/navigator"
	"github.com/dgallion1/docdraft/internal/parser"
	"github.com/dgallion1/docdraft/internal/search"
	"github.com/dgallion1/docdraft/internal/synthesis"
)

// Navigation strategy names.
const (
	StrategyLLM    = "llm"
	StrategyLinear = "linear"
)

// GeneratorFactory builds a generator for a provider name. It must fail
// with *llm.MissingKeyError when the provider's credential is absent.
type GeneratorFactory func(provider string) (llm.Generator, error)

// Service runs pipeline operations. Operations are sequential; concurrent
// calls sharing an output dir race on artifact files.
type Service struct {
	cfg      *config.Config
	log      *zap.Logger
	loader   *Loader
	store    *artifact.Store
	stats    *llm.Stats
	searcher search.Searcher
	newGen   GeneratorFactory
}

// Option configures a Service.
type Option func(*Service)

// WithGeneratorFactory replaces the openai-go backed generator factory.
func WithGeneratorFactory(f GeneratorFactory) Option {
	return func(s *Service) { s.newGen = f }
}

// WithSearcher replaces the web searcher.
func WithSearcher(sr search.Searcher) Option {
	return func(s *Service) { s.searcher = sr }
}

// WithLoader replaces the file loader.
func WithLoader(l *Loader) Option {
	return func(s *Service) { s.loader = l }
}

func NewService(cfg *config.Config, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		cfg:   cfg,
		log:   log,
		store: artifact.NewStore(cfg.Output.Dir, log),
		stats: llm.NewStats(time.Hour),
	}
	s.loader = NewFileLoader(parser.Options{PDFFallbackPdftotext: cfg.PDF.FallbackPdftotext}, log)
	s.searcher = search.New(cfg.Search.Model, log, search.WithTimeout(cfg.LLM.Timeout))
	s.newGen = s.clientFactory
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clientFactory(provider string) (llm.Generator, error) {
	return llm.New(llm.ResolveProvider(provider),
		llm.WithTimeout(s.cfg.LLM.Timeout),
		llm.WithRateLimit(s.cfg.LLM.RequestsPerSecond),
		llm.WithStats(s.stats),
		llm.WithLogger(s.log),
	)
}

// generator resolves the provider (config default when empty) and its
// credential.
func (s *Service) generator(provider string) (llm.Generator, error) {
	if strings.TrimSpace(provider) == "" {
		provider = s.cfg.LLM.Provider
	}
	return s.newGen(provider)
}

// Store returns the artifact store.
func (s *Service) Store() *artifact.Store { return s.store }

// Stats returns a snapshot of generation call latencies.
func (s *Service) Stats() llm.StatsSnapshot { return s.stats.Snapshot() }

// Load ingests files without calling the generation endpoint.
func (s *Service) Load(paths, infos []string) Batch {
	return s.loader.Load(paths, infos)
}

// NavigateRequest drives the Relevance Navigator over a batch.
type NavigateRequest struct {
	Paths     []string `json:"-"`
	Infos     []string `json:"-"`
	Synthesis string   `json:"synthesis"`
	Provider  string   `json:"provider"`
	Strategy  string   `json:"strategy"`
}

// NavigateResult is the outcome of a navigation run.
type NavigateResult struct {
	RunID    string               `json:"run_id"`
	Selected []document.Ref       `json:"selected"`
	Traces   []navigator.Trace    `json:"traces"`
	Errors   []document.FileError `json:"errors"`
}

type traceDoc struct {
	RunID    string               `yaml:"run_id"`
	Mode     string               `yaml:"mode"`
	Strategy string               `yaml:"strategy"`
	Files    []navigator.Trace    `yaml:"files"`
	Selected []document.Ref       `yaml:"selected"`
	Errors   []document.FileError `yaml:"errors,omitempty"`
}

// Navigate selects the chunks worth drafting and writes the chunk list and
// the navigation trace. The linear strategy needs no credential.
func (s *Service) Navigate(ctx context.Context, req NavigateRequest) (*NavigateResult, error) {
	runID := uuid.NewString()
	log := s.log.With(zap.String("run_id", runID), zap.String("op", "navigate"))

	name := req.Strategy
	if name == "" {
		name = StrategyLLM
	}
	var (
		strategy navigator.Strategy
		digest   string
	)
	switch name {
	case StrategyLinear:
		strategy = navigator.LinearStrategy{}
	case StrategyLLM:
		gen, err := s.generator(req.Provider)
		if err != nil {
			return nil, err
		}
		strategy = navigator.NewLLMStrategy(gen)
		digest = synthesis.Condense(ctx, gen, req.Synthesis, synthesis.ForNavigation, log)
	default:
		return nil, eris.Errorf("unknown strategy %q (want llm or linear)", name)
	}

	batch := s.loader.Load(req.Paths, req.Infos)
	res := navigator.New(strategy, log).Run(ctx, batch.Inputs, req.Synthesis, digest)

	if err := s.store.WriteRefs(res.Selected); err != nil {
		return nil, err
	}
	if err := s.store.WriteTrace(traceDoc{
		RunID:    runID,
		Mode:     "navigate",
		Strategy: name,
		Files:    res.Traces,
		Selected: res.Selected,
		Errors:   batch.Errors,
	}); err != nil {
		return nil, err
	}

	return &NavigateResult{
		RunID:    runID,
		Selected: nonNilRefs(res.Selected),
		Traces:   res.Traces,
		Errors:   nonNilErrors(batch.Errors),
	}, nil
}

// DraftRequest drives the Drafting Stage. Refs are drafted first, in order,
// followed by every chunk of each file named in All.
type DraftRequest struct {
	Paths     []string       `json:"-"`
	Infos     []string       `json:"-"`
	Synthesis string         `json:"synthesis"`
	Provider  string         `json:"provider"`
	Refs      []document.Ref `json:"refs"`
	All       []string       `json:"all"`
}

// DraftResult is the outcome of a drafting run.
type DraftResult struct {
	RunID  string               `json:"run_id"`
	Text   string               `json:"text"`
	Works  []document.Work      `json:"works"`
	Errors []document.FileError `json:"errors"`
}

// Draft writes prose for the requested chunks and persists works_output.txt.
func (s *Service) Draft(ctx context.Context, req DraftRequest) (*DraftResult, error) {
	gen, err := s.generator(req.Provider)
	if err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	log := s.log.With(zap.String("run_id", runID), zap.String("op", "draft"))

	batch := s.loader.Load(req.Paths, req.Infos)
	set := batch.Set()
	refs := append([]document.Ref(nil), req.Refs...)
	for _, name := range req.All {
		all := set.AllRefs(name)
		if len(all) == 0 {
			// Keeps the "no content" marker for files that produced nothing.
			all = []document.Ref{{File: name, Position: 1}}
		}
		refs = append(refs, all...)
	}

	digest := synthesis.Condense(ctx, gen, req.Synthesis, synthesis.ForDrafting, log)
	out := drafting.New(gen, log).Draft(ctx, set, refs, digest)
	text := out.Text()
	if err := s.store.WriteWorks(text); err != nil {
		return nil, err
	}

	return &DraftResult{
		RunID:  runID,
		Text:   text,
		Works:  nonNilWorks(out.Works),
		Errors: nonNilErrors(batch.Errors),
	}, nil
}

// WorkDraftRequest drives the combined navigate-and-draft mode.
type WorkDraftRequest struct {
	Paths     []string `json:"-"`
	Infos     []string `json:"-"`
	Synthesis string   `json:"synthesis"`
	Provider  string   `json:"provider"`
}

// WorkDraft navigates each file with the drafting grammar, so prose is
// written during the walk, and persists works_output.txt and the trace.
func (s *Service) WorkDraft(ctx context.Context, req WorkDraftRequest) (*DraftResult, error) {
	gen, err := s.generator(req.Provider)
	if err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	log := s.log.With(zap.String("run_id", runID), zap.String("op", "workdraft"))

	batch := s.loader.Load(req.Paths, req.Infos)
	digest := synthesis.Condense(ctx, gen, req.Synthesis, synthesis.ForWorkDrafting, log)
	res := navigator.New(navigator.NewWorkStrategy(gen), log).Run(ctx, batch.Inputs, req.Synthesis, digest)

	text := drafting.JoinBlocks(drafting.WorkBlocks(res.Traces))
	if err := s.store.WriteWorks(text); err != nil {
		return nil, err
	}
	if err := s.store.WriteTrace(traceDoc{
		RunID:    runID,
		Mode:     "workdraft",
		Strategy: StrategyLLM,
		Files:    res.Traces,
		Selected: res.Selected,
		Errors:   batch.Errors,
	}); err != nil {
		return nil, err
	}

	return &DraftResult{
		RunID:  runID,
		Text:   text,
		Works:  nonNilWorks(res.Works),
		Errors: nonNilErrors(batch.Errors),
	}, nil
}

// SectionRequest asks for one report section.
type SectionRequest struct {
	Section  composer.Section `json:"section"`
	Provider string           `json:"provider"`
	composer.Inputs
}

// Section drafts one report section.
func (s *Service) Section(ctx context.Context, req SectionRequest) (string, error) {
	gen, err := s.generator(req.Provider)
	if err != nil {
		return "", err
	}
	return composer.New(gen, s.searcher, s.log).Section(ctx, req.Section, req.Inputs)
}

// Innovation runs the innovation analysis.
func (s *Service) Innovation(ctx context.Context, provider string, in composer.InnovationInputs) (string, error) {
	gen, err := s.generator(provider)
	if err != nil {
		return "", err
	}
	return composer.New(gen, s.searcher, s.log).Innovation(ctx, in)
}

// Market runs the market study.
func (s *Service) Market(ctx context.Context, provider string, in composer.MarketInputs) (string, error) {
	gen, err := s.generator(provider)
	if err != nil {
		return "", err
	}
	return composer.New(gen, s.searcher, s.log).Market(ctx, in)
}

// Synthesize builds a structured synthesis from a .docx and persists it.
func (s *Service) Synthesize(ctx context.Context, provider string, r io.Reader) (string, error) {
	gen, err := s.generator(provider)
	if err != nil {
		return "", err
	}
	out, err := synthesis.Structure(ctx, gen, r)
	if err != nil {
		return "", err
	}
	if err := s.store.WriteSynthesis(out); err != nil {
		return "", err
	}
	return out, nil
}

func nonNilRefs(v []document.Ref) []document.Ref {
	if v == nil {
		return []document.Ref{}
	}
	return v
}

func nonNilWorks(v []document.Work) []document.Work {
	if v == nil {
		return []document.Work{}
	}
	return v
}

func nonNilErrors(v []document.FileError) []document.FileError {
	if v == nil {
		return []document.FileError{}
	}
	return v
}
