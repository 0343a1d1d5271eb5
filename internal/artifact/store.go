// Package artifact reads and writes the flat output files of a run.
package artifact

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docdraft/internal/document"
)

// Fixed artifact file names.
const (
	RefsFile      = "chunks_to_draft.txt"
	WorksFile     = "works_output.txt"
	SynthesisFile = "structured_synthesis.txt"
	TraceFile     = "navigation_trace.yaml"
)

// Store writes artifacts into one directory. Every write replaces the file;
// concurrent runs sharing a directory are not coordinated.
type Store struct {
	dir string
	log *zap.Logger
}

func NewStore(dir string, log *zap.Logger) *Store {
	return &Store{dir: dir, log: log}
}

// Path returns the full path of an artifact.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) write(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return eris.Wrapf(err, "artifact: create dir %s", s.dir)
	}
	path := s.Path(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "artifact: write %s", path)
	}
	s.log.Info("artifact written", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

// WriteRefs writes one "name,position" line per reference. Names containing
// a comma are written as-is with a warning: the format has no escaping.
func (s *Store) WriteRefs(refs []document.Ref) error {
	for _, r := range refs {
		if strings.Contains(r.File, ",") {
			s.log.Warn("file name contains a comma; chunk list line is ambiguous", zap.String("file", r.File))
		}
	}
	return s.write(RefsFile, []byte(FormatRefs(refs)))
}

// ReadRefs parses the chunk list written by WriteRefs.
func (s *Store) ReadRefs() ([]document.Ref, []LineError, error) {
	return ReadRefsFile(s.Path(RefsFile))
}

// ReadRefsFile parses a chunk list at an arbitrary path.
func ReadRefsFile(path string) ([]document.Ref, []LineError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "artifact: open chunk list")
	}
	defer f.Close()
	return ParseRefs(f)
}

// WriteWorks writes the drafted report text.
func (s *Store) WriteWorks(text string) error {
	return s.write(WorksFile, []byte(text))
}

// WriteSynthesis writes the structured synthesis.
func (s *Store) WriteSynthesis(text string) error {
	return s.write(SynthesisFile, []byte(text))
}

// WriteTrace writes v as YAML.
func (s *Store) WriteTrace(v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return eris.Wrap(err, "artifact: marshal trace")
	}
	return s.write(TraceFile, data)
}

// FormatRefs renders references in chunk list format.
func FormatRefs(refs []document.Ref) string {
	var b strings.Builder
	for _, r := range refs {
		fmt.Fprintf(&b, "%s,%d\n", r.File, r.Position)
	}
	return b.String()
}

// LineError is a chunk list line that could not be parsed.
type LineError struct {
	Line int    `json:"line"`
	Text string `json:"text"`
	Err  string `json:"error"`
}

// ParseRefs reads chunk list lines. Each non-empty line is split on its last
// comma, so names containing commas survive as long as the position is
// numeric. Unparseable lines are reported and skipped. Duplicates are kept.
func ParseRefs(r io.Reader) ([]document.Ref, []LineError, error) {
	var refs []document.Ref
	var bad []LineError

	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		ref, err := parseRefLine(line)
		if err != nil {
			bad = append(bad, LineError{Line: n, Text: line, Err: err.Error()})
			continue
		}
		refs = append(refs, ref)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, eris.Wrap(err, "artifact: read chunk list")
	}
	return refs, bad, nil
}

func parseRefLine(line string) (document.Ref, error) {
	i := strings.LastIndexByte(line, ',')
	if i < 0 {
		return document.Ref{}, eris.New("missing comma")
	}
	name := strings.TrimSpace(line[:i])
	if name == "" {
		return document.Ref{}, eris.New("empty file name")
	}
	pos, err := strconv.Atoi(strings.TrimSpace(line[i+1:]))
	if err != nil {
		return document.Ref{}, eris.Errorf("position %q is not an integer", line[i+1:])
	}
	if pos < 1 {
		return document.Ref{}, eris.Errorf("position %d out of range", pos)
	}
	return document.Ref{File: name, Position: pos}, nil
}
