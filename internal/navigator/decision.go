package navigator

import (
	"strconv"
	"strings"
)

// Pointer is the next-chunk token: a 1-based position or the terminal
// sentinel "fin".
type Pointer struct {
	pos int
	fin bool
}

// Fin terminates navigation of the current file.
var Fin = Pointer{fin: true}

// At points at chunk position n. Positions outside the file's range are
// representable; the loop stops on them.
func At(n int) Pointer { return Pointer{pos: n} }

// IsFin reports whether p is the terminal sentinel.
func (p Pointer) IsFin() bool { return p.fin }

// Position returns the chunk position. Meaningless when IsFin.
func (p Pointer) Position() int { return p.pos }

func (p Pointer) String() string {
	if p.fin {
		return "fin"
	}
	return strconv.Itoa(p.pos)
}

// Response field labels.
const (
	FieldVerdict   = "Pertinent"
	FieldRationale = "Explication"
	FieldGuess     = "Guess"
	FieldNext      = "Prochain morceau"
	FieldWorks     = "Travaux"
)

// NotDrafted is the answer a work-drafting response gives for a chunk it
// declines to draft.
const NotDrafted = "pas rédigé"

// Decision is one parsed navigation step.
type Decision struct {
	Relevant  bool
	Rationale string
	Guess     string // Empty leaves the running guess unchanged
	Next      Pointer
	Prose     string // Work-drafting mode only
}

// MalformedError lists the fields a response omitted or garbled.
type MalformedError struct {
	Fields []string
	Raw    string
}

func (e *MalformedError) Error() string {
	return "malformed navigation response: missing or invalid " + strings.Join(e.Fields, ", ")
}

// Has reports whether field was malformed.
func (e *MalformedError) Has(field string) bool {
	for _, f := range e.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// ParseDecision parses the relevance grammar:
//
//	Pertinent: oui|non
//	Explication: ...
//	Guess: ...
//	Prochain morceau: N|fin
//
// Labels match case-insensitively and may carry markdown emphasis. A value
// runs until the next label or a "---" line. A missing or unreadable next
// pointer yields Fin; a missing verdict yields not relevant. Either case
// also returns a *MalformedError alongside the coerced Decision.
func ParseDecision(raw string) (Decision, error) {
	fields := parseFields(raw, FieldVerdict, FieldRationale, FieldGuess, FieldNext)

	var d Decision
	var bad []string

	switch strings.ToLower(strings.Trim(firstWord(fields[FieldVerdict]), "'\"`.,;:!")) {
	case "oui", "yes":
		d.Relevant = true
	case "non", "no":
	default:
		bad = append(bad, FieldVerdict)
	}

	d.Rationale = fields[FieldRationale]
	d.Guess = fields[FieldGuess]

	next, ok := parsePointer(fields[FieldNext])
	if !ok {
		bad = append(bad, FieldNext)
	}
	d.Next = next

	if len(bad) > 0 {
		return d, &MalformedError{Fields: bad, Raw: raw}
	}
	return d, nil
}

// ParseWorkDecision parses the work-drafting grammar:
//
//	Travaux: prose | pas rédigé
//	Guess: ...
//	Prochain morceau: N|fin
//
// The chunk counts as relevant when prose was written.
func ParseWorkDecision(raw string) (Decision, error) {
	fields := parseFields(raw, FieldWorks, FieldGuess, FieldNext)

	var d Decision
	var bad []string

	works, present := fields[FieldWorks]
	switch {
	case !present || works == "":
		bad = append(bad, FieldWorks)
	case strings.EqualFold(strings.Trim(works, "'\"`. "), NotDrafted):
	default:
		d.Prose = works
		d.Relevant = true
	}

	d.Guess = fields[FieldGuess]

	next, ok := parsePointer(fields[FieldNext])
	if !ok {
		bad = append(bad, FieldNext)
	}
	d.Next = next

	if len(bad) > 0 {
		return d, &MalformedError{Fields: bad, Raw: raw}
	}
	return d, nil
}

// parsePointer reads the first token of v as "fin" or an integer. Anything
// else is Fin and not ok.
func parsePointer(v string) (Pointer, bool) {
	tok := strings.Trim(firstWord(v), "'\"`.,;:()[]")
	if tok == "" {
		return Fin, false
	}
	if strings.EqualFold(tok, "fin") {
		return Fin, true
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return Fin, false
	}
	return At(n), true
}

func firstWord(v string) string {
	if i := strings.IndexByte(v, '\n'); i >= 0 {
		v = v[:i]
	}
	f := strings.Fields(v)
	if len(f) == 0 {
		return ""
	}
	return strings.Trim(f[0], "*")
}

// parseFields collects labelled values. Lines that carry no label extend the
// current value; a line starting with "---" closes it.
func parseFields(raw string, labels ...string) map[string]string {
	out := make(map[string]string, len(labels))
	var current string
	var buf []string

	flush := func() {
		if current != "" {
			if _, seen := out[current]; !seen {
				out[current] = strings.TrimSpace(strings.Join(buf, "\n"))
			}
		}
		current, buf = "", nil
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "---") {
			flush()
			continue
		}
		if label, value, ok := matchLabel(line, labels); ok {
			flush()
			current = label
			buf = []string{value}
			continue
		}
		if current != "" {
			buf = append(buf, line)
		}
	}
	flush()
	return out
}

func matchLabel(line string, labels []string) (string, string, bool) {
	trimmed := strings.TrimLeft(line, "*- ")
	lower := strings.ToLower(trimmed)
	for _, label := range labels {
		if !strings.HasPrefix(lower, strings.ToLower(label)) {
			continue
		}
		rest := strings.TrimLeft(trimmed[len(label):], " *")
		if !strings.HasPrefix(rest, ":") {
			continue
		}
		return label, strings.TrimSpace(strings.TrimLeft(rest[1:], " *")), true
	}
	return "", "", false
}
