// Package diag collects and prints run diagnostics for both CLIs,
// following the shape of surge's internal/diag.Bag: a capped
// collection of messages plus an error/warning tally, printed with
// github.com/fatih/color the way surge's version command colors its
// own output. There is no structured-logging library anywhere in the
// example pack's application code (zerolog only appears as an indirect
// dependency of a sqlite driver in pflow's go.sum), so this stays a
// small bespoke type over fmt/os.Stderr rather than reaching for one.
package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Severity distinguishes fatal problems from advisory notes.
type Severity int

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

// Diagnostic is one reported problem or note, tagged with the run that
// produced it.
type Diagnostic struct {
	Severity Severity
	RunID    string
	Message  string
}

// Bag accumulates diagnostics for a single run, capped at max entries
// the way surge's Bag caps at max-diagnostics.
type Bag struct {
	runID string
	items []Diagnostic
	max   int
}

// NewBag returns a Bag tagged with runID (typically a uuid.New()
// string) capped at max entries.
func NewBag(runID string, max int) *Bag {
	if max <= 0 {
		max = 100
	}
	return &Bag{runID: runID, max: max}
}

// Add records a diagnostic if the cap has not been reached, returning
// whether it was recorded.
func (b *Bag) Add(sev Severity, format string, args ...any) bool {
	if len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, Diagnostic{Severity: sev, RunID: b.runID, Message: fmt.Sprintf(format, args...)})
	return true
}

// Errorf is shorthand for Add(SevError, ...).
func (b *Bag) Errorf(format string, args ...any) bool { return b.Add(SevError, format, args...) }

// Warnf is shorthand for Add(SevWarning, ...).
func (b *Bag) Warnf(format string, args ...any) bool { return b.Add(SevWarning, format, args...) }

// HasErrors reports whether any recorded diagnostic is SevError.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == SevError {
			return true
		}
	}
	return false
}

// Len returns the number of recorded diagnostics.
func (b *Bag) Len() int { return len(b.items) }

// Items returns the recorded diagnostics in report order. Callers must
// not mutate the returned slice.
func (b *Bag) Items() []Diagnostic { return b.items }

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
	infoColor  = color.New(color.FgCyan)
)

// Print writes every diagnostic to w, one per line, colored by
// severity and prefixed with the run id for cross-referencing against
// the run label in generated Graphviz files.
func (b *Bag) Print(w io.Writer) {
	for _, d := range b.items {
		prefix := diagColor(d.Severity).Sprint(severityLabel(d.Severity))
		fmt.Fprintf(w, "[%s] %s: %s\n", d.RunID, prefix, d.Message)
	}
}

func diagColor(sev Severity) *color.Color {
	switch sev {
	case SevError:
		return errorColor
	case SevWarning:
		return warnColor
	default:
		return infoColor
	}
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}
