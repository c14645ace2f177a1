// Package diag implements line-anchored compiler diagnostics: a
// file:line:col message with an underlined source snippet, matching the
// user-program error model of the score language's compiler.
package diag

import (
	"fmt"
	"strings"
)

// Diagnostic is a single user-program compile error.
type Diagnostic struct {
	File       string
	Line       int
	Col        int
	Message    string
	SourceLine string
}

// String renders the diagnostic as file:line:col, the offending source
// line, and a caret underline beneath the offending column.
func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d:%d: error: %s\n", d.File, d.Line, d.Col, d.Message)
	b.WriteString(d.SourceLine)
	b.WriteByte('\n')
	if d.Col > 0 {
		b.WriteString(strings.Repeat(" ", d.Col-1))
	}
	b.WriteString("^\n")
	return b.String()
}

// Bag accumulates diagnostics across an entire compile, so the compiler can
// keep scanning after an error and surface as many problems as possible in
// one pass.
type Bag struct {
	File        string
	sourceLines []string
	diags       []Diagnostic
}

// NewBag creates a diagnostic bag for a single source file. source is the
// full, unmodified source text, used to recover the offending line for
// each reported error.
func NewBag(file string, source string) *Bag {
	return &Bag{
		File:        file,
		sourceLines: strings.Split(source, "\n"),
	}
}

// Add records a new diagnostic at the given 1-indexed line/column.
func (b *Bag) Add(line, col int, format string, args ...any) {
	var srcLine string
	if line-1 >= 0 && line-1 < len(b.sourceLines) {
		srcLine = b.sourceLines[line-1]
	}
	b.diags = append(b.diags, Diagnostic{
		File:       b.File,
		Line:       line,
		Col:        col,
		Message:    fmt.Sprintf(format, args...),
		SourceLine: srcLine,
	})
}

// HadError reports whether any diagnostic has been recorded.
func (b *Bag) HadError() bool { return len(b.diags) > 0 }

// All returns every recorded diagnostic, in report order.
func (b *Bag) All() []Diagnostic { return b.diags }

// String renders every diagnostic, separated by blank lines.
func (b *Bag) String() string {
	parts := make([]string, len(b.diags))
	for i, d := range b.diags {
		parts[i] = d.String()
	}
	return strings.Join(parts, "\n")
}
