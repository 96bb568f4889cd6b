// Package diag carries the diagnostics embedded in a parsed reST tree:
// invalid-block/invalid-span messages and their offending source
// fragments.
package diag

import "fmt"

// Fragment is an (offset, length) pair into the original source string.
// Nodes reference fragments instead of copying substrings so trees stay
// compact and diagnostics can quote exactly what the author wrote.
type Fragment struct {
	Offset int
	Length int
}

// Text returns the literal source text covered by f.
func (f Fragment) Text(source string) string {
	if f.Offset < 0 || f.Offset > len(source) {
		return ""
	}
	end := f.Offset + f.Length
	if end > len(source) {
		end = len(source)
	}
	return source[f.Offset:end]
}

// Kind classifies a Diagnostic for programmatic matching.
type Kind string

const (
	UnknownDirective    Kind = "unknown_directive"
	MissingArgument     Kind = "missing_argument"
	MissingFields       Kind = "missing_fields"
	UnknownFields       Kind = "unknown_fields"
	ConverterRejected   Kind = "converter_rejected"
	MalformedTable      Kind = "malformed_table"
	UnresolvedReference Kind = "unresolved_reference"
	SubstitutionCycle   Kind = "substitution_cycle"
	ParseError          Kind = "parse_error"
)

// Diagnostic is a structural error materialized in the tree rather than
// thrown: a message plus the source fragment it concerns.
type Diagnostic struct {
	Kind     Kind
	Message  string
	Fragment Fragment
}

func (d Diagnostic) String() string {
	return d.Message
}

// New builds a Diagnostic from a format string, matching the teacher's
// errors.ErrorList.Add(format, args...) shape.
func New(kind Kind, frag Fragment, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Fragment: frag}
}

// List accumulates diagnostics produced outside the tree itself (used by
// the rewrite pass while it walks the document).
type List struct {
	Items []Diagnostic
}

func (l *List) Add(d Diagnostic) {
	l.Items = append(l.Items, d)
}

func (l *List) HasErrors() bool {
	return len(l.Items) > 0
}
