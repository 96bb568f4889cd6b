// Package cursor implements the parser combinator runtime that every
// later grammar layer is built on: an immutable input cursor, a
// Success/Failure result type with lazily-materialized failure
// messages, and the small set of sequencing, alternation, repetition
// and lookahead combinators the grammar is composed from.
//
// A Parser[T] is a value with a single operation, parse(cursor), and
// every combinator returns a new Parser without mutating its operands.
package cursor

import "github.com/restdoc/rst/internal/diag"

// maxSpanDepth bounds span-within-span recursion (spec default: 32).
// Parsers that recurse on inner text must go through WithDepth, which
// downgrades to failure once the cap is exceeded so the caller can fall
// back to literal text instead of overflowing the Go call stack.
const maxSpanDepth = 32

// Cursor is an immutable position into the complete source text. Copying
// a Cursor is copying two ints, a string header and a slice header (the
// shared line-start index), so it is passed by value throughout.
type Cursor struct {
	Source string
	Offset int
	Depth  int

	lineStarts []int // byte offset of the start of each line, computed once
}

// New creates the initial cursor for a complete source string.
func New(source string) Cursor {
	return Cursor{Source: source, Offset: 0, Depth: 0, lineStarts: computeLineStarts(source)}
}

func computeLineStarts(s string) []int {
	starts := []int{0}
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// Advance returns a new cursor at offset+n, keeping the shared
// line-start index and depth.
func (c Cursor) Advance(n int) Cursor {
	return Cursor{Source: c.Source, Offset: c.Offset + n, Depth: c.Depth, lineStarts: c.lineStarts}
}

// WithDepth returns a cursor with depth+1, or ok=false if the recursion
// cap has been exceeded.
func (c Cursor) WithDepth() (Cursor, bool) {
	if c.Depth >= maxSpanDepth {
		return c, false
	}
	return Cursor{Source: c.Source, Offset: c.Offset, Depth: c.Depth + 1, lineStarts: c.lineStarts}, true
}

// AtEOF reports whether the cursor has consumed the whole input.
func (c Cursor) AtEOF() bool {
	return c.Offset >= len(c.Source)
}

// Rest returns the unconsumed remainder of the input.
func (c Cursor) Rest() string {
	return c.Source[c.Offset:]
}

// AtLineStart reports whether the offset is the first byte of a line.
func (c Cursor) AtLineStart() bool {
	return c.Offset == 0 || c.Source[c.Offset-1] == '\n'
}

// LineColumn derives a 1-based (line, column) pair for diagnostics.
func (c Cursor) LineColumn() (line, col int) {
	// binary search over the line-start index computed once in New.
	lo, hi := 0, len(c.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if c.lineStarts[mid] <= c.Offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1, c.Offset - c.lineStarts[lo] + 1
}

// Fragment builds a diag.Fragment spanning [c.Offset, c.Offset+length).
func (c Cursor) Fragment(length int) diag.Fragment {
	return diag.Fragment{Offset: c.Offset, Length: length}
}

// FragmentBetween builds a diag.Fragment covering [c.Offset, end.Offset).
func (c Cursor) FragmentBetween(end Cursor) diag.Fragment {
	n := end.Offset - c.Offset
	if n < 0 {
		n = 0
	}
	return diag.Fragment{Offset: c.Offset, Length: n}
}
