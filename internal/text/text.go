// Package text implements the L2 text primitives: Unicode-aware
// character classification, reference-name scanning, indentation
// measurement, and the input normalization performed once at parse
// entry (spec.md §4.2).
package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/restdoc/rst/internal/cursor"
)

// Normalize applies NFC normalization to raw source text, matching the
// entry-point behavior of the reference reST implementation (which
// normalizes before lexing rather than leaving composed/decomposed
// forms to trip up later offset-based comparisons).
func Normalize(source string) string {
	if norm.NFC.IsNormalString(source) {
		return source
	}
	return norm.NFC.String(source)
}

// connectorSymbols are the punctuation characters a reference name may
// contain between alphanumerics (spec.md §4.2).
const connectorSymbols = "-_.:+"

func isConnector(r rune) bool {
	return strings.ContainsRune(connectorSymbols, r)
}

func isRefChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || isConnector(r)
}

// RefName is the Parser[string] for reference names: the longest run
// beginning with a letter or digit, containing any number of
// alphanumerics and connector symbols, where two consecutive symbols
// terminate the match and a trailing symbol is stripped from the
// result.
func RefName(c cursor.Cursor) cursor.Result[string] {
	rest := c.Rest()
	if len(rest) == 0 {
		return cursor.ErrString[string]("expected reference name", c)
	}
	first, size := utf8.DecodeRuneInString(rest)
	if !unicode.IsLetter(first) && !unicode.IsDigit(first) {
		return cursor.ErrString[string]("reference name must start with a letter or digit", c)
	}

	end := size
	lastConnectorSize := 0 // >0 when the immediately preceding rune was a connector
	for end < len(rest) {
		r, sz := utf8.DecodeRuneInString(rest[end:])
		if !isRefChar(r) {
			break
		}
		if isConnector(r) {
			if lastConnectorSize > 0 {
				// two consecutive symbols terminate the match; back up
				// before the first of the pair.
				end -= lastConnectorSize
				break
			}
			lastConnectorSize = sz
		} else {
			lastConnectorSize = 0
		}
		end += sz
	}

	match := rest[:end]
	// a trailing symbol is stripped from the returned value.
	for len(match) > 0 {
		r, sz := utf8.DecodeLastRuneInString(match)
		if !isConnector(r) {
			break
		}
		match = match[:len(match)-sz]
	}
	if match == "" {
		return cursor.ErrString[string]("empty reference name", c)
	}
	return cursor.Ok(match, c.Advance(len(match)))
}

// Indentation measures the number of leading space characters (tabs
// are not expanded; reST source is expected to use spaces for
// indentation per the reference grammar).
func Indentation(line string) int {
	n := 0
	for n < len(line) && line[n] == ' ' {
		n++
	}
	return n
}

// StripCommonIndent removes the minimum leading-space count shared by
// every non-blank line, used by literal-block and list-item content
// extraction. Blank lines do not count toward the minimum; a
// whitespace-only line loses up to that many leading spaces too.
func StripCommonIndent(lines []string) []string {
	min := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := Indentation(l)
		if min == -1 || n < min {
			min = n
		}
	}
	if min <= 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if len(l) >= min {
			out[i] = l[min:]
		} else {
			out[i] = strings.TrimLeft(l, " ")
		}
	}
	return out
}

// DelimitedBy scans from the cursor until it finds end, optionally
// requiring postCond to succeed immediately after the end delimiter
// (e.g. "the `_` must be followed by whitespace"). It returns the text
// between start's end and the delimiter, not including the delimiter.
func DelimitedBy(end string, postCond cursor.Parser[struct{}]) cursor.Parser[string] {
	return func(c cursor.Cursor) cursor.Result[string] {
		rest := c.Rest()
		search := 0
		for {
			idx := strings.Index(rest[search:], end)
			if idx < 0 {
				return cursor.ErrString[string]("delimiter not found", c)
			}
			absIdx := search + idx
			afterDelim := c.Advance(absIdx + len(end))
			if postCond == nil {
				return cursor.Ok(rest[:absIdx], afterDelim)
			}
			if postCond(afterDelim).IsOk() {
				return cursor.Ok(rest[:absIdx], afterDelim)
			}
			search = absIdx + 1
			if search >= len(rest) {
				return cursor.ErrString[string]("delimiter not found", c)
			}
		}
	}
}
