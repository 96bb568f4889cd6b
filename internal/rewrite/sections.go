package rewrite

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/restdoc/rst/internal/ast"
)

// foldAccents decomposes accented runes to their base letter plus
// combining marks, then strips the marks, so "Café" slugifies to
// "cafe" rather than dropping the é outright.
var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// slugify turns arbitrary header text into a URL-safe section id:
// fold accents, lowercase, and collapse every run of characters
// outside [a-z0-9] into a single hyphen, trimming leading/trailing
// hyphens as the collapse proceeds rather than as a post-hoc trim.
func slugify(text string) string {
	folded, _, err := transform.String(foldAccents, text)
	if err != nil {
		folded = text
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	pendingHyphen := false
	started := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && started {
				b.WriteByte('-')
			}
			pendingHyphen = false
			started = true
			b.WriteRune(r)
			continue
		}
		if started {
			pendingHyphen = true
		}
	}
	if b.Len() == 0 {
		return "section"
	}
	return b.String()
}

// claimID dedupes a candidate id against every id already assigned in
// this document, appending -2, -3, ... on collision.
func (rw *rewriter) claimID(id string) string {
	if id == "" {
		id = "section"
	}
	n := rw.seenIDs[id]
	rw.seenIDs[id] = n + 1
	if n == 0 {
		return id
	}
	for {
		candidate := id + "-" + itoa(n+1)
		if _, exists := rw.seenIDs[candidate]; !exists {
			rw.seenIDs[candidate] = 1
			return candidate
		}
		n++
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// flattenText extracts the plain text content of a span sequence, used
// to derive a header's slug; nested spans are walked recursively and
// non-text spans contribute nothing.
func flattenText(spans []ast.Span) string {
	var b strings.Builder
	flattenInto(&b, spans)
	return b.String()
}

func flattenInto(b *strings.Builder, spans []ast.Span) {
	for _, s := range spans {
		switch n := s.(type) {
		case *ast.Text:
			b.WriteString(n.Value)
		case *ast.Literal:
			b.WriteString(n.Value)
		case *ast.Emphasized:
			flattenInto(b, n.Spans)
		case *ast.Strong:
			flattenInto(b, n.Spans)
		case *ast.SpanSequence:
			flattenInto(b, n.Spans)
		case *ast.SpanLink:
			flattenInto(b, n.Spans)
		case *ast.InterpretedText:
			b.WriteString(n.Text)
		}
	}
}

// levelOf returns a header's nesting level, assigned during collect by
// first-seen (char, hasOverline) decoration order (spec.md §4.6 item
// 1, exercised by the H1/H2/H1b scenario in spec.md §8).
func (rw *rewriter) levelOf(h *ast.DecoratedHeader) int {
	return rw.decoLevel[h.Decoration]
}

// nestSections turns a flat, already-transformed block sequence into a
// tree of Section nodes: every DecoratedHeader opens a new Section
// containing all following blocks up to the next header whose level is
// <= its own, recursively nesting any deeper headers inside it. Blocks
// preceding the first header stay at the top level, outside any
// Section (docutils calls this the document's "front matter").
func (rw *rewriter) nestSections(blocks []ast.Block) []ast.Block {
	i := 0
	var front []ast.Block
	for i < len(blocks) {
		if _, ok := blocks[i].(*ast.DecoratedHeader); ok {
			break
		}
		front = append(front, blocks[i])
		i++
	}
	sections, _ := rw.buildSections(blocks, i, 0)
	return append(front, sections...)
}

// buildSections consumes headers starting at index i whose level is
// greater than minLevel, returning the Section nodes built and the
// index just past the last block consumed.
func (rw *rewriter) buildSections(blocks []ast.Block, i int, minLevel int) ([]ast.Block, int) {
	var out []ast.Block
	for i < len(blocks) {
		header, ok := blocks[i].(*ast.DecoratedHeader)
		if !ok {
			// Can't happen once past front matter at the top call, but a
			// nested level may still see stray non-header blocks if the
			// grammar ever emits one; skip defensively rather than lose it.
			out = append(out, blocks[i])
			i++
			continue
		}
		level := rw.levelOf(header)
		if level <= minLevel {
			return out, i
		}
		i++
		var body []ast.Block
		for i < len(blocks) {
			if next, ok := blocks[i].(*ast.DecoratedHeader); ok {
				if rw.levelOf(next) <= level {
					break
				}
				var nested []ast.Block
				nested, i = rw.buildSections(blocks, i, level)
				body = append(body, nested...)
				continue
			}
			body = append(body, blocks[i])
			i++
		}
		out = append(out, &ast.Section{Attrs: header.Attrs, Level: level, Header: header, Body: body})
	}
	return out, i
}
