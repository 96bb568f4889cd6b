// Package block implements the L4 block grammar (spec.md §4.4): the
// top-level dispatch loop that tries each block production in priority
// order over indentation-delimited line ranges, plus paragraphs,
// literal blocks, transitions and section headers. Lists, tables and
// explicit markup live in sibling files within this package.
package block

import (
	"strings"

	"github.com/restdoc/rst/internal/ast"
	"github.com/restdoc/rst/internal/diag"
	"github.com/restdoc/rst/internal/ext"
	"github.com/restdoc/rst/internal/inline"
	"github.com/restdoc/rst/internal/text"
)

// wire this package's recursive block parser into ext's built-in
// directives (figure, note, warning) that need to re-parse a body of
// block content; see ext.ParseBlockContent's doc comment for why this
// is a package-init hook rather than a direct import.
func init() {
	ext.ParseBlockContent = func(source string, baseOffset int, reg *ext.Registry) []ast.Block {
		if reg == nil {
			reg = ext.NewRegistry()
		}
		sub := &parser{reg: reg, roleName: reg.DefaultRole()}
		sub.lines, sub.offsets = splitLines(source)
		for i := range sub.offsets {
			sub.offsets[i] += baseOffset
		}
		return sub.parseSequence(0)
	}
}

// parser walks a document's lines, dispatching each indentation-aligned
// range to the production that recognizes it. Lines are never mutated;
// indices and byte offsets are tracked alongside so nodes can carry
// absolute source fragments.
type parser struct {
	lines    []string
	offsets  []int // byte offset of the start of each line
	idx      int
	reg      *ext.Registry
	roleName string
	diags    []diag.Diagnostic
}

// ParseDocument parses a complete reStructuredText source into a flat,
// unresolved block sequence (section nesting and cross-reference
// resolution happen in the rewrite pass). The source is NFC-normalized
// once at entry per spec.md §4.2.
func ParseDocument(source string, reg *ext.Registry) *ast.Document {
	normalized := text.Normalize(source)
	lines, offsets := splitLines(normalized)
	// Clone so a ".. role::" declaration local to this document (see
	// explicit.go's finishRoleDeclaration) can register into the
	// registry it hands to later inline parsing without mutating the
	// caller's shared Registry value across unrelated parses.
	reg = reg.Clone()
	p := &parser{lines: lines, offsets: offsets, reg: reg, roleName: reg.DefaultRole()}
	body := p.parseSequence(0)
	return &ast.Document{Body: body, Diagnostics: p.diags}
}

func splitLines(s string) ([]string, []int) {
	var lines []string
	var offsets []int
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '\n' {
			lines = append(lines, s[start:i])
			offsets = append(offsets, start)
			start = i + 1
		}
	}
	return lines, offsets
}

func (p *parser) addError(kind diag.Kind, frag diag.Fragment, format string, args ...any) {
	p.diags = append(p.diags, diag.New(kind, frag, format, args...))
}

func (p *parser) atEOF() bool { return p.idx >= len(p.lines) }

func (p *parser) line() string { return p.lines[p.idx] }

func isBlank(line string) bool { return strings.TrimSpace(line) == "" }

func (p *parser) skipBlank() {
	for !p.atEOF() && isBlank(p.line()) {
		p.idx++
	}
}

// lineFragment builds a Fragment spanning an entire source line.
func (p *parser) lineFragment(i int) diag.Fragment {
	return diag.Fragment{Offset: p.offsets[i], Length: len(p.lines[i])}
}

// rangeFragment spans from the start of line `from` to the end of line
// `to` (inclusive).
func (p *parser) rangeFragment(from, to int) diag.Fragment {
	end := p.offsets[to] + len(p.lines[to])
	return diag.Fragment{Offset: p.offsets[from], Length: end - p.offsets[from]}
}

// parseSequence parses a run of blocks at exactly the given indent,
// stopping at EOF or at the first line indented less than indent.
func (p *parser) parseSequence(indent int) []ast.Block {
	var blocks []ast.Block
	for {
		p.skipBlank()
		if p.atEOF() {
			break
		}
		if text.Indentation(p.line()) < indent {
			break
		}
		b := p.parseOne(indent)
		if b != nil {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// parseOne dispatches the line at p.idx (already known to be non-blank
// and indented at exactly `indent`) to the first production that
// recognizes it, trying in this fixed order: transition, explicit
// markup, section header, grid table, simple table, line block, field
// list, option list, bullet list, enumerated list, definition list,
// standalone doctest block, and finally paragraph.
func (p *parser) parseOne(indent int) ast.Block {
	if b, ok := p.tryTransition(indent); ok {
		return b
	}
	if b, ok := p.tryExplicitMarkup(indent); ok {
		return b
	}
	if b, ok := p.trySectionHeader(indent); ok {
		return b
	}
	if b, ok := p.tryGridTable(indent); ok {
		return b
	}
	if b, ok := p.trySimpleTable(indent); ok {
		return b
	}
	if b, ok := p.tryLineBlock(indent); ok {
		return b
	}
	if b, ok := p.tryFieldList(indent); ok {
		return b
	}
	if b, ok := p.tryOptionList(indent); ok {
		return b
	}
	if b, ok := p.tryBulletList(indent); ok {
		return b
	}
	if b, ok := p.tryEnumList(indent); ok {
		return b
	}
	if b, ok := p.tryDefinitionList(indent); ok {
		return b
	}
	if b, ok := p.tryStandaloneDoctestBlock(indent); ok {
		return b
	}
	return p.parseParagraph(indent)
}

// tryStandaloneDoctestBlock recognizes a doctest block that appears on
// its own, with no preceding paragraph or "::" marker: every line
// begins with ">>> " (or is a bare ">>>"), ending at the next blank
// line.
func (p *parser) tryStandaloneDoctestBlock(indent int) (ast.Block, bool) {
	line := p.line()[indent:]
	if !strings.HasPrefix(line, ">>> ") && line != ">>>" {
		return nil, false
	}
	return p.parseDoctestBlock(indent)
}

// tryTransition matches a line of four or more repeated punctuation
// characters followed by a blank line or the end of the document. It is
// tried before trySectionHeader in parseOne; requiring the following
// line to be blank is what keeps it from taking a section overline. The
// line above it is not checked.
func (p *parser) tryTransition(indent int) (ast.Block, bool) {
	line := p.line()[indent:]
	if !isPunctuationRun(line) || len(line) < 4 {
		return nil, false
	}
	// A transition must be followed by a blank line or EOF; otherwise it
	// is the overline of a section header, handled by trySectionHeader.
	if p.idx+1 < len(p.lines) && !isBlank(p.lines[p.idx+1]) {
		return nil, false
	}
	frag := p.lineFragment(p.idx)
	p.idx++
	return &ast.Rule{Attrs: ast.Attrs{Frag: frag}}, true
}

func isPunctuationRun(line string) bool {
	if line == "" {
		return false
	}
	first := line[0]
	if !isPunctByte(first) {
		return false
	}
	for i := 0; i < len(line); i++ {
		if line[i] != first {
			return false
		}
	}
	return true
}

func isPunctByte(b byte) bool {
	return strings.ContainsRune("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~=", rune(b))
}

func isAlnumByte(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// trySectionHeader matches an optional overline, a title line, and a
// required underline of matching length (at least as long as the
// title), all using the same punctuation character for over/underline.
func (p *parser) trySectionHeader(indent int) (ast.Block, bool) {
	start := p.idx
	hasOverline := false
	var char byte
	titleIdx := p.idx

	if isPunctuationRun(p.line()[indent:]) && p.idx+2 < len(p.lines) {
		over := p.line()[indent:]
		title := p.lines[p.idx+1]
		under := p.lines[p.idx+2]
		if !isBlank(title) && isPunctuationRun(strings.TrimRight(under, " ")) {
			underTrim := strings.TrimRight(under, " ")
			if len(underTrim) >= len(strings.TrimSpace(title)) && underTrim != "" && underTrim[0] == over[0] {
				hasOverline = true
				char = over[0]
				titleIdx = p.idx + 1
			}
		}
	}

	if !hasOverline {
		if p.idx+1 >= len(p.lines) {
			return nil, false
		}
		title := p.line()[indent:]
		if isBlank(title) || isPunctuationRun(title) {
			return nil, false
		}
		under := strings.TrimRight(p.lines[p.idx+1], " ")
		if !isPunctuationRun(under) || len(under) < len(strings.TrimSpace(title)) {
			return nil, false
		}
		char = under[0]
		titleIdx = p.idx
	}

	titleText := strings.TrimSpace(p.lines[titleIdx])
	spans := inline.ParseSpans(titleText, p.offsets[titleIdx]+text.Indentation(p.lines[titleIdx]), p.reg, p.roleName)
	endIdx := titleIdx + 1
	frag := p.rangeFragment(start, endIdx)
	p.idx = endIdx + 1
	return &ast.DecoratedHeader{
		Attrs:      ast.Attrs{Frag: frag},
		Decoration: ast.Decoration{Char: char, HasOverline: hasOverline},
		Spans:      spans,
	}, true
}

// parseParagraph collects consecutive non-blank lines at indent into
// one paragraph, stopping at a blank line, a dedent, or a literal-block
// marker ("::" at the end of the last collected line, handled by the
// caller's next iteration since "::" is part of paragraph text that the
// literal-block production strips).
func (p *parser) parseParagraph(indent int) ast.Block {
	start := p.idx
	var textLines []string
	for !p.atEOF() && !isBlank(p.line()) && text.Indentation(p.line()) == indent {
		l := p.line()[indent:]
		if isLiteralBlockMarkerOnly(l) && p.idx > start {
			break
		}
		textLines = append(textLines, l)
		p.idx++
		if strings.HasSuffix(strings.TrimRight(l, " "), "::") {
			break
		}
	}
	end := p.idx - 1
	raw := strings.Join(textLines, " ")
	literalFollows := strings.HasSuffix(strings.TrimRight(raw, " "), "::")
	bodyText, _ := normalizeLiteralMarker(raw)

	if literalFollows && bodyText == "" {
		// A paragraph consisting solely of "::" is itself the literal-block
		// marker and produces no paragraph node of its own.
		if lit, ok := p.parseLiteralBlockBody(indent); ok {
			return lit
		}
		return &ast.Comment{Attrs: ast.Attrs{Frag: p.rangeFragment(start, end)}, Text: ""}
	}

	para := &ast.Paragraph{
		Attrs: ast.Attrs{Frag: p.rangeFragment(start, end)},
		Spans: inline.ParseSpans(bodyText, p.offsets[start], p.reg, p.roleName),
	}

	if literalFollows {
		if lit, ok := p.parseLiteralBlockBody(indent); ok {
			return &ast.BlockSequence{Attrs: ast.Attrs{Frag: para.Frag}, Blocks: []ast.Block{para, lit}}
		}
	}
	return para
}

func isLiteralBlockMarkerOnly(line string) bool {
	return strings.TrimSpace(line) == "::"
}

// normalizeLiteralMarker applies the three literal-block marker rules:
// a paragraph ending in " ::" has the marker and the space before it
// removed; one ending in "::" attached to the text has it replaced by a
// single ":"; a line that is exactly "::" on its own becomes "".
func normalizeLiteralMarker(raw string) (string, bool) {
	trimmed := strings.TrimRight(raw, " ")
	if !strings.HasSuffix(trimmed, "::") {
		return raw, false
	}
	if trimmed == "::" {
		return "", true
	}
	before := trimmed[:len(trimmed)-2]
	if strings.HasSuffix(before, " ") {
		return strings.TrimRight(before, " "), true
	}
	return before + ":", true
}

// parseLiteralBlockBody consumes the blank line(s) and indented block
// following a "::" marker, producing an indented, quoted or doctest
// literal block per spec.md §4.4.2.
func (p *parser) parseLiteralBlockBody(indent int) (ast.Block, bool) {
	p.skipBlank()
	if p.atEOF() {
		return nil, false
	}
	if text.Indentation(p.line()) == indent {
		rest := p.line()[indent:]
		if rest != "" && !isAlnumByte(rest[0]) && rest[0] != ' ' {
			return p.parseQuotedLiteralBlock(indent, rest[0])
		}
		return nil, false
	}
	if text.Indentation(p.line()) < indent {
		return nil, false
	}
	if strings.HasPrefix(strings.TrimLeft(p.line(), " "), ">>> ") || strings.TrimLeft(p.line(), " ") == ">>>" {
		return p.parseDoctestBlock(indent)
	}
	bodyIndent := text.Indentation(p.line())
	start := p.idx
	var lines []string
	for !p.atEOF() {
		if isBlank(p.line()) {
			lines = append(lines, "")
			p.idx++
			continue
		}
		if text.Indentation(p.line()) < bodyIndent {
			break
		}
		lines = append(lines, p.line())
		p.idx++
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	stripped := text.StripCommonIndent(lines)
	frag := p.rangeFragment(start, p.idx-1)
	return &ast.LiteralBlock{Attrs: ast.Attrs{Frag: frag}, Text: strings.Join(stripped, "\n"), Style: ast.LiteralIndented}, true
}

// parseDoctestBlock consumes a PEP 8-style doctest block: lines starting
// with ">>> " (or a bare ">>>") up to the next blank line.
func (p *parser) parseDoctestBlock(indent int) (ast.Block, bool) {
	start := p.idx
	var lines []string
	for !p.atEOF() && !isBlank(p.line()) {
		lines = append(lines, strings.TrimLeft(p.line(), " "))
		p.idx++
	}
	frag := p.rangeFragment(start, p.idx-1)
	return &ast.LiteralBlock{Attrs: ast.Attrs{Frag: frag}, Text: strings.Join(lines, "\n"), Style: ast.LiteralDoctest}, true
}

// parseQuotedLiteralBlock handles the quoted-literal-block variant: each
// line begins with the same non-alphanumeric, non-whitespace character
// and no indentation is added. The quote character is kept in the
// block's text.
func (p *parser) parseQuotedLiteralBlock(indent int, quoteChar byte) (ast.Block, bool) {
	start := p.idx
	var lines []string
	for !p.atEOF() && !isBlank(p.line()) && text.Indentation(p.line()) == indent && len(p.line()) > indent && p.line()[indent] == quoteChar {
		lines = append(lines, p.line()[indent:])
		p.idx++
	}
	if len(lines) == 0 {
		return nil, false
	}
	frag := p.rangeFragment(start, p.idx-1)
	return &ast.LiteralBlock{Attrs: ast.Attrs{Frag: frag}, Text: strings.Join(lines, "\n"), Style: ast.LiteralQuoted, QuoteChar: quoteChar}, true
}
