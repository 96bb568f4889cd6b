package block

import (
	"strconv"
	"strings"

	"github.com/restdoc/rst/internal/ast"
	"github.com/restdoc/rst/internal/inline"
	"github.com/restdoc/rst/internal/text"
)

// itemIndent computes the absolute column a list item's body starts at,
// given "from", the absolute column right after its marker (including
// any single mandatory separating space the marker already accounts
// for). Any further run of spaces past "from" is consumed as part of
// the indent. If nothing but whitespace follows on the marker line
// itself, the body is on a following line instead: the "hanging
// indent" rule places it one column past "from".
func itemIndent(line string, from int) int {
	n := from
	for n < len(line) && line[n] == ' ' {
		n++
	}
	if n >= len(line) {
		return from + 1
	}
	return n
}

// collectItemLines gathers a list item's lines: the remainder of the
// marker line, plus any further lines indented at least to bodyIndent,
// stopping at the first dedented line or at a blank line that is not
// directly followed by a non-blank line indented to bodyIndent.
func (p *parser) collectItemLines(markerLineIdx, bodyIndent int) []string {
	first := ""
	if len(p.lines[markerLineIdx]) > bodyIndent {
		first = p.lines[markerLineIdx][bodyIndent:]
	}
	lines := []string{first}
	p.idx = markerLineIdx + 1
	for !p.atEOF() {
		if isBlank(p.line()) {
			if p.idx+1 < len(p.lines) && text.Indentation(p.lines[p.idx+1]) >= bodyIndent && !isBlank(p.lines[p.idx+1]) {
				lines = append(lines, "")
				p.idx++
				continue
			}
			break
		}
		if text.Indentation(p.line()) < bodyIndent {
			break
		}
		lines = append(lines, p.line()[bodyIndent:])
		p.idx++
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// parseItemBody reparses an already-dedented set of item lines as a
// full block sequence, offset so fragments remain absolute.
func (p *parser) parseItemBody(lines []string, baseOffset int) []ast.Block {
	joined := strings.Join(lines, "\n")
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	sub := &parser{reg: p.reg, roleName: p.roleName}
	sub.lines, sub.offsets = splitLines(joined)
	for i := range sub.offsets {
		sub.offsets[i] += baseOffset
	}
	blocks := sub.parseSequence(0)
	p.diags = append(p.diags, sub.diags...)
	return blocks
}

// tryBulletList matches a run of items marked with the same one of
// '*', '-' or '+' followed by at least one space, at exactly `indent`.
func (p *parser) tryBulletList(indent int) (ast.Block, bool) {
	line := p.line()
	if text.Indentation(line) != indent {
		return nil, false
	}
	rest := line[indent:]
	if len(rest) < 2 || !strings.ContainsRune("*-+", rune(rest[0])) || rest[1] != ' ' {
		return nil, false
	}
	bullet := rest[0]
	start := p.idx

	var items []*ast.ListItem
	for !p.atEOF() {
		p.skipBlank()
		if p.atEOF() || text.Indentation(p.line()) != indent {
			break
		}
		cur := p.line()[indent:]
		if len(cur) < 2 || cur[0] != bullet || cur[1] != ' ' {
			break
		}
		markerLineIdx := p.idx
		bodyIndent := itemIndent(p.line(), indent+2)
		lines := p.collectItemLines(markerLineIdx, bodyIndent)
		body := p.parseItemBody(lines, p.offsets[markerLineIdx]+bodyIndent)
		items = append(items, &ast.ListItem{Content: body})
	}
	if len(items) == 0 {
		return nil, false
	}
	frag := p.rangeFragment(start, p.idx-1)
	return &ast.BulletList{Attrs: ast.Attrs{Frag: frag}, Bullet: bullet, Items: items}, true
}

// enumMarker describes one recognized enumerator: its numeral system,
// prefix/suffix punctuation and the integer value it denotes.
type enumMarker struct {
	format ast.EnumFormat
	value  int
	width  int // byte length of the marker including punctuation
}

// parseEnumMarker recognizes a single enumerator at the start of line,
// e.g. "1.", "(a)", "iv)", "#.". Returns ok=false if none matches.
func parseEnumMarker(line string) (enumMarker, bool) {
	if line == "" {
		return enumMarker{}, false
	}
	prefix := ""
	body := line
	if body[0] == '(' {
		prefix = "("
		body = body[1:]
	}
	end := strings.IndexAny(body, ".)")
	if end <= 0 {
		return enumMarker{}, false
	}
	token := body[:end]
	suffix := string(body[end])
	if prefix == "(" && suffix != ")" {
		return enumMarker{}, false
	}
	if end+1 >= len(body) || body[end+1] != ' ' {
		// a bare "." or ")" with no trailing text still requires the
		// following space to separate the marker from the item body.
		return enumMarker{}, false
	}

	if token == "#" {
		return enumMarker{format: ast.EnumFormat{System: ast.Arabic, Prefix: prefix, Suffix: suffix}, value: -1, width: len(prefix) + end + 1}, true
	}
	if n, err := strconv.Atoi(token); err == nil {
		return enumMarker{format: ast.EnumFormat{System: ast.Arabic, Prefix: prefix, Suffix: suffix}, value: n, width: len(prefix) + end + 1}, true
	}
	if n, ok := romanValue(strings.ToLower(token)); ok {
		system := ast.LowerRoman
		if token == strings.ToUpper(token) && token != strings.ToLower(token) {
			system = ast.UpperRoman
		}
		return enumMarker{format: ast.EnumFormat{System: system, Prefix: prefix, Suffix: suffix}, value: n, width: len(prefix) + end + 1}, true
	}
	if len(token) == 1 && token[0] >= 'a' && token[0] <= 'z' {
		return enumMarker{format: ast.EnumFormat{System: ast.LowerAlpha, Prefix: prefix, Suffix: suffix}, value: int(token[0]-'a') + 1, width: len(prefix) + end + 1}, true
	}
	if len(token) == 1 && token[0] >= 'A' && token[0] <= 'Z' {
		return enumMarker{format: ast.EnumFormat{System: ast.UpperAlpha, Prefix: prefix, Suffix: suffix}, value: int(token[0]-'A') + 1, width: len(prefix) + end + 1}, true
	}
	return enumMarker{}, false
}

var romanDigits = map[byte]int{'i': 1, 'v': 5, 'x': 10, 'l': 50, 'c': 100, 'd': 500, 'm': 1000}

// romanValue converts a lowercase Roman numeral to its integer value
// using the standard subtractive-pair rule. Single-letter ambiguous
// forms ("i", "v", "x", "l", "c", "d", "m") are also valid alphabetic
// enumerators; parseEnumMarker resolves that ambiguity by trying Roman
// first and falling back to alphabetic only for letters Roman can't
// parse, matching the reference grammar's documented preference for
// Roman numerals when a sequence could be read either way.
func romanValue(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	total := 0
	prev := 0
	for i := len(s) - 1; i >= 0; i-- {
		v, ok := romanDigits[s[i]]
		if !ok {
			return 0, false
		}
		if v < prev {
			total -= v
		} else {
			total += v
		}
		prev = v
	}
	return total, true
}

// tryEnumList matches a run of enumerators sharing the same numeral
// system and punctuation shape, in ascending order from an explicit or
// implicit start value.
func (p *parser) tryEnumList(indent int) (ast.Block, bool) {
	line := p.line()
	if text.Indentation(line) != indent {
		return nil, false
	}
	first, ok := parseEnumMarker(line[indent:])
	if !ok {
		return nil, false
	}
	start := p.idx
	format := first.format
	startValue := first.value
	if startValue < 0 {
		startValue = 1
	}

	var items []*ast.ListItem
	expect := startValue
	for !p.atEOF() {
		p.skipBlank()
		if p.atEOF() || text.Indentation(p.line()) != indent {
			break
		}
		m, ok := parseEnumMarker(p.line()[indent:])
		if !ok || m.format != format {
			break
		}
		if m.value >= 0 && m.value != expect {
			break
		}
		markerLineIdx := p.idx
		bodyIndent := itemIndent(p.line(), indent+m.width+1)
		lines := p.collectItemLines(markerLineIdx, bodyIndent)
		body := p.parseItemBody(lines, p.offsets[markerLineIdx]+bodyIndent)
		items = append(items, &ast.ListItem{Content: body})
		expect++
	}
	if len(items) == 0 {
		return nil, false
	}
	frag := p.rangeFragment(start, p.idx-1)
	return &ast.EnumList{Attrs: ast.Attrs{Frag: frag}, Format: format, Start: startValue, Items: items}, true
}

// tryFieldList matches a run of ":name: body" entries.
func (p *parser) tryFieldList(indent int) (ast.Block, bool) {
	line := p.line()
	if text.Indentation(line) != indent {
		return nil, false
	}
	rest := line[indent:]
	if len(rest) == 0 || rest[0] != ':' {
		return nil, false
	}
	end := strings.IndexByte(rest[1:], ':')
	if end <= 0 {
		// A field name must be at least one character; "::" alone is
		// the literal-block marker, not an empty-named field.
		return nil, false
	}
	start := p.idx

	var fields []*ast.Field
	for !p.atEOF() {
		p.skipBlank()
		if p.atEOF() || text.Indentation(p.line()) != indent {
			break
		}
		cur := p.line()[indent:]
		if len(cur) == 0 || cur[0] != ':' {
			break
		}
		nameEnd := strings.IndexByte(cur[1:], ':')
		if nameEnd <= 0 {
			break
		}
		name := cur[1 : 1+nameEnd]
		markerLineIdx := p.idx
		markerLen := indent + 1 + nameEnd + 1
		bodyIndent := itemIndent(p.line(), markerLen)
		lines := p.collectItemLines(markerLineIdx, bodyIndent)
		body := p.parseItemBody(lines, p.offsets[markerLineIdx]+bodyIndent)
		fields = append(fields, &ast.Field{Name: name, Body: body})
	}
	if len(fields) == 0 {
		return nil, false
	}
	frag := p.rangeFragment(start, p.idx-1)
	return &ast.FieldList{Attrs: ast.Attrs{Frag: frag}, Fields: fields}, true
}

// parseOptionToken recognizes one "-a", "--name", "+a" or "/a" flag
// with an optional "<value>" or "=value"/" value" argument, stopping at
// the next ", " synonym separator. Returns the option, the byte length
// consumed, and whether a flag was recognized.
func parseOptionToken(s string) (ast.Option, int, bool) {
	if s == "" {
		return ast.Option{}, 0, false
	}
	var flagEnd int
	switch {
	case strings.HasPrefix(s, "--"):
		flagEnd = 2
	case s[0] == '-' || s[0] == '+' || s[0] == '/':
		flagEnd = 1
	default:
		return ast.Option{}, 0, false
	}
	for flagEnd < len(s) && s[flagEnd] != ' ' && s[flagEnd] != '=' && s[flagEnd] != ',' {
		flagEnd++
	}
	if flagEnd <= 1 {
		return ast.Option{}, 0, false
	}
	opt := ast.Option{Flag: s[:flagEnd]}
	consumed := flagEnd
	rest := s[flagEnd:]
	switch {
	case strings.HasPrefix(rest, "="):
		end := strings.IndexAny(rest[1:], " ,")
		if end < 0 {
			end = len(rest) - 1
		}
		opt.Arg = &ast.OptionArg{Value: rest[1 : 1+end]}
		consumed += 1 + end
	case strings.HasPrefix(rest, " <"):
		end := strings.IndexByte(rest, '>')
		if end > 0 {
			opt.Arg = &ast.OptionArg{Value: rest[2:end], Bracket: true}
			consumed += end + 1
		}
	case strings.HasPrefix(rest, " ") && len(rest) > 1 && rest[1] != ',' && rest[1] != ' ':
		end := strings.IndexAny(rest[1:], " ,")
		if end < 0 {
			end = len(rest) - 1
		}
		opt.Arg = &ast.OptionArg{Value: rest[1 : 1+end]}
		consumed += 1 + end
	}
	return opt, consumed, true
}

// tryOptionList matches a run of items whose marker line is one or
// more comma-separated option flags followed by a two-space gutter and
// the item's description.
func (p *parser) tryOptionList(indent int) (ast.Block, bool) {
	line := p.line()
	if text.Indentation(line) != indent {
		return nil, false
	}
	if _, _, ok := parseOptionsRun(line[indent:]); !ok {
		return nil, false
	}
	start := p.idx

	var items []*ast.OptionListItem
	for !p.atEOF() {
		p.skipBlank()
		if p.atEOF() || text.Indentation(p.line()) != indent {
			break
		}
		rest := p.line()[indent:]
		opts, consumed, ok := parseOptionsRun(rest)
		if !ok {
			break
		}
		markerLineIdx := p.idx
		bodyIndent := itemIndent(p.line(), indent+consumed)
		lines := p.collectItemLines(markerLineIdx, bodyIndent)
		body := p.parseItemBody(lines, p.offsets[markerLineIdx]+bodyIndent)
		items = append(items, &ast.OptionListItem{Options: opts, Description: body})
	}
	if len(items) == 0 {
		return nil, false
	}
	frag := p.rangeFragment(start, p.idx-1)
	return &ast.OptionList{Attrs: ast.Attrs{Frag: frag}, Items: items}, true
}

// parseOptionsRun parses the comma-separated run of option synonyms at
// the start of a line, requiring at least a two-space gutter before any
// description text (the reference grammar's field separating marker
// from body).
func parseOptionsRun(s string) ([]ast.Option, int, bool) {
	var opts []ast.Option
	pos := 0
	for {
		opt, n, ok := parseOptionToken(s[pos:])
		if !ok {
			break
		}
		opts = append(opts, opt)
		pos += n
		if strings.HasPrefix(s[pos:], ", ") {
			pos += 2
			continue
		}
		break
	}
	if len(opts) == 0 {
		return nil, 0, false
	}
	if !strings.HasPrefix(s[pos:], "  ") && pos != len(s) {
		return nil, 0, false
	}
	return opts, pos, true
}

// tryLineBlock matches "| " prefixed lines. Entries are flat: extra
// indentation after "| " stays in the entry's text, and no nested
// LineBlock is built.
func (p *parser) tryLineBlock(indent int) (ast.Block, bool) {
	line := p.line()
	if text.Indentation(line) != indent || !strings.HasPrefix(line[indent:], "|") {
		return nil, false
	}
	start := p.idx
	entries := p.parseLineBlockEntries(indent)
	if len(entries) == 0 {
		return nil, false
	}
	frag := p.rangeFragment(start, p.idx-1)
	return &ast.LineBlock{Attrs: ast.Attrs{Frag: frag}, Entries: entries}, true
}

func (p *parser) parseLineBlockEntries(indent int) []ast.LineBlockEntry {
	var entries []ast.LineBlockEntry
	for !p.atEOF() && text.Indentation(p.line()) == indent && strings.HasPrefix(p.line()[indent:], "|") {
		rest := p.line()[indent:]
		body := rest[1:]
		if strings.HasPrefix(body, " ") {
			body = body[1:]
		}
		lineIdx := p.idx
		p.idx++
		// A continuation: further lines indented past the "| " gutter with
		// no leading "|" belong to the same entry, wrapped onto one line.
		for !p.atEOF() && !isBlank(p.line()) && text.Indentation(p.line()) > indent && !strings.HasPrefix(strings.TrimLeft(p.line(), " "), "|") {
			body += " " + strings.TrimSpace(p.line())
			p.idx++
		}
		spans := inline.ParseSpans(body, p.offsets[lineIdx]+text.Indentation(p.lines[lineIdx])+1, p.reg, p.roleName)
		entries = append(entries, ast.LineBlockEntry{Spans: spans})
	}
	return entries
}

// tryDefinitionList matches a term line (optionally with " : classifier"
// segments) followed by an indented definition body.
func (p *parser) tryDefinitionList(indent int) (ast.Block, bool) {
	line := p.line()
	if text.Indentation(line) != indent || isBlank(line) || isPunctuationRun(line[indent:]) {
		return nil, false
	}
	if p.idx+1 >= len(p.lines) {
		return nil, false
	}
	nextIndent := text.Indentation(p.lines[p.idx+1])
	if isBlank(p.lines[p.idx+1]) || nextIndent <= indent {
		return nil, false
	}
	start := p.idx

	var items []*ast.DefinitionItem
	for !p.atEOF() {
		p.skipBlank()
		if p.atEOF() || text.Indentation(p.line()) != indent || isBlank(p.line()) {
			break
		}
		if p.idx+1 >= len(p.lines) || isBlank(p.lines[p.idx+1]) || text.Indentation(p.lines[p.idx+1]) <= indent {
			break
		}
		termLineIdx := p.idx
		termLine := p.line()[indent:]
		termText, classifierText := splitTermClassifier(termLine)
		termBase := p.offsets[termLineIdx] + indent
		term := inline.ParseSpans(termText, termBase, p.reg, p.roleName)
		var classifier []ast.Span
		if classifierText != "" {
			classifier = inline.ParseSpans(classifierText, termBase+len(termLine)-len(classifierText), p.reg, p.roleName)
		}
		bodyIndent := text.Indentation(p.lines[p.idx+1])
		p.idx++
		defStart := p.idx
		for !p.atEOF() && (isBlank(p.line()) || text.Indentation(p.line()) >= bodyIndent) {
			if isBlank(p.line()) && (p.idx+1 >= len(p.lines) || text.Indentation(p.lines[p.idx+1]) < bodyIndent) {
				break
			}
			p.idx++
		}
		defLines := make([]string, 0, p.idx-defStart)
		for i := defStart; i < p.idx; i++ {
			if isBlank(p.lines[i]) {
				defLines = append(defLines, "")
				continue
			}
			defLines = append(defLines, p.lines[i][bodyIndent:])
		}
		body := p.parseItemBody(defLines, p.offsets[defStart]+bodyIndent)
		items = append(items, &ast.DefinitionItem{Term: term, Classifier: classifier, Definition: body})
	}
	if len(items) == 0 {
		return nil, false
	}
	frag := p.rangeFragment(start, p.idx-1)
	return &ast.DefinitionList{Attrs: ast.Attrs{Frag: frag}, Items: items}, true
}

// splitTermClassifier splits a definition-list term line on the first
// " : " classifier separator.
func splitTermClassifier(line string) (term, classifier string) {
	idx := strings.Index(line, " : ")
	if idx < 0 {
		return line, ""
	}
	return line[:idx], line[idx+3:]
}
