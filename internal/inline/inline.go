package inline

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/restdoc/rst/internal/ast"
	"github.com/restdoc/rst/internal/cursor"
	"github.com/restdoc/rst/internal/diag"
	"github.com/restdoc/rst/internal/ext"
	"github.com/restdoc/rst/internal/text"
)

const maxSpanDepth = 32

// scanner walks one flattened block-local text run, producing Span
// nodes in source order. Inline markup operates on a paragraph's (or
// field's, or header's) assembled text rather than the original
// multi-line source, so offsets are block-local and shifted by base
// before they are stored in a node's Attrs.Frag.
type scanner struct {
	s           string
	pos         int
	base        int
	reg         *ext.Registry
	defaultRole string
	depth       int
}

// ParseSpans parses the inline grammar over content, a single block's
// already-assembled text, and returns the resulting spans with
// Attrs.Frag offsets shifted into the surrounding document's
// coordinate space by base.
func ParseSpans(content string, base int, reg *ext.Registry, defaultRole string) []ast.Span {
	return parseSpansAt(content, base, reg, defaultRole, 0)
}

func parseSpansAt(s string, base int, reg *ext.Registry, defaultRole string, depth int) []ast.Span {
	sc := &scanner{s: s, base: base, reg: reg, defaultRole: defaultRole, depth: depth}
	return sc.run()
}

func (sc *scanner) frag(start, end int) diag.Fragment {
	return diag.Fragment{Offset: sc.base + start, Length: end - start}
}

func (sc *scanner) textSpan(start, end int) ast.Span {
	return &ast.Text{Attrs: ast.Attrs{Frag: sc.frag(start, end)}, Value: sc.s[start:end]}
}

func (sc *scanner) run() []ast.Span {
	var spans []ast.Span
	textStart := 0

	flush := func(end int) {
		if end > textStart {
			spans = append(spans, sc.textSpan(textStart, end))
		}
	}

	for sc.pos < len(sc.s) {
		if sc.s[sc.pos] == '\\' && sc.pos+1 < len(sc.s) {
			flush(sc.pos)
			r, sz := decodeRune(sc.s, sc.pos+1)
			spans = append(spans, &ast.Text{Attrs: ast.Attrs{Frag: sc.frag(sc.pos, sc.pos+1+sz)}, Value: string(r)})
			sc.pos += 1 + sz
			textStart = sc.pos
			continue
		}

		start := sc.pos
		if span, next, ok := sc.tryMarkup(); ok {
			flush(start)
			spans = append(spans, span)
			sc.pos = next
			textStart = next
			continue
		}
		_, sz := decodeRune(sc.s, sc.pos)
		sc.pos += sz
	}
	flush(len(sc.s))
	return spans
}

func decodeRune(s string, pos int) (rune, int) {
	r, sz := utf8.DecodeRuneInString(s[pos:])
	return r, sz
}

// tryMarkup attempts every inline production at the current position in
// priority order, returning the first that matches.
func (sc *scanner) tryMarkup() (ast.Span, int, bool) {
	if sc.depth >= maxSpanDepth {
		return nil, 0, false
	}
	if span, next, ok := sc.matchLiteral(); ok {
		return span, next, ok
	}
	if span, next, ok := sc.matchStrong(); ok {
		return span, next, ok
	}
	if span, next, ok := sc.matchEmphasis(); ok {
		return span, next, ok
	}
	if span, next, ok := sc.matchRolePrefixedInterpreted(); ok {
		return span, next, ok
	}
	if span, next, ok := sc.matchBacktickForm(); ok {
		return span, next, ok
	}
	if span, next, ok := sc.matchSubstitution(); ok {
		return span, next, ok
	}
	if span, next, ok := sc.matchInternalTarget(); ok {
		return span, next, ok
	}
	if span, next, ok := sc.matchFootnoteOrCitation(); ok {
		return span, next, ok
	}
	if span, next, ok := sc.matchShorthandReference(); ok {
		return span, next, ok
	}
	if span, next, ok := sc.matchStandaloneURI(); ok {
		return span, next, ok
	}
	return nil, 0, false
}

// findClosingDelim returns the byte offset of the next unescaped
// occurrence of delim at or after from.
func findClosingDelim(s string, from int, delim string) (int, bool) {
	for i := from; i < len(s); {
		idx := strings.Index(s[i:], delim)
		if idx < 0 {
			return 0, false
		}
		abs := i + idx
		if abs > 0 && s[abs-1] == '\\' {
			i = abs + 1
			continue
		}
		return abs, true
	}
	return 0, false
}

// matchDelimited matches `startDelim ... endDelim` at the current
// position, applying the six recognition rules, and returns the
// content bounds plus the offset just past the end delimiter.
func (sc *scanner) matchDelimited(startDelim, endDelim string) (contentStart, contentEnd, afterEnd int, ok bool) {
	if !strings.HasPrefix(sc.s[sc.pos:], startDelim) {
		return 0, 0, 0, false
	}
	startOffset := sc.pos
	startEnd := sc.pos + len(startDelim)
	endStart, found := findClosingDelim(sc.s, startEnd, endDelim)
	if !found {
		return 0, 0, 0, false
	}
	endEnd := endStart + len(endDelim)
	if !recognized(sc.s, startOffset, startEnd, endStart, endEnd) {
		return 0, 0, 0, false
	}
	return startEnd, endStart, endEnd, true
}

func (sc *scanner) matchLiteral() (ast.Span, int, bool) {
	if !precededOK(sc.s, sc.pos) {
		return nil, 0, false
	}
	cs, ce, after, ok := sc.matchDelimited("``", "``")
	if !ok || !followedOK(sc.s, after) {
		return nil, 0, false
	}
	return &ast.Literal{Attrs: ast.Attrs{Frag: sc.frag(sc.pos, after)}, Value: sc.s[cs:ce]}, after, true
}

func (sc *scanner) matchStrong() (ast.Span, int, bool) {
	if !precededOK(sc.s, sc.pos) {
		return nil, 0, false
	}
	cs, ce, after, ok := sc.matchDelimited("**", "**")
	if !ok || !followedOK(sc.s, after) {
		return nil, 0, false
	}
	inner := parseSpansAt(sc.s[cs:ce], sc.base+cs, sc.reg, sc.defaultRole, sc.depth+1)
	return &ast.Strong{Attrs: ast.Attrs{Frag: sc.frag(sc.pos, after)}, Spans: inner}, after, true
}

func (sc *scanner) matchEmphasis() (ast.Span, int, bool) {
	if !precededOK(sc.s, sc.pos) {
		return nil, 0, false
	}
	cs, ce, after, ok := sc.matchDelimited("*", "*")
	if !ok || !followedOK(sc.s, after) {
		return nil, 0, false
	}
	inner := parseSpansAt(sc.s[cs:ce], sc.base+cs, sc.reg, sc.defaultRole, sc.depth+1)
	return &ast.Emphasized{Attrs: ast.Attrs{Frag: sc.frag(sc.pos, after)}, Spans: inner}, after, true
}

// matchRolePrefixedInterpreted matches ":rolename:`text`".
func (sc *scanner) matchRolePrefixedInterpreted() (ast.Span, int, bool) {
	if sc.pos >= len(sc.s) || sc.s[sc.pos] != ':' {
		return nil, 0, false
	}
	rest := sc.s[sc.pos+1:]
	nameEnd := strings.IndexByte(rest, ':')
	if nameEnd <= 0 {
		return nil, 0, false
	}
	role := rest[:nameEnd]
	if !isRoleName(role) {
		return nil, 0, false
	}
	backtickStart := sc.pos + 1 + nameEnd + 1
	if backtickStart >= len(sc.s) || sc.s[backtickStart] != '`' {
		return nil, 0, false
	}
	saved := sc.pos
	sc.pos = backtickStart
	cs, ce, after, ok := sc.matchDelimited("`", "`")
	sc.pos = saved
	if !ok {
		return nil, 0, false
	}
	if !recognizedRoleWrapper(sc.s, saved, after) {
		return nil, 0, false
	}
	txt := sc.s[cs:ce]
	frag := sc.frag(saved, after)
	if spec, found := sc.reg.TextRole(role); found {
		return spec.Apply(nil, txt, frag), after, true
	}
	return &ast.InterpretedText{Attrs: ast.Attrs{Frag: frag}, Role: role, Text: txt}, after, true
}

func recognizedRoleWrapper(s string, startOffset, afterEnd int) bool {
	return precededOK(s, startOffset) && followedOK(s, afterEnd)
}

func isRoleName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '+' || r == ':' || r == '.') {
			return false
		}
	}
	return true
}

// matchBacktickForm matches a bare "`text`", optionally followed by a
// trailing ":role:" or a hyperlink-reference suffix ("_" / "__"), and
// phrase-link syntax "`text <target>`_".
func (sc *scanner) matchBacktickForm() (ast.Span, int, bool) {
	if !precededOK(sc.s, sc.pos) {
		return nil, 0, false
	}
	cs, ce, after, ok := sc.matchDelimited("`", "`")
	if !ok {
		return nil, 0, false
	}
	inner := sc.s[cs:ce]

	// trailing role: `text`:role:
	if strings.HasPrefix(sc.s[after:], ":") {
		rest := sc.s[after+1:]
		nameEnd := strings.IndexByte(rest, ':')
		if nameEnd > 0 && isRoleName(rest[:nameEnd]) {
			role := rest[:nameEnd]
			roleAfter := after + 1 + nameEnd + 1
			if !followedOK(sc.s, roleAfter) {
				return nil, 0, false
			}
			frag := sc.frag(sc.pos, roleAfter)
			if spec, found := sc.reg.TextRole(role); found {
				return spec.Apply(nil, inner, frag), roleAfter, true
			}
			return &ast.InterpretedText{Attrs: ast.Attrs{Frag: frag}, Role: role, Text: inner}, roleAfter, true
		}
	}

	// phrase / shorthand reference: `text <target>`_ or `text`_ or `text`__
	if strings.HasPrefix(sc.s[after:], "__") {
		if !followedOK(sc.s, after+2) {
			return nil, 0, false
		}
		return sc.phraseReference(inner, sc.pos, after+2, true)
	}
	if strings.HasPrefix(sc.s[after:], "_") {
		if !followedOK(sc.s, after+1) {
			return nil, 0, false
		}
		return sc.phraseReference(inner, sc.pos, after+1, false)
	}

	if !followedOK(sc.s, after) {
		return nil, 0, false
	}
	frag := sc.frag(sc.pos, after)
	if spec, found := sc.reg.TextRole(sc.defaultRole); found {
		return spec.Apply(nil, inner, frag), after, true
	}
	return &ast.InterpretedText{Attrs: ast.Attrs{Frag: frag}, Role: sc.defaultRole, Text: inner}, after, true
}

func (sc *scanner) phraseReference(inner string, start, after int, anonymous bool) (ast.Span, int, bool) {
	frag := sc.frag(start, after)
	if i := strings.LastIndexByte(inner, '<'); i >= 0 && strings.HasSuffix(strings.TrimSpace(inner), ">") {
		label := strings.TrimRight(inner[:i], " ")
		target := strings.TrimSuffix(strings.TrimSpace(inner[i+1:]), ">")
		labelSpans := parseSpansAt(label, sc.base+start+1, sc.reg, sc.defaultRole, sc.depth+1)
		return &ast.LinkPathReference{Attrs: ast.Attrs{Frag: frag}, Spans: labelSpans, Target: target}, after, true
	}
	labelSpans := parseSpansAt(inner, sc.base+start+1, sc.reg, sc.defaultRole, sc.depth+1)
	id := strings.ToLower(inner)
	return &ast.LinkIdReference{Attrs: ast.Attrs{Frag: frag}, Spans: labelSpans, ID: id, Anonymous: anonymous}, after, true
}

func (sc *scanner) matchSubstitution() (ast.Span, int, bool) {
	if !precededOK(sc.s, sc.pos) {
		return nil, 0, false
	}
	cs, ce, after, ok := sc.matchDelimited("|", "|")
	if !ok {
		return nil, 0, false
	}
	name := sc.s[cs:ce]
	if strings.HasPrefix(sc.s[after:], "__") {
		if !followedOK(sc.s, after+2) {
			return nil, 0, false
		}
		frag := sc.frag(sc.pos, after+2)
		return &ast.LinkIdReference{
			Attrs:     ast.Attrs{Frag: frag},
			Spans:     []ast.Span{&ast.SubstitutionReference{Attrs: ast.Attrs{Frag: sc.frag(sc.pos, after)}, Name: name}},
			Anonymous: true,
		}, after + 2, true
	}
	if strings.HasPrefix(sc.s[after:], "_") {
		if !followedOK(sc.s, after+1) {
			return nil, 0, false
		}
		frag := sc.frag(sc.pos, after+1)
		return &ast.LinkIdReference{
			Attrs: ast.Attrs{Frag: frag},
			Spans: []ast.Span{&ast.SubstitutionReference{Attrs: ast.Attrs{Frag: sc.frag(sc.pos, after)}, Name: name}},
			ID:    strings.ToLower(name),
		}, after + 1, true
	}
	if !followedOK(sc.s, after) {
		return nil, 0, false
	}
	return &ast.SubstitutionReference{Attrs: ast.Attrs{Frag: sc.frag(sc.pos, after)}, Name: name}, after, true
}

// matchInternalTarget matches "_`text`", an inline hyperlink target.
func (sc *scanner) matchInternalTarget() (ast.Span, int, bool) {
	if !strings.HasPrefix(sc.s[sc.pos:], "_`") {
		return nil, 0, false
	}
	saved := sc.pos
	if !precededOK(sc.s, saved) {
		return nil, 0, false
	}
	sc.pos++
	cs, ce, after, ok := sc.matchDelimited("`", "`")
	sc.pos = saved
	if !ok || !followedOK(sc.s, after) {
		return nil, 0, false
	}
	value := sc.s[cs:ce]
	return &ast.Text{Attrs: ast.Attrs{ID: strings.ToLower(value), Frag: sc.frag(saved, after)}, Value: value}, after, true
}

// matchFootnoteOrCitation matches "[label]_".
func (sc *scanner) matchFootnoteOrCitation() (ast.Span, int, bool) {
	if sc.pos >= len(sc.s) || sc.s[sc.pos] != '[' {
		return nil, 0, false
	}
	end := strings.IndexByte(sc.s[sc.pos:], ']')
	if end < 0 {
		return nil, 0, false
	}
	end += sc.pos
	label := sc.s[sc.pos+1 : end]
	if label == "" || end+1 >= len(sc.s) || sc.s[end+1] != '_' {
		return nil, 0, false
	}
	after := end + 2
	if !recognizedRoleWrapper(sc.s, sc.pos, after) {
		return nil, 0, false
	}
	frag := sc.frag(sc.pos, after)
	switch {
	case label == "#":
		return &ast.FootnoteReference{Attrs: ast.Attrs{Frag: frag}, Kind_: ast.FootnoteAutoNumber}, after, true
	case label == "*":
		return &ast.FootnoteReference{Attrs: ast.Attrs{Frag: frag}, Kind_: ast.FootnoteAutoSymbol}, after, true
	case strings.HasPrefix(label, "#"):
		return &ast.FootnoteReference{Attrs: ast.Attrs{Frag: frag}, Label: label[1:], Kind_: ast.FootnoteAutoNumberLabel}, after, true
	case isAllDigits(label):
		return &ast.FootnoteReference{Attrs: ast.Attrs{Frag: frag}, Label: label, Kind_: ast.FootnoteNumeric}, after, true
	default:
		return &ast.CitationReference{Attrs: ast.Attrs{Frag: frag}, ID: strings.ToLower(label)}, after, true
	}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// matchShorthandReference matches a bare reference name followed by one
// or two trailing underscores, e.g. "target_" or "target__".
func (sc *scanner) matchShorthandReference() (ast.Span, int, bool) {
	r, ok := runeAt(sc.s, sc.pos)
	if !ok || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
		return nil, 0, false
	}
	cur := cursor.New(sc.s).Advance(sc.pos)
	res := text.RefName(cur)
	if !res.IsOk() {
		return nil, 0, false
	}
	name := res.Value()
	nameEnd := res.Next.Offset
	if nameEnd == sc.pos {
		return nil, 0, false
	}
	anonymous := false
	after := nameEnd
	if strings.HasPrefix(sc.s[nameEnd:], "__") {
		anonymous = true
		after = nameEnd + 2
	} else if strings.HasPrefix(sc.s[nameEnd:], "_") {
		after = nameEnd + 1
	} else {
		return nil, 0, false
	}
	if !followedOK(sc.s, after) {
		return nil, 0, false
	}
	frag := sc.frag(sc.pos, after)
	id := ""
	if !anonymous {
		id = strings.ToLower(name)
	}
	return &ast.LinkIdReference{
		Attrs:     ast.Attrs{Frag: frag},
		Spans:     []ast.Span{sc.textSpan(sc.pos, nameEnd)},
		ID:        id,
		Anonymous: anonymous,
	}, after, true
}

const trailingURIPunctuation = ".,;:!?)]}'\""

// matchStandaloneURI recognizes bare "scheme://..." URIs and
// "user@host" email addresses, trimming trailing sentence punctuation
// per the adopted recognition rule (DESIGN.md open question 2).
func (sc *scanner) matchStandaloneURI() (ast.Span, int, bool) {
	rest := sc.s[sc.pos:]
	scheme := ""
	for _, sch := range []string{"https://", "http://", "ftp://", "mailto:"} {
		if strings.HasPrefix(rest, sch) {
			scheme = sch
			break
		}
	}
	if scheme == "" {
		if isEmailAt(sc.s, sc.pos) {
			return sc.matchEmail()
		}
		return nil, 0, false
	}
	if !precededOK(sc.s, sc.pos) {
		return nil, 0, false
	}
	end := sc.pos + len(scheme)
	for end < len(sc.s) && !unicode.IsSpace(rune(sc.s[end])) {
		end++
	}
	for end > sc.pos+len(scheme) && strings.IndexByte(trailingURIPunctuation, sc.s[end-1]) >= 0 {
		end--
	}
	if end <= sc.pos+len(scheme) {
		return nil, 0, false
	}
	uri := sc.s[sc.pos:end]
	return &ast.SpanLink{Attrs: ast.Attrs{Frag: sc.frag(sc.pos, end)}, Spans: []ast.Span{sc.textSpan(sc.pos, end)}, Target: uri}, end, true
}

// isEmailAt reports whether the word starting at pos contains an '@'
// followed eventually by a '.', without itself scanning past a
// whitespace boundary.
func isEmailAt(s string, pos int) bool {
	end := pos
	at := -1
	for end < len(s) && !unicode.IsSpace(rune(s[end])) {
		if s[end] == '@' && at < 0 {
			at = end
		}
		end++
	}
	if at <= pos || at >= end-1 {
		return false
	}
	return strings.IndexByte(s[at:end], '.') > 1
}

func (sc *scanner) matchEmail() (ast.Span, int, bool) {
	if !precededOK(sc.s, sc.pos) {
		return nil, 0, false
	}
	end := sc.pos
	for end < len(sc.s) && !unicode.IsSpace(rune(sc.s[end])) {
		end++
	}
	for end > sc.pos && strings.IndexByte(trailingURIPunctuation, sc.s[end-1]) >= 0 {
		end--
	}
	addr := sc.s[sc.pos:end]
	if strings.IndexByte(addr, '@') < 0 {
		return nil, 0, false
	}
	return &ast.SpanLink{Attrs: ast.Attrs{Frag: sc.frag(sc.pos, end)}, Spans: []ast.Span{sc.textSpan(sc.pos, end)}, Target: "mailto:" + addr}, end, true
}
