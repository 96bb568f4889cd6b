package block

import (
	"strings"

	"github.com/restdoc/rst/internal/ast"
	"github.com/restdoc/rst/internal/diag"
	"github.com/restdoc/rst/internal/ext"
	"github.com/restdoc/rst/internal/inline"
	"github.com/restdoc/rst/internal/text"
)

// explicitMarkerPrefix is the ".. " two-dot-space sequence that opens
// every explicit markup construct: comments, directives, footnotes,
// citations, hyperlink targets, substitution definitions and role
// declarations (spec.md §4.4.3).
const explicitMarkerPrefix = ".. "

// tryExplicitMarkup recognizes ".. " at the given indent and classifies
// the body that follows into one of the six explicit-markup variants,
// falling back to a plain Comment when none of them match.
func (p *parser) tryExplicitMarkup(indent int) (ast.Block, bool) {
	line := p.line()
	if text.Indentation(line) != indent || !strings.HasPrefix(line[indent:], "..") {
		return nil, false
	}
	rest := line[indent:]
	if rest != ".." && !strings.HasPrefix(rest, explicitMarkerPrefix) {
		return nil, false
	}

	start := p.idx
	bodyIndent := indent + len(explicitMarkerPrefix)
	first := ""
	if len(rest) > len(explicitMarkerPrefix) {
		first = rest[len(explicitMarkerPrefix):]
	} else if rest == ".." {
		// A bare ".." with nothing after it, itself followed by an
		// indented block, is an "anonymous comment" in the reference
		// grammar; treat the too-short line as the marker only.
		bodyIndent = indent + 3
	}

	bodyLines, explicitEnd := p.collectExplicitBody(start, bodyIndent)
	body := strings.Join(bodyLines, "\n")
	frag := p.rangeFragment(start, explicitEnd)

	if target, ok := parseHyperlinkTarget(first); ok {
		return p.finishHyperlinkTarget(target, frag)
	}
	if name, directiveHeader, ok := parseSubstitutionHeader(first); ok {
		return p.finishSubstitutionDefinition(name, directiveHeader, bodyLines, frag)
	}
	if label, trailing, isCitation, ok := parseFootnoteOrCitationHeader(first); ok {
		return p.finishFootnoteOrCitation(label, trailing, isCitation, bodyLines[1:], frag)
	}
	if dirName, dirRest, ok := parseDirectiveHeader(first); ok {
		if dirName == "role" {
			return p.finishRoleDeclaration(dirRest, frag)
		}
		return p.finishDirective(dirName, dirRest, bodyLines[1:], frag)
	}

	// Nothing recognized it: an ordinary comment (spec.md §4.4.3's
	// catch-all for explicit markup that matches no other form).
	return &ast.Comment{Attrs: ast.Attrs{Frag: frag}, Text: body}, true
}

// collectExplicitBody gathers the remainder of the first line (after
// the marker, already captured by the caller as `first`) plus any
// further lines indented at least to bodyIndent, stopping at a
// dedented or blank-then-dedented run. Returns the raw lines with the
// marker prefix stripped and the block's ending line index.
func (p *parser) collectExplicitBody(start, bodyIndent int) ([]string, int) {
	firstLine := p.lines[start]
	var lines []string
	if len(firstLine) > bodyIndent {
		lines = append(lines, firstLine[bodyIndent:])
	} else {
		lines = append(lines, "")
	}
	p.idx = start + 1
	for !p.atEOF() {
		if isBlank(p.line()) {
			// A blank line ends the block unless a further indented line
			// follows immediately after it.
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
	return lines, p.idx - 1
}

// parseHyperlinkTarget recognizes "_name: target" (named) or "__: target"
// (anonymous, via the doubled-underscore shorthand). finishHyperlinkTarget
// further classifies the target into a plain LinkDefinition, a
// no-target InternalLinkDefinition, or a LinkAlias when the target is
// itself a backtick-quoted indirect reference.
func parseHyperlinkTarget(first string) (target string, ok bool) {
	if !strings.HasPrefix(first, "_") {
		return "", false
	}
	body := first[1:]
	if strings.HasPrefix(body, "_") {
		// "__: target" is the anonymous-target shorthand: its name
		// segment is empty regardless of what follows the second "_".
		body = ":" + strings.TrimPrefix(body[1:], ":")
	}
	if colon := strings.IndexByte(body, ':'); colon < 0 {
		return "", false
	}
	return body, true
}

// finishHyperlinkTarget builds a LinkDefinition (a name followed by a
// target), a LinkAlias (a name followed by another reference) or an
// InternalLinkDefinition (a bare "_name:" with no target, anchoring the
// next block).
func (p *parser) finishHyperlinkTarget(raw string, frag diag.Fragment) (ast.Block, bool) {
	colon := strings.IndexByte(raw, ':')
	name := strings.TrimSpace(raw[:colon])
	rest := strings.TrimSpace(raw[colon+1:])
	anonymous := name == ""
	if rest == "" {
		return &ast.InternalLinkDefinition{Attrs: ast.Attrs{Frag: frag}, Name: name}, true
	}
	if strings.HasPrefix(rest, "`") && strings.HasSuffix(strings.TrimSuffix(rest, "_"), "`") {
		// "`other name`_" indirect target: represent as an alias.
		inner := strings.TrimSuffix(rest, "_")
		inner = strings.TrimSuffix(strings.TrimPrefix(inner, "`"), "`")
		return &ast.LinkAlias{Attrs: ast.Attrs{Frag: frag}, From: name, To: strings.TrimSpace(inner)}, true
	}
	return &ast.LinkDefinition{Attrs: ast.Attrs{Frag: frag}, ID: name, Target: rest, IsAnonymous: anonymous}, true
}

// parseSubstitutionHeader recognizes "|name| directive:: args".
func parseSubstitutionHeader(first string) (name string, rawDirective string, ok bool) {
	if !strings.HasPrefix(first, "|") {
		return "", "", false
	}
	end := strings.IndexByte(first[1:], '|')
	if end < 0 {
		return "", "", false
	}
	name = first[1 : 1+end]
	rest := strings.TrimSpace(first[1+end+1:])
	return name, rest, true
}

func (p *parser) finishSubstitutionDefinition(name, directiveHeader string, bodyLines []string, frag diag.Fragment) (ast.Block, bool) {
	dirName, dirRest, ok := parseDirectiveHeader(directiveHeader)
	if !ok {
		p.addError(diag.ParseError, frag, "malformed substitution definition %q", name)
		return &ast.InvalidBlock{Attrs: ast.Attrs{Frag: frag}, Message: "malformed substitution definition"}, true
	}
	blk, _ := p.finishDirective(dirName, dirRest, bodyLines[1:], frag)
	span := blockResultToSpan(blk)
	return &ast.SubstitutionDefinition{Attrs: ast.Attrs{Frag: frag}, Name: name, Span: span}, true
}

// blockResultToSpan adapts a directive's Block output to the Span a
// substitution definition needs; most substitution directives (image,
// replace, unicode) are span-shaped in spirit even though the registry
// only exposes a Block factory for them, so the definition's span slot
// wraps the block's own spans when present and otherwise carries an
// InvalidSpan through.
func blockResultToSpan(b ast.Block) ast.Span {
	switch v := b.(type) {
	case *ast.Paragraph:
		if len(v.Spans) == 1 {
			return v.Spans[0]
		}
		return &ast.SpanSequence{Attrs: v.Attrs, Spans: v.Spans}
	case *ast.InvalidBlock:
		return &ast.InvalidSpan{Attrs: v.Attrs, Message: v.Message}
	case *ast.StaticContent:
		return &ast.Text{Attrs: v.Attrs, Value: v.Text}
	default:
		return &ast.InvalidSpan{Message: "substitution directive did not produce span content"}
	}
}

// parseFootnoteOrCitationHeader recognizes "[label]" (footnote) or
// "[label]" preceded by nothing distinguishing it from a citation at
// this stage except the label shape: citations use a plain reference
// name, footnotes use "#", "#name", "*" or a bare number.
func parseFootnoteOrCitationHeader(first string) (label string, trailing string, isCitation bool, ok bool) {
	if !strings.HasPrefix(first, "[") {
		return "", "", false, false
	}
	end := strings.IndexByte(first, ']')
	if end < 0 {
		return "", "", false, false
	}
	label = first[1:end]
	if label == "" {
		return "", "", false, false
	}
	trailing = strings.TrimSpace(first[end+1:])
	if label == "*" || label == "#" || strings.HasPrefix(label, "#") || isAllDigitsStr(label) {
		return label, trailing, false, true
	}
	return label, trailing, true, true
}

func isAllDigitsStr(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (p *parser) finishFootnoteOrCitation(label, trailing string, isCitation bool, rest []string, frag diag.Fragment) (ast.Block, bool) {
	lines := rest
	if trailing != "" {
		lines = append([]string{trailing}, rest...)
	}
	content := p.parseBodyAsBlocks(strings.Join(lines, "\n"), frag)
	if isCitation {
		return &ast.Citation{Attrs: ast.Attrs{Frag: frag}, Label: label, Content: content}, true
	}
	return &ast.FootnoteDefinition{Attrs: ast.Attrs{Frag: frag}, Label: label, Content: content}, true
}

// parseBodyAsBlocks re-runs the block grammar over an explicit
// construct's already-dedented body text, used by footnote, citation
// and directive block-content handling.
func (p *parser) parseBodyAsBlocks(body string, frag diag.Fragment) []ast.Block {
	if strings.TrimSpace(body) == "" {
		return nil
	}
	sub := &parser{reg: p.reg, roleName: p.roleName}
	sub.lines, sub.offsets = splitLines(body)
	base := frag.Offset
	for i := range sub.offsets {
		sub.offsets[i] += base
	}
	blocks := sub.parseSequence(0)
	p.diags = append(p.diags, sub.diags...)
	return blocks
}

// parseDirectiveHeader recognizes "name:: rest".
func parseDirectiveHeader(first string) (name, rest string, ok bool) {
	idx := strings.Index(first, "::")
	if idx < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(first[:idx])
	if name == "" || strings.ContainsAny(name, " \t") {
		return "", "", false
	}
	rest = strings.TrimSpace(first[idx+2:])
	return name, rest, true
}

func (p *parser) finishDirective(name, argLine string, bodyLines []string, frag diag.Fragment) (ast.Block, bool) {
	spec, ok := p.reg.BlockDirective(name)
	if !ok {
		p.addError(diag.UnknownDirective, frag, "unknown directive %q", name)
		return &ast.InvalidBlock{Attrs: ast.Attrs{Frag: frag}, Message: "unknown directive: " + name}, true
	}

	fields, contentLines := splitFieldsFromBody(bodyLines)
	var args []string
	if argLine != "" {
		if spec.ArgCount() == 0 {
			// A zero-argument directive (e.g. "replace", "note") has
			// nowhere to put same-line trailing text as an argument, so
			// it becomes the first line of content instead, matching the
			// reference grammar's directive-argument-line handling.
			contentLines = append([]string{argLine}, contentLines...)
		} else {
			args = strings.Fields(argLine)
			if len(args) > 0 && spec.ArgWithWS(0) {
				args = []string{argLine}
			}
		}
	}
	contentText := strings.TrimSpace(strings.Join(contentLines, "\n"))

	payload := ext.DirectivePayload{
		Args:         args,
		Fields:       fields,
		ContentText:  contentText,
		ContentLines: contentLines,
		Frag:         frag,
		Reg:          p.reg,
	}
	if spec.Content() == ext.SpanContentKind {
		payload.ContentSpans = inline.ParseSpans(contentText, frag.Offset, p.reg, p.roleName)
	}
	// BlockContentKind directives (e.g. "figure", "note", "warning")
	// re-run the block grammar themselves from ContentLines inside their
	// factory, since DirectivePayload carries no pre-parsed Block slot.
	return spec.Apply(payload), true
}

// splitFieldsFromBody separates a leading run of ":name: value" field
// lines from the remaining content lines, matching docutils' directive
// option-block convention (fields must appear first, directly after the
// argument line, with no blank line required between them).
func splitFieldsFromBody(lines []string) (map[string]string, []string) {
	fields := make(map[string]string)
	i := 0
	for i < len(lines) {
		l := lines[i]
		if l == "" {
			break
		}
		if !strings.HasPrefix(l, ":") {
			break
		}
		end := strings.IndexByte(l[1:], ':')
		if end < 0 {
			break
		}
		name := strings.ToLower(strings.TrimSpace(l[1 : 1+end]))
		value := strings.TrimSpace(l[1+end+1:])
		fields[name] = value
		i++
	}
	rest := lines[i:]
	for len(rest) > 0 && rest[0] == "" {
		rest = rest[1:]
	}
	return fields, rest
}

func (p *parser) finishRoleDeclaration(argLine string, frag diag.Fragment) (ast.Block, bool) {
	name := argLine
	base := ""
	if open := strings.IndexByte(argLine, '('); open >= 0 && strings.HasSuffix(argLine, ")") {
		name = strings.TrimSpace(argLine[:open])
		base = strings.TrimSpace(argLine[open+1 : len(argLine)-1])
	}
	if name == "" {
		p.addError(diag.MissingArgument, frag, "role declaration requires a name")
		return &ast.InvalidBlock{Attrs: ast.Attrs{Frag: frag}, Message: "missing required argument"}, true
	}
	// Register into this parse's own registry clone immediately so that
	// later interpreted text in the same document (spec.md §4.5: "single-
	// pass documents treat role directives as applying to subsequent
	// content") picks it up; base's field declarations are copied by
	// DeclareRole, and its factory is delegated to at apply time.
	reg := p.reg
	p.reg.DeclareRole(name, base, func(fields map[string]string, text string, f diag.Fragment) ast.Span {
		if base != "" {
			if baseSpec, ok := reg.TextRole(base); ok {
				return baseSpec.Apply(fields, text, f)
			}
		}
		return &ast.InterpretedText{Attrs: ast.Attrs{Frag: f}, Role: name, Text: text}
	})
	return &ast.CustomizedTextRole{Attrs: ast.Attrs{Frag: frag}, Name: name, Factory: base, Base: base}, true
}
