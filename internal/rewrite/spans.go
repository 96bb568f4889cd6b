package rewrite

import (
	"fmt"
	"strings"

	"github.com/restdoc/rst/internal/ast"
	"github.com/restdoc/rst/internal/diag"
)

// footnoteSymbols is the classic auto-symbol footnote sequence; past
// the tenth symbol it starts doubling (**, ††, ...) rather than
// running out, matching the reference implementation's wraparound.
var footnoteSymbols = []string{"*", "†", "‡", "§", "¶", "#", "♠", "♥", "♦", "♣"}

func footnoteSymbol(i int) string {
	n := len(footnoteSymbols)
	reps := i/n + 1
	return strings.Repeat(footnoteSymbols[i%n], reps)
}

func (rw *rewriter) resolveSpans(spans []ast.Span) []ast.Span {
	if spans == nil {
		return nil
	}
	out := make([]ast.Span, len(spans))
	for i, s := range spans {
		out[i] = rw.resolveSpan(s)
	}
	return out
}

// resolveSpan binds a single span that may carry an unresolved
// reference (spec.md §4.6 items 2-4) to its definition, recursing into
// any nested spans first. Spans with nothing to resolve pass through
// unchanged.
func (rw *rewriter) resolveSpan(s ast.Span) ast.Span {
	switch n := s.(type) {
	case *ast.Emphasized:
		return &ast.Emphasized{Attrs: n.Attrs, Spans: rw.resolveSpans(n.Spans)}
	case *ast.Strong:
		return &ast.Strong{Attrs: n.Attrs, Spans: rw.resolveSpans(n.Spans)}
	case *ast.SpanSequence:
		return &ast.SpanSequence{Attrs: n.Attrs, Spans: rw.resolveSpans(n.Spans)}
	case *ast.SpanLink:
		return &ast.SpanLink{Attrs: n.Attrs, Spans: rw.resolveSpans(n.Spans), Target: n.Target, Anonymous: n.Anonymous}
	case *ast.LinkPathReference:
		return &ast.SpanLink{Attrs: n.Attrs, Spans: rw.resolveSpans(n.Spans), Target: n.Target}
	case *ast.LinkIdReference:
		return rw.resolveLinkIdReference(n)
	case *ast.SubstitutionReference:
		return rw.resolveSubstitution(n)
	case *ast.FootnoteReference:
		return rw.resolveFootnoteReference(n)
	case *ast.CitationReference:
		return rw.resolveCitationReference(n)
	default:
		return n
	}
}

// resolveLinkIdReference binds a named or anonymous reference to its
// LinkDefinition/InternalLinkDefinition, following any alias chain
// first. Anonymous references bind to anonymous definitions strictly
// in document order (spec.md §4.6.2, §5 "ordering").
func (rw *rewriter) resolveLinkIdReference(n *ast.LinkIdReference) ast.Span {
	spans := rw.resolveSpans(n.Spans)
	if n.Anonymous {
		if rw.anonLinkNext < len(rw.anonLinkDefs) {
			def := rw.anonLinkDefs[rw.anonLinkNext]
			rw.anonLinkNext++
			return &ast.SpanLink{Attrs: n.Attrs, Spans: spans, Target: def.Target, Anonymous: true}
		}
		rw.addError(diag.UnresolvedReference, n.Frag, "unresolved reference: (anonymous)")
		return &ast.InvalidSpan{Attrs: n.Attrs, Message: "unresolved reference: (anonymous)"}
	}
	id := rw.resolveAlias(n.ID)
	if def, ok := rw.linkDefs[lower(id)]; ok {
		return &ast.SpanLink{Attrs: n.Attrs, Spans: spans, Target: def.Target}
	}
	if _, ok := rw.internalDefs[lower(id)]; ok {
		return &ast.SpanLink{Attrs: n.Attrs, Spans: spans, Target: "#" + lower(id)}
	}
	rw.addError(diag.UnresolvedReference, n.Frag, "unresolved reference: %s", n.ID)
	return &ast.InvalidSpan{Attrs: n.Attrs, Message: "unresolved reference: " + n.ID}
}

// resolveSubstitution replaces a |name| reference with the resolved
// span(s) of its SubstitutionDefinition, memoizing the result and
// detecting reference cycles (a substitution whose own replacement
// text references itself, directly or transitively).
func (rw *rewriter) resolveSubstitution(n *ast.SubstitutionReference) ast.Span {
	key := lower(n.Name)
	if resolved, ok := rw.substResolved[key]; ok {
		return resolved
	}
	def, ok := rw.substDefs[key]
	if !ok {
		rw.addError(diag.UnresolvedReference, n.Frag, "unresolved substitution: %s", n.Name)
		return &ast.InvalidSpan{Attrs: n.Attrs, Message: "unresolved substitution: " + n.Name}
	}
	if rw.substResolving[key] {
		rw.addError(diag.SubstitutionCycle, n.Frag, "substitution cycle: %s", n.Name)
		return &ast.InvalidSpan{Attrs: n.Attrs, Message: "substitution cycle: " + n.Name}
	}
	rw.substResolving[key] = true
	resolved := rw.resolveSpan(def.Span)
	delete(rw.substResolving, key)
	rw.substResolved[key] = resolved
	return resolved
}

// resolveFootnoteReference assigns autonumber/autosymbol footnotes
// their document-order sequence value and binds named/numeric
// references to their definition (spec.md §4.6 item 4).
func (rw *rewriter) resolveFootnoteReference(n *ast.FootnoteReference) ast.Span {
	switch n.Kind_ {
	case ast.FootnoteAutoNumber:
		if rw.autoNumRefAt < len(rw.autoNumDefs) {
			def := rw.autoNumDefs[rw.autoNumRefAt]
			rw.autoNumRefAt++
			return &ast.FootnoteReference{Attrs: n.Attrs, Kind_: n.Kind_, Label: fmt.Sprint(rw.autoNumSeq[def])}
		}
	case ast.FootnoteAutoSymbol:
		if rw.autoSymRefAt < len(rw.autoSymDefs) {
			sym := footnoteSymbol(rw.autoSymRefAt)
			rw.autoSymRefAt++
			return &ast.FootnoteReference{Attrs: n.Attrs, Kind_: n.Kind_, Label: sym}
		}
	case ast.FootnoteAutoNumberLabel:
		if def, ok := rw.autoNumLabel[lower(n.Label)]; ok {
			return &ast.FootnoteReference{Attrs: n.Attrs, Kind_: n.Kind_, Label: fmt.Sprint(rw.autoNumSeq[def])}
		}
	case ast.FootnoteNumeric:
		if _, ok := rw.numericDefs[n.Label]; ok {
			return n
		}
	}
	label := n.Label
	if label == "" {
		label = "(auto)"
	}
	rw.addError(diag.UnresolvedReference, n.Frag, "unresolved footnote: %s", label)
	return &ast.InvalidSpan{Attrs: n.Attrs, Message: "unresolved footnote: " + label}
}

// resolveCitationReference binds a citation reference to its
// definition by id; citations carry no auto-numbering.
func (rw *rewriter) resolveCitationReference(n *ast.CitationReference) ast.Span {
	if _, ok := rw.citationDefs[lower(n.ID)]; ok {
		return n
	}
	rw.addError(diag.UnresolvedReference, n.Frag, "unresolved citation: %s", n.ID)
	return &ast.InvalidSpan{Attrs: n.Attrs, Message: "unresolved citation: " + n.ID}
}
