// Package rst is the public entry point spec.md §6 describes: a small
// facade over the internal parser layers (cursor, text, inline, block,
// ext, rewrite) that the rest of this module implements. A caller only
// ever imports this package and internal/ast; everything else is
// plumbing the facade wires together.
package rst

import (
	"github.com/restdoc/rst/internal/ast"
	"github.com/restdoc/rst/internal/block"
	"github.com/restdoc/rst/internal/ext"
	"github.com/restdoc/rst/internal/inline"
	"github.com/restdoc/rst/internal/rewrite"
)

// Parser is an immutable, reusable parser configuration: the set of
// registered directives and text roles, plus the default role applied
// to bare interpreted text. Building one acquires no external
// resource, and parsing with it has no observable side effect on the
// Parser itself (spec.md §5).
type Parser struct {
	reg *ext.Registry
}

// New returns a Parser with no extensions registered beyond the
// implicit "title-reference" default role — the bare grammar spec.md
// §4 describes before any directive or role is added.
func New() *Parser {
	return &Parser{reg: ext.NewRegistry()}
}

// NewWithBuiltins returns a Parser pre-registered with the built-in
// directive set spec.md §4.5 ships by default (image, figure, code,
// code-block, note, warning, contents, raw, replace, unicode); no
// roles are pre-registered. Most callers want
// this one; New is for a caller that wants to control the extension
// surface from scratch.
func NewWithBuiltins() *Parser {
	reg := ext.NewRegistry()
	ext.RegisterBuiltins(reg)
	return &Parser{reg: reg}
}

// Build constructs a Parser from an explicit list of extensions,
// mirroring spec.md §6's `Parser.build(extensions, default_role?)`. An
// extension is typically a closure calling one of Parser's own
// BlockDirective/SpanDirective/TextRole methods, applied to the
// returned Parser in order.
func Build(extensions []func(*Parser), defaultRole string) *Parser {
	p := New()
	for _, extend := range extensions {
		extend(p)
	}
	if defaultRole != "" {
		p.reg.SetDefaultRole(defaultRole)
	}
	return p
}

// BlockDirective registers a block-level directive spec (built with
// the BlockDirective(...).Build(...) fluent API re-exported below)
// under the given Parser.
func (p *Parser) BlockDirective(spec *ext.BlockDirectiveSpec) *Parser {
	p.reg.RegisterBlockDirective(spec)
	return p
}

// SpanDirective registers a span-level directive spec.
func (p *Parser) SpanDirective(spec *ext.SpanDirectiveSpec) *Parser {
	p.reg.RegisterSpanDirective(spec)
	return p
}

// TextRole registers an interpreted-text role spec.
func (p *Parser) TextRole(spec *ext.TextRoleSpec) *Parser {
	p.reg.RegisterTextRole(spec)
	return p
}

// SetDefaultRole changes the role applied to interpreted text with no
// explicit `:role:` prefix.
func (p *Parser) SetDefaultRole(name string) *Parser {
	p.reg.SetDefaultRole(name)
	return p
}

// Fingerprint summarizes this Parser's registered extension set,
// stable across Parsers built the same way; internal/cache uses it
// alongside the source hash so two Parsers that would parse the same
// source differently never collide in the cache.
func (p *Parser) Fingerprint() string {
	return p.reg.Fingerprint()
}

// Parse runs the full pipeline — block grammar then the L6 rewrite
// pass — returning the resolved document: cross-references bound to
// their definitions, substitutions expanded, footnotes numbered,
// citations bound, sections nested, and every definition-only block (link
// targets, aliases, substitution definitions, role declarations,
// footnotes, citations) dropped (spec.md §4.6 item 6).
func (p *Parser) Parse(source string) *ast.Document {
	doc := block.ParseDocument(source, p.reg)
	return rewrite.Resolve(doc)
}

// ParseUnresolved runs only the block grammar, returning the flat,
// unresolved tree exactly as produced by parsing: headers are not
// nested into sections, references are not bound, and every
// definition-only block is preserved (spec.md §4.6 item 6's contrast
// case).
func (p *Parser) ParseUnresolved(source string) *ast.Document {
	return block.ParseDocument(source, p.reg)
}

// ParseSpanOnly parses a single line of inline markup with no block
// structure at all — the span grammar alone, for embedding reST inline
// markup inside a field or a non-reST document (spec.md §6's
// `parse_span_only`).
func (p *Parser) ParseSpanOnly(source string) []ast.Span {
	return inline.ParseSpans(source, 0, p.reg, p.reg.DefaultRole())
}
