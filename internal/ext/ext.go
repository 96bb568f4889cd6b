// Package ext implements the directive and text-role extension system
// (spec.md §4.5): a declarative builder that composes argument, field
// and content parts into a directive's or role's parse logic, plus the
// Registry that is the only channel through which user parsers enter
// the grammar.
package ext

import (
	"sort"
	"strings"

	"github.com/restdoc/rst/internal/ast"
	"github.com/restdoc/rst/internal/diag"
)

// ContentKind selects how a directive's body content is handed to its
// factory function.
type ContentKind int

const (
	NoContent ContentKind = iota
	RawContent
	SpanContentKind
	BlockContentKind
)

type argPart struct {
	required bool
	withWS   bool
}

// DirectivePayload is the raw, already-tokenized form of a directive
// invocation, produced by the block grammar before Apply runs.
type DirectivePayload struct {
	Args         []string
	Fields       map[string]string
	ContentText  string
	ContentSpans []ast.Span
	ContentLines []string
	Frag         diag.Fragment
	// Reg is the registry this document is being parsed with, threaded
	// through so a BlockContentKind directive's factory can re-enter the
	// block grammar (via ParseBlockContent) using the caller's own
	// directives rather than a bare empty registry.
	Reg *Registry
}

// BlockDirectiveSpec is a fully built block directive: ordered argument
// parts, declared field names (required vs optional), the content kind
// it consumes, and the factory that turns a validated payload into a
// Block.
type BlockDirectiveSpec struct {
	Name          string
	args          []argPart
	requiredField []string
	optionalField []string
	content       ContentKind
	factory       func(DirectivePayload) (ast.Block, string, bool)
}

// BlockDirectiveBuilder accumulates parts with a fluent API mirroring
// spec.md's `argument(...)`, `optArgument(...)`, `field(...)`,
// `optField(...)`, `content(...)` part constructors, sequenced with
// successive calls instead of an explicit `~` operator (Go has no
// operator overloading, so part sequencing is simply builder-method
// chaining in declaration order).
type BlockDirectiveBuilder struct {
	spec *BlockDirectiveSpec
}

// BlockDirective starts building a block directive named name.
func BlockDirective(name string) *BlockDirectiveBuilder {
	return &BlockDirectiveBuilder{spec: &BlockDirectiveSpec{Name: name}}
}

func (b *BlockDirectiveBuilder) Argument() *BlockDirectiveBuilder {
	b.spec.args = append(b.spec.args, argPart{required: true})
	return b
}

func (b *BlockDirectiveBuilder) ArgumentWithWS() *BlockDirectiveBuilder {
	b.spec.args = append(b.spec.args, argPart{required: true, withWS: true})
	return b
}

func (b *BlockDirectiveBuilder) OptArgument() *BlockDirectiveBuilder {
	b.spec.args = append(b.spec.args, argPart{required: false})
	return b
}

func (b *BlockDirectiveBuilder) Field(name string) *BlockDirectiveBuilder {
	b.spec.requiredField = append(b.spec.requiredField, strings.ToLower(name))
	return b
}

func (b *BlockDirectiveBuilder) OptField(name string) *BlockDirectiveBuilder {
	b.spec.optionalField = append(b.spec.optionalField, strings.ToLower(name))
	return b
}

func (b *BlockDirectiveBuilder) Content(kind ContentKind) *BlockDirectiveBuilder {
	b.spec.content = kind
	return b
}

// Build finalizes the spec with the factory that converts a validated
// payload into a Block. The factory may still reject the payload (e.g.
// a converter rejecting an argument's value) by returning ok=false and
// a message; Apply turns that into an InvalidBlock just like a missing
// required part.
func (b *BlockDirectiveBuilder) Build(factory func(DirectivePayload) (ast.Block, string, bool)) *BlockDirectiveSpec {
	b.spec.factory = factory
	return b.spec
}

// Apply validates a raw payload against the declared parts and, if it
// passes, runs the factory. Validation failures and factory rejections
// both materialize as the standardized InvalidBlock messages spec.md
// §4.5 names.
func (s *BlockDirectiveSpec) Apply(p DirectivePayload) ast.Block {
	required := 0
	for _, a := range s.args {
		if a.required {
			required++
		}
	}
	if len(p.Args) < required {
		return &ast.InvalidBlock{Attrs: ast.Attrs{Frag: p.Frag}, Message: "missing required argument"}
	}

	declared := make(map[string]bool)
	for _, f := range s.requiredField {
		declared[f] = true
	}
	for _, f := range s.optionalField {
		declared[f] = true
	}

	var missing []string
	for _, f := range s.requiredField {
		if _, ok := p.Fields[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &ast.InvalidBlock{Attrs: ast.Attrs{Frag: p.Frag}, Message: "missing required options: " + strings.Join(missing, ", ")}
	}

	var unknown []string
	for name := range p.Fields {
		if !declared[strings.ToLower(name)] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &ast.InvalidBlock{Attrs: ast.Attrs{Frag: p.Frag}, Message: "unknown options: " + strings.Join(unknown, ", ")}
	}

	block, msg, ok := s.factory(p)
	if !ok {
		return &ast.InvalidBlock{Attrs: ast.Attrs{Frag: p.Frag}, Message: msg}
	}
	return block
}

// ArgWithWS reports whether the i'th argument part accepts embedded
// whitespace (a single run rather than one token), used by the block
// grammar when it splits the raw argument line.
func (s *BlockDirectiveSpec) ArgWithWS(i int) bool {
	if i < 0 || i >= len(s.args) {
		return false
	}
	return s.args[i].withWS
}

func (s *BlockDirectiveSpec) Content() ContentKind { return s.content }

// ArgCount reports how many argument parts this directive declared.
// finishDirective uses this to decide whether same-line trailing text
// is consumed as arguments or, for a zero-argument directive, falls
// through to become the first line of content instead.
func (s *BlockDirectiveSpec) ArgCount() int { return len(s.args) }

// SpanDirectiveSpec mirrors BlockDirectiveSpec for directives that
// produce a Span instead of a Block (spec.md's `span_directive`).
type SpanDirectiveSpec struct {
	Name    string
	args    []argPart
	factory func(DirectivePayload) (ast.Span, string, bool)
}

type SpanDirectiveBuilder struct{ spec *SpanDirectiveSpec }

func SpanDirective(name string) *SpanDirectiveBuilder {
	return &SpanDirectiveBuilder{spec: &SpanDirectiveSpec{Name: name}}
}

func (b *SpanDirectiveBuilder) Argument() *SpanDirectiveBuilder {
	b.spec.args = append(b.spec.args, argPart{required: true})
	return b
}

func (b *SpanDirectiveBuilder) Build(factory func(DirectivePayload) (ast.Span, string, bool)) *SpanDirectiveSpec {
	b.spec.factory = factory
	return b.spec
}

func (s *SpanDirectiveSpec) Apply(p DirectivePayload) ast.Span {
	required := 0
	for _, a := range s.args {
		if a.required {
			required++
		}
	}
	if len(p.Args) < required {
		return &ast.InvalidSpan{Attrs: ast.Attrs{Frag: p.Frag}, Message: "missing required argument"}
	}
	span, msg, ok := s.factory(p)
	if !ok {
		return &ast.InvalidSpan{Attrs: ast.Attrs{Frag: p.Frag}, Message: msg}
	}
	return span
}

// TextRoleSpec is a named inline extension: fields plus a factory
// invoked per interpreted-text occurrence.
type TextRoleSpec struct {
	Name          string
	requiredField []string
	optionalField []string
	factory       func(fields map[string]string, text string, frag diag.Fragment) ast.Span
}

type TextRoleBuilder struct{ spec *TextRoleSpec }

func TextRole(name string) *TextRoleBuilder {
	return &TextRoleBuilder{spec: &TextRoleSpec{Name: name}}
}

func (b *TextRoleBuilder) Field(name string) *TextRoleBuilder {
	b.spec.requiredField = append(b.spec.requiredField, strings.ToLower(name))
	return b
}

func (b *TextRoleBuilder) OptField(name string) *TextRoleBuilder {
	b.spec.optionalField = append(b.spec.optionalField, strings.ToLower(name))
	return b
}

func (b *TextRoleBuilder) Build(factory func(fields map[string]string, text string, frag diag.Fragment) ast.Span) *TextRoleSpec {
	b.spec.factory = factory
	return b.spec
}

// Apply invokes the role's factory directly; roles have no body/content
// part, only the interpreted text itself, so there is nothing here to
// reject before calling the factory.
func (s *TextRoleSpec) Apply(fields map[string]string, text string, frag diag.Fragment) ast.Span {
	return s.factory(fields, text, frag)
}

// Registry is the only channel through which directives and roles
// enter the grammar; there is no global mutable state, so a Parser's
// behavior is fully determined by the Registry it was built with.
type Registry struct {
	blockDirectives map[string]*BlockDirectiveSpec
	spanDirectives  map[string]*SpanDirectiveSpec
	textRoles       map[string]*TextRoleSpec
	defaultRole     string
}

// NewRegistry builds an empty registry with "title-reference" as the
// implicit default role, matching the reference grammar's default for
// bare `` `text` `` interpreted text.
func NewRegistry() *Registry {
	return &Registry{
		blockDirectives: make(map[string]*BlockDirectiveSpec),
		spanDirectives:  make(map[string]*SpanDirectiveSpec),
		textRoles:       make(map[string]*TextRoleSpec),
		defaultRole:     "title-reference",
	}
}

func (r *Registry) RegisterBlockDirective(spec *BlockDirectiveSpec) {
	r.blockDirectives[strings.ToLower(spec.Name)] = spec
}

func (r *Registry) RegisterSpanDirective(spec *SpanDirectiveSpec) {
	r.spanDirectives[strings.ToLower(spec.Name)] = spec
}

func (r *Registry) RegisterTextRole(spec *TextRoleSpec) {
	r.textRoles[strings.ToLower(spec.Name)] = spec
}

func (r *Registry) SetDefaultRole(name string) { r.defaultRole = name }
func (r *Registry) DefaultRole() string        { return r.defaultRole }

// Clone returns a shallow copy of r: a new set of maps pointing at the
// same specs. A parse mutates its own clone when a document declares a
// role via DeclareRole, so that registering a role local to one
// document can never leak into a caller's shared Registry value and
// break purity across separate parses of the same Registry.
func (r *Registry) Clone() *Registry {
	c := &Registry{
		blockDirectives: make(map[string]*BlockDirectiveSpec, len(r.blockDirectives)),
		spanDirectives:  make(map[string]*SpanDirectiveSpec, len(r.spanDirectives)),
		textRoles:       make(map[string]*TextRoleSpec, len(r.textRoles)),
		defaultRole:     r.defaultRole,
	}
	for k, v := range r.blockDirectives {
		c.blockDirectives[k] = v
	}
	for k, v := range r.spanDirectives {
		c.spanDirectives[k] = v
	}
	for k, v := range r.textRoles {
		c.textRoles[k] = v
	}
	return c
}

// Fingerprint summarizes a Registry's registered names and default role
// into a stable string, used by internal/cache to key memoized parses
// by more than just the source text: two registries handling the same
// source differently must never share a cache entry.
func (r *Registry) Fingerprint() string {
	names := func(m map[string]*BlockDirectiveSpec) []string {
		out := make([]string, 0, len(m))
		for k := range m {
			out = append(out, k)
		}
		sort.Strings(out)
		return out
	}
	blockNames := names(r.blockDirectives)
	spanNames := make([]string, 0, len(r.spanDirectives))
	for k := range r.spanDirectives {
		spanNames = append(spanNames, k)
	}
	sort.Strings(spanNames)
	roleNames := make([]string, 0, len(r.textRoles))
	for k := range r.textRoles {
		roleNames = append(roleNames, k)
	}
	sort.Strings(roleNames)
	var b strings.Builder
	b.WriteString("role:")
	b.WriteString(r.defaultRole)
	b.WriteString("|block:")
	b.WriteString(strings.Join(blockNames, ","))
	b.WriteString("|span:")
	b.WriteString(strings.Join(spanNames, ","))
	b.WriteString("|roles:")
	b.WriteString(strings.Join(roleNames, ","))
	return b.String()
}

func (r *Registry) BlockDirective(name string) (*BlockDirectiveSpec, bool) {
	s, ok := r.blockDirectives[strings.ToLower(name)]
	return s, ok
}

func (r *Registry) SpanDirective(name string) (*SpanDirectiveSpec, bool) {
	s, ok := r.spanDirectives[strings.ToLower(name)]
	return s, ok
}

func (r *Registry) TextRole(name string) (*TextRoleSpec, bool) {
	s, ok := r.textRoles[strings.ToLower(name)]
	return s, ok
}

// DeclareRole registers a CustomizedTextRole produced by a ".. role::"
// directive (spec.md §4.5), copying the base role's field declarations
// when one is named.
func (r *Registry) DeclareRole(name, base string, factory func(fields map[string]string, text string, frag diag.Fragment) ast.Span) {
	spec := &TextRoleSpec{Name: name, factory: factory}
	if base != "" {
		if baseSpec, ok := r.TextRole(base); ok {
			spec.requiredField = baseSpec.requiredField
			spec.optionalField = baseSpec.optionalField
		}
	}
	r.RegisterTextRole(spec)
}
