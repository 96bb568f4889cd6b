// Package rewrite implements the L6 rewrite pass (spec.md §4.6): the
// post-parse stage that turns a flat, unresolved block sequence into a
// nested section tree with every intra-document reference bound to its
// definition. It is the resolver stage of the pipeline block.ParseDocument
// feeds into, the reST analogue of the teacher's own
// internal/compiler/resolver.go (cross-file import resolution, here
// generalized to intra-document cross-reference resolution): a
// cache-as-you-go accumulator walked once in document order, errors
// collected rather than thrown.
package rewrite

import (
	"github.com/restdoc/rst/internal/ast"
	"github.com/restdoc/rst/internal/diag"
)

// rewriter carries all state accumulated while resolving a single
// document: every definition kind indexed for lookup, the running
// section-id and footnote/symbol counters, and the diagnostics list
// unresolved references and substitution cycles append to.
type rewriter struct {
	diags []diag.Diagnostic

	linkDefs     map[string]*ast.LinkDefinition // lowercase id -> first definition seen
	anonLinkDefs []*ast.LinkDefinition          // IsAnonymous defs, document order
	anonLinkNext int
	internalDefs map[string]*ast.InternalLinkDefinition
	aliasTo      map[string]string // lowercase From -> raw To, pre-transitive-resolution

	substDefs      map[string]*ast.SubstitutionDefinition
	substResolved  map[string]ast.Span // memoized resolved substitution content
	substResolving map[string]bool     // cycle guard

	citationDefs map[string]*ast.Citation

	autoNumDefs  []*ast.FootnoteDefinition // Label == "#" or "#name", document order
	autoNumLabel map[string]*ast.FootnoteDefinition
	autoNumSeq   map[*ast.FootnoteDefinition]int
	autoNumRefAt int

	autoSymDefs  []*ast.FootnoteDefinition // Label == "*"
	autoSymRefAt int

	numericDefs map[string]*ast.FootnoteDefinition

	decoLevel map[ast.Decoration]int
	nextLevel int

	seenIDs map[string]int

	pendingID string
}

func newRewriter() *rewriter {
	return &rewriter{
		linkDefs:       make(map[string]*ast.LinkDefinition),
		internalDefs:   make(map[string]*ast.InternalLinkDefinition),
		aliasTo:        make(map[string]string),
		substDefs:      make(map[string]*ast.SubstitutionDefinition),
		substResolved:  make(map[string]ast.Span),
		substResolving: make(map[string]bool),
		citationDefs:   make(map[string]*ast.Citation),
		autoNumLabel:   make(map[string]*ast.FootnoteDefinition),
		autoNumSeq:     make(map[*ast.FootnoteDefinition]int),
		numericDefs:    make(map[string]*ast.FootnoteDefinition),
		decoLevel:      make(map[ast.Decoration]int),
		seenIDs:        make(map[string]int),
	}
}

// Resolve runs the full rewrite pass over a freshly block-parsed
// document: it builds the section tree, binds every reference to its
// definition (or produces an InvalidSpan diagnostic), applies link
// aliases, assigns footnote sequence numbers, and drops
// definition-only blocks from the returned body — the "resolved"
// output spec.md §4.6 item 6 contrasts with the raw, unresolved tree
// ParseUnresolved returns untouched.
func Resolve(doc *ast.Document) *ast.Document {
	rw := newRewriter()
	rw.collect(doc.Body)
	flat := rw.transformSequence(doc.Body)
	body := rw.nestSections(flat)
	return &ast.Document{Body: body, Diagnostics: append(append([]diag.Diagnostic{}, doc.Diagnostics...), rw.diags...)}
}

func (rw *rewriter) addError(kind diag.Kind, frag diag.Fragment, format string, args ...any) {
	rw.diags = append(rw.diags, diag.New(kind, frag, format, args...))
}

// collect walks the entire block tree once, recording every definition
// kind and assigning each header's (char, hasOverline) decoration its
// first-seen level, before any resolution happens — references may
// point forward, so every definition must be known before any lookup.
func (rw *rewriter) collect(blocks []ast.Block) {
	for _, b := range blocks {
		rw.collectOne(b)
	}
}

func (rw *rewriter) collectOne(b ast.Block) {
	switch n := b.(type) {
	case *ast.DecoratedHeader:
		if _, ok := rw.decoLevel[n.Decoration]; !ok {
			rw.nextLevel++
			rw.decoLevel[n.Decoration] = rw.nextLevel
		}
	case *ast.LinkDefinition:
		if n.IsAnonymous {
			rw.anonLinkDefs = append(rw.anonLinkDefs, n)
		} else {
			key := lower(n.ID)
			if _, exists := rw.linkDefs[key]; !exists {
				rw.linkDefs[key] = n
			}
		}
	case *ast.InternalLinkDefinition:
		rw.internalDefs[lower(n.Name)] = n
	case *ast.LinkAlias:
		rw.aliasTo[lower(n.From)] = n.To
	case *ast.SubstitutionDefinition:
		key := lower(n.Name)
		if _, exists := rw.substDefs[key]; !exists {
			rw.substDefs[key] = n
		}
	case *ast.FootnoteDefinition:
		switch {
		case n.Label == "*":
			rw.autoSymDefs = append(rw.autoSymDefs, n)
		case n.Label == "#" || (len(n.Label) > 0 && n.Label[0] == '#'):
			rw.autoNumSeq[n] = len(rw.autoNumDefs) + 1
			rw.autoNumDefs = append(rw.autoNumDefs, n)
			if n.Label != "#" {
				rw.autoNumLabel[lower(n.Label[1:])] = n
			}
		default:
			rw.numericDefs[n.Label] = n
		}
		rw.collect(n.Content)
	case *ast.Citation:
		key := lower(n.Label)
		if _, exists := rw.citationDefs[key]; !exists {
			rw.citationDefs[key] = n
		}
		rw.collect(n.Content)
	case *ast.QuotedBlock:
		rw.collect(n.Content)
	case *ast.BulletList:
		for _, it := range n.Items {
			rw.collect(it.Content)
		}
	case *ast.EnumList:
		for _, it := range n.Items {
			rw.collect(it.Content)
		}
	case *ast.DefinitionList:
		for _, it := range n.Items {
			rw.collect(it.Definition)
		}
	case *ast.FieldList:
		for _, f := range n.Fields {
			rw.collect(f.Body)
		}
	case *ast.OptionList:
		for _, it := range n.Items {
			rw.collect(it.Description)
		}
	case *ast.Table:
		rw.collectTable(n.Head)
		rw.collectTable(n.Body)
	case *ast.BlockSequence:
		rw.collect(n.Blocks)
	}
}

func (rw *rewriter) collectTable(rows []*ast.TableRow) {
	for _, r := range rows {
		for _, c := range r.Cells {
			rw.collect(c.Content)
		}
	}
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// resolveAlias follows a chain of LinkAlias indirections to its final
// target id, guarding against cycles by bounding the walk to the
// number of aliases that exist.
func (rw *rewriter) resolveAlias(id string) string {
	visited := make(map[string]bool)
	cur := id
	for i := 0; i <= len(rw.aliasTo); i++ {
		to, ok := rw.aliasTo[lower(cur)]
		if !ok || visited[lower(cur)] {
			return cur
		}
		visited[lower(cur)] = true
		cur = to
	}
	return cur
}
