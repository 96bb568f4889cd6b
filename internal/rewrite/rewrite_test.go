package rewrite

import (
	"testing"

	"github.com/restdoc/rst/internal/ast"
	"github.com/restdoc/rst/internal/block"
	"github.com/restdoc/rst/internal/diag"
	"github.com/restdoc/rst/internal/ext"
)

func resolve(t *testing.T, source string) *ast.Document {
	t.Helper()
	doc := block.ParseDocument(source, ext.NewRegistry())
	return Resolve(doc)
}

func TestSectionNestingAssignsLevelsByFirstSeenDecoration(t *testing.T) {
	src := "Title One\n=========\n\nIntro.\n\nSubtitle\n--------\n\nBody.\n\nTitle Two\n=========\n\nMore.\n"
	doc := resolve(t, src)

	if len(doc.Body) != 2 {
		t.Fatalf("expected 2 top-level sections, got %d: %+v", len(doc.Body), doc.Body)
	}

	first, ok := doc.Body[0].(*ast.Section)
	if !ok {
		t.Fatalf("expected *ast.Section, got %T", doc.Body[0])
	}
	if first.Level != 1 {
		t.Errorf("expected level 1, got %d", first.Level)
	}
	if len(first.Body) != 2 {
		t.Fatalf("expected intro paragraph + nested subsection, got %d blocks", len(first.Body))
	}
	sub, ok := first.Body[1].(*ast.Section)
	if !ok {
		t.Fatalf("expected nested *ast.Section, got %T", first.Body[1])
	}
	if sub.Level != 2 {
		t.Errorf("expected nested level 2, got %d", sub.Level)
	}

	second, ok := doc.Body[1].(*ast.Section)
	if !ok {
		t.Fatalf("expected second *ast.Section, got %T", doc.Body[1])
	}
	if second.Level != 1 {
		t.Errorf("expected second top section at level 1, got %d", second.Level)
	}
}

func TestSectionIDsAreSlugifiedAndDeduped(t *testing.T) {
	src := "Café Menu\n=========\n\nFirst.\n\nCafé Menu\n=========\n\nSecond.\n"
	doc := resolve(t, src)

	first := doc.Body[0].(*ast.Section)
	second := doc.Body[1].(*ast.Section)

	if first.ID != "cafe-menu" {
		t.Errorf("expected id 'cafe-menu', got %q", first.ID)
	}
	if second.ID != "cafe-menu-2" {
		t.Errorf("expected deduped id 'cafe-menu-2', got %q", second.ID)
	}
}

func TestNamedLinkReferenceResolves(t *testing.T) {
	src := "See `Example`_.\n\n.. _Example: https://example.com/\n"
	doc := resolve(t, src)

	p := doc.Body[0].(*ast.Paragraph)
	link, ok := p.Spans[1].(*ast.SpanLink)
	if !ok {
		t.Fatalf("expected *ast.SpanLink, got %T", p.Spans[1])
	}
	if link.Target != "https://example.com/" {
		t.Errorf("unexpected target: %q", link.Target)
	}

	for _, b := range doc.Body {
		if _, ok := b.(*ast.LinkDefinition); ok {
			t.Errorf("expected LinkDefinition to be dropped from resolved output, found %+v", b)
		}
	}
}

func TestAnonymousLinksResolveInDocumentOrder(t *testing.T) {
	src := "First__ and second__.\n\n.. __: https://one.example/\n.. __: https://two.example/\n"
	doc := resolve(t, src)

	p := doc.Body[0].(*ast.Paragraph)
	var links []*ast.SpanLink
	for _, s := range p.Spans {
		if l, ok := s.(*ast.SpanLink); ok {
			links = append(links, l)
		}
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 anonymous links, got %d", len(links))
	}
	if links[0].Target != "https://one.example/" {
		t.Errorf("expected first anonymous link to bind in document order, got %q", links[0].Target)
	}
	if links[1].Target != "https://two.example/" {
		t.Errorf("expected second anonymous link to bind in document order, got %q", links[1].Target)
	}
}

func TestUnresolvedReferenceProducesInvalidSpanAndDiagnostic(t *testing.T) {
	src := "See `Nowhere`_.\n"
	doc := resolve(t, src)

	p := doc.Body[0].(*ast.Paragraph)
	inv, ok := p.Spans[1].(*ast.InvalidSpan)
	if !ok {
		t.Fatalf("expected *ast.InvalidSpan, got %T", p.Spans[1])
	}
	if inv.Message != "unresolved reference: nowhere" {
		t.Errorf("unexpected message: %q", inv.Message)
	}

	found := false
	for _, d := range doc.Diagnostics {
		if d.Kind == diag.UnresolvedReference {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an UnresolvedReference diagnostic, got %+v", doc.Diagnostics)
	}
}

func TestSubstitutionResolves(t *testing.T) {
	src := "Powered by |proj|.\n\n.. |proj| replace:: RestDoc\n"
	doc := resolve(t, src)

	p := doc.Body[0].(*ast.Paragraph)
	txt, ok := p.Spans[1].(*ast.Text)
	if !ok {
		t.Fatalf("expected *ast.Text, got %T", p.Spans[1])
	}
	if txt.Value != "RestDoc" {
		t.Errorf("unexpected substitution value: %q", txt.Value)
	}
}

func TestSubstitutionCycleIsDetected(t *testing.T) {
	src := "|a|\n\n.. |a| replace:: |b|\n.. |b| replace:: |a|\n"
	doc := resolve(t, src)

	p := doc.Body[0].(*ast.Paragraph)
	inv, ok := p.Spans[0].(*ast.InvalidSpan)
	if !ok {
		t.Fatalf("expected *ast.InvalidSpan, got %T", p.Spans[0])
	}
	if inv.Message != "substitution cycle: a" {
		t.Errorf("unexpected message: %q", inv.Message)
	}

	found := false
	for _, d := range doc.Diagnostics {
		if d.Kind == diag.SubstitutionCycle {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a SubstitutionCycle diagnostic, got %+v", doc.Diagnostics)
	}
}

func TestFootnoteAutoNumberSequencing(t *testing.T) {
	src := "One [#]_ and two [#]_.\n\n.. [#] First note.\n.. [#] Second note.\n"
	doc := resolve(t, src)

	p := doc.Body[0].(*ast.Paragraph)
	var refs []*ast.FootnoteReference
	for _, s := range p.Spans {
		if f, ok := s.(*ast.FootnoteReference); ok {
			refs = append(refs, f)
		}
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 footnote references, got %d", len(refs))
	}
	if refs[0].Label != "1" || refs[1].Label != "2" {
		t.Errorf("expected labels 1 and 2 in document order, got %q and %q", refs[0].Label, refs[1].Label)
	}

	for _, b := range doc.Body {
		if _, ok := b.(*ast.FootnoteDefinition); ok {
			t.Errorf("expected FootnoteDefinition to be dropped from resolved output")
		}
	}
}

func TestCitationResolves(t *testing.T) {
	src := "As shown in [CIT2024]_.\n\n.. [CIT2024] Some Author, Some Title, 2024.\n"
	doc := resolve(t, src)

	p := doc.Body[0].(*ast.Paragraph)
	ref, ok := p.Spans[1].(*ast.CitationReference)
	if !ok {
		t.Fatalf("expected *ast.CitationReference, got %T", p.Spans[1])
	}
	if ref.ID != "cit2024" {
		t.Errorf("unexpected citation id: %q", ref.ID)
	}

	for _, b := range doc.Body {
		if _, ok := b.(*ast.Citation); ok {
			t.Errorf("expected Citation to be dropped from resolved output")
		}
	}
}

func TestInternalLinkDefinitionAnchorsNextBlock(t *testing.T) {
	src := ".. _anchor:\n\nTarget paragraph.\n"
	doc := resolve(t, src)

	if len(doc.Body) != 1 {
		t.Fatalf("expected the definition to be dropped, leaving 1 block, got %d", len(doc.Body))
	}
	p, ok := doc.Body[0].(*ast.Paragraph)
	if !ok {
		t.Fatalf("expected *ast.Paragraph, got %T", doc.Body[0])
	}
	if p.ID != "anchor" {
		t.Errorf("expected paragraph id 'anchor', got %q", p.ID)
	}
}
