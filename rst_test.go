package rst

import (
	"testing"

	"github.com/restdoc/rst/internal/ast"
)

func TestParseResolvesSectionsAndReferences(t *testing.T) {
	source := "Title\n=====\n\nSee `Example`_.\n\n.. _Example: https://example.org/\n"
	p := New()
	doc := p.Parse(source)

	if len(doc.Body) != 1 {
		t.Fatalf("expected a single top-level section, got %d blocks", len(doc.Body))
	}
	sec, ok := doc.Body[0].(*ast.Section)
	if !ok {
		t.Fatalf("expected *ast.Section, got %T", doc.Body[0])
	}
	if len(sec.Body) != 1 {
		t.Fatalf("expected one block inside the section, got %d", len(sec.Body))
	}
	para, ok := sec.Body[0].(*ast.Paragraph)
	if !ok {
		t.Fatalf("expected *ast.Paragraph, got %T", sec.Body[0])
	}
	var found bool
	for _, s := range para.Spans {
		if link, ok := s.(*ast.SpanLink); ok {
			found = true
			if link.Target != "https://example.org/" {
				t.Errorf("expected resolved target, got %q", link.Target)
			}
		}
	}
	if !found {
		t.Errorf("expected a resolved *ast.SpanLink among the paragraph's spans")
	}
}

func TestParseUnresolvedLeavesHeadersFlatAndDefinitionsIntact(t *testing.T) {
	source := "Title\n=====\n\nSee `Example`_.\n\n.. _Example: https://example.org/\n"
	doc := New().ParseUnresolved(source)

	var sawHeader, sawLinkDef bool
	for _, b := range doc.Body {
		switch b.(type) {
		case *ast.DecoratedHeader:
			sawHeader = true
		case *ast.LinkDefinition:
			sawLinkDef = true
		case *ast.Section:
			t.Errorf("ParseUnresolved must not nest headers into sections")
		}
	}
	if !sawHeader {
		t.Errorf("expected a flat *ast.DecoratedHeader in the unresolved tree")
	}
	if !sawLinkDef {
		t.Errorf("expected the link definition to survive unresolved")
	}
}

func TestParseSpanOnlyParsesInlineMarkupWithoutBlockStructure(t *testing.T) {
	spans := New().ParseSpanOnly("a **bold** word")

	var sawStrong bool
	for _, s := range spans {
		if _, ok := s.(*ast.Strong); ok {
			sawStrong = true
		}
	}
	if !sawStrong {
		t.Errorf("expected a *ast.Strong span among %v", spans)
	}
}

func TestNewWithBuiltinsRegistersImageDirective(t *testing.T) {
	source := ".. image:: photo.png\n   :alt: A photo\n"
	doc := NewWithBuiltins().Parse(source)

	if len(doc.Body) != 1 {
		t.Fatalf("expected a single block, got %d", len(doc.Body))
	}
	para, ok := doc.Body[0].(*ast.Paragraph)
	if !ok {
		t.Fatalf("expected *ast.Paragraph wrapping the image, got %T", doc.Body[0])
	}
	if len(para.Spans) != 1 {
		t.Fatalf("expected one span, got %d", len(para.Spans))
	}
	img, ok := para.Spans[0].(*ast.Image)
	if !ok {
		t.Fatalf("expected *ast.Image, got %T", para.Spans[0])
	}
	if img.URI != "photo.png" || img.Alt != "A photo" {
		t.Errorf("unexpected image fields: %+v", img)
	}

	if _, ok := New().Parse(source).Body[0].(*ast.InvalidBlock); !ok {
		t.Errorf("a bare New() parser should reject the image directive as unknown")
	}
}

func TestBuildAppliesExtensionsAndDefaultRole(t *testing.T) {
	called := false
	p := Build([]func(*Parser){
		func(p *Parser) { called = true },
	}, "emphasis")

	if !called {
		t.Errorf("expected the extension closure to run")
	}
	if p.reg.DefaultRole() != "emphasis" {
		t.Errorf("expected default role %q, got %q", "emphasis", p.reg.DefaultRole())
	}
}

func TestFingerprintDiffersAfterRegisteringADirective(t *testing.T) {
	plain := New()
	extended := New()
	extended.BlockDirective(BlockDirective("stub").Build(func(p DirectivePayload) (ast.Block, string, bool) {
		return &ast.Comment{Attrs: ast.Attrs{Frag: p.Frag}}, "", true
	}))

	if plain.Fingerprint() == extended.Fingerprint() {
		t.Errorf("expected registering a directive to change the fingerprint")
	}
}
