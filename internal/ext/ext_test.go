package ext

import (
	"testing"

	"github.com/restdoc/rst/internal/ast"
	"github.com/restdoc/rst/internal/diag"
)

func TestBlockDirectiveMissingRequiredArgument(t *testing.T) {
	spec := BlockDirective("all").
		Argument().
		Build(func(p DirectivePayload) (ast.Block, string, bool) {
			return &ast.Paragraph{}, "", true
		})
	b := spec.Apply(DirectivePayload{})
	inv, ok := b.(*ast.InvalidBlock)
	if !ok || inv.Message != "missing required argument" {
		t.Fatalf("got %#v", b)
	}
}

func TestBlockDirectiveMissingRequiredFields(t *testing.T) {
	spec := BlockDirective("all").
		Argument().
		Field("name").
		Build(func(p DirectivePayload) (ast.Block, string, bool) {
			return &ast.Paragraph{}, "", true
		})
	b := spec.Apply(DirectivePayload{Args: []string{"arg"}})
	inv, ok := b.(*ast.InvalidBlock)
	if !ok || inv.Message != "missing required options: name" {
		t.Fatalf("got %#v", b)
	}
}

func TestBlockDirectiveUnknownFields(t *testing.T) {
	spec := BlockDirective("all").
		Argument().
		Field("name").
		Build(func(p DirectivePayload) (ast.Block, string, bool) {
			return &ast.Paragraph{}, "", true
		})
	b := spec.Apply(DirectivePayload{Args: []string{"arg"}, Fields: map[string]string{"name": "v", "bogus": "v"}})
	inv, ok := b.(*ast.InvalidBlock)
	if !ok || inv.Message != "unknown options: bogus" {
		t.Fatalf("got %#v", b)
	}
}

func TestBlockDirectiveSuccess(t *testing.T) {
	spec := BlockDirective("all").
		Argument().
		Field("name").
		Build(func(p DirectivePayload) (ast.Block, string, bool) {
			return &ast.Paragraph{Spans: []ast.Span{&ast.Text{Value: p.Args[0] + ":" + p.Fields["name"]}}}, "", true
		})
	b := spec.Apply(DirectivePayload{Args: []string{"arg"}, Fields: map[string]string{"name": "value"}})
	para, ok := b.(*ast.Paragraph)
	if !ok {
		t.Fatalf("got %#v", b)
	}
	txt := para.Spans[0].(*ast.Text)
	if txt.Value != "arg:value" {
		t.Fatalf("got %q", txt.Value)
	}
}

func TestUnknownDirectiveLookup(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.BlockDirective("bogus"); ok {
		t.Fatalf("expected no directive registered")
	}
}

func TestDeclareRoleInheritsBaseFields(t *testing.T) {
	r := NewRegistry()
	r.RegisterTextRole(TextRole("base").Field("x").Build(func(map[string]string, string, diag.Fragment) ast.Span {
		return &ast.Text{}
	}))
	r.DeclareRole("custom", "base", func(fields map[string]string, text string, frag diag.Fragment) ast.Span {
		return &ast.Text{Value: text}
	})
	spec, ok := r.TextRole("custom")
	if !ok {
		t.Fatalf("expected custom role to be registered")
	}
	if len(spec.requiredField) != 1 || spec.requiredField[0] != "x" {
		t.Fatalf("expected inherited required fields, got %v", spec.requiredField)
	}
}
