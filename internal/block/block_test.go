package block

import (
	"strings"
	"testing"

	"github.com/restdoc/rst/internal/ast"
	"github.com/restdoc/rst/internal/ext"
)

func spanText(t *testing.T, spans []ast.Span) string {
	t.Helper()
	var b strings.Builder
	for _, s := range spans {
		if txt, ok := s.(*ast.Text); ok {
			b.WriteString(txt.Value)
		}
	}
	return b.String()
}

func TestParseParagraphSimple(t *testing.T) {
	doc := ParseDocument("Hello world.\nStill the same paragraph.\n", ext.NewRegistry())
	if len(doc.Body) != 1 {
		t.Fatalf("expected 1 block, got %d", len(doc.Body))
	}
	para, ok := doc.Body[0].(*ast.Paragraph)
	if !ok {
		t.Fatalf("expected *ast.Paragraph, got %T", doc.Body[0])
	}
	if got := spanText(t, para.Spans); got != "Hello world. Still the same paragraph." {
		t.Errorf("unexpected paragraph text: %q", got)
	}
}

func TestParseTwoParagraphsSeparatedByBlank(t *testing.T) {
	doc := ParseDocument("First.\n\nSecond.\n", ext.NewRegistry())
	if len(doc.Body) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(doc.Body))
	}
	if _, ok := doc.Body[0].(*ast.Paragraph); !ok {
		t.Fatalf("block 0: expected paragraph, got %T", doc.Body[0])
	}
	if _, ok := doc.Body[1].(*ast.Paragraph); !ok {
		t.Fatalf("block 1: expected paragraph, got %T", doc.Body[1])
	}
}

func TestParseTransition(t *testing.T) {
	doc := ParseDocument("First.\n\n----\n\nSecond.\n", ext.NewRegistry())
	if len(doc.Body) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(doc.Body))
	}
	if _, ok := doc.Body[1].(*ast.Rule); !ok {
		t.Fatalf("block 1: expected *ast.Rule, got %T", doc.Body[1])
	}
}

func TestParseSectionHeaderUnderlineOnly(t *testing.T) {
	doc := ParseDocument("Title\n=====\n\nBody.\n", ext.NewRegistry())
	if len(doc.Body) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(doc.Body))
	}
	hdr, ok := doc.Body[0].(*ast.DecoratedHeader)
	if !ok {
		t.Fatalf("expected *ast.DecoratedHeader, got %T", doc.Body[0])
	}
	if hdr.Decoration.HasOverline {
		t.Errorf("expected no overline")
	}
	if hdr.Decoration.Char != '=' {
		t.Errorf("expected decoration char '=', got %q", hdr.Decoration.Char)
	}
	if got := spanText(t, hdr.Spans); got != "Title" {
		t.Errorf("unexpected title text: %q", got)
	}
}

func TestParseSectionHeaderWithOverline(t *testing.T) {
	doc := ParseDocument("=====\nTitle\n=====\n\nBody.\n", ext.NewRegistry())
	hdr, ok := doc.Body[0].(*ast.DecoratedHeader)
	if !ok {
		t.Fatalf("expected *ast.DecoratedHeader, got %T", doc.Body[0])
	}
	if !hdr.Decoration.HasOverline {
		t.Errorf("expected overline")
	}
}

func TestParseLiteralBlockIndented(t *testing.T) {
	doc := ParseDocument("Intro::\n\n    code line one\n    code line two\n\nAfter.\n", ext.NewRegistry())
	seq, ok := doc.Body[0].(*ast.BlockSequence)
	if !ok {
		t.Fatalf("expected *ast.BlockSequence, got %T", doc.Body[0])
	}
	if len(seq.Blocks) != 2 {
		t.Fatalf("expected 2 blocks in sequence, got %d", len(seq.Blocks))
	}
	para, ok := seq.Blocks[0].(*ast.Paragraph)
	if !ok {
		t.Fatalf("expected paragraph, got %T", seq.Blocks[0])
	}
	if got := spanText(t, para.Spans); got != "Intro:" {
		t.Errorf("expected marker collapsed to single colon, got %q", got)
	}
	lit, ok := seq.Blocks[1].(*ast.LiteralBlock)
	if !ok {
		t.Fatalf("expected *ast.LiteralBlock, got %T", seq.Blocks[1])
	}
	if lit.Style != ast.LiteralIndented {
		t.Errorf("expected LiteralIndented style")
	}
	if lit.Text != "code line one\ncode line two" {
		t.Errorf("unexpected literal text: %q", lit.Text)
	}
}

func TestParseLiteralBlockBareMarker(t *testing.T) {
	doc := ParseDocument("::\n\n    literal text\n", ext.NewRegistry())
	if len(doc.Body) != 1 {
		t.Fatalf("expected 1 block, got %d", len(doc.Body))
	}
	lit, ok := doc.Body[0].(*ast.LiteralBlock)
	if !ok {
		t.Fatalf("expected *ast.LiteralBlock, got %T", doc.Body[0])
	}
	if lit.Text != "literal text" {
		t.Errorf("unexpected literal text: %q", lit.Text)
	}
}

func TestParseDoctestBlock(t *testing.T) {
	doc := ParseDocument(">>> print(1)\n1\n\nAfter.\n", ext.NewRegistry())
	lit, ok := doc.Body[0].(*ast.LiteralBlock)
	if !ok {
		t.Fatalf("expected *ast.LiteralBlock, got %T", doc.Body[0])
	}
	if lit.Style != ast.LiteralDoctest {
		t.Errorf("expected LiteralDoctest style")
	}
	if lit.Text != ">>> print(1)\n1" {
		t.Errorf("unexpected doctest text: %q", lit.Text)
	}
}

func TestParseQuotedLiteralBlock(t *testing.T) {
	doc := ParseDocument("Intro::\n\n> quoted one\n> quoted two\n\nAfter.\n", ext.NewRegistry())
	seq, ok := doc.Body[0].(*ast.BlockSequence)
	if !ok {
		t.Fatalf("expected *ast.BlockSequence, got %T", doc.Body[0])
	}
	lit, ok := seq.Blocks[1].(*ast.LiteralBlock)
	if !ok {
		t.Fatalf("expected *ast.LiteralBlock, got %T", seq.Blocks[1])
	}
	if lit.Style != ast.LiteralQuoted || lit.QuoteChar != '>' {
		t.Errorf("expected quoted literal block with '>', got style=%v char=%q", lit.Style, lit.QuoteChar)
	}
	if lit.Text != "> quoted one\n> quoted two" {
		t.Errorf("unexpected literal text: %q", lit.Text)
	}
}
