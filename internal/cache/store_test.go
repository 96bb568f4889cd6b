package cache

import (
	"testing"

	"github.com/restdoc/rst/internal/ast"
)

// fakeParser counts how many times Parse is actually invoked, so tests
// can assert a cache hit never calls through.
type fakeParser struct {
	calls int
}

func (f *fakeParser) Parse(source string) *ast.Document {
	f.calls++
	return &ast.Document{Body: []ast.Block{&ast.Paragraph{Spans: []ast.Span{&ast.Text{Value: source}}}}}
}

func (f *fakeParser) Fingerprint() string { return "fp" }

func TestStoreParseMemoizesByHash(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	p := &fakeParser{}

	doc1, err := s.Parse(p, "Hello.")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	doc2, err := s.Parse(p, "Hello.")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.calls != 1 {
		t.Errorf("expected 1 underlying parse call, got %d", p.calls)
	}
	if doc1 != doc2 {
		t.Errorf("expected the memoized document to be returned on the second call")
	}
}

func TestStoreParseDistinguishesDifferentSource(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	p := &fakeParser{}

	if _, err := s.Parse(p, "One."); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := s.Parse(p, "Two."); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.calls != 2 {
		t.Errorf("expected 2 underlying parse calls for distinct sources, got %d", p.calls)
	}
}

func TestCountNodesCountsNestedBlocksAndSpans(t *testing.T) {
	doc := &ast.Document{
		Body: []ast.Block{
			&ast.Paragraph{Spans: []ast.Span{
				&ast.Text{Value: "a"},
				&ast.Strong{Spans: []ast.Span{&ast.Text{Value: "b"}}},
			}},
		},
	}
	// 1 paragraph + 2 top-level spans (Text, Strong) + 1 nested Text = 4
	if n := countNodes(doc); n != 4 {
		t.Errorf("expected 4 nodes, got %d", n)
	}
}
