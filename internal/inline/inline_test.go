package inline

import (
	"testing"

	"github.com/restdoc/rst/internal/ast"
	"github.com/restdoc/rst/internal/ext"
)

func parse(t *testing.T, s string) []ast.Span {
	t.Helper()
	reg := ext.NewRegistry()
	return ParseSpans(s, 0, reg, "title-reference")
}

func singleSpan(t *testing.T, s string) ast.Span {
	t.Helper()
	spans := parse(t, s)
	if len(spans) != 1 {
		t.Fatalf("expected exactly 1 span for %q, got %d: %#v", s, len(spans), spans)
	}
	return spans[0]
}

func TestPlainText(t *testing.T) {
	spans := parse(t, "hello world")
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	txt, ok := spans[0].(*ast.Text)
	if !ok || txt.Value != "hello world" {
		t.Fatalf("got %#v", spans[0])
	}
}

func TestStrongAndEmphasis(t *testing.T) {
	spans := parse(t, "a **bold** and *em* text")
	var kinds []string
	for _, s := range spans {
		kinds = append(kinds, s.Kind())
	}
	want := []string{"Text", "Strong", "Text", "Emphasized", "Text"}
	if len(kinds) != len(want) {
		t.Fatalf("got kinds %v", kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("got kinds %v, want %v", kinds, want)
		}
	}
}

func TestEmphasisNotMatchedWithoutWhitespaceBoundary(t *testing.T) {
	spans := parse(t, "a*b*c")
	for _, s := range spans {
		if s.Kind() == "Emphasized" {
			t.Fatalf("did not expect emphasis match in %q: %#v", "a*b*c", spans)
		}
	}
}

func TestLiteral(t *testing.T) {
	span := singleSpan(t, "``code here``")
	lit, ok := span.(*ast.Literal)
	if !ok || lit.Value != "code here" {
		t.Fatalf("got %#v", span)
	}
}

func TestSubstitutionSuppressedByMatchedPunctuation(t *testing.T) {
	spans := parse(t, "some (|)replaced| text")
	for _, s := range spans {
		if s.Kind() == "SubstitutionReference" {
			t.Fatalf("substitution should have been suppressed: %#v", spans)
		}
	}
}

func TestSubstitutionReference(t *testing.T) {
	span := singleSpan(t, "|name|")
	sub, ok := span.(*ast.SubstitutionReference)
	if !ok || sub.Name != "name" {
		t.Fatalf("got %#v", span)
	}
}

func TestFootnoteAutoNumber(t *testing.T) {
	span := singleSpan(t, "[#]_")
	fn, ok := span.(*ast.FootnoteReference)
	if !ok || fn.Kind_ != ast.FootnoteAutoNumber {
		t.Fatalf("got %#v", span)
	}
}

func TestFootnoteNumeric(t *testing.T) {
	span := singleSpan(t, "[3]_")
	fn, ok := span.(*ast.FootnoteReference)
	if !ok || fn.Kind_ != ast.FootnoteNumeric || fn.Label != "3" {
		t.Fatalf("got %#v", span)
	}
}

func TestCitationReference(t *testing.T) {
	span := singleSpan(t, "[CIT2002]_")
	cite, ok := span.(*ast.CitationReference)
	if !ok || cite.ID != "cit2002" {
		t.Fatalf("got %#v", span)
	}
}

func TestShorthandNamedReference(t *testing.T) {
	span := singleSpan(t, "target_")
	ref, ok := span.(*ast.LinkIdReference)
	if !ok || ref.ID != "target" || ref.Anonymous {
		t.Fatalf("got %#v", span)
	}
}

func TestShorthandAnonymousReference(t *testing.T) {
	span := singleSpan(t, "target__")
	ref, ok := span.(*ast.LinkIdReference)
	if !ok || !ref.Anonymous {
		t.Fatalf("got %#v", span)
	}
}

func TestPhraseLinkWithExplicitTarget(t *testing.T) {
	span := singleSpan(t, "`Python <http://python.org>`_")
	ref, ok := span.(*ast.LinkPathReference)
	if !ok || ref.Target != "http://python.org" {
		t.Fatalf("got %#v", span)
	}
}

func TestInterpretedTextDefaultRole(t *testing.T) {
	span := singleSpan(t, "`some text`")
	it, ok := span.(*ast.InterpretedText)
	if !ok || it.Role != "title-reference" || it.Text != "some text" {
		t.Fatalf("got %#v", span)
	}
}

func TestInterpretedTextExplicitRole(t *testing.T) {
	span := singleSpan(t, ":emphasis:`stressed`")
	it, ok := span.(*ast.InterpretedText)
	if !ok || it.Role != "emphasis" || it.Text != "stressed" {
		t.Fatalf("got %#v", span)
	}
}

func TestStandaloneURI(t *testing.T) {
	spans := parse(t, "see http://example.com/path.")
	var link *ast.SpanLink
	for _, s := range spans {
		if l, ok := s.(*ast.SpanLink); ok {
			link = l
		}
	}
	if link == nil || link.Target != "http://example.com/path" {
		t.Fatalf("got spans %#v", spans)
	}
}

func TestStandaloneEmail(t *testing.T) {
	spans := parse(t, "contact dev@example.com now")
	var link *ast.SpanLink
	for _, s := range spans {
		if l, ok := s.(*ast.SpanLink); ok {
			link = l
		}
	}
	if link == nil || link.Target != "mailto:dev@example.com" {
		t.Fatalf("got spans %#v", spans)
	}
}

func TestEscape(t *testing.T) {
	spans := parse(t, `\*not emphasis\*`)
	for _, s := range spans {
		if s.Kind() == "Emphasized" {
			t.Fatalf("escaped asterisks must not start emphasis: %#v", spans)
		}
	}
}

func TestInternalLinkTarget(t *testing.T) {
	span := singleSpan(t, "_`anchor text`")
	txt, ok := span.(*ast.Text)
	if !ok || txt.ID != "anchor text" || txt.Value != "anchor text" {
		t.Fatalf("got %#v", span)
	}
}

func TestNestedEmphasisInsideStrong(t *testing.T) {
	span := singleSpan(t, "**bold *and em* text**")
	strong, ok := span.(*ast.Strong)
	if !ok {
		t.Fatalf("got %#v", span)
	}
	found := false
	for _, s := range strong.Spans {
		if s.Kind() == "Emphasized" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected nested emphasis inside strong, got %#v", strong.Spans)
	}
}

func TestFragmentOffsetsShiftedByBase(t *testing.T) {
	spans := ParseSpans("**x**", 100, ext.NewRegistry(), "title-reference")
	if len(spans) != 1 {
		t.Fatalf("got %d spans", len(spans))
	}
	if spans[0].(*ast.Strong).Frag.Offset != 100 {
		t.Fatalf("got frag %#v", spans[0].(*ast.Strong).Frag)
	}
}
