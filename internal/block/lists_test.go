package block

import (
	"testing"

	"github.com/restdoc/rst/internal/ast"
	"github.com/restdoc/rst/internal/ext"
)

func TestParseBulletListSimple(t *testing.T) {
	doc := ParseDocument("* one\n* two\n* three\n", ext.NewRegistry())
	list, ok := doc.Body[0].(*ast.BulletList)
	if !ok {
		t.Fatalf("expected *ast.BulletList, got %T", doc.Body[0])
	}
	if list.Bullet != '*' {
		t.Errorf("expected bullet '*', got %q", list.Bullet)
	}
	if len(list.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(list.Items))
	}
	for i, want := range []string{"one", "two", "three"} {
		para, ok := list.Items[i].Content[0].(*ast.Paragraph)
		if !ok {
			t.Fatalf("item %d: expected paragraph, got %T", i, list.Items[i].Content[0])
		}
		if got := spanText(t, para.Spans); got != want {
			t.Errorf("item %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestParseBulletListNested(t *testing.T) {
	src := "* outer one\n\n  * inner one\n  * inner two\n\n* outer two\n"
	doc := ParseDocument(src, ext.NewRegistry())
	list, ok := doc.Body[0].(*ast.BulletList)
	if !ok {
		t.Fatalf("expected *ast.BulletList, got %T", doc.Body[0])
	}
	if len(list.Items) != 2 {
		t.Fatalf("expected 2 outer items, got %d", len(list.Items))
	}
	if len(list.Items[0].Content) != 2 {
		t.Fatalf("expected outer item 0 to have 2 blocks (paragraph + nested list), got %d", len(list.Items[0].Content))
	}
	inner, ok := list.Items[0].Content[1].(*ast.BulletList)
	if !ok {
		t.Fatalf("expected nested *ast.BulletList, got %T", list.Items[0].Content[1])
	}
	if len(inner.Items) != 2 {
		t.Fatalf("expected 2 inner items, got %d", len(inner.Items))
	}
}

func TestParseEnumListExplicitStart(t *testing.T) {
	doc := ParseDocument("3. third\n4. fourth\n5. fifth\n", ext.NewRegistry())
	list, ok := doc.Body[0].(*ast.EnumList)
	if !ok {
		t.Fatalf("expected *ast.EnumList, got %T", doc.Body[0])
	}
	if list.Start != 3 {
		t.Errorf("expected start 3, got %d", list.Start)
	}
	if list.Format.System != ast.Arabic || list.Format.Suffix != "." {
		t.Errorf("unexpected format: %+v", list.Format)
	}
	if len(list.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(list.Items))
	}
}

func TestParseEnumListAutoNumberedContinuesPrevious(t *testing.T) {
	doc := ParseDocument("2. second\n#. third\n#. fourth\n", ext.NewRegistry())
	list, ok := doc.Body[0].(*ast.EnumList)
	if !ok {
		t.Fatalf("expected *ast.EnumList, got %T", doc.Body[0])
	}
	if list.Start != 2 {
		t.Errorf("expected start 2, got %d", list.Start)
	}
	if len(list.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(list.Items))
	}
}

func TestParseEnumListLowerRoman(t *testing.T) {
	doc := ParseDocument("i. first\nii. second\niii. third\n", ext.NewRegistry())
	list, ok := doc.Body[0].(*ast.EnumList)
	if !ok {
		t.Fatalf("expected *ast.EnumList, got %T", doc.Body[0])
	}
	if list.Format.System != ast.LowerRoman {
		t.Errorf("expected LowerRoman, got %v", list.Format.System)
	}
	if list.Start != 1 {
		t.Errorf("expected start 1, got %d", list.Start)
	}
}

func TestParseFieldList(t *testing.T) {
	doc := ParseDocument(":Author: Jane Doe\n:Version: 1.0\n", ext.NewRegistry())
	fl, ok := doc.Body[0].(*ast.FieldList)
	if !ok {
		t.Fatalf("expected *ast.FieldList, got %T", doc.Body[0])
	}
	if len(fl.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fl.Fields))
	}
	if fl.Fields[0].Name != "Author" {
		t.Errorf("expected field name 'Author', got %q", fl.Fields[0].Name)
	}
	para, ok := fl.Fields[0].Body[0].(*ast.Paragraph)
	if !ok {
		t.Fatalf("expected field body paragraph, got %T", fl.Fields[0].Body[0])
	}
	if got := spanText(t, para.Spans); got != "Jane Doe" {
		t.Errorf("expected 'Jane Doe', got %q", got)
	}
}

func TestParseOptionList(t *testing.T) {
	doc := ParseDocument("-a            output all\n--long        a long option\n", ext.NewRegistry())
	ol, ok := doc.Body[0].(*ast.OptionList)
	if !ok {
		t.Fatalf("expected *ast.OptionList, got %T", doc.Body[0])
	}
	if len(ol.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(ol.Items))
	}
	if ol.Items[0].Options[0].Flag != "-a" {
		t.Errorf("expected flag '-a', got %q", ol.Items[0].Options[0].Flag)
	}
	if ol.Items[1].Options[0].Flag != "--long" {
		t.Errorf("expected flag '--long', got %q", ol.Items[1].Options[0].Flag)
	}
}

func TestParseOptionListWithArgument(t *testing.T) {
	doc := ParseDocument("-f <file>     input file\n", ext.NewRegistry())
	ol, ok := doc.Body[0].(*ast.OptionList)
	if !ok {
		t.Fatalf("expected *ast.OptionList, got %T", doc.Body[0])
	}
	opt := ol.Items[0].Options[0]
	if opt.Arg == nil || opt.Arg.Value != "file" || !opt.Arg.Bracket {
		t.Fatalf("unexpected option arg: %+v", opt.Arg)
	}
}

func TestParseLineBlock(t *testing.T) {
	doc := ParseDocument("| Line one\n| Line two\n|   Indented by spaces\n", ext.NewRegistry())
	lb, ok := doc.Body[0].(*ast.LineBlock)
	if !ok {
		t.Fatalf("expected *ast.LineBlock, got %T", doc.Body[0])
	}
	if len(lb.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(lb.Entries))
	}
	if got := spanText(t, lb.Entries[0].Spans); got != "Line one" {
		t.Errorf("expected 'Line one', got %q", got)
	}
}

func TestParseDefinitionList(t *testing.T) {
	src := "term one\n    Definition of term one.\n\nterm two : classifier\n    Definition of term two.\n"
	doc := ParseDocument(src, ext.NewRegistry())
	dl, ok := doc.Body[0].(*ast.DefinitionList)
	if !ok {
		t.Fatalf("expected *ast.DefinitionList, got %T", doc.Body[0])
	}
	if len(dl.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(dl.Items))
	}
	if got := spanText(t, dl.Items[0].Term); got != "term one" {
		t.Errorf("expected term 'term one', got %q", got)
	}
	if dl.Items[1].Classifier == nil {
		t.Fatalf("expected classifier on item 1")
	}
	if got := spanText(t, dl.Items[1].Classifier); got != "classifier" {
		t.Errorf("expected classifier 'classifier', got %q", got)
	}
}
