// Command rstdump parses a reStructuredText file and prints an
// indented tree dump of its resolved document, grounded on the
// teacher's own cmd/gmx flag-parsing shape (flag.Usage, flag.NArg,
// os.ReadFile, explicit os.Exit(1) on every error path).
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/restdoc/rst"
	"github.com/restdoc/rst/internal/ast"
)

func main() {
	var unresolved bool
	flag.BoolVar(&unresolved, "u", false, "dump the unresolved tree (skip section nesting and reference resolution)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rstdump [-u] <input.rst>\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	inputFile := flag.Arg(0)
	data, err := os.ReadFile(inputFile)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}

	p := rst.NewWithBuiltins()
	var doc *ast.Document
	if unresolved {
		doc = p.ParseUnresolved(string(data))
	} else {
		doc = p.Parse(string(data))
	}

	for _, b := range doc.Body {
		dumpBlock(b, 0)
	}

	if len(doc.Diagnostics) > 0 {
		fmt.Fprintf(os.Stderr, "\n%d diagnostic(s):\n", len(doc.Diagnostics))
		for _, d := range doc.Diagnostics {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", d.Kind, d.Message)
		}
	}
}

func indent(depth int) string { return strings.Repeat("  ", depth) }

// dumpBlock prints b's kind, then recurses into whatever content it
// carries; the big type switch mirrors the shape of the tree itself
// rather than hiding it behind a generic "children" accessor, since
// the container kinds (list items, table cells, field bodies) don't
// share a common shape to flatten into one.
func dumpBlock(b ast.Block, depth int) {
	fmt.Printf("%s%s%s\n", indent(depth), b.Kind(), attrSuffix(b))

	switch n := b.(type) {
	case *ast.Section:
		dumpBlock(n.Header, depth+1)
		for _, child := range n.Body {
			dumpBlock(child, depth+1)
		}
	case *ast.DecoratedHeader:
		for _, s := range n.Spans {
			dumpSpan(s, depth+1)
		}
	case *ast.Paragraph:
		for _, s := range n.Spans {
			dumpSpan(s, depth+1)
		}
	case *ast.QuotedBlock:
		for _, c := range n.Content {
			dumpBlock(c, depth+1)
		}
		for _, s := range n.Attribution {
			dumpSpan(s, depth+1)
		}
	case *ast.BulletList:
		for _, it := range n.Items {
			fmt.Printf("%sListItem\n", indent(depth+1))
			for _, c := range it.Content {
				dumpBlock(c, depth+2)
			}
		}
	case *ast.EnumList:
		for _, it := range n.Items {
			fmt.Printf("%sListItem\n", indent(depth+1))
			for _, c := range it.Content {
				dumpBlock(c, depth+2)
			}
		}
	case *ast.DefinitionList:
		for _, it := range n.Items {
			fmt.Printf("%sTerm\n", indent(depth+1))
			for _, s := range it.Term {
				dumpSpan(s, depth+2)
			}
			for _, c := range it.Definition {
				dumpBlock(c, depth+2)
			}
		}
	case *ast.FieldList:
		for _, f := range n.Fields {
			fmt.Printf("%sField %s\n", indent(depth+1), f.Name)
			for _, c := range f.Body {
				dumpBlock(c, depth+2)
			}
		}
	case *ast.OptionList:
		for _, it := range n.Items {
			fmt.Printf("%sOption\n", indent(depth+1))
			for _, c := range it.Description {
				dumpBlock(c, depth+2)
			}
		}
	case *ast.Table:
		for _, rows := range [][]*ast.TableRow{n.Head, n.Body} {
			for _, r := range rows {
				fmt.Printf("%sRow\n", indent(depth+1))
				for _, c := range r.Cells {
					fmt.Printf("%sCell\n", indent(depth+2))
					for _, cb := range c.Content {
						dumpBlock(cb, depth+3)
					}
				}
			}
		}
	case *ast.BlockSequence:
		for _, c := range n.Blocks {
			dumpBlock(c, depth+1)
		}
	}
}

func dumpSpan(s ast.Span, depth int) {
	fmt.Printf("%s%s%s\n", indent(depth), s.Kind(), spanDetail(s))

	switch n := s.(type) {
	case *ast.Emphasized:
		for _, c := range n.Spans {
			dumpSpan(c, depth+1)
		}
	case *ast.Strong:
		for _, c := range n.Spans {
			dumpSpan(c, depth+1)
		}
	case *ast.SpanSequence:
		for _, c := range n.Spans {
			dumpSpan(c, depth+1)
		}
	case *ast.SpanLink:
		for _, c := range n.Spans {
			dumpSpan(c, depth+1)
		}
	}
}

func attrSuffix(b ast.Block) string {
	if id := blockID(b); id != "" {
		return " #" + id
	}
	return ""
}

func blockID(b ast.Block) string {
	switch n := b.(type) {
	case *ast.Section:
		return n.ID
	case *ast.DecoratedHeader:
		return n.ID
	case *ast.Paragraph:
		return n.ID
	}
	return ""
}

func spanDetail(s ast.Span) string {
	switch n := s.(type) {
	case *ast.Text:
		return " " + quote(n.Value)
	case *ast.Literal:
		return " " + quote(n.Value)
	case *ast.SpanLink:
		return " -> " + n.Target
	case *ast.InterpretedText:
		return " :" + n.Role + ": " + quote(n.Text)
	case *ast.InvalidSpan:
		return " " + quote(n.Message)
	}
	return ""
}

func quote(s string) string {
	if len(s) > 60 {
		s = s[:57] + "..."
	}
	return "\"" + strings.ReplaceAll(s, "\n", "\\n") + "\""
}
