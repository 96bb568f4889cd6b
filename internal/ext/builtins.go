package ext

import (
	"strconv"
	"strings"

	"github.com/restdoc/rst/internal/ast"
)

// ParseBlockContent recursively parses a directive's dedented body text
// back into a block sequence. It is wired by internal/block's package
// init (block already imports ext to dispatch directive payloads, so
// ext cannot import block back; a package-level hook breaks the cycle
// the other way, the same shape as the teacher's generator package
// wiring a template-render callback into its script evaluator).
var ParseBlockContent func(source string, baseOffset int, reg *Registry) []ast.Block

func (p DirectivePayload) contentBlocks() []ast.Block {
	if len(p.ContentLines) == 0 || ParseBlockContent == nil {
		return nil
	}
	body := strings.Join(p.ContentLines, "\n")
	if strings.TrimSpace(body) == "" {
		return nil
	}
	return ParseBlockContent(body, p.Frag.Offset, p.Reg)
}

// RegisterBuiltins adds the directive set spec.md §4.5 ships by
// default — image, figure, code/code-block, note/warning admonitions,
// contents, raw, replace and unicode — all built with the same public
// builder API a consumer's own directives use; none are special-cased
// in the grammar.
func RegisterBuiltins(reg *Registry) {
	reg.RegisterBlockDirective(imageDirective())
	reg.RegisterBlockDirective(figureDirective())
	reg.RegisterBlockDirective(codeDirective("code"))
	reg.RegisterBlockDirective(codeDirective("code-block"))
	reg.RegisterBlockDirective(admonitionDirective("note"))
	reg.RegisterBlockDirective(admonitionDirective("warning"))
	reg.RegisterBlockDirective(contentsDirective())
	reg.RegisterBlockDirective(rawDirective())
	reg.RegisterBlockDirective(replaceDirective())
	reg.RegisterBlockDirective(unicodeDirective())
}

// imageDirective wraps an ast.Image span in a Paragraph, since the
// document model has no dedicated block-level image node (spec.md §3
// lists Image only as a Span variant).
func imageDirective() *BlockDirectiveSpec {
	return BlockDirective("image").
		Argument().
		OptField("alt").
		OptField("width").
		OptField("height").
		OptField("scale").
		OptField("align").
		OptField("target").
		Build(func(p DirectivePayload) (ast.Block, string, bool) {
			img := &ast.Image{Attrs: ast.Attrs{Frag: p.Frag}, URI: p.Args[0], Alt: p.Fields["alt"]}
			return &ast.Paragraph{Attrs: ast.Attrs{Frag: p.Frag}, Spans: []ast.Span{img}}, "", true
		})
}

// figureDirective is an image plus an optional caption/legend body,
// represented as a BlockSequence: the image paragraph first, the
// parsed body content (caption, then legend paragraphs) after.
func figureDirective() *BlockDirectiveSpec {
	return BlockDirective("figure").
		Argument().
		OptField("alt").
		OptField("width").
		OptField("align").
		Content(BlockContentKind).
		Build(func(p DirectivePayload) (ast.Block, string, bool) {
			img := &ast.Image{Attrs: ast.Attrs{Frag: p.Frag}, URI: p.Args[0], Alt: p.Fields["alt"]}
			blocks := append([]ast.Block{&ast.Paragraph{Spans: []ast.Span{img}}}, p.contentBlocks()...)
			return &ast.BlockSequence{Attrs: ast.Attrs{Frag: p.Frag, Styles: []string{"figure"}}, Blocks: blocks}, "", true
		})
}

// codeDirective covers both the "code" and "code-block" spellings: an
// optional language argument and raw, unparsed body text, matching
// docutils' treatment of source listings (no nested inline markup).
func codeDirective(name string) *BlockDirectiveSpec {
	return BlockDirective(name).
		OptArgument().
		OptField("class").
		OptField("emphasize-lines").
		Content(RawContent).
		Build(func(p DirectivePayload) (ast.Block, string, bool) {
			styles := []string{"code"}
			lang := ""
			if len(p.Args) > 0 {
				lang = p.Args[0]
				styles = append(styles, lang)
			}
			return &ast.LiteralBlock{
				Attrs: ast.Attrs{Frag: p.Frag, Styles: styles},
				Text:  p.ContentText,
				Style: ast.LiteralIndented,
			}, "", true
		})
}

// admonitionDirective builds the shared factory behind "note" and
// "warning": a tagged BlockSequence wrapping the directive's block
// content, styled by kind so a renderer's type switch on Attrs.Styles
// can tell admonition kinds apart without a dedicated node variant.
func admonitionDirective(kind string) *BlockDirectiveSpec {
	return BlockDirective(kind).
		Content(BlockContentKind).
		Build(func(p DirectivePayload) (ast.Block, string, bool) {
			return &ast.BlockSequence{
				Attrs:  ast.Attrs{Frag: p.Frag, Styles: []string{"admonition", kind}},
				Blocks: p.contentBlocks(),
			}, "", true
		})
}

// contentsDirective records a table-of-contents placeholder: actually
// walking the resolved section tree to build a TOC is a rendering
// concern (spec.md §1 names rendering out of scope). Only the optional
// title argument is kept; the declared options are accepted but not
// stored in the resulting node.
func contentsDirective() *BlockDirectiveSpec {
	return BlockDirective("contents").
		OptArgument().
		OptField("depth").
		OptField("local").
		OptField("backlinks").
		OptField("class").
		Build(func(p DirectivePayload) (ast.Block, string, bool) {
			title := ""
			if len(p.Args) > 0 {
				title = p.Args[0]
			}
			return &ast.StaticContent{
				Attrs:  ast.Attrs{Frag: p.Frag},
				Text:   title,
				Format: "contents",
			}, "", true
		})
}

// rawDirective passes its body through untouched, tagged with the
// target output format named by its argument.
func rawDirective() *BlockDirectiveSpec {
	return BlockDirective("raw").
		ArgumentWithWS().
		Content(RawContent).
		Build(func(p DirectivePayload) (ast.Block, string, bool) {
			return &ast.StaticContent{
				Attrs:  ast.Attrs{Frag: p.Frag},
				Text:   p.ContentText,
				Format: p.Args[0],
			}, "", true
		})
}

// replaceDirective is the substitution-definition payload a
// ".. |name| replace:: text" line delegates to (see
// internal/block/explicit.go's finishSubstitutionDefinition and its
// blockResultToSpan adapter): its body is inline markup, wrapped in a
// Paragraph so blockResultToSpan can unwrap the span(s) back out.
func replaceDirective() *BlockDirectiveSpec {
	return BlockDirective("replace").
		Content(SpanContentKind).
		Build(func(p DirectivePayload) (ast.Block, string, bool) {
			return &ast.Paragraph{Attrs: ast.Attrs{Frag: p.Frag}, Spans: p.ContentSpans}, "", true
		})
}

// unicodeDirective resolves a space-separated list of "U+XXXX" or bare
// hex codepoints (docutils' unicode directive) into their literal
// characters; an unrecognized token passes through as-is rather than
// failing the whole substitution.
func unicodeDirective() *BlockDirectiveSpec {
	return BlockDirective("unicode").
		ArgumentWithWS().
		Build(func(p DirectivePayload) (ast.Block, string, bool) {
			var b strings.Builder
			for i, tok := range strings.Fields(p.Args[0]) {
				if i > 0 {
					b.WriteByte(' ')
				}
				hex := strings.TrimPrefix(strings.ToUpper(tok), "U+")
				if v, err := strconv.ParseInt(hex, 16, 32); err == nil {
					b.WriteRune(rune(v))
				} else {
					b.WriteString(tok)
				}
			}
			return &ast.StaticContent{Attrs: ast.Attrs{Frag: p.Frag}, Text: b.String()}, "", true
		})
}
