// Package ast defines the reStructuredText document tree: the Block
// and Span sum types every grammar layer builds and the rewrite pass
// consumes.
package ast

import "github.com/restdoc/rst/internal/diag"

// Node is the base marker every Block and Span implements. Kind
// returns a stable variant tag suitable for a renderer's type switch,
// mirroring the "stable variant tags" contract spec.md §6 asks for.
type Node interface {
	Kind() string
}

// Block is the marker interface for block-level nodes.
type Block interface {
	Node
	blockNode()
}

// Span is the marker interface for inline nodes.
type Span interface {
	Node
	spanNode()
}

// Attrs is embedded by every node: an optional Id, an optional set of
// Styles, and the source Fragment the node was built from (zero-valued
// when a node has no natural source span, e.g. a synthesized Section).
type Attrs struct {
	ID     string
	Styles []string
	Frag   diag.Fragment
}

func (a Attrs) Fragment() diag.Fragment { return a.Frag }

// ============ BLOCKS ============

type Paragraph struct {
	Attrs
	Spans []Span
	// Forced is a flag for paragraphs that appear after the first one
	// inside a multi-paragraph list item, kept as a flag rather than a
	// new node type. The block grammar does not set it, so parsed
	// paragraphs always have Forced false; the rewrite pass copies it
	// unchanged.
	Forced bool
}

func (*Paragraph) Kind() string { return "Paragraph" }
func (*Paragraph) blockNode()   {}

// LiteralStyle distinguishes the three ways a LiteralBlock can be
// introduced.
type LiteralStyle string

const (
	LiteralIndented LiteralStyle = "indented"
	LiteralQuoted   LiteralStyle = "quoted"
	LiteralDoctest  LiteralStyle = "doctest"
)

type LiteralBlock struct {
	Attrs
	Text  string
	Style LiteralStyle
	// QuoteChar holds the quote character for LiteralQuoted blocks.
	QuoteChar byte
}

func (*LiteralBlock) Kind() string { return "LiteralBlock" }
func (*LiteralBlock) blockNode()   {}

type QuotedBlock struct {
	Attrs
	Content     []Block
	Attribution []Span // nil if no attribution line
}

func (*QuotedBlock) Kind() string { return "QuotedBlock" }
func (*QuotedBlock) blockNode()   {}

type ListItem struct {
	Content []Block
}

type BulletList struct {
	Attrs
	Bullet byte // '*', '-', or '+'
	Items  []*ListItem
}

func (*BulletList) Kind() string { return "BulletList" }
func (*BulletList) blockNode()   {}

// NumeralSystem is one of the five enumerated-list numbering styles.
type NumeralSystem string

const (
	Arabic     NumeralSystem = "arabic"
	LowerAlpha NumeralSystem = "loweralpha"
	UpperAlpha NumeralSystem = "upperalpha"
	LowerRoman NumeralSystem = "lowerroman"
	UpperRoman NumeralSystem = "upperroman"
)

// EnumFormat is (numeral-system, prefix-punctuation, suffix-punctuation).
type EnumFormat struct {
	System NumeralSystem
	Prefix string // "" or "("
	Suffix string // "." or ")"
}

type EnumList struct {
	Attrs
	Format EnumFormat
	Start  int
	Items  []*ListItem
}

func (*EnumList) Kind() string { return "EnumList" }
func (*EnumList) blockNode()   {}

type DefinitionItem struct {
	Term       []Span
	Classifier []Span // nil if no " : classifier" segment
	Definition []Block
}

type DefinitionList struct {
	Attrs
	Items []*DefinitionItem
}

func (*DefinitionList) Kind() string { return "DefinitionList" }
func (*DefinitionList) blockNode()   {}

type Field struct {
	Name string
	Body []Block
}

type FieldList struct {
	Attrs
	Fields []*Field
}

func (*FieldList) Kind() string { return "FieldList" }
func (*FieldList) blockNode()   {}

type OptionArg struct {
	Value   string
	Bracket bool // true if written <value>
}

type Option struct {
	Flag string // e.g. "-a", "--name", "+a", "/a"
	Arg  *OptionArg
}

type OptionListItem struct {
	Options     []Option
	Description []Block
}

type OptionList struct {
	Attrs
	Items []*OptionListItem
}

func (*OptionList) Kind() string { return "OptionList" }
func (*OptionList) blockNode()   {}

// LineBlockEntry is either a text line (Spans) or a nested LineBlock.
type LineBlockEntry struct {
	Spans  []Span     // non-nil for a plain line
	Nested *LineBlock // non-nil for a nested block, mutually exclusive with Spans
}

type LineBlock struct {
	Attrs
	Entries []LineBlockEntry
}

func (*LineBlock) Kind() string { return "LineBlock" }
func (*LineBlock) blockNode()   {}

type CellRole string

const (
	HeadCell CellRole = "head"
	BodyCell CellRole = "body"
)

type TableCell struct {
	Role    CellRole
	Content []Block
	ColSpan int
	RowSpan int
}

type TableRow struct {
	Cells []*TableCell
}

type Table struct {
	Attrs
	Head []*TableRow // nil if the table has no header
	Body []*TableRow
}

func (*Table) Kind() string { return "Table" }
func (*Table) blockNode()   {}

type Rule struct {
	Attrs
}

func (*Rule) Kind() string { return "Rule" }
func (*Rule) blockNode()   {}

// Decoration identifies a header's adornment: the character used and
// whether it appears both above and below the title.
type Decoration struct {
	Char        byte
	HasOverline bool
}

type DecoratedHeader struct {
	Attrs
	Decoration Decoration
	Spans      []Span
}

func (*DecoratedHeader) Kind() string { return "DecoratedHeader" }
func (*DecoratedHeader) blockNode()   {}

type Section struct {
	Attrs
	Level  int
	Header *DecoratedHeader
	Body   []Block
}

func (*Section) Kind() string { return "Section" }
func (*Section) blockNode()   {}

type Comment struct {
	Attrs
	Text string
}

func (*Comment) Kind() string { return "Comment" }
func (*Comment) blockNode()   {}

type FootnoteDefinition struct {
	Attrs
	Label   string // "#", "*", "#name", or a numeral
	Content []Block
}

func (*FootnoteDefinition) Kind() string { return "FootnoteDefinition" }
func (*FootnoteDefinition) blockNode()   {}

type Citation struct {
	Attrs
	Label   string
	Content []Block
}

func (*Citation) Kind() string { return "Citation" }
func (*Citation) blockNode()   {}

type LinkDefinition struct {
	Attrs
	ID          string
	Target      string
	IsAnonymous bool
}

func (*LinkDefinition) Kind() string { return "LinkDefinition" }
func (*LinkDefinition) blockNode()   {}

// InternalLinkDefinition is a standalone ".. _name:" with no target,
// which anchors the following block with Id == Name.
type InternalLinkDefinition struct {
	Attrs
	Name string
}

func (*InternalLinkDefinition) Kind() string { return "InternalLinkDefinition" }
func (*InternalLinkDefinition) blockNode()   {}

type LinkAlias struct {
	Attrs
	From string
	To   string
}

func (*LinkAlias) Kind() string { return "LinkAlias" }
func (*LinkAlias) blockNode()   {}

type SubstitutionDefinition struct {
	Attrs
	Name string
	Span Span
}

func (*SubstitutionDefinition) Kind() string { return "SubstitutionDefinition" }
func (*SubstitutionDefinition) blockNode()   {}

// CustomizedTextRole is produced by a ".. role::" directive; the
// rewrite pass turns it into registry state for subsequent interpreted
// text in the same document.
type CustomizedTextRole struct {
	Attrs
	Name    string
	Factory string // the registered role constructor to copy from
	Base    string // base role name, "" if none given
}

func (*CustomizedTextRole) Kind() string { return "CustomizedTextRole" }
func (*CustomizedTextRole) blockNode()   {}

type InvalidBlock struct {
	Attrs
	Message string
}

func (*InvalidBlock) Kind() string { return "InvalidBlock" }
func (*InvalidBlock) blockNode()   {}

type BlockSequence struct {
	Attrs
	Blocks []Block
}

func (*BlockSequence) Kind() string { return "BlockSequence" }
func (*BlockSequence) blockNode()   {}

// StaticContent is raw passthrough content produced by directives such
// as "raw" that bypass further parsing.
type StaticContent struct {
	Attrs
	Text   string
	Format string
}

func (*StaticContent) Kind() string { return "StaticContent" }
func (*StaticContent) blockNode()   {}

// ============ SPANS ============

type Text struct {
	Attrs
	Value string
}

func (*Text) Kind() string { return "Text" }
func (*Text) spanNode()    {}

type Emphasized struct {
	Attrs
	Spans []Span
}

func (*Emphasized) Kind() string { return "Emphasized" }
func (*Emphasized) spanNode()    {}

type Strong struct {
	Attrs
	Spans []Span
}

func (*Strong) Kind() string { return "Strong" }
func (*Strong) spanNode()    {}

type Literal struct {
	Attrs
	Value string
}

func (*Literal) Kind() string { return "Literal" }
func (*Literal) spanNode()    {}

// SpanLink is an inline link with an explicit target, e.g.
// “ `text <url>`_ “ once resolved, or a standalone URI.
type SpanLink struct {
	Attrs
	Spans     []Span
	Target    string
	Anonymous bool
}

func (*SpanLink) Kind() string { return "SpanLink" }
func (*SpanLink) spanNode()    {}

// LinkIdReference is a named or anonymous reference awaiting
// resolution against a LinkDefinition (spec.md §4.6.2).
type LinkIdReference struct {
	Attrs
	Spans     []Span
	ID        string
	Anonymous bool
}

func (*LinkIdReference) Kind() string { return "LinkIdReference" }
func (*LinkIdReference) spanNode()    {}

// LinkPathReference is a phrase link whose target was given directly
// ( “ `text <url>`_ “ ) and therefore needs no id-based resolution.
type LinkPathReference struct {
	Attrs
	Spans  []Span
	Target string
}

func (*LinkPathReference) Kind() string { return "LinkPathReference" }
func (*LinkPathReference) spanNode()    {}

type SubstitutionReference struct {
	Attrs
	Name string
}

func (*SubstitutionReference) Kind() string { return "SubstitutionReference" }
func (*SubstitutionReference) spanNode()    {}

type InterpretedText struct {
	Attrs
	Role string
	Text string
}

func (*InterpretedText) Kind() string { return "InterpretedText" }
func (*InterpretedText) spanNode()    {}

type FootnoteKind string

const (
	FootnoteAutoNumber      FootnoteKind = "autonumber"
	FootnoteAutoSymbol      FootnoteKind = "autosymbol"
	FootnoteAutoNumberLabel FootnoteKind = "autonumber_label"
	FootnoteNumeric         FootnoteKind = "numeric"
)

type FootnoteReference struct {
	Attrs
	Label string
	Kind_ FootnoteKind
}

func (*FootnoteReference) Kind() string { return "FootnoteReference" }
func (*FootnoteReference) spanNode()    {}

type CitationReference struct {
	Attrs
	ID string
}

func (*CitationReference) Kind() string { return "CitationReference" }
func (*CitationReference) spanNode()    {}

type Image struct {
	Attrs
	URI string
	Alt string
}

func (*Image) Kind() string { return "Image" }
func (*Image) spanNode()    {}

type InvalidSpan struct {
	Attrs
	Message string
}

func (*InvalidSpan) Kind() string { return "InvalidSpan" }
func (*InvalidSpan) spanNode()    {}

type SpanSequence struct {
	Attrs
	Spans []Span
}

func (*SpanSequence) Kind() string { return "SpanSequence" }
func (*SpanSequence) spanNode()    {}

// Document is the root returned from a successful parse.
type Document struct {
	Body        []Block
	Diagnostics []diag.Diagnostic
}
