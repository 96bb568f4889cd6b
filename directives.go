package rst

import "github.com/restdoc/rst/internal/ext"

// BlockDirective, SpanDirective and TextRole re-export the extension
// builders spec.md §6 names (`block_directive`, `span_directive`,
// `text_role`) so a caller building a custom directive never needs to
// reach into internal/ext directly.
var (
	BlockDirective = ext.BlockDirective
	SpanDirective  = ext.SpanDirective
	TextRole       = ext.TextRole
)

type (
	BlockDirectiveSpec = ext.BlockDirectiveSpec
	SpanDirectiveSpec  = ext.SpanDirectiveSpec
	TextRoleSpec       = ext.TextRoleSpec
	DirectivePayload   = ext.DirectivePayload
	ContentKind        = ext.ContentKind
)

const (
	NoContent        = ext.NoContent
	RawContent       = ext.RawContent
	SpanContentKind  = ext.SpanContentKind
	BlockContentKind = ext.BlockContentKind
)
