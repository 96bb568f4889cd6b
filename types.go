package rst

import "github.com/restdoc/rst/internal/ast"

// Document, Block and Span are re-exported here so a caller never
// needs to import the internal/ast package directly — internal/
// packages are only importable from within this module, so the
// public surface has to be reachable through rst itself.
type (
	Document = ast.Document
	Block    = ast.Block
	Span     = ast.Span
)
