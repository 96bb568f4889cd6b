package rewrite

import "github.com/restdoc/rst/internal/ast"

// transformSequence resolves spans and drops definition-only blocks
// across a sibling list, in order, so that InternalLinkDefinition can
// anchor onto the very next surviving sibling (spec.md §4.6 item 5).
func (rw *rewriter) transformSequence(blocks []ast.Block) []ast.Block {
	out := make([]ast.Block, 0, len(blocks))
	for _, b := range blocks {
		if t := rw.transformOne(b); t != nil {
			out = append(out, t)
		}
	}
	return out
}

// transformOne resolves and recurses into a single block, returning
// nil for the definition-only block kinds the resolved tree drops
// (spec.md §4.6 item 6).
func (rw *rewriter) transformOne(b ast.Block) ast.Block {
	switch n := b.(type) {
	case *ast.LinkDefinition, *ast.LinkAlias, *ast.SubstitutionDefinition, *ast.CustomizedTextRole:
		return nil

	case *ast.FootnoteDefinition, *ast.Citation:
		return nil

	case *ast.InternalLinkDefinition:
		rw.pendingID = n.Name
		return nil

	case *ast.Paragraph:
		rw.attachPendingID(&n.Attrs)
		return &ast.Paragraph{Attrs: n.Attrs, Spans: rw.resolveSpans(n.Spans), Forced: n.Forced}

	case *ast.LiteralBlock:
		rw.attachPendingID(&n.Attrs)
		return n

	case *ast.QuotedBlock:
		rw.attachPendingID(&n.Attrs)
		return &ast.QuotedBlock{
			Attrs:       n.Attrs,
			Content:     rw.transformSequence(n.Content),
			Attribution: rw.resolveSpans(n.Attribution),
		}

	case *ast.BulletList:
		rw.attachPendingID(&n.Attrs)
		return &ast.BulletList{Attrs: n.Attrs, Bullet: n.Bullet, Items: rw.transformItems(n.Items)}

	case *ast.EnumList:
		rw.attachPendingID(&n.Attrs)
		return &ast.EnumList{Attrs: n.Attrs, Format: n.Format, Start: n.Start, Items: rw.transformItems(n.Items)}

	case *ast.DefinitionList:
		rw.attachPendingID(&n.Attrs)
		items := make([]*ast.DefinitionItem, len(n.Items))
		for i, it := range n.Items {
			items[i] = &ast.DefinitionItem{
				Term:       rw.resolveSpans(it.Term),
				Classifier: rw.resolveSpans(it.Classifier),
				Definition: rw.transformSequence(it.Definition),
			}
		}
		return &ast.DefinitionList{Attrs: n.Attrs, Items: items}

	case *ast.FieldList:
		rw.attachPendingID(&n.Attrs)
		fields := make([]*ast.Field, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = &ast.Field{Name: f.Name, Body: rw.transformSequence(f.Body)}
		}
		return &ast.FieldList{Attrs: n.Attrs, Fields: fields}

	case *ast.OptionList:
		rw.attachPendingID(&n.Attrs)
		items := make([]*ast.OptionListItem, len(n.Items))
		for i, it := range n.Items {
			items[i] = &ast.OptionListItem{Options: it.Options, Description: rw.transformSequence(it.Description)}
		}
		return &ast.OptionList{Attrs: n.Attrs, Items: items}

	case *ast.LineBlock:
		rw.attachPendingID(&n.Attrs)
		return &ast.LineBlock{Attrs: n.Attrs, Entries: rw.transformLineBlockEntries(n.Entries)}

	case *ast.Table:
		rw.attachPendingID(&n.Attrs)
		return &ast.Table{Attrs: n.Attrs, Head: rw.transformRows(n.Head), Body: rw.transformRows(n.Body)}

	case *ast.Rule:
		rw.attachPendingID(&n.Attrs)
		return n

	case *ast.Comment:
		rw.attachPendingID(&n.Attrs)
		return n

	case *ast.InvalidBlock:
		rw.attachPendingID(&n.Attrs)
		return n

	case *ast.StaticContent:
		rw.attachPendingID(&n.Attrs)
		return n

	case *ast.BlockSequence:
		rw.attachPendingID(&n.Attrs)
		return &ast.BlockSequence{Attrs: n.Attrs, Blocks: rw.transformSequence(n.Blocks)}

	case *ast.DecoratedHeader:
		resolved := &ast.DecoratedHeader{Attrs: n.Attrs, Decoration: n.Decoration, Spans: rw.resolveSpans(n.Spans)}
		rw.assignHeaderID(resolved)
		return resolved

	default:
		return n
	}
}

func (rw *rewriter) transformItems(items []*ast.ListItem) []*ast.ListItem {
	out := make([]*ast.ListItem, len(items))
	for i, it := range items {
		out[i] = &ast.ListItem{Content: rw.transformSequence(it.Content)}
	}
	return out
}

func (rw *rewriter) transformRows(rows []*ast.TableRow) []*ast.TableRow {
	if rows == nil {
		return nil
	}
	out := make([]*ast.TableRow, len(rows))
	for i, r := range rows {
		cells := make([]*ast.TableCell, len(r.Cells))
		for j, c := range r.Cells {
			cells[j] = &ast.TableCell{
				Role:    c.Role,
				Content: rw.transformSequence(c.Content),
				ColSpan: c.ColSpan,
				RowSpan: c.RowSpan,
			}
		}
		out[i] = &ast.TableRow{Cells: cells}
	}
	return out
}

func (rw *rewriter) transformLineBlockEntries(entries []ast.LineBlockEntry) []ast.LineBlockEntry {
	out := make([]ast.LineBlockEntry, len(entries))
	for i, e := range entries {
		if e.Nested != nil {
			out[i] = ast.LineBlockEntry{Nested: &ast.LineBlock{Attrs: e.Nested.Attrs, Entries: rw.transformLineBlockEntries(e.Nested.Entries)}}
			continue
		}
		out[i] = ast.LineBlockEntry{Spans: rw.resolveSpans(e.Spans)}
	}
	return out
}

// attachPendingID binds a standalone internal hyperlink target to the
// very next sibling block, spec.md §4.6 item 5's anchoring rule. It
// must run before a container recurses into its own children, so the
// id lands on the sibling itself rather than on content nested inside
// it.
func (rw *rewriter) attachPendingID(a *ast.Attrs) {
	if rw.pendingID == "" {
		return
	}
	if a.ID == "" {
		a.ID = rw.claimID(lower(rw.pendingID))
	}
	rw.pendingID = ""
}

// assignHeaderID gives every section header an id: an explicit
// InternalLinkDefinition anchor takes priority, otherwise one is
// slugified from the header's own text (spec.md §4.6 item 1).
func (rw *rewriter) assignHeaderID(h *ast.DecoratedHeader) {
	if rw.pendingID != "" {
		h.ID = rw.claimID(lower(rw.pendingID))
		rw.pendingID = ""
		return
	}
	if h.ID == "" {
		h.ID = rw.claimID(slugify(flattenText(h.Spans)))
	}
}
