package block

import (
	"strings"

	"github.com/restdoc/rst/internal/ast"
	"github.com/restdoc/rst/internal/diag"
	"github.com/restdoc/rst/internal/text"
)

// isGridBorderLine reports whether line is a grid-table border: made
// only of '+', '-' and '=' characters, starting and ending with '+'.
func isGridBorderLine(line string) bool {
	if len(line) < 2 || line[0] != '+' || line[len(line)-1] != '+' {
		return false
	}
	for i := 0; i < len(line); i++ {
		if line[i] != '+' && line[i] != '-' && line[i] != '=' {
			return false
		}
	}
	return true
}

// columnBoundaries returns the byte offsets of every '+' in a grid
// border line; these mark column edges shared by every row of the
// table.
func columnBoundaries(border string) []int {
	var cols []int
	for i := 0; i < len(border); i++ {
		if border[i] == '+' {
			cols = append(cols, i)
		}
	}
	return cols
}

// tryGridTable recognizes a grid table: a top border, one or more rows
// of '|'-delimited cell content separated by '+'/'-' borders, with an
// optional '=' header separator after the first row group.
func (p *parser) tryGridTable(indent int) (ast.Block, bool) {
	if text.Indentation(p.line()) != indent || !isGridBorderLine(p.line()[indent:]) {
		return nil, false
	}
	start := p.idx
	cols := columnBoundaries(p.line()[indent:])
	if len(cols) < 2 {
		return nil, false
	}

	var rowBlocks [][]string // raw lines between borders, one group per row
	var separatorIsHeader []bool
	p.idx++
	for !p.atEOF() && text.Indentation(p.line()) == indent && strings.HasPrefix(p.line()[indent:], "|") {
		var lines []string
		for !p.atEOF() && text.Indentation(p.line()) == indent && strings.HasPrefix(p.line()[indent:], "|") {
			lines = append(lines, p.line()[indent:])
			p.idx++
		}
		if p.atEOF() || text.Indentation(p.line()) != indent || !isGridBorderLine(p.line()[indent:]) {
			// No closing border: not a well-formed grid table.
			p.idx = start
			return nil, false
		}
		isHeaderSep := strings.ContainsRune(p.line()[indent:], '=')
		rowBlocks = append(rowBlocks, lines)
		separatorIsHeader = append(separatorIsHeader, isHeaderSep)
		p.idx++
	}
	if len(rowBlocks) == 0 {
		p.idx = start
		return nil, false
	}

	table := &ast.Table{Attrs: ast.Attrs{Frag: p.rangeFragment(start, p.idx-1)}}
	headerDone := false
	for i, lines := range rowBlocks {
		row := p.buildGridRow(lines, cols, p.offsets[start])
		if row == nil {
			continue
		}
		if separatorIsHeader[i] && !headerDone {
			table.Head = append(table.Head, row)
			headerDone = true
		} else {
			table.Body = append(table.Body, row)
		}
	}
	return table, true
}

// buildGridRow slices a grid table's raw lines into per-column cell
// text using the column boundaries taken from the table's top border.
// Column/row spans (cells whose interior divider is absent) are not
// reconstructed; each slice becomes its own single-span cell.
func (p *parser) buildGridRow(lines []string, cols []int, baseOffset int) *ast.TableRow {
	if len(lines) == 0 {
		return nil
	}
	row := &ast.TableRow{}
	for i := 0; i+1 < len(cols); i++ {
		from, to := cols[i], cols[i+1]
		var cellLines []string
		for _, l := range lines {
			end := to
			if end > len(l) {
				end = len(l)
			}
			if from >= len(l) || from >= end {
				cellLines = append(cellLines, "")
				continue
			}
			cellLines = append(cellLines, strings.TrimRight(l[from+1:end], " "))
		}
		stripped := text.StripCommonIndent(cellLines)
		content := p.parseBodyAsBlocks(strings.Join(stripped, "\n"), diag.Fragment{Offset: baseOffset})
		row.Cells = append(row.Cells, &ast.TableCell{Role: ast.BodyCell, Content: content, ColSpan: 1, RowSpan: 1})
	}
	return row
}

// isSimpleTableBorderLine reports whether line is a simple-table
// border/separator: one or more runs of '=' (or '-' for a mid-table
// rule) separated by single spaces, with no other characters.
func isSimpleTableBorderLine(line string, sep byte) bool {
	if line == "" {
		return false
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		for i := 0; i < len(f); i++ {
			if f[i] != sep {
				return false
			}
		}
	}
	return true
}

// simpleColumns returns the (start, end) byte ranges of each run of
// the border character in a simple-table separator line, which become
// the table's fixed column boundaries.
func simpleColumns(line string, sep byte) [][2]int {
	var cols [][2]int
	i := 0
	for i < len(line) {
		if line[i] != sep {
			i++
			continue
		}
		j := i
		for j < len(line) && line[j] == sep {
			j++
		}
		cols = append(cols, [2]int{i, j})
		i = j
	}
	return cols
}

// trySimpleTable recognizes a simple table: a top border of '=' runs,
// an optional header row and '=' separator, body rows, and a closing
// '=' border. Unlike a grid table, simple tables have no vertical
// column dividers; column membership is inferred from the top border's
// column ranges.
func (p *parser) trySimpleTable(indent int) (ast.Block, bool) {
	if text.Indentation(p.line()) != indent || !isSimpleTableBorderLine(p.line()[indent:], '=') {
		return nil, false
	}
	start := p.idx
	cols := simpleColumns(p.line()[indent:], '=')
	if len(cols) < 2 {
		return nil, false
	}

	// Collect the whole table first: every line belonging to this table
	// (border or content, possibly further indented than `indent` for
	// column alignment, but never less), noting each border line's
	// position. A well-formed simple table has either two borders (top,
	// bottom: no header) or three (top, header separator, bottom).
	var borderAt []int
	end := p.idx
	for end < len(p.lines) && (isBlank(p.lines[end]) || text.Indentation(p.lines[end]) >= indent) {
		if !isBlank(p.lines[end]) && text.Indentation(p.lines[end]) == indent && isSimpleTableBorderLine(p.lines[end][indent:], '=') {
			borderAt = append(borderAt, end)
			if len(borderAt) >= 2 && (end+1 >= len(p.lines) || isBlank(p.lines[end+1])) {
				break
			}
		}
		end++
	}
	if len(borderAt) < 2 {
		return nil, false
	}
	bottom := borderAt[len(borderAt)-1]
	p.idx = bottom + 1

	table := &ast.Table{}
	if len(borderAt) >= 3 {
		headerSep := borderAt[1]
		table.Head = p.buildSimpleRows(start+1, headerSep, indent, cols)
		table.Body = p.buildSimpleRows(headerSep+1, bottom, indent, cols)
	} else {
		table.Body = p.buildSimpleRows(start+1, bottom, indent, cols)
	}
	table.Attrs = ast.Attrs{Frag: p.rangeFragment(start, p.idx-1)}
	return table, true
}

// buildSimpleRows groups the lines in [from, to) into rows: each line
// with text in the first column starts a new row, and a following line
// whose first column is blank continues that row (a multi-line cell
// entry); a blank line also ends a row. Lines are stripped of
// the table's structural indent before slicing into cells, so `cols`
// (taken from the border's own indent-stripped ranges) lines up.
func (p *parser) buildSimpleRows(from, to, indent int, cols [][2]int) []*ast.TableRow {
	var rows []*ast.TableRow
	i := from
	for i < to {
		if isBlank(p.lines[i]) {
			i++
			continue
		}
		rowStart := i
		var lines []string
		for i < to && !isBlank(p.lines[i]) {
			l := p.lines[i]
			if len(l) > indent {
				l = l[indent:]
			} else {
				l = ""
			}
			if i > rowStart {
				fe := len(l)
				if len(cols) > 1 && cols[1][0] < fe {
					fe = cols[1][0]
				}
				if cols[0][0] < fe && strings.TrimSpace(l[cols[0][0]:fe]) != "" {
					break
				}
			}
			lines = append(lines, l)
			i++
		}
		if row := p.buildSimpleRow(lines, cols, p.offsets[rowStart]+indent); row != nil {
			rows = append(rows, row)
		}
	}
	return rows
}

func (p *parser) buildSimpleRow(lines []string, cols [][2]int, baseOffset int) *ast.TableRow {
	if len(lines) == 0 {
		return nil
	}
	row := &ast.TableRow{}
	for i, c := range cols {
		from := c[0]
		to := len(lines[0])
		if i+1 < len(cols) {
			to = cols[i+1][0]
		}
		var cellLines []string
		for _, l := range lines {
			end := to
			if end > len(l) {
				end = len(l)
			}
			if from >= len(l) || from >= end {
				cellLines = append(cellLines, "")
				continue
			}
			cellLines = append(cellLines, strings.TrimRight(l[from:end], " "))
		}
		stripped := text.StripCommonIndent(cellLines)
		content := p.parseBodyAsBlocks(strings.Join(stripped, "\n"), diag.Fragment{Offset: baseOffset})
		row.Cells = append(row.Cells, &ast.TableCell{Role: ast.BodyCell, Content: content, ColSpan: 1, RowSpan: 1})
	}
	return row
}
