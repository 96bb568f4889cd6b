package cursor

import "strings"

// EOL accepts both LF and CRLF, consuming whichever terminator is
// present.
func EOL(c Cursor) Result[string] {
	rest := c.Rest()
	if strings.HasPrefix(rest, "\r\n") {
		return Ok("\r\n", c.Advance(2))
	}
	if strings.HasPrefix(rest, "\n") {
		return Ok("\n", c.Advance(1))
	}
	return ErrString[string]("expected end of line", c)
}

// EOF succeeds only at the end of input, consuming nothing.
func EOF(c Cursor) Result[struct{}] {
	if c.AtEOF() {
		return Ok(struct{}{}, c)
	}
	return ErrString[struct{}]("expected end of input", c)
}

// AtStart succeeds only at the start of a line, consuming nothing.
func AtStart(c Cursor) Result[struct{}] {
	if c.AtLineStart() {
		return Ok(struct{}{}, c)
	}
	return ErrString[struct{}]("expected start of line", c)
}

// RestOfLine returns everything up to (not including) the next EOL or
// EOF, consuming the line's content but not its terminator.
func RestOfLine(c Cursor) Result[string] {
	rest := c.Rest()
	i := strings.IndexByte(rest, '\n')
	if i < 0 {
		return Ok(rest, c.Advance(len(rest)))
	}
	line := rest[:i]
	line = strings.TrimSuffix(line, "\r")
	return Ok(line, c.Advance(len(line)))
}

// TextLine matches one non-blank line's content plus its terminator
// (or EOF), returning the content without the terminator.
func TextLine(c Cursor) Result[string] {
	r := RestOfLine(c)
	if strings.TrimSpace(r.Value()) == "" {
		return ErrString[string]("expected non-blank line", c)
	}
	after := r.Next
	if !after.AtEOF() {
		eol := EOL(after)
		if eol.IsOk() {
			after = eol.Next
		}
	}
	return Ok(r.Value(), after)
}

// BlankLine succeeds on a line containing only whitespace before EOL,
// and also at EOF (for composition convenience — callers repeating
// BlankLine must guard against EOF themselves, since spec.md requires
// that BlankLine* not loop forever at end of input).
func BlankLine(c Cursor) Result[struct{}] {
	if c.AtEOF() {
		return Ok(struct{}{}, c)
	}
	r := RestOfLine(c)
	if strings.TrimSpace(r.Value()) != "" {
		return ErrString[struct{}]("expected blank line", c)
	}
	after := r.Next
	eol := EOL(after)
	if eol.IsOk() {
		after = eol.Next
	} else if !after.AtEOF() {
		return ErrString[struct{}]("expected blank line", c)
	}
	return Ok(struct{}{}, after)
}

// BlankLines matches one or more consecutive blank lines, never looping
// past EOF (the no-progress guard on a bare BlankLine* would otherwise
// succeed forever at EOF since BlankLine accepts EOF by design).
func BlankLines(c Cursor) Result[int] {
	n := 0
	cur := c
	for !cur.AtEOF() {
		r := BlankLine(cur)
		if !r.IsOk() || r.Next.Offset == cur.Offset {
			break
		}
		n++
		cur = r.Next
	}
	if n == 0 {
		return ErrString[int]("expected at least one blank line", c)
	}
	return Ok(n, cur)
}
