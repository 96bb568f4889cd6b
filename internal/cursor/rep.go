package cursor

// RepSpec configures a repetition combinator built with Rep.
type RepSpec struct {
	min int
	max int // 0 means unbounded
}

// Rep builds an unbounded repetition spec; chain .Min/.Max to configure it.
func Rep() RepSpec { return RepSpec{} }

func (s RepSpec) Min(n int) RepSpec { s.min = n; return s }
func (s RepSpec) Max(n int) RepSpec { s.max = n; return s }

// RepOf applies a RepSpec to p, returning a Parser[[]T] that always
// succeeds down to the configured minimum and never loops on a
// no-progress inner match (Go methods can't introduce new type
// parameters, so this is a free function rather than RepSpec.Of).
func RepOf[T any](p Parser[T], s RepSpec) Parser[[]T] {
	return func(c Cursor) Result[[]T] {
		var items []T
		cur := c
		for s.max == 0 || len(items) < s.max {
			r := p(cur)
			if !r.IsOk() {
				break
			}
			if r.Next.Offset == cur.Offset {
				// No-progress guard: stop rather than loop forever.
				items = append(items, r.Value())
				cur = r.Next
				break
			}
			items = append(items, r.Value())
			cur = r.Next
		}
		if len(items) < s.min {
			return ErrString[[]T]("expected at least N repetitions", cur)
		}
		return Ok(items, cur)
	}
}

// RepN requires exactly n successful repetitions.
func RepN[T any](p Parser[T], n int) Parser[[]T] {
	return RepOf(p, RepSpec{min: n, max: n})
}

// RepWith repeats a continuation where each next parser depends on the
// previous result — used for constructs like enumerated-list
// continuation, where item N+1's accepted marker depends on item N's.
func RepWith[T any](first Parser[T], next func(T) Parser[T]) Parser[[]T] {
	return func(c Cursor) Result[[]T] {
		r := first(c)
		if !r.IsOk() {
			return Err[[]T](r.msg, r.Next)
		}
		items := []T{r.Value()}
		cur := r.Next
		for {
			rn := next(items[len(items)-1])(cur)
			if !rn.IsOk() || rn.Next.Offset == cur.Offset {
				break
			}
			items = append(items, rn.Value())
			cur = rn.Next
		}
		return Ok(items, cur)
	}
}
