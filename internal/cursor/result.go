package cursor

// MessageFunc lazily materializes a failure message. Failures on hot
// backtracking paths never allocate a string unless something actually
// reports them.
type MessageFunc func() string

// Static wraps a constant message in a MessageFunc, for the common case
// where no lazy computation is needed.
func Static(msg string) MessageFunc {
	return func() string { return msg }
}

// Result is the Success/Failure sum type every Parser returns.
//
// Invariant: on Ok, Next.Offset >= the input cursor's offset; on a
// pure-lookahead failure, Next.Offset equals the input cursor's offset.
type Result[T any] struct {
	ok    bool
	value T
	msg   MessageFunc
	Next  Cursor
}

// Ok builds a successful result.
func Ok[T any](value T, next Cursor) Result[T] {
	return Result[T]{ok: true, value: value, Next: next}
}

// Err builds a failed result with a lazy message.
func Err[T any](msg MessageFunc, next Cursor) Result[T] {
	return Result[T]{ok: false, msg: msg, Next: next}
}

// ErrString builds a failed result from a constant message.
func ErrString[T any](msg string, next Cursor) Result[T] {
	return Err[T](Static(msg), next)
}

func (r Result[T]) IsOk() bool { return r.ok }

// Value returns the success value; callers must check IsOk first.
func (r Result[T]) Value() T { return r.value }

// Message renders the failure message, materializing it on demand.
func (r Result[T]) Message() string {
	if r.msg == nil {
		return ""
	}
	return r.msg()
}

// Parser is a value with a single operation: parse a Cursor into a
// Result[T]. Combinators build new Parser[T] values and never mutate
// the parsers they are given.
type Parser[T any] func(Cursor) Result[T]

// Parse runs p against c. It is simply p(c); it exists so call sites
// read as "p.Parse(c)" the way spec.md's §4.1 sketch names the contract.
func (p Parser[T]) Parse(c Cursor) Result[T] {
	return p(c)
}

// Success always succeeds with v without consuming input.
func Success[T any](v T) Parser[T] {
	return func(c Cursor) Result[T] { return Ok(v, c) }
}

// Failure always fails with msg without consuming input.
func Failure[T any](msg string) Parser[T] {
	return func(c Cursor) Result[T] { return ErrString[T](msg, c) }
}

// MapParser transforms a successful result's value; a Failure passes
// through unchanged.
func MapParser[T, U any](p Parser[T], f func(T) U) Parser[U] {
	return func(c Cursor) Result[U] {
		r := p(c)
		if !r.IsOk() {
			return Err[U](r.msg, r.Next)
		}
		return Ok(f(r.Value()), r.Next)
	}
}

// FlatMap sequences p into a parser that depends on p's result.
func FlatMap[T, U any](p Parser[T], f func(T) Parser[U]) Parser[U] {
	return func(c Cursor) Result[U] {
		r := p(c)
		if !r.IsOk() {
			return Err[U](r.msg, r.Next)
		}
		return f(r.Value())(r.Next)
	}
}

// As replaces a successful value with a constant, discarding it.
func As[T, U any](p Parser[T], v U) Parser[U] {
	return MapParser(p, func(T) U { return v })
}

// MapPartial transforms the value and may reject it with err, turning a
// success into a failure at the cursor position p's success reached.
func MapPartial[T, U any](p Parser[T], f func(T) (U, bool), err string) Parser[U] {
	return func(c Cursor) Result[U] {
		r := p(c)
		if !r.IsOk() {
			return Err[U](r.msg, r.Next)
		}
		u, ok := f(r.Value())
		if !ok {
			return ErrString[U](err, r.Next)
		}
		return Ok(u, r.Next)
	}
}

// MapResult transforms T into a U or an error message, the error message
// becoming the failure's lazy message.
func MapResult[T, U any](p Parser[T], f func(T) (U, string, bool)) Parser[U] {
	return func(c Cursor) Result[U] {
		r := p(c)
		if !r.IsOk() {
			return Err[U](r.msg, r.Next)
		}
		u, errMsg, ok := f(r.Value())
		if !ok {
			return ErrString[U](errMsg, r.Next)
		}
		return Ok(u, r.Next)
	}
}

// Pair is the tuple type produced by Seq.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Seq runs a then b, combining both results into a Pair.
func Seq[A, B any](a Parser[A], b Parser[B]) Parser[Pair[A, B]] {
	return func(c Cursor) Result[Pair[A, B]] {
		ra := a(c)
		if !ra.IsOk() {
			return Err[Pair[A, B]](ra.msg, ra.Next)
		}
		rb := b(ra.Next)
		if !rb.IsOk() {
			return Err[Pair[A, B]](rb.msg, rb.Next)
		}
		return Ok(Pair[A, B]{ra.Value(), rb.Value()}, rb.Next)
	}
}

// ThenKeepRight runs a then b, keeping only b's value (spec's a ~> b).
func ThenKeepRight[A, B any](a Parser[A], b Parser[B]) Parser[B] {
	return MapParser(Seq(a, b), func(p Pair[A, B]) B { return p.Second })
}

// ThenKeepLeft runs a then b, keeping only a's value (spec's a <~ b).
func ThenKeepLeft[A, B any](a Parser[A], b Parser[B]) Parser[A] {
	return MapParser(Seq(a, b), func(p Pair[A, B]) A { return p.First })
}

// Or tries a, falling back to b on failure. Both branches start at the
// original cursor; this is strictly left-biased (spec's a | b).
func Or[T any](a, b Parser[T]) Parser[T] {
	return func(c Cursor) Result[T] {
		ra := a(c)
		if ra.IsOk() {
			return ra
		}
		rb := b(c)
		if rb.IsOk() {
			return rb
		}
		// Longest-match-on-error: the failure that advanced furthest wins,
		// improving diagnostics on nested grammars.
		if rb.Next.Offset > ra.Next.Offset {
			return rb
		}
		return ra
	}
}

// FirstOf tries parsers in order, first match wins (ordered alternation
// over more than two branches).
func FirstOf[T any](parsers ...Parser[T]) Parser[T] {
	if len(parsers) == 0 {
		return Failure[T]("no alternatives")
	}
	p := parsers[0]
	for _, next := range parsers[1:] {
		p = Or(p, next)
	}
	return p
}

// Not succeeds (with a zero value) iff p fails, consuming no input.
func Not[T any](p Parser[T]) Parser[struct{}] {
	return func(c Cursor) Result[struct{}] {
		r := p(c)
		if r.IsOk() {
			return ErrString[struct{}]("unexpected match", c)
		}
		return Ok(struct{}{}, c)
	}
}

// Guard succeeds iff p succeeds, returning p's value but not consuming
// input (pure lookahead).
func Guard[T any](p Parser[T]) Parser[T] {
	return func(c Cursor) Result[T] {
		r := p(c)
		if !r.IsOk() {
			return Err[T](r.msg, c)
		}
		return Ok(r.Value(), c)
	}
}

// ConsumeAll fails unless p's result cursor is at EOF.
func ConsumeAll[T any](p Parser[T]) Parser[T] {
	return func(c Cursor) Result[T] {
		r := p(c)
		if !r.IsOk() {
			return r
		}
		if !r.Next.AtEOF() {
			return ErrString[T]("did not consume entire input", r.Next)
		}
		return r
	}
}
