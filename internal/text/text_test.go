package text

import (
	"testing"

	"github.com/restdoc/rst/internal/cursor"
)

func TestRefNameBasic(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"simple word", "hello rest", "hello", false},
		{"connector symbols allowed", "my-ref_name.v1", "my-ref_name.v1", false},
		{"must not start with symbol", "-hello", "", true},
		{"consecutive symbols terminate match", "a--b", "a", false},
		{"two distinct consecutive symbols also terminate", "a-_", "a", false},
		{"single trailing symbol stripped", "hello- ", "hello", false},
		{"unsupported char terminates", "a+b*c", "a+b", false},
		{"colon allowed", "role:name", "role:name", false},
		{"digit start allowed", "1st-place", "1st-place", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := RefName(cursor.New(tt.input))
			if tt.wantErr {
				if r.IsOk() {
					t.Fatalf("expected failure, got %q", r.Value())
				}
				return
			}
			if !r.IsOk() {
				t.Fatalf("expected success, got failure %q", r.Message())
			}
			if r.Value() != tt.want {
				t.Fatalf("got %q, want %q", r.Value(), tt.want)
			}
		})
	}
}

func TestStripCommonIndent(t *testing.T) {
	in := []string{"    a", "      b", "", "    c"}
	out := StripCommonIndent(in)
	want := []string{"a", "  b", "", "c"}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("line %d: got %q want %q", i, out[i], want[i])
		}
	}
}

func TestDelimitedByWithPostCondition(t *testing.T) {
	isWordBoundary := func(c cursor.Cursor) cursor.Result[struct{}] {
		if c.AtEOF() {
			return cursor.Ok(struct{}{}, c)
		}
		ch := c.Rest()[0]
		if ch == ' ' {
			return cursor.Ok(struct{}{}, c)
		}
		return cursor.ErrString[struct{}]("not a boundary", c)
	}
	// `a|b| c` where the true delimiter must be followed by a space.
	p := DelimitedBy("|", isWordBoundary)
	r := p(cursor.New("a|b| c"))
	if !r.IsOk() {
		t.Fatalf("expected success, got %q", r.Message())
	}
	if r.Value() != "a|b" {
		t.Fatalf("got %q, want %q", r.Value(), "a|b")
	}
}
