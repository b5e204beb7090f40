package types

import (
	"errors"
	"fmt"
	"strings"
)

// Lookup and accessor errors.
var (
	ErrNotFound        = errors.New("not found")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Construction errors. ErrConstructionFailure is the terminal error of a
// parse or build attempt; no keeper accompanies it.
var (
	ErrConstructionFailure = errors.New("record construction failed")
	ErrDuplicateName       = errors.New("duplicate name")
	ErrUnknownClass        = errors.New("unknown class")
	ErrInvalidType         = errors.New("invalid type")
	ErrBuilderClosed       = errors.New("builder already built")
)

// NotFoundError reports a name missing from a namespace or a record.
type NotFoundError struct {
	What string // "class", "def" or "field"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.What, e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// MismatchError reports an accessor invoked on a value of another kind.
type MismatchError struct {
	From Kind
	To   Kind
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("invalid conversion from %s to %s", e.From, e.To)
}

func (e *MismatchError) Unwrap() error { return ErrTypeMismatch }

// IndexError reports an index at or beyond the length of a bits, list or
// dag value.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Len)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }

// SourceError attaches a source location to an error.
type SourceError struct {
	Loc Location
	Err error
}

// WithLocation wraps err with loc. A nil err stays nil.
func WithLocation(err error, loc Location) error {
	if err == nil {
		return nil
	}
	return &SourceError{Loc: loc, Err: err}
}

func (e *SourceError) Error() string {
	if !e.Loc.IsKnown() {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Loc, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Excerpt returns the source line at the error location and a caret under
// its column, each newline-terminated. src is the full text of the buffer
// named by Loc.File; Col counts bytes. Excerpt returns "" when the location
// is unknown or falls outside src.
func (e *SourceError) Excerpt(src string) string {
	if !e.Loc.IsKnown() {
		return ""
	}
	lines := strings.Split(src, "\n")
	if e.Loc.Line > len(lines) {
		return ""
	}
	line := strings.TrimSuffix(lines[e.Loc.Line-1], "\r")
	col := max(e.Loc.Col, 1)
	if col-1 > len(line) {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(line)
	sb.WriteByte('\n')
	for _, r := range line[:col-1] {
		if r == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
	}
	sb.WriteString("^\n")
	return sb.String()
}

func notFound(what, name string) error {
	return &NotFoundError{What: what, Name: name}
}

func duplicate(what, name string) error {
	return fmt.Errorf("%s %q: %w", what, name, ErrDuplicateName)
}

func mismatch(from, to Kind) error {
	return &MismatchError{From: from, To: to}
}

func outOfRange(i, n int) error {
	return &IndexError{Index: i, Len: n}
}
