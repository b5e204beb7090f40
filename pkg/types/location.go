package types

import "fmt"

// Location is a position in a source buffer. Line and Col are 1-based; a
// zero Line means the location is unknown.
type Location struct {
	File string
	Line int
	Col  int
}

// NoLocation is the location of synthesized records and values.
var NoLocation = Location{}

// IsKnown reports whether the location points into a source buffer.
func (l Location) IsKnown() bool {
	return l.Line > 0
}

func (l Location) String() string {
	if !l.IsKnown() {
		return "<unknown>"
	}
	file := l.File
	if file == "" {
		file = "<source>"
	}
	return fmt.Sprintf("%s:%d:%d", file, l.Line, l.Col)
}
