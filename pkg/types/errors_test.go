package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceErrorExcerpt(t *testing.T) {
	src := "class A {\n\tint x = \"s\";\r\n}\n"
	tests := []struct {
		name string
		loc  Location
		want string
	}{
		{name: "first column", loc: Location{File: "a.td", Line: 1, Col: 1}, want: "class A {\n^\n"},
		{name: "tab kept in marker", loc: Location{File: "a.td", Line: 2, Col: 10}, want: "\tint x = \"s\";\n\t        ^\n"},
		{name: "end of line", loc: Location{File: "a.td", Line: 3, Col: 2}, want: "}\n ^\n"},
		{name: "zero column", loc: Location{File: "a.td", Line: 1, Col: 0}, want: "class A {\n^\n"},
		{name: "line past end", loc: Location{File: "a.td", Line: 9, Col: 1}, want: ""},
		{name: "column past end", loc: Location{File: "a.td", Line: 3, Col: 5}, want: ""},
		{name: "unknown", loc: NoLocation, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &SourceError{Loc: tt.loc, Err: errors.New("boom")}
			assert.Equal(t, tt.want, e.Excerpt(src))
		})
	}
}

func TestSourceErrorExcerptMultibyte(t *testing.T) {
	e := &SourceError{Loc: Location{Line: 1, Col: len("s = \"é\" ") + 1}, Err: errors.New("boom")}
	assert.Equal(t, "s = \"é\" @\n        ^\n", e.Excerpt("s = \"é\" @"))
}
