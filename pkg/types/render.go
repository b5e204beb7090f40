package types

import (
	"io"
	"strconv"
	"strings"
)

// Section headers of RenderKeeper.
const (
	classesHeader = "------------- Classes -----------------\n"
	defsHeader    = "------------- Defs -----------------\n"
)

// errWriter writes until the first error and then drops everything.
type errWriter struct {
	w   io.Writer
	err error
}

func (w *errWriter) str(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

func stringOf(render func(w *errWriter)) string {
	var sb strings.Builder
	render(&errWriter{w: &sb})
	return sb.String()
}

// RenderInit writes the textual form of v to w.
func RenderInit(w io.Writer, v Init) error {
	ew := &errWriter{w: w}
	renderInit(ew, v)
	return ew.err
}

// RenderRecord writes the textual form of r to w, one field per line.
func RenderRecord(w io.Writer, r *Record) error {
	ew := &errWriter{w: w}
	renderRecord(ew, r)
	return ew.err
}

// RenderKeeper writes every class and then every def to w, each namespace
// in insertion order. Records are streamed one at a time.
func RenderKeeper(w io.Writer, k *RecordKeeper) error {
	ew := &errWriter{w: w}
	ew.str(classesHeader)
	for r := range k.classes.Records() {
		renderRecord(ew, r)
	}
	ew.str(defsHeader)
	for r := range k.defs.Records() {
		renderRecord(ew, r)
	}
	return ew.err
}

func renderRecord(w *errWriter, r *Record) {
	if r.class {
		w.str("class ")
	} else {
		w.str("def ")
	}
	w.str(r.name)
	w.str(" {")
	if len(r.supers) > 0 {
		w.str("\t//")
		for _, s := range r.supers {
			w.str(" ")
			w.str(s)
		}
	}
	w.str("\n")
	for _, f := range r.fields {
		w.str("  ")
		renderField(w, f)
		w.str("\n")
	}
	w.str("}\n")
}

func renderField(w *errWriter, f *RecordVal) {
	w.str(f.typ.String())
	w.str(" ")
	w.str(f.name)
	w.str(" = ")
	renderInit(w, f.value)
	w.str(";")
}

func renderInit(w *errWriter, v Init) {
	switch v := v.(type) {
	case nil:
		w.str("<invalid>")
	case *UnsetInit:
		w.str("?")
	case *BitInit:
		w.str(bitString(v.v))
	case *BitsInit:
		w.str("{ ")
		for i := len(v.bits) - 1; i >= 0; i-- {
			w.str(bitString(v.bits[i]))
			if i > 0 {
				w.str(", ")
			}
		}
		w.str(" }")
	case *IntInit:
		w.str(strconv.FormatInt(v.v, 10))
	case *StringInit:
		if v.code {
			w.str("[{")
			w.str(v.v)
			w.str("}]")
		} else {
			w.str(strconv.Quote(v.v))
		}
	case *ListInit:
		w.str("[")
		for i, e := range v.elems {
			if i > 0 {
				w.str(", ")
			}
			renderInit(w, e)
		}
		w.str("]")
	case *DagInit:
		w.str("(")
		if v.op != nil {
			w.str(v.op.name)
		}
		for i, a := range v.args {
			if i > 0 {
				w.str(",")
			}
			w.str(" ")
			renderInit(w, a.Value)
			if a.Named() {
				w.str(":$")
				w.str(a.Name)
			}
		}
		w.str(")")
	case *DefInit:
		w.str(v.rec.name)
	}
}

func bitString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (v *UnsetInit) String() string  { return "?" }
func (v *BitInit) String() string    { return bitString(v.v) }
func (v *BitsInit) String() string   { return stringOf(func(w *errWriter) { renderInit(w, v) }) }
func (v *IntInit) String() string    { return strconv.FormatInt(v.v, 10) }
func (v *StringInit) String() string { return stringOf(func(w *errWriter) { renderInit(w, v) }) }
func (v *ListInit) String() string   { return stringOf(func(w *errWriter) { renderInit(w, v) }) }
func (v *DagInit) String() string    { return stringOf(func(w *errWriter) { renderInit(w, v) }) }
func (v *DefInit) String() string    { return v.rec.name }
