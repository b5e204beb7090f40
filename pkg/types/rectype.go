package types

import (
	"fmt"
	"strconv"
)

// RecType is the declared type of a field: a kind plus the bit width of a
// bits type, the element type of a list type, or the class constraint of a
// record type.
type RecType struct {
	kind  Kind
	width int
	code  bool
	elem  *RecType
	class string
}

// BitType returns the type `bit`.
func BitType() RecType { return RecType{kind: KindBit} }

// BitsType returns the type `bits<n>`.
func BitsType(n int) RecType { return RecType{kind: KindBits, width: n} }

// IntType returns the type `int`.
func IntType() RecType { return RecType{kind: KindInt} }

// StringType returns the type `string`.
func StringType() RecType { return RecType{kind: KindString} }

// CodeType returns the type `code`. Code values are strings.
func CodeType() RecType { return RecType{kind: KindString, code: true} }

// ListType returns the type `list<elem>`.
func ListType(elem RecType) RecType {
	e := elem
	return RecType{kind: KindList, elem: &e}
}

// DagType returns the type `dag`.
func DagType() RecType { return RecType{kind: KindDag} }

// RecordType returns the type of a reference to a def derived from class.
func RecordType(class string) RecType { return RecType{kind: KindRecord, class: class} }

// Kind returns the value kind the type admits.
func (t RecType) Kind() Kind { return t.kind }

// Width returns the bit width of a bits type and 0 otherwise.
func (t RecType) Width() int { return t.width }

// IsCode reports whether the type was declared as `code`.
func (t RecType) IsCode() bool { return t.code }

// Elem returns the element type of a list type.
func (t RecType) Elem() (RecType, bool) {
	if t.kind != KindList || t.elem == nil {
		return RecType{}, false
	}
	return *t.elem, true
}

// Class returns the class constraint of a record type.
func (t RecType) Class() string { return t.class }

// Equal reports whether two declared types are identical. `code` and
// `string` are the same type.
func (t RecType) Equal(o RecType) bool {
	if t.kind != o.kind || t.width != o.width || t.class != o.class {
		return false
	}
	if t.kind == KindList {
		if t.elem == nil || o.elem == nil {
			return t.elem == o.elem
		}
		return t.elem.Equal(*o.elem)
	}
	return true
}

// Accepts reports whether v may be stored in a field of type t. An unset
// value fits every type.
func (t RecType) Accepts(v Init) bool {
	if v == nil {
		return false
	}
	switch v := v.(type) {
	case *UnsetInit:
		return true
	case *BitsInit:
		return t.kind == KindBits && t.width == v.Len()
	case *ListInit:
		if t.kind != KindList {
			return false
		}
		elem, _ := t.Elem()
		if len(v.elems) == 0 {
			return true
		}
		return elem.Equal(v.elem)
	case *DefInit:
		return t.kind == KindRecord && v.rec.IsSubclassOf(t.class)
	default:
		return t.kind == v.Kind()
	}
}

func (t RecType) String() string {
	switch t.kind {
	case KindBit:
		return "bit"
	case KindBits:
		return "bits<" + strconv.Itoa(t.width) + ">"
	case KindInt:
		return "int"
	case KindString:
		if t.code {
			return "code"
		}
		return "string"
	case KindList:
		if t.elem == nil {
			return "list<?>"
		}
		return fmt.Sprintf("list<%s>", t.elem)
	case KindDag:
		return "dag"
	case KindRecord:
		return t.class
	default:
		return "?"
	}
}
