package types

// Init is a field value. The set of implementations is closed: *BitInit,
// *BitsInit, *IntInit, *StringInit, *ListInit, *DagInit, *DefInit and
// *UnsetInit. Values are immutable once constructed.
type Init interface {
	Kind() Kind
	isInit()
}

// UnsetInit is the value of a field that has no resolved value.
type UnsetInit struct{}

var unset = &UnsetInit{}

// Unset returns the unset value.
func Unset() *UnsetInit { return unset }

func (*UnsetInit) Kind() Kind { return KindUnset }
func (*UnsetInit) isInit()    {}

// BitInit is a single bit.
type BitInit struct {
	v bool
}

// NewBit returns a bit value.
func NewBit(v bool) *BitInit { return &BitInit{v: v} }

func (*BitInit) Kind() Kind { return KindBit }
func (*BitInit) isInit()    {}

// Value returns the bit.
func (b *BitInit) Value() bool { return b.v }

// BitsInit is a fixed-width sequence of bits. Index 0 is the least
// significant bit.
type BitsInit struct {
	bits []bool
}

// NewBits returns a bits value holding a copy of bits.
func NewBits(bits []bool) *BitsInit {
	cp := make([]bool, len(bits))
	copy(cp, bits)
	return &BitsInit{bits: cp}
}

// NewBitsFromInt returns the low width bits of v.
func NewBitsFromInt(v int64, width int) *BitsInit {
	bits := make([]bool, width)
	for i := 0; i < width && i < 64; i++ {
		bits[i] = v&(1<<uint(i)) != 0
	}
	return &BitsInit{bits: bits}
}

func (*BitsInit) Kind() Kind { return KindBits }
func (*BitsInit) isInit()    {}

// Len returns the bit width.
func (b *BitsInit) Len() int { return len(b.bits) }

// Bit returns bit i. Returns ErrIndexOutOfRange if i >= Len().
func (b *BitsInit) Bit(i int) (bool, error) {
	if i < 0 || i >= len(b.bits) {
		return false, outOfRange(i, len(b.bits))
	}
	return b.bits[i], nil
}

// Bits returns a fresh copy of the bits.
func (b *BitsInit) Bits() []bool {
	cp := make([]bool, len(b.bits))
	copy(cp, b.bits)
	return cp
}

// IntInit is a 64-bit signed integer.
type IntInit struct {
	v int64
}

// NewInt returns an int value.
func NewInt(v int64) *IntInit { return &IntInit{v: v} }

func (*IntInit) Kind() Kind { return KindInt }
func (*IntInit) isInit()    {}

// Value returns the integer.
func (i *IntInit) Value() int64 { return i.v }

// StringInit is UTF-8 text. Code literals are strings that remember they
// were written as code.
type StringInit struct {
	v    string
	code bool
}

// NewString returns a string value.
func NewString(s string) *StringInit { return &StringInit{v: s} }

// NewCode returns a string value written as a code literal.
func NewCode(s string) *StringInit { return &StringInit{v: s, code: true} }

func (*StringInit) Kind() Kind { return KindString }
func (*StringInit) isInit()    {}

// Value returns the text.
func (s *StringInit) Value() string { return s.v }

// IsCode reports whether the value was written as a code literal.
func (s *StringInit) IsCode() bool { return s.code }

// ListInit is a homogeneous list.
type ListInit struct {
	elem  RecType
	elems []Init
}

// NewList returns a list of elements of type elem. Returns ErrTypeMismatch
// if an element does not fit elem.
func NewList(elem RecType, elems []Init) (*ListInit, error) {
	cp := make([]Init, len(elems))
	for i, e := range elems {
		if e == nil || !elem.Accepts(e) {
			return nil, &MismatchError{From: KindOf(e), To: elem.Kind()}
		}
		cp[i] = e
	}
	return &ListInit{elem: elem, elems: cp}, nil
}

func (*ListInit) Kind() Kind { return KindList }
func (*ListInit) isInit()    {}

// ElemType returns the element type fixed at construction.
func (l *ListInit) ElemType() RecType { return l.elem }

// Len returns the number of elements.
func (l *ListInit) Len() int { return len(l.elems) }

// Elem returns element i. Returns ErrIndexOutOfRange if i >= Len().
func (l *ListInit) Elem(i int) (Init, error) {
	if i < 0 || i >= len(l.elems) {
		return nil, outOfRange(i, len(l.elems))
	}
	return l.elems[i], nil
}

// DagArg is one argument of a dag. Name is empty for unnamed arguments.
type DagArg struct {
	Name  string
	Value Init
}

// Named reports whether the argument carries a name.
func (a DagArg) Named() bool { return a.Name != "" }

// DagInit is an operator applied to an ordered list of arguments.
type DagInit struct {
	op   *Record
	args []DagArg
}

// NewDag returns a dag value. Arguments with a nil Value are stored unset.
func NewDag(op *Record, args []DagArg) *DagInit {
	cp := make([]DagArg, len(args))
	for i, a := range args {
		if a.Value == nil {
			a.Value = unset
		}
		cp[i] = a
	}
	return &DagInit{op: op, args: cp}
}

func (*DagInit) Kind() Kind { return KindDag }
func (*DagInit) isInit()    {}

// Operator returns the operator def.
func (d *DagInit) Operator() *Record { return d.op }

// NumArgs returns the number of arguments.
func (d *DagInit) NumArgs() int { return len(d.args) }

// Arg returns argument i. Returns ErrIndexOutOfRange if i >= NumArgs().
func (d *DagInit) Arg(i int) (DagArg, error) {
	if i < 0 || i >= len(d.args) {
		return DagArg{}, outOfRange(i, len(d.args))
	}
	return d.args[i], nil
}

// DefInit is a reference to a def, by identity.
type DefInit struct {
	rec *Record
}

// NewDef returns a reference to rec.
func NewDef(rec *Record) *DefInit { return &DefInit{rec: rec} }

func (*DefInit) Kind() Kind { return KindRecord }
func (*DefInit) isInit()    {}

// Record returns the referenced def.
func (d *DefInit) Record() *Record { return d.rec }

// KindOf returns the kind of v. A nil value is KindInvalid.
func KindOf(v Init) Kind {
	if v == nil {
		return KindInvalid
	}
	return v.Kind()
}

// AsBit reads v as a bit.
func AsBit(v Init) (bool, error) {
	b, ok := v.(*BitInit)
	if !ok {
		return false, mismatch(KindOf(v), KindBit)
	}
	return b.v, nil
}

// AsBits reads v as bits. The returned slice is a fresh copy of length N.
func AsBits(v Init) ([]bool, error) {
	b, ok := v.(*BitsInit)
	if !ok {
		return nil, mismatch(KindOf(v), KindBits)
	}
	return b.Bits(), nil
}

// NumBits returns the width of a bits value.
func NumBits(v Init) (int, error) {
	b, ok := v.(*BitsInit)
	if !ok {
		return 0, mismatch(KindOf(v), KindBits)
	}
	return b.Len(), nil
}

// BitAt returns bit i of a bits value.
func BitAt(v Init, i int) (bool, error) {
	b, ok := v.(*BitsInit)
	if !ok {
		return false, mismatch(KindOf(v), KindBits)
	}
	return b.Bit(i)
}

// AsInt reads v as an integer.
func AsInt(v Init) (int64, error) {
	i, ok := v.(*IntInit)
	if !ok {
		return 0, mismatch(KindOf(v), KindInt)
	}
	return i.v, nil
}

// AsString reads v as text. Integers and other kinds are never stringified.
func AsString(v Init) (string, error) {
	s, ok := v.(*StringInit)
	if !ok {
		return "", mismatch(KindOf(v), KindString)
	}
	return s.v, nil
}

// ListLen returns the length of a list value.
func ListLen(v Init) (int, error) {
	l, ok := v.(*ListInit)
	if !ok {
		return 0, mismatch(KindOf(v), KindList)
	}
	return l.Len(), nil
}

// ListElem returns element i of a list value.
func ListElem(v Init, i int) (Init, error) {
	l, ok := v.(*ListInit)
	if !ok {
		return nil, mismatch(KindOf(v), KindList)
	}
	return l.Elem(i)
}

// DagOperator returns the operator of a dag value.
func DagOperator(v Init) (*Record, error) {
	d, ok := v.(*DagInit)
	if !ok {
		return nil, mismatch(KindOf(v), KindDag)
	}
	return d.op, nil
}

// DagNumArgs returns the argument count of a dag value.
func DagNumArgs(v Init) (int, error) {
	d, ok := v.(*DagInit)
	if !ok {
		return 0, mismatch(KindOf(v), KindDag)
	}
	return d.NumArgs(), nil
}

// DagArgAt returns argument i of a dag value.
func DagArgAt(v Init, i int) (DagArg, error) {
	d, ok := v.(*DagInit)
	if !ok {
		return DagArg{}, mismatch(KindOf(v), KindDag)
	}
	return d.Arg(i)
}

// AsRecord reads v as a def reference.
func AsRecord(v Init) (*Record, error) {
	d, ok := v.(*DefInit)
	if !ok {
		return nil, mismatch(KindOf(v), KindRecord)
	}
	return d.rec, nil
}

// Equal reports whether a and b are the same value. Def references compare
// by identity.
func Equal(a, b Init) bool {
	if KindOf(a) != KindOf(b) {
		return false
	}
	switch a := a.(type) {
	case *UnsetInit:
		return true
	case *BitInit:
		return a.v == b.(*BitInit).v
	case *BitsInit:
		bb := b.(*BitsInit)
		if len(a.bits) != len(bb.bits) {
			return false
		}
		for i := range a.bits {
			if a.bits[i] != bb.bits[i] {
				return false
			}
		}
		return true
	case *IntInit:
		return a.v == b.(*IntInit).v
	case *StringInit:
		return a.v == b.(*StringInit).v
	case *ListInit:
		bl := b.(*ListInit)
		if len(a.elems) != len(bl.elems) {
			return false
		}
		for i := range a.elems {
			if !Equal(a.elems[i], bl.elems[i]) {
				return false
			}
		}
		return true
	case *DagInit:
		bd := b.(*DagInit)
		if a.op != bd.op || len(a.args) != len(bd.args) {
			return false
		}
		for i := range a.args {
			if a.args[i].Name != bd.args[i].Name || !Equal(a.args[i].Value, bd.args[i].Value) {
				return false
			}
		}
		return true
	case *DefInit:
		return a.rec == b.(*DefInit).rec
	}
	return false
}
