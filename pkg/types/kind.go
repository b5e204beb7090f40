package types

// Kind identifies the variant of an Init or the kind of a declared type.
type Kind int

// Value kinds. KindUnset marks a field whose value is not resolved (written
// `?` in source); KindInvalid is the kind of a nil Init.
const (
	KindInvalid Kind = iota
	KindBit
	KindBits
	KindInt
	KindString
	KindList
	KindDag
	KindRecord
	KindUnset
)

var kindNames = map[Kind]string{
	KindInvalid: "Invalid",
	KindBit:     "Bit",
	KindBits:    "Bits",
	KindInt:     "Int",
	KindString:  "String",
	KindList:    "List",
	KindDag:     "Dag",
	KindRecord:  "Record",
	KindUnset:   "Unset",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Invalid"
}
