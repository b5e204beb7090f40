package types

import "iter"

// Record is a class or a def: an ordered list of fields plus the set of
// classes it derives from.
type Record struct {
	name      string
	class     bool
	anonymous bool
	loc       Location

	fields []*RecordVal
	index  map[string]int

	// supers lists every ancestor class, most distant first; ancestors
	// holds the same names for constant-time subclass tests.
	supers    []string
	ancestors map[string]struct{}
}

func newRecord(name string, class, anonymous bool, loc Location) *Record {
	return &Record{
		name:      name,
		class:     class,
		anonymous: anonymous,
		loc:       loc,
		index:     make(map[string]int),
		ancestors: make(map[string]struct{}),
	}
}

// Name returns the record name. Anonymous defs carry a synthesized name.
func (r *Record) Name() string { return r.name }

// IsClass reports whether the record lives in the classes namespace.
func (r *Record) IsClass() bool { return r.class }

// IsAnonymous reports whether the def was created without an explicit name.
func (r *Record) IsAnonymous() bool { return r.anonymous }

// Loc returns where the record was defined.
func (r *Record) Loc() Location { return r.loc }

// NumFields returns the number of fields.
func (r *Record) NumFields() int { return len(r.fields) }

// FieldAt returns the field at position i in declaration order.
// Returns ErrIndexOutOfRange if i >= NumFields().
func (r *Record) FieldAt(i int) (*RecordVal, error) {
	if i < 0 || i >= len(r.fields) {
		return nil, outOfRange(i, len(r.fields))
	}
	return r.fields[i], nil
}

// FieldNamed returns the field with the given name.
// Returns ErrNotFound if the record has no such field.
func (r *Record) FieldNamed(name string) (*RecordVal, error) {
	i, ok := r.index[name]
	if !ok {
		return nil, notFound("field", name)
	}
	return r.fields[i], nil
}

// DeclaredType returns the declared type of a field whether or not its
// value is resolved. Returns ErrNotFound if the record has no such field.
func (r *Record) DeclaredType(name string) (RecType, error) {
	f, err := r.FieldNamed(name)
	if err != nil {
		return RecType{}, err
	}
	return f.typ, nil
}

// Fields returns the fields in declaration order. The sequence can be
// ranged over any number of times.
func (r *Record) Fields() iter.Seq[*RecordVal] {
	return func(yield func(*RecordVal) bool) {
		for _, f := range r.fields {
			if !yield(f) {
				return
			}
		}
	}
}

// Superclasses returns every ancestor class name, most distant first.
func (r *Record) Superclasses() []string {
	cp := make([]string, len(r.supers))
	copy(cp, r.supers)
	return cp
}

// IsSubclassOf reports whether the record derives from class. A class is
// also a subclass of itself.
func (r *Record) IsSubclassOf(class string) bool {
	if r.class && r.name == class {
		return true
	}
	_, ok := r.ancestors[class]
	return ok
}

// value returns the value of a field or a located not-found error.
func (r *Record) value(name string) (*RecordVal, Init, error) {
	f, err := r.FieldNamed(name)
	if err != nil {
		return nil, nil, WithLocation(err, r.loc)
	}
	return f, f.value, nil
}

// BitValue returns the field as a bit.
func (r *Record) BitValue(name string) (bool, error) {
	f, v, err := r.value(name)
	if err != nil {
		return false, err
	}
	b, err := AsBit(v)
	return b, WithLocation(err, f.loc)
}

// BitsValue returns the field as bits, least significant first.
func (r *Record) BitsValue(name string) ([]bool, error) {
	f, v, err := r.value(name)
	if err != nil {
		return nil, err
	}
	b, err := AsBits(v)
	return b, WithLocation(err, f.loc)
}

// IntValue returns the field as an integer.
func (r *Record) IntValue(name string) (int64, error) {
	f, v, err := r.value(name)
	if err != nil {
		return 0, err
	}
	i, err := AsInt(v)
	return i, WithLocation(err, f.loc)
}

// StringValue returns the field as text. Code fields are strings.
func (r *Record) StringValue(name string) (string, error) {
	f, v, err := r.value(name)
	if err != nil {
		return "", err
	}
	s, err := AsString(v)
	return s, WithLocation(err, f.loc)
}

// DefValue returns the def referenced by the field.
func (r *Record) DefValue(name string) (*Record, error) {
	f, v, err := r.value(name)
	if err != nil {
		return nil, err
	}
	d, err := AsRecord(v)
	return d, WithLocation(err, f.loc)
}

// ListValue returns the field as a list.
func (r *Record) ListValue(name string) (*ListInit, error) {
	f, v, err := r.value(name)
	if err != nil {
		return nil, err
	}
	l, ok := v.(*ListInit)
	if !ok {
		return nil, WithLocation(mismatch(KindOf(v), KindList), f.loc)
	}
	return l, nil
}

// DagValue returns the field as a dag.
func (r *Record) DagValue(name string) (*DagInit, error) {
	f, v, err := r.value(name)
	if err != nil {
		return nil, err
	}
	d, ok := v.(*DagInit)
	if !ok {
		return nil, WithLocation(mismatch(KindOf(v), KindDag), f.loc)
	}
	return d, nil
}

func (r *Record) String() string {
	return stringOf(func(w *errWriter) { renderRecord(w, r) })
}
