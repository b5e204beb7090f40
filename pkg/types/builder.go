package types

import "fmt"

// Builder populates a RecordKeeper. Records are assembled with a
// RecordBuilder and become visible to lookups once committed. Build freezes
// the result; the builder rejects every call after that.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	classes *RecordMap
	defs    *RecordMap
	anon    int
	built   bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		classes: newRecordMap("class"),
		defs:    newRecordMap("def"),
	}
}

// NewClass starts a class record.
// Returns ErrDuplicateName if a class with that name is already committed.
func (b *Builder) NewClass(name string, loc Location) (*RecordBuilder, error) {
	if b.built {
		return nil, ErrBuilderClosed
	}
	if name == "" {
		return nil, WithLocation(fmt.Errorf("class name must not be empty: %w", ErrInvalidType), loc)
	}
	if _, err := b.classes.Get(name); err == nil {
		return nil, WithLocation(duplicate("class", name), loc)
	}
	return &RecordBuilder{b: b, rec: newRecord(name, true, false, loc)}, nil
}

// NewDef starts a def record. An empty name starts an anonymous def named
// anonymous_N.
// Returns ErrDuplicateName if a def with that name is already committed.
func (b *Builder) NewDef(name string, loc Location) (*RecordBuilder, error) {
	if b.built {
		return nil, ErrBuilderClosed
	}
	anonymous := name == ""
	if anonymous {
		name = b.anonymousName()
	} else if _, err := b.defs.Get(name); err == nil {
		return nil, WithLocation(duplicate("def", name), loc)
	}
	return &RecordBuilder{b: b, rec: newRecord(name, false, anonymous, loc)}, nil
}

func (b *Builder) anonymousName() string {
	for {
		name := fmt.Sprintf("anonymous_%d", b.anon)
		b.anon++
		if _, err := b.defs.Get(name); err != nil {
			return name
		}
	}
}

// Class returns a committed class.
func (b *Builder) Class(name string) (*Record, error) {
	return b.classes.Get(name)
}

// Def returns a committed def.
func (b *Builder) Def(name string) (*Record, error) {
	return b.defs.Get(name)
}

// Build returns the keeper holding every committed record. Records started
// but never committed are dropped.
func (b *Builder) Build() (*RecordKeeper, error) {
	if b.built {
		return nil, ErrBuilderClosed
	}
	b.built = true
	return &RecordKeeper{classes: b.classes, defs: b.defs}, nil
}

// RecordBuilder assembles one record.
type RecordBuilder struct {
	b         *Builder
	rec       *Record
	committed bool
}

// Name returns the name of the record under construction.
func (rb *RecordBuilder) Name() string { return rb.rec.name }

func (rb *RecordBuilder) check() error {
	if rb.b.built {
		return ErrBuilderClosed
	}
	if rb.committed {
		return fmt.Errorf("record %q already committed: %w", rb.rec.name, ErrBuilderClosed)
	}
	return nil
}

// DeclaredType returns the declared type of a field of the record under
// construction. Returns ErrNotFound if the field is not declared.
func (rb *RecordBuilder) DeclaredType(name string) (RecType, error) {
	return rb.rec.DeclaredType(name)
}

// Inherit makes the record derive from a committed class. The class and
// its ancestors join the ancestor set, and the class fields the record
// does not have yet are appended with their current values. A field the
// record already has keeps its position but takes the class value when
// that value is set.
// Returns ErrUnknownClass if class is not committed, and ErrInvalidType if
// an existing field disagrees with the inherited declaration.
func (rb *RecordBuilder) Inherit(class string) error {
	if err := rb.check(); err != nil {
		return err
	}
	c, err := rb.b.classes.Get(class)
	if err != nil {
		return WithLocation(fmt.Errorf("class %q: %w", class, ErrUnknownClass), rb.rec.loc)
	}
	r := rb.rec
	for _, s := range c.supers {
		r.addSuper(s)
	}
	r.addSuper(c.name)
	for _, f := range c.fields {
		if i, ok := r.index[f.name]; ok {
			if !r.fields[i].typ.Equal(f.typ) {
				return WithLocation(fmt.Errorf("field %q inherited from %q as %s, already declared as %s: %w",
					f.name, class, f.typ, r.fields[i].typ, ErrInvalidType), rb.rec.loc)
			}
			if f.value.Kind() != KindUnset {
				r.fields[i].value = f.value
			}
			continue
		}
		r.index[f.name] = len(r.fields)
		r.fields = append(r.fields, &RecordVal{name: f.name, typ: f.typ, value: f.value, loc: f.loc})
	}
	return nil
}

func (r *Record) addSuper(name string) {
	if _, ok := r.ancestors[name]; ok {
		return
	}
	r.ancestors[name] = struct{}{}
	r.supers = append(r.supers, name)
}

// AddField declares a field. Redeclaring a field with the same type is
// allowed and leaves its value untouched.
// Returns ErrInvalidType if the field exists with another type.
func (rb *RecordBuilder) AddField(name string, t RecType, loc Location) error {
	if err := rb.check(); err != nil {
		return err
	}
	if t.Kind() == KindInvalid || t.Kind() == KindUnset {
		return WithLocation(fmt.Errorf("field %q: %w", name, ErrInvalidType), loc)
	}
	r := rb.rec
	if i, ok := r.index[name]; ok {
		if !r.fields[i].typ.Equal(t) {
			return WithLocation(fmt.Errorf("field %q redeclared as %s, previously %s: %w",
				name, t, r.fields[i].typ, ErrInvalidType), loc)
		}
		return nil
	}
	r.index[name] = len(r.fields)
	r.fields = append(r.fields, &RecordVal{name: name, typ: t, value: unset, loc: loc})
	return nil
}

// SetValue assigns a field. The value must fit the declared type.
// Returns ErrNotFound if the field is not declared and ErrTypeMismatch if
// the value does not fit.
func (rb *RecordBuilder) SetValue(name string, v Init, loc Location) error {
	if err := rb.check(); err != nil {
		return err
	}
	i, ok := rb.rec.index[name]
	if !ok {
		return WithLocation(notFound("field", name), loc)
	}
	f := rb.rec.fields[i]
	if !f.typ.Accepts(v) {
		return WithLocation(fmt.Errorf("field %q of type %s: %w", name, f.typ,
			&MismatchError{From: KindOf(v), To: f.typ.Kind()}), loc)
	}
	f.value = v
	if loc.IsKnown() {
		f.loc = loc
	}
	return nil
}

// Commit adds the record to its namespace and returns it. The record is
// immutable from then on.
// Returns ErrDuplicateName if the name was taken in the meantime.
func (rb *RecordBuilder) Commit() (*Record, error) {
	if err := rb.check(); err != nil {
		return nil, err
	}
	m := rb.b.defs
	if rb.rec.class {
		m = rb.b.classes
	}
	if err := m.add(rb.rec); err != nil {
		return nil, err
	}
	rb.committed = true
	return rb.rec, nil
}
