package types

// RecordVal is a named, typed field of a record.
type RecordVal struct {
	name  string
	typ   RecType
	value Init
	loc   Location
}

// Name returns the field name.
func (f *RecordVal) Name() string { return f.name }

// Type returns the declared type.
func (f *RecordVal) Type() RecType { return f.typ }

// Value returns the current value. Unresolved fields return the unset value.
func (f *RecordVal) Value() Init { return f.value }

// IsSet reports whether the field has a resolved value.
func (f *RecordVal) IsSet() bool { return f.value.Kind() != KindUnset }

// Loc returns where the field was declared or last assigned.
func (f *RecordVal) Loc() Location { return f.loc }

func (f *RecordVal) String() string {
	return stringOf(func(w *errWriter) { renderField(w, f) })
}
