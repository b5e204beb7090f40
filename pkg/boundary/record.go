package boundary

import (
	"fmt"

	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

func (r *Registry) withRecord(m ModelHandle, h RecordHandle) (*session, *types.Record, error) {
	s, err := r.session(m)
	if err != nil {
		return nil, nil, err
	}
	rec, err := s.record(h)
	if err != nil {
		return nil, nil, err
	}
	return s, rec, nil
}

func (r *Registry) withField(m ModelHandle, h FieldHandle) (*session, *types.RecordVal, error) {
	s, err := r.session(m)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.field(h)
	if err != nil {
		return nil, nil, err
	}
	return s, f, nil
}

// LookupClass returns a borrowed handle to the named class.
// Returns types.ErrNotFound if m has no such class.
func (r *Registry) LookupClass(m ModelHandle, name string) (RecordHandle, error) {
	s, err := r.session(m)
	if err != nil {
		return 0, err
	}
	rec, err := s.keeper.Class(name)
	if err != nil {
		return 0, err
	}
	return s.recordHandle(rec), nil
}

// LookupDef returns a borrowed handle to the named def.
// Returns types.ErrNotFound if m has no such def.
func (r *Registry) LookupDef(m ModelHandle, name string) (RecordHandle, error) {
	s, err := r.session(m)
	if err != nil {
		return 0, err
	}
	rec, err := s.keeper.Def(name)
	if err != nil {
		return 0, err
	}
	return s.recordHandle(rec), nil
}

// RecordName returns the record's name as a borrowed view.
func (r *Registry) RecordName(m ModelHandle, h RecordHandle) (View, error) {
	s, rec, err := r.withRecord(m, h)
	if err != nil {
		return View{}, err
	}
	return newView(s, rec.Name()), nil
}

// RecordIsAnonymous reports whether the record was defined without a name.
func (r *Registry) RecordIsAnonymous(m ModelHandle, h RecordHandle) (bool, error) {
	_, rec, err := r.withRecord(m, h)
	if err != nil {
		return false, err
	}
	return rec.IsAnonymous(), nil
}

// RecordIsClass reports whether the record is a class.
func (r *Registry) RecordIsClass(m ModelHandle, h RecordHandle) (bool, error) {
	_, rec, err := r.withRecord(m, h)
	if err != nil {
		return false, err
	}
	return rec.IsClass(), nil
}

// IsSubclassOf reports whether class is among the record's ancestors.
func (r *Registry) IsSubclassOf(m ModelHandle, h RecordHandle, class string) (bool, error) {
	_, rec, err := r.withRecord(m, h)
	if err != nil {
		return false, err
	}
	return rec.IsSubclassOf(class), nil
}

// NumFields returns the number of fields of the record.
func (r *Registry) NumFields(m ModelHandle, h RecordHandle) (int, error) {
	_, rec, err := r.withRecord(m, h)
	if err != nil {
		return 0, err
	}
	return rec.NumFields(), nil
}

// FieldAt returns a borrowed handle to the i-th field in declaration order.
// Returns types.ErrIndexOutOfRange if i is outside [0, NumFields).
func (r *Registry) FieldAt(m ModelHandle, h RecordHandle, i int) (FieldHandle, error) {
	s, rec, err := r.withRecord(m, h)
	if err != nil {
		return 0, err
	}
	f, err := rec.FieldAt(i)
	if err != nil {
		return 0, err
	}
	return s.fieldHandle(f), nil
}

// FirstField returns the first field of the record.
// Returns types.ErrIndexOutOfRange if the record has no fields.
func (r *Registry) FirstField(m ModelHandle, h RecordHandle) (FieldHandle, error) {
	return r.FieldAt(m, h, 0)
}

// FieldNamed returns a borrowed handle to the named field.
// Returns types.ErrNotFound if the record has no such field.
func (r *Registry) FieldNamed(m ModelHandle, h RecordHandle, name string) (FieldHandle, error) {
	s, rec, err := r.withRecord(m, h)
	if err != nil {
		return 0, err
	}
	f, err := rec.FieldNamed(name)
	if err != nil {
		return 0, err
	}
	return s.fieldHandle(f), nil
}

// DeclaredKind returns the kind of the named field's declared type.
func (r *Registry) DeclaredKind(m ModelHandle, h RecordHandle, name string) (types.Kind, error) {
	_, rec, err := r.withRecord(m, h)
	if err != nil {
		return types.KindInvalid, err
	}
	t, err := rec.DeclaredType(name)
	if err != nil {
		return types.KindInvalid, err
	}
	return t.Kind(), nil
}

// FieldName returns the field's name as a borrowed view.
func (r *Registry) FieldName(m ModelHandle, f FieldHandle) (View, error) {
	s, fv, err := r.withField(m, f)
	if err != nil {
		return View{}, err
	}
	return newView(s, fv.Name()), nil
}

// FieldValue returns a borrowed handle to the field's value.
func (r *Registry) FieldValue(m ModelHandle, f FieldHandle) (ValueHandle, error) {
	s, fv, err := r.withField(m, f)
	if err != nil {
		return 0, err
	}
	return s.valueHandle(fv.Value()), nil
}

// AllDerivedDefinitions returns a caller-owned sequence of the defs derived
// from class, in definition order. An unknown class yields an empty
// sequence.
func (r *Registry) AllDerivedDefinitions(m ModelHandle, class string) (SeqHandle, error) {
	s, err := r.session(m)
	if err != nil {
		return 0, err
	}
	return SeqHandle(s.own(kindSeq, s.keeper.AllDerivedDefinitions(class))), nil
}

// SeqLen returns the number of defs in q.
func (r *Registry) SeqLen(m ModelHandle, q SeqHandle) (int, error) {
	s, err := r.session(m)
	if err != nil {
		return 0, err
	}
	recs, err := s.seq(q)
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

// SeqAt returns a borrowed handle to the i-th def of q.
// Returns types.ErrIndexOutOfRange if i is outside [0, SeqLen).
func (r *Registry) SeqAt(m ModelHandle, q SeqHandle, i int) (RecordHandle, error) {
	s, err := r.session(m)
	if err != nil {
		return 0, err
	}
	recs, err := s.seq(q)
	if err != nil {
		return 0, err
	}
	if i < 0 || i >= len(recs) {
		return 0, fmt.Errorf("sequence %#x: %w", uint64(q), &types.IndexError{Index: i, Len: len(recs)})
	}
	return s.recordHandle(recs[i]), nil
}

// ReleaseSeq releases q. Releasing twice returns ErrReleased.
func (r *Registry) ReleaseSeq(m ModelHandle, q SeqHandle) error {
	s, err := r.session(m)
	if err != nil {
		return err
	}
	return s.releaseOwned(kindSeq, uint64(q))
}
