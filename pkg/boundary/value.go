package boundary

import (
	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

// Value accessors return types.ErrTypeMismatch when the value is of
// another kind and types.ErrIndexOutOfRange for a bad index. Neither
// coerces.

func (r *Registry) withValue(m ModelHandle, h ValueHandle) (*session, types.Init, error) {
	s, err := r.session(m)
	if err != nil {
		return nil, nil, err
	}
	v, err := s.value(h)
	if err != nil {
		return nil, nil, err
	}
	return s, v, nil
}

// ValueKind returns the kind of the value.
func (r *Registry) ValueKind(m ModelHandle, v ValueHandle) (types.Kind, error) {
	_, val, err := r.withValue(m, v)
	if err != nil {
		return types.KindInvalid, err
	}
	return val.Kind(), nil
}

func (r *Registry) ValueBit(m ModelHandle, v ValueHandle) (bool, error) {
	_, val, err := r.withValue(m, v)
	if err != nil {
		return false, err
	}
	return types.AsBit(val)
}

func (r *Registry) ValueInt(m ModelHandle, v ValueHandle) (int64, error) {
	_, val, err := r.withValue(m, v)
	if err != nil {
		return 0, err
	}
	return types.AsInt(val)
}

// ValueString returns a string or code value as a borrowed view.
func (r *Registry) ValueString(m ModelHandle, v ValueHandle) (View, error) {
	s, val, err := r.withValue(m, v)
	if err != nil {
		return View{}, err
	}
	str, err := types.AsString(val)
	if err != nil {
		return View{}, err
	}
	return newView(s, str), nil
}

// ValueNumBits returns the width of a bits value.
func (r *Registry) ValueNumBits(m ModelHandle, v ValueHandle) (int, error) {
	_, val, err := r.withValue(m, v)
	if err != nil {
		return 0, err
	}
	return types.NumBits(val)
}

// ValueBitAt returns bit i of a bits value; bit 0 is the least significant.
func (r *Registry) ValueBitAt(m ModelHandle, v ValueHandle, i int) (bool, error) {
	_, val, err := r.withValue(m, v)
	if err != nil {
		return false, err
	}
	return types.BitAt(val, i)
}

func (r *Registry) ListLen(m ModelHandle, v ValueHandle) (int, error) {
	_, val, err := r.withValue(m, v)
	if err != nil {
		return 0, err
	}
	return types.ListLen(val)
}

// ListElem returns a borrowed handle to element i of a list value.
func (r *Registry) ListElem(m ModelHandle, v ValueHandle, i int) (ValueHandle, error) {
	s, val, err := r.withValue(m, v)
	if err != nil {
		return 0, err
	}
	e, err := types.ListElem(val, i)
	if err != nil {
		return 0, err
	}
	return s.valueHandle(e), nil
}

// DagOperator returns a borrowed handle to the operator def of a dag.
func (r *Registry) DagOperator(m ModelHandle, v ValueHandle) (RecordHandle, error) {
	s, val, err := r.withValue(m, v)
	if err != nil {
		return 0, err
	}
	op, err := types.DagOperator(val)
	if err != nil {
		return 0, err
	}
	return s.recordHandle(op), nil
}

func (r *Registry) DagNumArgs(m ModelHandle, v ValueHandle) (int, error) {
	_, val, err := r.withValue(m, v)
	if err != nil {
		return 0, err
	}
	return types.DagNumArgs(val)
}

// DagArg returns a borrowed handle to the value of argument i.
func (r *Registry) DagArg(m ModelHandle, v ValueHandle, i int) (ValueHandle, error) {
	s, val, err := r.withValue(m, v)
	if err != nil {
		return 0, err
	}
	a, err := types.DagArgAt(val, i)
	if err != nil {
		return 0, err
	}
	return s.valueHandle(a.Value), nil
}

// DagArgName returns the name of argument i as a borrowed view. ok is false
// when the argument is unnamed.
func (r *Registry) DagArgName(m ModelHandle, v ValueHandle, i int) (name View, ok bool, err error) {
	s, val, err := r.withValue(m, v)
	if err != nil {
		return View{}, false, err
	}
	a, err := types.DagArgAt(val, i)
	if err != nil {
		return View{}, false, err
	}
	if !a.Named() {
		return View{}, false, nil
	}
	return newView(s, a.Name), true, nil
}

// ValueRecord returns a borrowed handle to the def a record value refers to.
func (r *Registry) ValueRecord(m ModelHandle, v ValueHandle) (RecordHandle, error) {
	s, val, err := r.withValue(m, v)
	if err != nil {
		return 0, err
	}
	rec, err := types.AsRecord(val)
	if err != nil {
		return 0, err
	}
	return s.recordHandle(rec), nil
}
