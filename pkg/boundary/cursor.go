package boundary

import (
	"fmt"

	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

// FirstClass returns a caller-owned cursor at the first class of m. The
// cursor is exhausted when m has no classes.
func (r *Registry) FirstClass(m ModelHandle) (CursorHandle, error) {
	return r.first(m, Classes)
}

// FirstDef returns a caller-owned cursor at the first def of m.
func (r *Registry) FirstDef(m ModelHandle) (CursorHandle, error) {
	return r.first(m, Defs)
}

func (r *Registry) first(m ModelHandle, ns Namespace) (CursorHandle, error) {
	s, err := r.session(m)
	if err != nil {
		return 0, err
	}
	rm, err := s.namespace(ns)
	if err != nil {
		return 0, err
	}
	return CursorHandle(s.own(kindCursor, rm.First())), nil
}

// Advance returns a new caller-owned cursor one position past c. The
// cursor c is left where it was and still needs its own release.
func (r *Registry) Advance(m ModelHandle, c CursorHandle) (CursorHandle, error) {
	s, err := r.session(m)
	if err != nil {
		return 0, err
	}
	cur, err := s.cursor(c)
	if err != nil {
		return 0, err
	}
	return CursorHandle(s.own(kindCursor, cur.Advance())), nil
}

// CloneCursor returns a caller-owned copy of c at the same position.
func (r *Registry) CloneCursor(m ModelHandle, c CursorHandle) (CursorHandle, error) {
	s, err := r.session(m)
	if err != nil {
		return 0, err
	}
	cur, err := s.cursor(c)
	if err != nil {
		return 0, err
	}
	return CursorHandle(s.own(kindCursor, cur.Clone())), nil
}

// CursorExhausted reports whether c has moved past the last record.
func (r *Registry) CursorExhausted(m ModelHandle, c CursorHandle) (bool, error) {
	s, err := r.session(m)
	if err != nil {
		return false, err
	}
	cur, err := s.cursor(c)
	if err != nil {
		return false, err
	}
	return cur.Exhausted(), nil
}

// CursorName returns the name at c as a borrowed view.
// Returns ErrExhausted if c is exhausted.
func (r *Registry) CursorName(m ModelHandle, c CursorHandle) (View, error) {
	s, cur, err := r.liveCursor(m, c)
	if err != nil {
		return View{}, err
	}
	return newView(s, cur.Name()), nil
}

// CursorRecord returns the record at c as a borrowed handle.
// Returns ErrExhausted if c is exhausted.
func (r *Registry) CursorRecord(m ModelHandle, c CursorHandle) (RecordHandle, error) {
	s, cur, err := r.liveCursor(m, c)
	if err != nil {
		return 0, err
	}
	return s.recordHandle(cur.Record()), nil
}

// ReleaseCursor releases c. Releasing twice returns ErrReleased.
func (r *Registry) ReleaseCursor(m ModelHandle, c CursorHandle) error {
	s, err := r.session(m)
	if err != nil {
		return err
	}
	return s.releaseOwned(kindCursor, uint64(c))
}

func (r *Registry) liveCursor(m ModelHandle, c CursorHandle) (*session, types.Cursor, error) {
	s, err := r.session(m)
	if err != nil {
		return nil, types.Cursor{}, err
	}
	cur, err := s.cursor(c)
	if err != nil {
		return nil, types.Cursor{}, err
	}
	if cur.Exhausted() {
		return nil, types.Cursor{}, fmt.Errorf("cursor %#x: %w", uint64(c), ErrExhausted)
	}
	return s, cur, nil
}
