package boundary

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

// session holds the handle tables of one open model.
type session struct {
	id     uuid.UUID
	serial uint16 // stamped into every handle the session issues
	keeper *types.RecordKeeper
	closed atomic.Bool

	mu    sync.Mutex
	slab  []any          // borrowed entities; index is the slot of a handle
	index map[any]uint64 // entity -> borrowed handle
	owned map[uint64]any // live cursors and sequences
	next  int            // slots issued for owned handles
}

func newSession(id uuid.UUID, serial uint16, k *types.RecordKeeper) *session {
	return &session{
		id:     id,
		serial: serial,
		keeper: k,
		index:  make(map[any]uint64),
		owned:  make(map[uint64]any),
	}
}

// intern returns the borrowed handle of e, issuing one on first use. The
// same entity always yields the same handle.
func (s *session) intern(k handleKind, e any) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.index[e]; ok {
		return h
	}
	s.slab = append(s.slab, e)
	h := makeHandle(k, s.serial, len(s.slab)-1)
	s.index[e] = h
	return h
}

func (s *session) borrowed(k handleKind, h uint64) (any, error) {
	n, err := checkHandle(k, s.serial, h)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 0 || n >= len(s.slab) {
		return nil, fmt.Errorf("%s handle %#x: %w", k, h, ErrInvalidHandle)
	}
	return s.slab[n], nil
}

func (s *session) record(h RecordHandle) (*types.Record, error) {
	e, err := s.borrowed(kindRecord, uint64(h))
	if err != nil {
		return nil, err
	}
	return e.(*types.Record), nil
}

func (s *session) field(h FieldHandle) (*types.RecordVal, error) {
	e, err := s.borrowed(kindField, uint64(h))
	if err != nil {
		return nil, err
	}
	return e.(*types.RecordVal), nil
}

func (s *session) value(h ValueHandle) (types.Init, error) {
	e, err := s.borrowed(kindValue, uint64(h))
	if err != nil {
		return nil, err
	}
	return e.(types.Init), nil
}

func (s *session) recordHandle(r *types.Record) RecordHandle {
	return RecordHandle(s.intern(kindRecord, r))
}

func (s *session) fieldHandle(f *types.RecordVal) FieldHandle {
	return FieldHandle(s.intern(kindField, f))
}

func (s *session) valueHandle(v types.Init) ValueHandle {
	return ValueHandle(s.intern(kindValue, v))
}

// own issues a caller-owned handle for e.
func (s *session) own(k handleKind, e any) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := makeHandle(k, s.serial, s.next)
	s.next++
	s.owned[h] = e
	return h
}

func (s *session) lookupOwned(k handleKind, h uint64) (any, error) {
	n, err := checkHandle(k, s.serial, h)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.owned[h]; ok {
		return e, nil
	}
	return nil, s.missing(k, h, n)
}

func (s *session) releaseOwned(k handleKind, h uint64) error {
	n, err := checkHandle(k, s.serial, h)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owned[h]; !ok {
		return s.missing(k, h, n)
	}
	delete(s.owned, h)
	return nil
}

// missing classifies an owned handle absent from the table. Slots below
// next were issued and have since been released.
func (s *session) missing(k handleKind, h uint64, n int) error {
	if n >= 0 && n < s.next {
		return fmt.Errorf("%s handle %#x: %w", k, h, ErrReleased)
	}
	return fmt.Errorf("%s handle %#x: %w", k, h, ErrInvalidHandle)
}

func (s *session) cursor(h CursorHandle) (types.Cursor, error) {
	e, err := s.lookupOwned(kindCursor, uint64(h))
	if err != nil {
		return types.Cursor{}, err
	}
	return e.(types.Cursor), nil
}

func (s *session) seq(h SeqHandle) ([]*types.Record, error) {
	e, err := s.lookupOwned(kindSeq, uint64(h))
	if err != nil {
		return nil, err
	}
	return e.([]*types.Record), nil
}

func (s *session) namespace(ns Namespace) (*types.RecordMap, error) {
	switch ns {
	case Classes:
		return s.keeper.Classes(), nil
	case Defs:
		return s.keeper.Defs(), nil
	}
	return nil, fmt.Errorf("namespace %d: %w", int(ns), ErrInvalidHandle)
}
