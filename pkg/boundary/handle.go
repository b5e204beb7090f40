package boundary

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Handle errors.
var (
	ErrInvalidHandle   = errors.New("invalid handle")
	ErrReleased        = errors.New("handle already released")
	ErrWrongHandleKind = errors.New("wrong handle kind")
	ErrExhausted       = errors.New("cursor exhausted")
)

// ModelHandle identifies an open model. The caller owns it and must pass it
// to Release exactly once.
type ModelHandle struct {
	id uuid.UUID
}

// String returns the model identifier.
func (m ModelHandle) String() string { return m.id.String() }

// IsZero reports whether m was never issued by a registry.
func (m ModelHandle) IsZero() bool { return m.id == uuid.Nil }

// RecordHandle is a borrowed reference to a class or def.
type RecordHandle uint64

// FieldHandle is a borrowed reference to a field of a record.
type FieldHandle uint64

// ValueHandle is a borrowed reference to a value.
type ValueHandle uint64

// CursorHandle is a caller-owned position in a namespace. Release it with
// ReleaseCursor.
type CursorHandle uint64

// SeqHandle is a caller-owned sequence of defs. Release it with ReleaseSeq.
type SeqHandle uint64

// BufferHandle is a caller-owned byte buffer. Free it with FreeBuffer.
type BufferHandle uint64

// Namespace selects the classes or the defs of a model.
type Namespace int

const (
	Classes Namespace = iota
	Defs
)

func (n Namespace) String() string {
	if n == Classes {
		return "classes"
	}
	return "defs"
}

// handleKind tags the top byte of every session handle so that a handle of
// one kind converted to another is rejected.
type handleKind uint8

const (
	kindRecord handleKind = iota + 1
	kindField
	kindValue
	kindCursor
	kindSeq
)

var handleKindNames = map[handleKind]string{
	kindRecord: "record",
	kindField:  "field",
	kindValue:  "value",
	kindCursor: "cursor",
	kindSeq:    "sequence",
}

func (k handleKind) String() string {
	if s, ok := handleKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("handleKind(%d)", uint8(k))
}

// Handle layout: kind in bits 56-63, the issuing session's serial in bits
// 40-55, slot+1 in bits 0-39.
const (
	tagShift    = 56
	serialShift = 40
	serialMask  = 1<<16 - 1
	idxMask     = 1<<serialShift - 1
)

// makeHandle encodes slot n (counting from 0) of kind k for the session
// with the given serial. Slot 0 encodes to a nonzero value so the zero
// handle is always invalid.
func makeHandle(k handleKind, serial uint16, n int) uint64 {
	return uint64(k)<<tagShift | uint64(serial)<<serialShift | uint64(n+1)
}

func splitHandle(h uint64) (handleKind, uint16, int) {
	return handleKind(h >> tagShift), uint16(h >> serialShift & serialMask), int(h&idxMask) - 1
}

// checkHandle validates the kind and the issuing session of h and returns
// its slot.
func checkHandle(want handleKind, serial uint16, h uint64) (int, error) {
	if h == 0 {
		return 0, fmt.Errorf("zero %s handle: %w", want, ErrInvalidHandle)
	}
	k, sr, n := splitHandle(h)
	if k != want {
		return 0, fmt.Errorf("%s handle used as %s: %w", k, want, ErrWrongHandleKind)
	}
	if sr != serial {
		return 0, fmt.Errorf("%s handle %#x belongs to another model: %w", want, h, ErrInvalidHandle)
	}
	return n, nil
}
