package boundary

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

// MaterializeString copies the text of v into a caller-owned buffer
// terminated by a NUL byte. Returns ErrReleased if v's model is closed.
func (r *Registry) MaterializeString(v View) (BufferHandle, error) {
	if v.sess == nil {
		return 0, fmt.Errorf("zero view: %w", ErrInvalidHandle)
	}
	if !v.Valid() {
		return 0, fmt.Errorf("view of model %s: %w", v.sess.id, ErrReleased)
	}
	buf := make([]byte, len(v.s)+1)
	copy(buf, v.s)
	return r.allocBuffer(buf), nil
}

// MaterializeBits copies a bits value into a caller-owned buffer holding
// one byte, 0 or 1, per bit. Byte 0 is the least significant bit.
func (r *Registry) MaterializeBits(m ModelHandle, v ValueHandle) (BufferHandle, error) {
	_, val, err := r.withValue(m, v)
	if err != nil {
		return 0, err
	}
	bits, err := types.AsBits(val)
	if err != nil {
		return 0, err
	}
	buf := make([]byte, len(bits))
	for i, b := range bits {
		if b {
			buf[i] = 1
		}
	}
	return r.allocBuffer(buf), nil
}

// MaterializeKeys copies the names of a namespace, in insertion order, into
// a caller-owned buffer. Each name is followed by a NUL byte.
func (r *Registry) MaterializeKeys(m ModelHandle, ns Namespace) (BufferHandle, error) {
	s, err := r.session(m)
	if err != nil {
		return 0, err
	}
	rm, err := s.namespace(ns)
	if err != nil {
		return 0, err
	}
	var sb strings.Builder
	for name := range rm.All() {
		sb.WriteString(name)
		sb.WriteByte(0)
	}
	return r.allocBuffer([]byte(sb.String())), nil
}

// Buffer returns the bytes of b. The slice is owned by the registry and
// valid until FreeBuffer(b).
func (r *Registry) Buffer(b BufferHandle) ([]byte, error) {
	r.bufMu.Lock()
	defer r.bufMu.Unlock()
	buf, ok := r.buffers[b]
	if !ok {
		return nil, r.missingBuffer(b)
	}
	return buf, nil
}

// FreeBuffer releases b. Freeing twice returns ErrReleased.
func (r *Registry) FreeBuffer(b BufferHandle) error {
	r.bufMu.Lock()
	defer r.bufMu.Unlock()
	if _, ok := r.buffers[b]; !ok {
		return r.missingBuffer(b)
	}
	delete(r.buffers, b)
	return nil
}

func (r *Registry) allocBuffer(buf []byte) BufferHandle {
	r.bufMu.Lock()
	defer r.bufMu.Unlock()
	r.nextBuf++
	r.buffers[r.nextBuf] = buf
	return r.nextBuf
}

// missingBuffer must be called with bufMu held.
func (r *Registry) missingBuffer(b BufferHandle) error {
	if b > 0 && b <= r.nextBuf {
		return fmt.Errorf("buffer %d: %w", uint64(b), ErrReleased)
	}
	return fmt.Errorf("buffer %d: %w", uint64(b), ErrInvalidHandle)
}
