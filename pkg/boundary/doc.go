// Package boundary exposes a built record model through opaque handles, for
// callers that cannot hold Go pointers across the call boundary.
//
// Ownership follows two rules. Borrowed handles (RecordHandle, FieldHandle,
// ValueHandle) and borrowed Views stay valid while their model is open and
// are never released by the caller. Caller-owned handles (ModelHandle,
// CursorHandle, SeqHandle, BufferHandle) are released exactly once with
// Release, ReleaseCursor, ReleaseSeq or FreeBuffer; a second release
// returns ErrReleased.
//
// Releasing a model invalidates every handle derived from it except
// buffers, which hold copies and outlive the model.
package boundary
