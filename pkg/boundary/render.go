package boundary

import (
	"io"

	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

// RenderRecord writes the debug form of the record to w.
func (r *Registry) RenderRecord(m ModelHandle, h RecordHandle, w io.Writer) error {
	_, rec, err := r.withRecord(m, h)
	if err != nil {
		return err
	}
	return types.RenderRecord(w, rec)
}

// RenderValue writes the debug form of the value to w.
func (r *Registry) RenderValue(m ModelHandle, v ValueHandle, w io.Writer) error {
	_, val, err := r.withValue(m, v)
	if err != nil {
		return err
	}
	return types.RenderInit(w, val)
}

// RenderModel writes every class and def of m to w.
func (r *Registry) RenderModel(m ModelHandle, w io.Writer) error {
	s, err := r.session(m)
	if err != nil {
		return err
	}
	return types.RenderKeeper(w, s.keeper)
}
