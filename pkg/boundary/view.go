package boundary

// View is a borrowed string owned by an open model. It needs no release.
type View struct {
	s    string
	sess *session
}

func newView(s *session, str string) View {
	return View{s: str, sess: s}
}

// Valid reports whether the model that produced the view is still open.
func (v View) Valid() bool {
	return v.sess != nil && !v.sess.closed.Load()
}

// String returns the text of the view, or "" once the model is released.
func (v View) String() string {
	if !v.Valid() {
		return ""
	}
	return v.s
}

// Len returns the length of the view in bytes, or 0 once the model is
// released.
func (v View) Len() int { return len(v.String()) }
