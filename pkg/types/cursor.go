package types

// Cursor is a position in a RecordMap. Cursors are values: copying one
// clones it, and Advance returns a new cursor instead of moving the
// receiver. The zero Cursor is exhausted.
type Cursor struct {
	m   *RecordMap
	pos int
}

// Exhausted reports whether the cursor has moved past the last record.
func (c Cursor) Exhausted() bool {
	return c.m == nil || c.pos >= c.m.Len()
}

// Advance returns a cursor at the next record. Advancing an exhausted
// cursor returns an exhausted cursor.
func (c Cursor) Advance() Cursor {
	if c.Exhausted() {
		return c
	}
	return Cursor{m: c.m, pos: c.pos + 1}
}

// Clone returns an independent copy of the cursor.
func (c Cursor) Clone() Cursor { return c }

// Name returns the name at the cursor, or "" when exhausted.
func (c Cursor) Name() string {
	if c.Exhausted() {
		return ""
	}
	return c.m.at(c.pos).Key
}

// Record returns the record at the cursor, or nil when exhausted.
func (c Cursor) Record() *Record {
	if c.Exhausted() {
		return nil
	}
	return c.m.at(c.pos).Value
}
