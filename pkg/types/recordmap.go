package types

import (
	"iter"
	"slices"

	"github.com/speakeasy-api/openapi/sequencedmap"
)

// RecordMap is a namespace of records keyed by name. Iteration follows
// insertion order.
type RecordMap struct {
	what string // "class" or "def", for error messages
	recs *sequencedmap.Map[string, *Record]
}

func newRecordMap(what string) *RecordMap {
	return &RecordMap{what: what, recs: sequencedmap.New[string, *Record]()}
}

func (m *RecordMap) add(r *Record) error {
	if m.recs.Has(r.name) {
		return &SourceError{Loc: r.loc, Err: duplicate(m.what, r.name)}
	}
	m.recs.Set(r.name, r)
	return nil
}

// Get returns the record with the given name.
// Returns ErrNotFound if the namespace has no such record.
func (m *RecordMap) Get(name string) (*Record, error) {
	r, ok := m.recs.Get(name)
	if !ok {
		return nil, notFound(m.what, name)
	}
	return r, nil
}

// Len returns the number of records.
func (m *RecordMap) Len() int { return m.recs.Len() }

// Keys returns the record names in insertion order.
func (m *RecordMap) Keys() []string {
	return slices.AppendSeq(make([]string, 0, m.recs.Len()), m.recs.Keys())
}

// All yields every (name, record) pair in insertion order.
func (m *RecordMap) All() iter.Seq2[string, *Record] {
	return m.recs.All()
}

// Records yields every record in insertion order.
func (m *RecordMap) Records() iter.Seq[*Record] {
	return m.recs.Values()
}

// First returns a cursor at the first record, or an exhausted cursor when
// the namespace is empty.
func (m *RecordMap) First() Cursor {
	return Cursor{m: m}
}

// at returns the element at position i, or nil past the end.
func (m *RecordMap) at(i int) *sequencedmap.Element[string, *Record] {
	return m.recs.At(i)
}
