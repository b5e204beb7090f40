package types

// RecordKeeper owns the classes and defs namespaces. It is built once by a
// Builder and never mutated afterwards.
type RecordKeeper struct {
	classes *RecordMap
	defs    *RecordMap
}

// Classes returns the classes namespace.
func (k *RecordKeeper) Classes() *RecordMap { return k.classes }

// Defs returns the defs namespace.
func (k *RecordKeeper) Defs() *RecordMap { return k.defs }

// Class returns the class with the given name.
// Returns ErrNotFound if no such class exists.
func (k *RecordKeeper) Class(name string) (*Record, error) {
	return k.classes.Get(name)
}

// Def returns the def with the given name.
// Returns ErrNotFound if no such def exists.
func (k *RecordKeeper) Def(name string) (*Record, error) {
	return k.defs.Get(name)
}

// AllDerivedDefinitions returns every def that is a subclass of class, in
// the insertion order of the defs namespace. An unknown class matches
// nothing; the result is then empty, never nil.
func (k *RecordKeeper) AllDerivedDefinitions(class string) []*Record {
	out := make([]*Record, 0)
	if _, err := k.classes.Get(class); err != nil {
		return out
	}
	for d := range k.defs.Records() {
		if d.IsSubclassOf(class) {
			out = append(out, d)
		}
	}
	return out
}
