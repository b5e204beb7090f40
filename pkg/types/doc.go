// Package types defines the record model: values (Init), fields (RecordVal),
// records, the insertion-ordered namespace maps, cursors over them, and the
// RecordKeeper that owns both namespaces.
//
// A RecordKeeper is populated once through a Builder and is immutable after
// Build returns. Every *Record, *RecordVal and Init reachable from it is
// borrowed from the keeper; readers on any number of goroutines may query a
// built keeper without locking.
package types
