// Package sqlite provides the public API for exporting a record model to a
// SQLite database, keeping the schema and query details internal.
package sqlite

import (
	"context"

	"github.com/mesh-intelligence/recordkeeper/internal/sqlite"
	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

// ErrExport is wrapped by every export failure.
var ErrExport = sqlite.ErrExport

// Export writes k to a new SQLite database at path, replacing any existing
// file.
//
// Example:
//
//	if err := sqlite.Export(ctx, keeper, "model.db"); err != nil {
//	    return err
//	}
func Export(ctx context.Context, k *types.RecordKeeper, path string) error {
	return sqlite.Export(ctx, k, path)
}

// DerivedNames opens the database at path and returns the names of the defs
// deriving from class, in definition order.
func DerivedNames(ctx context.Context, path, class string) ([]string, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return sqlite.DerivedNames(ctx, db, class)
}
