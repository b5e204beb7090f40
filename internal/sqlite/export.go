package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/recordkeeper/internal/ctxlog"
	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

// ErrExport is wrapped by every export failure.
var ErrExport = errors.New("export failed")

// Export writes k to a new SQLite database at path. An existing file at
// path is replaced. Records keep their namespace insertion order in the
// ordinal column; ancestors are listed most distant first.
func Export(ctx context.Context, k *types.RecordKeeper, path string) error {
	logger := ctxlog.FromContext(ctx)

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: removing %s: %w", ErrExport, path, err)
	}

	db, err := Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := createSchema(ctx, db); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning export transaction: %w", ErrExport, err)
	}
	defer tx.Rollback()

	w, err := newWriter(ctx, tx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	defer w.close()

	for _, ns := range []*types.RecordMap{k.Classes(), k.Defs()} {
		ordinal := 0
		for _, r := range ns.All() {
			if err := w.record(ctx, r, ordinal); err != nil {
				return fmt.Errorf("%w: record %q: %w", ErrExport, r.Name(), err)
			}
			ordinal++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing export transaction: %w", ErrExport, err)
	}
	logger.Debug("exported records", "path", path,
		"classes", k.Classes().Len(), "defs", k.Defs().Len())
	return nil
}

// Open opens the database at path.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrExport, path, err)
	}
	return db, nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}

// writer holds the prepared inserts of one export transaction.
type writer struct {
	records   *sql.Stmt
	ancestors *sql.Stmt
	fields    *sql.Stmt
}

func newWriter(ctx context.Context, tx *sql.Tx) (*writer, error) {
	w := &writer{}
	var err error
	if w.records, err = tx.PrepareContext(ctx,
		`INSERT INTO records (record_id, name, is_class, anonymous, ordinal, file, line) VALUES (?, ?, ?, ?, ?, ?, ?)`); err != nil {
		return nil, fmt.Errorf("preparing insert for records: %w", err)
	}
	if w.ancestors, err = tx.PrepareContext(ctx,
		`INSERT INTO ancestors (record_id, class_name, ordinal) VALUES (?, ?, ?)`); err != nil {
		w.close()
		return nil, fmt.Errorf("preparing insert for ancestors: %w", err)
	}
	if w.fields, err = tx.PrepareContext(ctx,
		`INSERT INTO fields (record_id, name, field_type, kind, value, is_set, ordinal) VALUES (?, ?, ?, ?, ?, ?, ?)`); err != nil {
		w.close()
		return nil, fmt.Errorf("preparing insert for fields: %w", err)
	}
	return w, nil
}

func (w *writer) close() {
	for _, stmt := range []*sql.Stmt{w.records, w.ancestors, w.fields} {
		if stmt != nil {
			stmt.Close()
		}
	}
}

func (w *writer) record(ctx context.Context, r *types.Record, ordinal int) error {
	id := generateUUID()

	var file sql.NullString
	var line sql.NullInt64
	if loc := r.Loc(); loc.IsKnown() {
		file = sql.NullString{String: loc.File, Valid: true}
		line = sql.NullInt64{Int64: int64(loc.Line), Valid: true}
	}
	if _, err := w.records.ExecContext(ctx, id, r.Name(), r.IsClass(), r.IsAnonymous(), ordinal, file, line); err != nil {
		return err
	}

	for i, class := range r.Superclasses() {
		if _, err := w.ancestors.ExecContext(ctx, id, class, i); err != nil {
			return fmt.Errorf("ancestor %q: %w", class, err)
		}
	}

	i := 0
	for f := range r.Fields() {
		v := f.Value()
		if _, err := w.fields.ExecContext(ctx, id, f.Name(), f.Type().String(),
			v.Kind().String(), fmt.Sprint(v), f.IsSet(), i); err != nil {
			return fmt.Errorf("field %q: %w", f.Name(), err)
		}
		i++
	}
	return nil
}

// generateUUID generates a new UUID v7 for record IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
