package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

const derivedNamesSQL = `SELECT r.name
FROM records r
JOIN ancestors a ON a.record_id = r.record_id
WHERE r.is_class = 0 AND a.class_name = ?
ORDER BY r.ordinal`

// DerivedNames returns the names of the defs deriving from class, in
// definition order. An unknown class yields an empty slice.
func DerivedNames(ctx context.Context, db *sql.DB, class string) ([]string, error) {
	rows, err := db.QueryContext(ctx, derivedNamesSQL, class)
	if err != nil {
		return nil, fmt.Errorf("querying defs derived from %q: %w", class, err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning def name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating derived defs: %w", err)
	}
	return names, nil
}

// FieldValue returns the rendered value of a field of the named def.
// Returns sql.ErrNoRows if the def or the field does not exist.
func FieldValue(ctx context.Context, db *sql.DB, def, field string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT f.value
FROM fields f
JOIN records r ON r.record_id = f.record_id
WHERE r.is_class = 0 AND r.name = ? AND f.name = ?`, def, field).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("field %s.%s: %w", def, field, err)
	}
	return value, nil
}

// Counts returns the number of classes and defs in the database.
func Counts(ctx context.Context, db *sql.DB) (classes, defs int, err error) {
	err = db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(is_class), 0), COUNT(*) - COALESCE(SUM(is_class), 0) FROM records`).
		Scan(&classes, &defs)
	if err != nil {
		return 0, 0, fmt.Errorf("counting records: %w", err)
	}
	return classes, defs, nil
}
