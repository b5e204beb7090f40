// Package sqlite exports a record model to a SQLite database so that it can
// be inspected with SQL.
package sqlite

// Schema DDL for all tables.
const (
	createRecords = `CREATE TABLE records (
    record_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    is_class INTEGER NOT NULL,
    anonymous INTEGER NOT NULL,
    ordinal INTEGER NOT NULL,
    file TEXT,
    line INTEGER,
    UNIQUE (is_class, name)
);`

	createAncestors = `CREATE TABLE ancestors (
    record_id TEXT NOT NULL,
    class_name TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    PRIMARY KEY (record_id, class_name),
    FOREIGN KEY (record_id) REFERENCES records(record_id)
);`

	createFields = `CREATE TABLE fields (
    record_id TEXT NOT NULL,
    name TEXT NOT NULL,
    field_type TEXT NOT NULL,
    kind TEXT NOT NULL,
    value TEXT NOT NULL,
    is_set INTEGER NOT NULL,
    ordinal INTEGER NOT NULL,
    PRIMARY KEY (record_id, name),
    FOREIGN KEY (record_id) REFERENCES records(record_id)
);`
)

// Index DDL for common queries.
const (
	idxRecordsOrdinal  = `CREATE INDEX idx_records_ordinal ON records(is_class, ordinal);`
	idxAncestorsClass  = `CREATE INDEX idx_ancestors_class ON ancestors(class_name);`
	idxFieldsName      = `CREATE INDEX idx_fields_name ON fields(name);`
	idxFieldsKindValue = `CREATE INDEX idx_fields_kind_value ON fields(kind, value);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createRecords,
	createAncestors,
	createFields,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxRecordsOrdinal,
	idxAncestorsClass,
	idxFieldsName,
	idxFieldsKindValue,
}
