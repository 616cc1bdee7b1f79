// Schema DDL for the record store tables.
// Implements: prd003-record-store R4.
package sqlite

const (
	createDataset = `CREATE TABLE dataset (
    dataset_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    append_properties INTEGER NOT NULL,
    schema_version INTEGER NOT NULL,
    created_at TEXT NOT NULL
);`

	createRecords = `CREATE TABLE records (
    record_name TEXT PRIMARY KEY,
    append_properties INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createRecordProperties = `CREATE TABLE record_properties (
    record_name TEXT NOT NULL,
    name TEXT NOT NULL,
    kind_name TEXT NOT NULL,
    property_type TEXT NOT NULL,
    classification TEXT NOT NULL,
    components INTEGER NOT NULL,
    units TEXT NOT NULL,
    shape TEXT,
    payload TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (record_name, name),
    FOREIGN KEY (record_name) REFERENCES records(record_name) ON DELETE CASCADE
);`
)

// Index DDL for common queries.
const (
	idxRecordsCreated        = `CREATE INDEX idx_records_created ON records(created_at);`
	idxRecordPropertiesName  = `CREATE INDEX idx_record_properties_record ON record_properties(record_name);`
	idxRecordPropertiesClass = `CREATE INDEX idx_record_properties_class ON record_properties(classification);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createDataset,
	createRecords,
	createRecordProperties,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxRecordsCreated,
	idxRecordPropertiesName,
	idxRecordPropertiesClass,
}
