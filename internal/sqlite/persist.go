// JSONL mirror persistence, reading rows back out of SQLite.
// Implements: prd003-record-store R4.2.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
)

// persistDatasetJSONL rewrites dataset.jsonl from the dataset table.
func (b *Backend) persistDatasetJSONL() error {
	rows, err := b.db.Query(
		"SELECT dataset_id, name, append_properties, schema_version, created_at FROM dataset",
	)
	if err != nil {
		return fmt.Errorf("querying dataset for JSONL: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var rec datasetJSON
		if err := rows.Scan(&rec.DatasetID, &rec.Name, &rec.AppendProperties,
			&rec.SchemaVersion, &rec.CreatedAt); err != nil {
			return fmt.Errorf("scanning dataset row for JSONL: %w", err)
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling dataset row for JSONL: %w", err)
		}
		records = append(records, data)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating dataset for JSONL: %w", err)
	}

	return writeJSONL(filepath.Join(b.config.DataDir, datasetFile), records)
}

// persistRecordsJSONL rewrites records.jsonl from the records table in
// creation order.
func (b *Backend) persistRecordsJSONL() error {
	rows, err := b.db.Query(
		"SELECT record_name, append_properties, created_at, updated_at FROM records ORDER BY created_at ASC, record_name ASC",
	)
	if err != nil {
		return fmt.Errorf("querying records for JSONL: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var rec recordJSON
		if err := rows.Scan(&rec.RecordName, &rec.AppendProperties,
			&rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return fmt.Errorf("scanning record row for JSONL: %w", err)
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling record row for JSONL: %w", err)
		}
		records = append(records, data)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating records for JSONL: %w", err)
	}

	return writeJSONL(filepath.Join(b.config.DataDir, recordsFile), records)
}

// persistPropertiesJSONL rewrites record_properties.jsonl from the
// record_properties table, ordered by record then property name.
func (b *Backend) persistPropertiesJSONL() error {
	rows, err := b.db.Query(
		`SELECT record_name, name, kind_name, property_type, classification, components, units, shape, payload, updated_at
    FROM record_properties ORDER BY record_name ASC, name ASC`,
	)
	if err != nil {
		return fmt.Errorf("querying properties for JSONL: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var rec recordPropertyJSON
		var shape sql.NullString
		var payload string
		if err := rows.Scan(&rec.RecordName, &rec.Name, &rec.KindName, &rec.PropertyType,
			&rec.Classification, &rec.Components, &rec.Units, &shape, &payload,
			&rec.UpdatedAt); err != nil {
			return fmt.Errorf("scanning property row for JSONL: %w", err)
		}
		if shape.Valid {
			if err := json.Unmarshal([]byte(shape.String), &rec.Shape); err != nil {
				return fmt.Errorf("parsing shape of %q for JSONL: %w", rec.Name, err)
			}
		}
		rec.Payload = json.RawMessage(payload)
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling property row for JSONL: %w", err)
		}
		records = append(records, data)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating properties for JSONL: %w", err)
	}

	return writeJSONL(filepath.Join(b.config.DataDir, propertiesFile), records)
}
