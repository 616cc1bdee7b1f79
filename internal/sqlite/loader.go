// JSONL loading for attach.
// Implements: prd003-record-store R4.1 (rebuild on attach), R4.3 (malformed lines).
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
)

// loadAllJSONL reads the JSONL mirrors from DataDir and inserts their
// rows into the freshly created SQLite tables. Loading is transactional:
// all files load or the database stays empty. Malformed lines and rows
// that violate constraints are skipped with a warning; the mirrors are
// rewritten from SQLite on the next save, which drops them for good.
func (b *Backend) loadAllJSONL() error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	if err := b.loadDataset(tx); err != nil {
		return err
	}
	if err := b.loadRecords(tx); err != nil {
		return err
	}
	if err := b.loadProperties(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// readMirror reads one mirror file and logs skipped lines.
func (b *Backend) readMirror(name string) ([]json.RawMessage, error) {
	rows, skipped, err := readJSONL(filepath.Join(b.config.DataDir, name))
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		b.logger.Warn("skipped malformed lines", "file", name, "lines", skipped)
	}
	return rows, nil
}

func (b *Backend) loadDataset(tx *sql.Tx) error {
	rows, err := b.readMirror(datasetFile)
	if err != nil {
		return err
	}
	for _, raw := range rows {
		var rec datasetJSON
		if err := json.Unmarshal(raw, &rec); err != nil {
			b.logger.Warn("skipped unreadable row", "file", datasetFile, "error", err)
			continue
		}
		_, err := tx.Exec(
			"INSERT INTO dataset (dataset_id, name, append_properties, schema_version, created_at) VALUES (?, ?, ?, ?, ?)",
			rec.DatasetID, rec.Name, rec.AppendProperties, rec.SchemaVersion, rec.CreatedAt,
		)
		if err != nil {
			b.logger.Warn("skipped conflicting row", "file", datasetFile, "error", err)
		}
	}
	return nil
}

func (b *Backend) loadRecords(tx *sql.Tx) error {
	rows, err := b.readMirror(recordsFile)
	if err != nil {
		return err
	}
	for _, raw := range rows {
		var rec recordJSON
		if err := json.Unmarshal(raw, &rec); err != nil {
			b.logger.Warn("skipped unreadable row", "file", recordsFile, "error", err)
			continue
		}
		_, err := tx.Exec(
			"INSERT INTO records (record_name, append_properties, created_at, updated_at) VALUES (?, ?, ?, ?)",
			rec.RecordName, rec.AppendProperties, rec.CreatedAt, rec.UpdatedAt,
		)
		if err != nil {
			b.logger.Warn("skipped conflicting row", "file", recordsFile, "record", rec.RecordName, "error", err)
		}
	}
	return nil
}

func (b *Backend) loadProperties(tx *sql.Tx) error {
	rows, err := b.readMirror(propertiesFile)
	if err != nil {
		return err
	}
	for _, raw := range rows {
		var rec recordPropertyJSON
		if err := json.Unmarshal(raw, &rec); err != nil {
			b.logger.Warn("skipped unreadable row", "file", propertiesFile, "error", err)
			continue
		}
		var shape any
		if rec.Shape != nil {
			data, err := json.Marshal(rec.Shape)
			if err != nil {
				b.logger.Warn("skipped unreadable row", "file", propertiesFile, "property", rec.Name, "error", err)
				continue
			}
			shape = string(data)
		}
		_, err := tx.Exec(
			`INSERT INTO record_properties
    (record_name, name, kind_name, property_type, classification, components, units, shape, payload, updated_at)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.RecordName, rec.Name, rec.KindName, rec.PropertyType, rec.Classification,
			rec.Components, rec.Units, shape, string(rec.Payload), rec.UpdatedAt,
		)
		if err != nil {
			b.logger.Warn("skipped conflicting row", "file", propertiesFile,
				"record", rec.RecordName, "property", rec.Name, "error", err)
		}
	}
	return nil
}
