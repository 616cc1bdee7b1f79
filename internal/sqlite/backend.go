// Package sqlite implements the SQLite record store for dataset
// curation. The JSONL mirror files are the source of truth; the SQLite
// database is a disposable query engine rebuilt from the mirrors on
// every attach.
// Implements: prd003-record-store R1-R8.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/benchtop/beaker/pkg/array"
	"github.com/benchtop/beaker/pkg/curate"
	"github.com/benchtop/beaker/pkg/units"
)

// schemaVersion is the store generation written to new dataset rows.
const schemaVersion = 1

// dbFile is the rebuilt SQLite database inside DataDir.
const dbFile = "beaker.db"

// timeLayout is RFC 3339 with fixed-width nanoseconds. Trailing zeros
// stay in place so lexicographic order on the stored text matches
// chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Compile-time interface check: Backend must implement RecordStore.
var _ curate.RecordStore = (*Backend)(nil)

// Backend implements the RecordStore interface using SQLite as the
// query engine and JSONL files as the source of truth.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   curate.StoreConfig
	logger   *slog.Logger
	db       *sql.DB
}

// NewBackend creates a new SQLite backend instance. The backend is not
// attached; call Attach with a StoreConfig to initialize.
func NewBackend() *Backend {
	return &Backend{logger: slog.Default()}
}

// SetLogger replaces the backend's logger. Nil restores slog.Default().
func (b *Backend) SetLogger(logger *slog.Logger) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if logger == nil {
		logger = slog.Default()
	}
	b.logger = logger
}

// Attach initializes the backend with the given configuration. Creates
// DataDir if it does not exist, resolves the Overwrite/Resume mode
// against any store already in it, initializes the SQLite schema, and
// loads the JSONL mirrors.
// Returns ErrAlreadyAttached if already attached and ErrStoreExists
// when the directory holds a store and neither mode flag is set.
// Implements: prd003-record-store R1, R3.
func (b *Backend) Attach(config curate.StoreConfig) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return curate.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(config.DataDir, 0755); err != nil {
		return err
	}

	if mirrorsPresent(config.DataDir) {
		switch {
		case config.Overwrite:
			if err := removeMirrors(config.DataDir); err != nil {
				return err
			}
		case config.Resume:
			// Keep the mirrors; they load below.
		default:
			return fmt.Errorf("%w: %s", curate.ErrStoreExists, config.DataDir)
		}
	}

	// Remove any existing database file; the schema is rebuilt from
	// scratch and repopulated from the mirrors.
	dbPath := filepath.Join(config.DataDir, dbFile)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}

	for _, ddl := range append(append([]string{}, schemaDDL...), indexDDL...) {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	if err := initMirrors(config.DataDir); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = config

	if err := b.loadAllJSONL(); err != nil {
		db.Close()
		b.db = nil
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.attached = true
	return nil
}

// Detach releases all resources held by the backend. After Detach, all
// operations return ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil // idempotent
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	return nil
}

// SaveInfo writes the dataset row. The first save assigns a UUID v7
// dataset ID and the creation timestamp; later saves keep both and
// update the rest.
// Implements: prd003-record-store R5.
func (b *Backend) SaveInfo(info curate.DatasetInfo) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return curate.ErrStoreDetached
	}
	if info.Name == "" {
		return fmt.Errorf("%w: dataset name is empty", curate.ErrInvalidName)
	}

	version := info.SchemaVersion
	if version == 0 {
		version = schemaVersion
	}

	var existingID, existingCreated string
	err := b.db.QueryRow("SELECT dataset_id, created_at FROM dataset LIMIT 1").
		Scan(&existingID, &existingCreated)
	switch {
	case err == sql.ErrNoRows:
		created := time.Now().UTC().Format(timeLayout)
		_, err = b.db.Exec(
			"INSERT INTO dataset (dataset_id, name, append_properties, schema_version, created_at) VALUES (?, ?, ?, ?, ?)",
			generateUUID(), info.Name, info.AppendProperties, version, created,
		)
		if err != nil {
			return fmt.Errorf("inserting dataset row: %w", err)
		}
	case err != nil:
		return fmt.Errorf("checking dataset row: %w", err)
	default:
		_, err = b.db.Exec(
			"UPDATE dataset SET name = ?, append_properties = ?, schema_version = ? WHERE dataset_id = ?",
			info.Name, info.AppendProperties, version, existingID,
		)
		if err != nil {
			return fmt.Errorf("updating dataset row: %w", err)
		}
	}

	return b.persistDatasetJSONL()
}

// LoadInfo reads the dataset row. Returns ErrNotFound when the store
// has never saved one.
func (b *Backend) LoadInfo() (curate.DatasetInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return curate.DatasetInfo{}, curate.ErrStoreDetached
	}

	var info curate.DatasetInfo
	var created string
	err := b.db.QueryRow(
		"SELECT dataset_id, name, append_properties, schema_version, created_at FROM dataset LIMIT 1",
	).Scan(&info.DatasetID, &info.Name, &info.AppendProperties, &info.SchemaVersion, &created)
	if err == sql.ErrNoRows {
		return curate.DatasetInfo{}, fmt.Errorf("%w: dataset info", curate.ErrNotFound)
	}
	if err != nil {
		return curate.DatasetInfo{}, fmt.Errorf("loading dataset row: %w", err)
	}

	info.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return curate.DatasetInfo{}, fmt.Errorf("parsing created_at: %w", err)
	}
	return info, nil
}

// SaveRecord writes a record and all its properties, replacing any
// previous rows for the same record name. The record row keeps the
// created_at of its first save.
// Implements: prd003-record-store R6.
func (b *Backend) SaveRecord(rec *curate.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return curate.ErrStoreDetached
	}
	if rec == nil {
		return fmt.Errorf("%w: nil record", curate.ErrInvalidPayload)
	}

	now := time.Now().UTC().Format(timeLayout)

	var createdAt string
	err := b.db.QueryRow("SELECT created_at FROM records WHERE record_name = ?", rec.Name()).
		Scan(&createdAt)
	exists := err == nil
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("checking record %q: %w", rec.Name(), err)
	}
	if !exists {
		createdAt = now
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if exists {
		_, err = tx.Exec(
			"UPDATE records SET append_properties = ?, updated_at = ? WHERE record_name = ?",
			rec.AppendMode(), now, rec.Name(),
		)
	} else {
		_, err = tx.Exec(
			"INSERT INTO records (record_name, append_properties, created_at, updated_at) VALUES (?, ?, ?, ?)",
			rec.Name(), rec.AppendMode(), createdAt, now,
		)
	}
	if err != nil {
		return fmt.Errorf("persisting record %q: %w", rec.Name(), err)
	}

	// Replace the property rows wholesale; merged arrays are stored as
	// a unit, not as deltas.
	if _, err := tx.Exec("DELETE FROM record_properties WHERE record_name = ?", rec.Name()); err != nil {
		return fmt.Errorf("clearing properties of %q: %w", rec.Name(), err)
	}
	for _, p := range rec.Properties() {
		row, err := propertyRow(rec.Name(), p, now)
		if err != nil {
			return err
		}
		var shape any
		if row.Shape != nil {
			data, err := json.Marshal(row.Shape)
			if err != nil {
				return fmt.Errorf("marshaling shape of %q: %w", p.Name(), err)
			}
			shape = string(data)
		}
		_, err = tx.Exec(
			`INSERT INTO record_properties
    (record_name, name, kind_name, property_type, classification, components, units, shape, payload, updated_at)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			row.RecordName, row.Name, row.KindName, row.PropertyType, row.Classification,
			row.Components, row.Units, shape, string(row.Payload), row.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("persisting property %q of %q: %w", p.Name(), rec.Name(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing record %q: %w", rec.Name(), err)
	}

	if err := b.persistRecordsJSONL(); err != nil {
		return err
	}
	return b.persistPropertiesJSONL()
}

// LoadRecord reads a record by name and rebuilds it property by
// property. Returns ErrNotFound when absent.
// Implements: prd003-record-store R6, R7.
func (b *Backend) LoadRecord(name string) (*curate.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, curate.ErrStoreDetached
	}

	var appendMode bool
	err := b.db.QueryRow("SELECT append_properties FROM records WHERE record_name = ?", name).
		Scan(&appendMode)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: record %q", curate.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("loading record %q: %w", name, err)
	}

	rows, err := b.db.Query(
		`SELECT name, kind_name, property_type, classification, components, units, shape, payload
    FROM record_properties WHERE record_name = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("querying properties of %q: %w", name, err)
	}
	defer rows.Close()

	var props []propertyColumns
	for rows.Next() {
		var pc propertyColumns
		if err := rows.Scan(&pc.name, &pc.kindName, &pc.propertyType, &pc.classification,
			&pc.components, &pc.units, &pc.shape, &pc.payload); err != nil {
			return nil, fmt.Errorf("scanning property of %q: %w", name, err)
		}
		props = append(props, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating properties of %q: %w", name, err)
	}

	// Rebuild in classification order so the atomic numbers are in
	// place before any per-atom array is checked against them.
	sort.SliceStable(props, func(i, j int) bool {
		ri, rj := classRank[props[i].classification], classRank[props[j].classification]
		if ri != rj {
			return ri < rj
		}
		return props[i].name < props[j].name
	})

	rec, err := curate.NewRecord(name, appendMode)
	if err != nil {
		return nil, err
	}
	rec.SetLogger(b.logger)
	for _, pc := range props {
		p, err := rebuildProperty(pc)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", name, err)
		}
		if err := rec.AddProperty(p); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// DeleteRecord removes a record and its properties. Returns ErrNotFound
// when absent.
func (b *Backend) DeleteRecord(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return curate.ErrStoreDetached
	}

	var exists int
	err := b.db.QueryRow("SELECT 1 FROM records WHERE record_name = ?", name).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: record %q", curate.ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("checking record %q: %w", name, err)
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM record_properties WHERE record_name = ?", name); err != nil {
		return fmt.Errorf("deleting properties of %q: %w", name, err)
	}
	if _, err := tx.Exec("DELETE FROM records WHERE record_name = ?", name); err != nil {
		return fmt.Errorf("deleting record %q: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing deletion of %q: %w", name, err)
	}

	if err := b.persistRecordsJSONL(); err != nil {
		return err
	}
	return b.persistPropertiesJSONL()
}

// ListRecords returns record names ordered by creation time, with the
// name as tiebreak.
func (b *Backend) ListRecords() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, curate.ErrStoreDetached
	}

	rows, err := b.db.Query("SELECT record_name FROM records ORDER BY created_at ASC, record_name ASC")
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning record name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating record names: %w", err)
	}
	return names, nil
}

// classRank orders classifications the way records rebuild.
var classRank = map[curate.Classification]int{
	curate.ClassAtomicNumbers: 0,
	curate.ClassPerAtom:       1,
	curate.ClassPerSystem:     2,
	curate.ClassMetaData:      3,
}

// propertyColumns holds one record_properties row as scanned.
type propertyColumns struct {
	name           string
	kindName       string
	propertyType   string
	classification curate.Classification
	components     int
	units          string
	shape          sql.NullString
	payload        string
}

// propertyRow flattens a property into its record_properties columns.
func propertyRow(record string, p *curate.Property, now string) (recordPropertyJSON, error) {
	kind := p.Kind()
	row := recordPropertyJSON{
		RecordName:     record,
		Name:           p.Name(),
		KindName:       kind.Name,
		PropertyType:   string(kind.Type),
		Classification: string(kind.Classification),
		Components:     kind.Components,
		Units:          p.Units().Name(),
		UpdatedAt:      now,
	}
	if p.IsMetaData() {
		payload, err := json.Marshal(p.Meta())
		if err != nil {
			return row, fmt.Errorf("marshaling metadata %q: %w", p.Name(), err)
		}
		row.Payload = payload
		return row, nil
	}
	row.Shape = p.Array().Shape()
	payload, err := json.Marshal(p.Array().Data())
	if err != nil {
		return row, fmt.Errorf("marshaling payload of %q: %w", p.Name(), err)
	}
	row.Payload = payload
	return row, nil
}

// rebuildProperty turns one scanned row back into a property.
func rebuildProperty(pc propertyColumns) (*curate.Property, error) {
	if pc.classification == curate.ClassMetaData {
		var value any
		if err := json.Unmarshal([]byte(pc.payload), &value); err != nil {
			return nil, fmt.Errorf("parsing metadata %q: %w", pc.name, err)
		}
		return curate.NewMetaData(pc.name, value)
	}

	unit, err := units.Parse(pc.units)
	if err != nil {
		return nil, fmt.Errorf("property %q: %w", pc.name, err)
	}
	if !pc.shape.Valid {
		return nil, fmt.Errorf("property %q: %w: missing shape", pc.name, curate.ErrInvalidPayload)
	}
	var shape []int
	if err := json.Unmarshal([]byte(pc.shape.String), &shape); err != nil {
		return nil, fmt.Errorf("parsing shape of %q: %w", pc.name, err)
	}
	var values []float64
	if err := json.Unmarshal([]byte(pc.payload), &values); err != nil {
		return nil, fmt.Errorf("parsing payload of %q: %w", pc.name, err)
	}
	arr, err := array.FromSlice(values, shape...)
	if err != nil {
		return nil, fmt.Errorf("property %q: %w", pc.name, err)
	}

	kind := curate.Kind{
		Name:           pc.kindName,
		Type:           curate.PropertyType(pc.propertyType),
		Classification: pc.classification,
		Components:     pc.components,
	}
	p, err := curate.New(kind, arr, unit)
	if err != nil {
		return nil, err
	}
	if err := p.SetName(pc.name); err != nil {
		return nil, err
	}
	return p, nil
}

// generateUUID generates a new UUID v7 for dataset IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
