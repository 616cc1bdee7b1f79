package curate

import (
	"errors"
	"fmt"
	"time"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
)

// validBackends is the set of recognized store backends.
var validBackends = map[string]bool{
	BackendSQLite: true,
}

// Store lifecycle errors.
// Implements: prd003-record-store R1, R3.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrStoreExists     = errors.New("store already exists")
	ErrNotFound        = errors.New("not found")
)

// Store configuration errors.
var (
	ErrBackendEmpty   = errors.New("backend is empty")
	ErrUnknownBackend = errors.New("unknown backend")
	ErrDataDirEmpty   = errors.New("data dir is empty")
	ErrModeConflict   = errors.New("overwrite and resume are mutually exclusive")
)

// StoreConfig describes how to attach a record store. Exactly one of
// Overwrite and Resume may be set; with neither, attaching over an
// existing store fails with ErrStoreExists.
// Implements: prd003-record-store R2, R3.
type StoreConfig struct {
	Backend   string // One of the Backend constants.
	DataDir   string // Directory holding the store files.
	Overwrite bool   // Discard an existing store and start fresh.
	Resume    bool   // Load an existing store.
}

// Validate checks the configuration for use.
// Implements: prd003-record-store R2.
func (c StoreConfig) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !validBackends[c.Backend] {
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	if c.DataDir == "" {
		return ErrDataDirEmpty
	}
	if c.Overwrite && c.Resume {
		return ErrModeConflict
	}
	return nil
}

// DatasetInfo is the store's description of the dataset it holds.
// Implements: prd003-record-store R5.
type DatasetInfo struct {
	DatasetID        string    // UUID v7, generated on first save.
	Name             string    // Dataset name (required, non-empty).
	AppendProperties bool      // Append mode the dataset was created with.
	SchemaVersion    int       // Store schema version.
	CreatedAt        time.Time // Timestamp of first save.
}

// RecordStore persists records as curation progresses. Implementations
// follow the attach/detach lifecycle: Attach before use, every other
// method fails with ErrStoreDetached until then, and Detach is
// idempotent.
// Implements: prd003-record-store R1, R6.
type RecordStore interface {
	// Attach connects the store per config. Returns ErrAlreadyAttached
	// on a second attach and ErrStoreExists when the data dir holds a
	// store and config sets neither Overwrite nor Resume.
	Attach(config StoreConfig) error

	// Detach releases store resources. Idempotent.
	Detach() error

	// SaveInfo writes the dataset row, assigning DatasetID and
	// CreatedAt on first save.
	SaveInfo(info DatasetInfo) error

	// LoadInfo reads the dataset row. Returns ErrNotFound when the
	// store has never saved one.
	LoadInfo() (DatasetInfo, error)

	// SaveRecord writes a record and all its properties.
	SaveRecord(rec *Record) error

	// LoadRecord reads a record by name. Returns ErrNotFound when
	// absent.
	LoadRecord(name string) (*Record, error)

	// DeleteRecord removes a record and its properties. Returns
	// ErrNotFound when absent.
	DeleteRecord(name string) error

	// ListRecords returns record names in creation order.
	ListRecords() ([]string, error)
}
