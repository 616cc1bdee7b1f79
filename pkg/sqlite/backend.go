// Package sqlite provides the public API for the SQLite record store.
// This package exposes the factory function for creating SQLite
// backends while keeping implementation details internal.
//
// Implements: prd003-record-store R1 (backend factory).
package sqlite

import (
	"github.com/benchtop/beaker/internal/sqlite"
	"github.com/benchtop/beaker/pkg/curate"
)

// NewBackend creates a new SQLite record store instance.
// The store is not attached; call Attach with a StoreConfig to
// initialize.
//
// Example:
//
//	store := sqlite.NewBackend()
//	err := store.Attach(curate.StoreConfig{
//	    Backend: curate.BackendSQLite,
//	    DataDir: ".beaker-db",
//	    Resume:  true,
//	})
//	defer store.Detach()
func NewBackend() curate.RecordStore {
	return sqlite.NewBackend()
}
