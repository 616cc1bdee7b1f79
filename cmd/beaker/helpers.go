// Shared helpers for beaker CLI commands.
// Implements: prd004-curation-cli R2, R3.
package main

import (
	"errors"
	"fmt"

	"github.com/benchtop/beaker/internal/sqlite"
	"github.com/benchtop/beaker/pkg/curate"
)

// attachStore resolves the data directory, creates a SQLite record
// store, and attaches it in resume mode. The caller must defer
// store.Detach().
func attachStore() (*sqlite.Backend, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := curate.StoreConfig{
		Backend: curate.BackendSQLite,
		DataDir: dataDir,
		Resume:  true,
	}

	store := sqlite.NewBackend()
	if err := store.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}

	return store, nil
}

// loadDataset attaches the store and loads the dataset from it. The
// caller must defer ds.Close(). A store without a dataset row reports
// curate.ErrNotFound.
func loadDataset() (*curate.SourceDataset, error) {
	store, err := attachStore()
	if err != nil {
		return nil, err
	}

	ds, err := curate.LoadDataset(store, nil)
	if err != nil {
		store.Detach()
		return nil, err
	}
	return ds, nil
}

// isNotFound reports whether the error wraps curate.ErrNotFound.
func isNotFound(err error) bool {
	return errors.Is(err, curate.ErrNotFound)
}

// noDatasetHint renders the standard message for commands that need an
// initialized dataset.
func noDatasetHint() string {
	dataDir, err := resolveDataDir()
	if err != nil {
		return "no dataset found (run 'beaker init' first)"
	}
	return fmt.Sprintf("no dataset found in %s (run 'beaker init' first)", dataDir)
}
