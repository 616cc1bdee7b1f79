// End-to-end tests: datasets curating through an attached backend.
package sqlite

import (
	"errors"
	"testing"

	"github.com/benchtop/beaker/pkg/array"
	"github.com/benchtop/beaker/pkg/curate"
	"github.com/benchtop/beaker/pkg/units"
)

func TestDataset_CurateAndResume(t *testing.T) {
	tmpDir := t.TempDir()

	b := NewBackend()
	if err := b.Attach(testConfig(tmpDir)); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	ds, err := curate.NewDataset("solvents", curate.Options{
		AppendProperties: true,
		Store:            b,
	})
	if err != nil {
		t.Fatalf("NewDataset failed: %v", err)
	}

	rec, err := ds.CreateRecord("water")
	if err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}
	if !rec.AppendMode() {
		t.Error("record should inherit append mode")
	}

	zs, err := array.FromInts([]int64{8, 1, 1}, 3)
	if err != nil {
		t.Fatalf("FromInts failed: %v", err)
	}
	atomic, err := curate.NewAtomicNumbers(zs)
	if err != nil {
		t.Fatalf("NewAtomicNumbers failed: %v", err)
	}
	en, err := array.FromSlice([]float64{-76.4}, 1)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	energies, err := curate.NewEnergies(en, units.Hartree)
	if err != nil {
		t.Fatalf("NewEnergies failed: %v", err)
	}
	if err := ds.AddProperties("water", atomic, energies); err != nil {
		t.Fatalf("AddProperties failed: %v", err)
	}

	// A second batch of energies appends, converted to hartree.
	more, err := array.FromSlice([]float64{-200555.845}, 1)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	kj, err := curate.NewEnergies(more, units.KilojoulePerMole)
	if err != nil {
		t.Fatalf("NewEnergies failed: %v", err)
	}
	if err := ds.AddProperties("water", kj); err != nil {
		t.Fatalf("appending energies failed: %v", err)
	}

	if err := ds.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Resume from disk through a fresh backend.
	resume := testConfig(tmpDir)
	resume.Resume = true
	rb := NewBackend()
	if err := rb.Attach(resume); err != nil {
		t.Fatalf("resume Attach failed: %v", err)
	}

	loaded, err := curate.LoadDataset(rb, nil)
	if err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}
	defer loaded.Close()

	if loaded.Name() != "solvents" {
		t.Errorf("Name = %q, want %q", loaded.Name(), "solvents")
	}
	if !loaded.AppendMode() {
		t.Error("AppendMode lost on resume")
	}
	names := loaded.Names()
	if len(names) != 1 || names[0] != "water" {
		t.Fatalf("Names = %v, want [water]", names)
	}

	water, ok := loaded.Record("water")
	if !ok {
		t.Fatal("water record missing")
	}
	energiesProp, ok := water.Property("energies")
	if !ok {
		t.Fatal("energies missing")
	}
	if n, _ := energiesProp.Configs(); n != 2 {
		t.Errorf("energies configs = %d, want 2", n)
	}
	if energiesProp.Units() != units.Hartree {
		t.Errorf("energies units = %s, want hartree", energiesProp.Units().Name())
	}

	// Curation continues after resume.
	if _, err := loaded.CreateRecord("methanol"); err != nil {
		t.Fatalf("CreateRecord after resume failed: %v", err)
	}
	if loaded.Len() != 2 {
		t.Errorf("Len = %d, want 2", loaded.Len())
	}

	ok, reports := loaded.Validate()
	if !ok {
		t.Errorf("dataset should validate, reports: %v", reports)
	}
}

func TestDataset_CreateRecordPersistFailure(t *testing.T) {
	tmpDir := t.TempDir()

	b := NewBackend()
	if err := b.Attach(testConfig(tmpDir)); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	ds, err := curate.NewDataset("solvents", curate.Options{Store: b})
	if err != nil {
		t.Fatalf("NewDataset failed: %v", err)
	}

	// Detach behind the dataset's back; the next mutation must fail and
	// roll back its in-memory side.
	if err := b.Detach(); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}
	if _, err := ds.CreateRecord("water"); !errors.Is(err, curate.ErrStoreDetached) {
		t.Fatalf("expected ErrStoreDetached, got %v", err)
	}
	if ds.Len() != 0 {
		t.Errorf("failed create left a record behind, Len = %d", ds.Len())
	}
}
