// Package integration provides CLI integration tests for beaker.
// Implements: prd004-curation-cli R1-R7 (binary-level coverage).
package integration

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/benchtop/beaker/pkg/curate"
	"github.com/benchtop/beaker/pkg/sqlite"
)

var (
	// beakerBin is the path to the built beaker binary.
	beakerBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot finds the project root by walking up and looking for go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		goModPath := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(goModPath); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// SetBeakerBin sets the path to the beaker binary (called from TestMain).
func SetBeakerBin(path string) {
	beakerBin = path
}

// SetBuildErr sets the build error (called from TestMain).
func SetBuildErr(err error) {
	buildErr = err
}

// TestEnv provides an isolated test environment with its own config and data directory.
type TestEnv struct {
	t       *testing.T
	TempDir string
	Config  string
	DataDir string
}

// NewTestEnv creates a new isolated test environment.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	if buildErr != nil {
		t.Fatalf("failed to build beaker: %v", buildErr)
	}
	if beakerBin == "" {
		t.Fatal("beaker binary not built (beakerBin is empty)")
	}

	tempDir := t.TempDir()
	dataDir := filepath.Join(tempDir, "data")
	configDir := filepath.Join(tempDir, "config")

	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	configContent := "backend: sqlite\ndata_dir: " + dataDir + "\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	return &TestEnv{
		t:       t,
		TempDir: tempDir,
		Config:  configDir,
		DataDir: dataDir,
	}
}

// CmdResult holds the result of a beaker command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// RunBeaker executes the beaker CLI with the given arguments.
// Returns stdout, stderr, and exit code.
func (e *TestEnv) RunBeaker(args ...string) CmdResult {
	e.t.Helper()

	allArgs := append([]string{"--config-dir", e.Config, "--data-dir", e.DataDir}, args...)
	cmd := exec.Command(beakerBin, allArgs...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			e.t.Fatalf("failed to run beaker: %v", err)
		}
	}

	return CmdResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// MustRunBeaker executes the beaker CLI and fails the test if it returns non-zero.
func (e *TestEnv) MustRunBeaker(args ...string) CmdResult {
	e.t.Helper()
	result := e.RunBeaker(args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("beaker %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// SeedDataset builds a dataset in the data directory through the public
// API and closes it, leaving the store ready for CLI runs. The build
// callback receives the open dataset.
func (e *TestEnv) SeedDataset(name string, appendMode bool, build func(ds *curate.SourceDataset)) {
	e.t.Helper()

	store := sqlite.NewBackend()
	err := store.Attach(curate.StoreConfig{
		Backend: curate.BackendSQLite,
		DataDir: e.DataDir,
		Resume:  true,
	})
	if err != nil {
		e.t.Fatalf("failed to attach store: %v", err)
	}

	ds, err := curate.NewDataset(name, curate.Options{
		AppendProperties: appendMode,
		Store:            store,
	})
	if err != nil {
		store.Detach()
		e.t.Fatalf("failed to create dataset: %v", err)
	}
	if build != nil {
		build(ds)
	}
	if err := ds.Close(); err != nil {
		e.t.Fatalf("failed to close dataset: %v", err)
	}
}

// ParseJSON parses JSON output into the target type.
func ParseJSON[T any](t *testing.T, jsonStr string) T {
	t.Helper()
	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", jsonStr, err)
	}
	return result
}

// RecordSummary mirrors one entry of `beaker list --json`.
type RecordSummary struct {
	Name       string `json:"name"`
	Formula    string `json:"formula"`
	NAtoms     int    `json:"n_atoms"`
	NConfigs   int    `json:"n_configs"`
	Properties int    `json:"properties"`
}

// DatasetInfo mirrors the output of `beaker info --json`.
type DatasetInfo struct {
	DatasetID        string `json:"dataset_id"`
	Name             string `json:"name"`
	AppendProperties bool   `json:"append_properties"`
	SchemaVersion    int    `json:"schema_version"`
	CreatedAt        string `json:"created_at"`
	Records          int    `json:"records"`
}

// ExportedRecord mirrors one line of `beaker export` output.
type ExportedRecord struct {
	Record     string             `json:"record"`
	NAtoms     int                `json:"n_atoms"`
	NConfigs   int                `json:"n_configs"`
	Properties []ExportedProperty `json:"properties"`
}

// ExportedProperty is one property on an exported record line.
type ExportedProperty struct {
	Name           string    `json:"name"`
	PropertyType   string    `json:"property_type"`
	Classification string    `json:"classification"`
	Units          string    `json:"units"`
	Shape          []int     `json:"shape"`
	Values         []float64 `json:"values"`
	Value          any       `json:"value"`
}

// ValidateReport mirrors the output of `beaker validate --json`.
type ValidateReport struct {
	Consistent    bool `json:"consistent"`
	CloseContacts int  `json:"close_contacts"`
	Records       []struct {
		Record        string `json:"record"`
		Consistent    bool   `json:"consistent"`
		CloseContacts []struct {
			Config   int     `json:"config"`
			I        int     `json:"i"`
			J        int     `json:"j"`
			Distance float64 `json:"distance_nm"`
		} `json:"close_contacts"`
	} `json:"records"`
}

// ReadJSONLFile reads a JSONL file (one JSON object per line) and returns a slice.
func ReadJSONLFile[T any](t *testing.T, path string) []T {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open JSONL file %s: %v", path, err)
	}
	defer f.Close()

	var results []T
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var record T
		if err := json.Unmarshal(line, &record); err != nil {
			t.Fatalf("failed to parse JSONL line in %s: %v", path, err)
		}
		results = append(results, record)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("failed to scan JSONL file %s: %v", path, err)
	}
	return results
}
