// Package beaker holds module-level metadata shared by the CLI and
// library consumers.
// Implements: prd004-curation-cli R1.8.
package beaker

// Version is the beaker release version.
const Version = "v0.1.0"
