// Package curate implements the dataset curation model: unit-tagged
// property containers accumulated into records, and records aggregated
// into a source dataset.
//
// A Property pairs a dense array payload (or a metadata value) with a
// kind that fixes its physical type, classification, and component
// count. A Record collects the properties of one chemical system and
// enforces the merge semantics for repeated adds: duplicates fail,
// append mode concatenates along the configuration axis, metadata
// replaces, and atomic numbers are set exactly once. A SourceDataset
// owns uniquely named records and can write through to a RecordStore
// so long curation sessions survive restarts.
//
// Validation is front-loaded: payload shapes and units are checked at
// property construction, and cross-property consistency is checked at
// insertion, so a record is never observed with contradictory atom
// counts. Configuration counts are the exception; sources legitimately
// arrive in partial batches, so Validate reports on them instead of
// failing the add.
//
// Implements: prd001-property-containers (Property, Kind, error types);
//
//	prd002-records-and-datasets (Record, SourceDataset).
package curate
