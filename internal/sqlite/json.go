// JSON record structures mirroring the JSONL file format.
// Implements: prd003-record-store R4.
package sqlite

import "encoding/json"

// datasetJSON is the single row of dataset.jsonl.
type datasetJSON struct {
	DatasetID        string `json:"dataset_id"`
	Name             string `json:"name"`
	AppendProperties bool   `json:"append_properties"`
	SchemaVersion    int    `json:"schema_version"`
	CreatedAt        string `json:"created_at"`
}

// recordJSON is one row of records.jsonl.
type recordJSON struct {
	RecordName       string `json:"record_name"`
	AppendProperties bool   `json:"append_properties"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

// recordPropertyJSON is one row of record_properties.jsonl. Payload is
// the flat value list for array properties and the raw JSON value for
// metadata; Shape is absent for metadata.
type recordPropertyJSON struct {
	RecordName     string          `json:"record_name"`
	Name           string          `json:"name"`
	KindName       string          `json:"kind_name"`
	PropertyType   string          `json:"property_type"`
	Classification string          `json:"classification"`
	Components     int             `json:"components"`
	Units          string          `json:"units"`
	Shape          []int           `json:"shape,omitempty"`
	Payload        json.RawMessage `json:"payload"`
	UpdatedAt      string          `json:"updated_at"`
}
