package curate

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// exportProperty is one property on an export line. Value is a pointer
// so falsy metadata values (0, "", false) still serialize.
type exportProperty struct {
	Name           string    `json:"name"`
	PropertyType   string    `json:"property_type"`
	Classification string    `json:"classification"`
	Units          string    `json:"units,omitempty"`
	Shape          []int     `json:"shape,omitempty"`
	Values         []float64 `json:"values,omitempty"`
	Value          *any      `json:"value,omitempty"`
}

// exportRecord is one line of the export archive.
type exportRecord struct {
	Record     string           `json:"record"`
	NAtoms     int              `json:"n_atoms,omitempty"`
	NConfigs   int              `json:"n_configs,omitempty"`
	Properties []exportProperty `json:"properties"`
}

// ExportJSONL writes the dataset as JSON Lines, one record per line, in
// insertion order with properties in classification then name order.
// The output is deterministic for a given dataset.
// Implements: prd003-record-store R8.
func (d *SourceDataset) ExportJSONL(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, name := range d.order {
		line, err := exportLine(d.records[name])
		if err != nil {
			return fmt.Errorf("export record %q: %w", name, err)
		}
		if _, err := bw.Write(line); err != nil {
			return fmt.Errorf("export record %q: %w", name, err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("export record %q: %w", name, err)
		}
	}
	return bw.Flush()
}

// MarshalJSON renders the record as one export line.
func (r *Record) MarshalJSON() ([]byte, error) {
	return exportLine(r)
}

func exportLine(rec *Record) ([]byte, error) {
	out := exportRecord{Record: rec.name}
	if n, ok := rec.NAtoms(); ok {
		out.NAtoms = n
	}
	if n, ok := rec.NConfigs(); ok {
		out.NConfigs = n
	}
	props := rec.Properties()
	out.Properties = make([]exportProperty, 0, len(props))
	for _, p := range props {
		ep := exportProperty{
			Name:           p.name,
			PropertyType:   string(p.kind.Type),
			Classification: string(p.kind.Classification),
		}
		if p.IsMetaData() {
			value := p.meta
			ep.Value = &value
		} else {
			ep.Units = p.unit.Name()
			ep.Shape = p.payload.Shape()
			ep.Values = p.payload.Data()
		}
		out.Properties = append(out.Properties, ep)
	}
	return json.Marshal(out)
}
