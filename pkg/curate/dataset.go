package curate

import (
	"errors"
	"fmt"
	"log/slog"
)

// Dataset membership errors.
var (
	ErrDuplicateRecord = errors.New("duplicate record")
	ErrUnknownRecord   = errors.New("unknown record")
)

// Options configures a new dataset. The zero value is usable: no store,
// no appending, default logger.
type Options struct {
	// AppendProperties is inherited by records the dataset creates.
	AppendProperties bool

	// Store, when set, receives every mutation as it happens. The
	// caller attaches the store before building the dataset and
	// detaches it via Close.
	Store RecordStore

	// Logger for merge and validation diagnostics. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// SourceDataset aggregates uniquely named records from one data source.
// Record order is insertion order. Not safe for concurrent use.
// Implements: prd002-records-and-datasets R9.
type SourceDataset struct {
	name       string
	appendMode bool
	logger     *slog.Logger
	store      RecordStore

	records map[string]*Record
	order   []string
}

// NewDataset creates an empty dataset. With a store configured, the
// dataset row is written immediately. Returns ErrInvalidName if name is
// empty.
func NewDataset(name string, opts Options) (*SourceDataset, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: dataset name is empty", ErrInvalidName)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	d := &SourceDataset{
		name:       name,
		appendMode: opts.AppendProperties,
		logger:     logger,
		store:      opts.Store,
		records:    map[string]*Record{},
	}
	if d.store != nil {
		info := DatasetInfo{
			Name:             name,
			AppendProperties: opts.AppendProperties,
		}
		if err := d.store.SaveInfo(info); err != nil {
			return nil, fmt.Errorf("save dataset info: %w", err)
		}
	}
	return d, nil
}

// LoadDataset rebuilds a dataset from an attached store. The store
// stays wired to the dataset for further curation.
// Implements: prd003-record-store R7.
func LoadDataset(store RecordStore, logger *slog.Logger) (*SourceDataset, error) {
	if logger == nil {
		logger = slog.Default()
	}
	info, err := store.LoadInfo()
	if err != nil {
		return nil, fmt.Errorf("load dataset info: %w", err)
	}
	names, err := store.ListRecords()
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	d := &SourceDataset{
		name:       info.Name,
		appendMode: info.AppendProperties,
		logger:     logger,
		store:      store,
		records:    make(map[string]*Record, len(names)),
		order:      make([]string, 0, len(names)),
	}
	for _, name := range names {
		rec, err := store.LoadRecord(name)
		if err != nil {
			return nil, fmt.Errorf("load record %q: %w", name, err)
		}
		rec.SetLogger(logger)
		d.records[name] = rec
		d.order = append(d.order, name)
	}
	return d, nil
}

// Name returns the dataset name.
func (d *SourceDataset) Name() string {
	return d.name
}

// AppendMode reports the append mode new records inherit.
func (d *SourceDataset) AppendMode() bool {
	return d.appendMode
}

// CreateRecord creates an empty record inheriting the dataset's append
// mode. Returns ErrDuplicateRecord when the name is taken.
// Implements: prd002-records-and-datasets R9.
func (d *SourceDataset) CreateRecord(name string) (*Record, error) {
	if _, ok := d.records[name]; ok {
		return nil, fmt.Errorf("%w: %q in dataset %q", ErrDuplicateRecord, name, d.name)
	}
	rec, err := NewRecord(name, d.appendMode)
	if err != nil {
		return nil, err
	}
	rec.SetLogger(d.logger)
	d.records[name] = rec
	d.order = append(d.order, name)
	if err := d.persist(rec); err != nil {
		delete(d.records, name)
		d.order = d.order[:len(d.order)-1]
		return nil, err
	}
	return rec, nil
}

// AddRecord ingests a record built elsewhere, keeping its own append
// mode. Returns ErrDuplicateRecord when the name is taken.
// Implements: prd002-records-and-datasets R9.
func (d *SourceDataset) AddRecord(rec *Record) error {
	if rec == nil {
		return fmt.Errorf("dataset %q: %w: nil record", d.name, ErrInvalidPayload)
	}
	if _, ok := d.records[rec.name]; ok {
		return fmt.Errorf("%w: %q in dataset %q", ErrDuplicateRecord, rec.name, d.name)
	}
	rec.SetLogger(d.logger)
	d.records[rec.name] = rec
	d.order = append(d.order, rec.name)
	if err := d.persist(rec); err != nil {
		delete(d.records, rec.name)
		d.order = d.order[:len(d.order)-1]
		return err
	}
	return nil
}

// AddProperties adds properties to a record by name, with the record's
// merge semantics. Returns ErrUnknownRecord when the record is absent.
// Partial applies persist; there is no rollback.
// Implements: prd002-records-and-datasets R6, R9.
func (d *SourceDataset) AddProperties(record string, props ...*Property) error {
	rec, ok := d.records[record]
	if !ok {
		return fmt.Errorf("%w: %q in dataset %q", ErrUnknownRecord, record, d.name)
	}
	addErr := rec.AddProperties(props...)
	if persistErr := d.persist(rec); persistErr != nil {
		return errors.Join(addErr, persistErr)
	}
	return addErr
}

// Record returns the named record.
func (d *SourceDataset) Record(name string) (*Record, bool) {
	rec, ok := d.records[name]
	return rec, ok
}

// Names returns the record names in insertion order.
func (d *SourceDataset) Names() []string {
	names := make([]string, len(d.order))
	copy(names, d.order)
	return names
}

// Len returns the number of records.
func (d *SourceDataset) Len() int {
	return len(d.records)
}

// RecordReport is one record's entry in a dataset validation report.
// Implements: prd002-records-and-datasets R10.
type RecordReport struct {
	Record     string
	Consistent bool
	Counts     []ConfigCount
}

// Validate runs Validate on every record in insertion order and
// aggregates the reports. The dataset is consistent when every record
// is.
// Implements: prd002-records-and-datasets R10.
func (d *SourceDataset) Validate() (bool, []RecordReport) {
	consistent := true
	reports := make([]RecordReport, 0, len(d.order))
	for _, name := range d.order {
		ok, counts := d.records[name].Validate()
		if !ok {
			consistent = false
		}
		reports = append(reports, RecordReport{
			Record:     name,
			Consistent: ok,
			Counts:     counts,
		})
	}
	return consistent, reports
}

// Close detaches the store, if any. Safe to call without one.
func (d *SourceDataset) Close() error {
	if d.store == nil {
		return nil
	}
	return d.store.Detach()
}

// persist writes a record through to the store, if any.
func (d *SourceDataset) persist(rec *Record) error {
	if d.store == nil {
		return nil
	}
	if err := d.store.SaveRecord(rec); err != nil {
		return fmt.Errorf("persist record %q: %w", rec.name, err)
	}
	return nil
}
