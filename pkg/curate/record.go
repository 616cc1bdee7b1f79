package curate

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/benchtop/beaker/pkg/array"
)

// Record merge errors.
var (
	ErrDuplicateProperty = errors.New("duplicate property")
	ErrNoAtomicNumbers   = errors.New("atomic numbers not set")
)

// ConfigCount is one entry of a record's validation report: the
// configuration count observed on one property.
// Implements: prd002-records-and-datasets R7.
type ConfigCount struct {
	Property       string
	Classification Classification
	Configs        int
}

// Record accumulates the properties of one chemical system. Property
// names are unique across the record. Records are not safe for
// concurrent use.
// Implements: prd002-records-and-datasets R1.
type Record struct {
	name       string
	appendMode bool
	logger     *slog.Logger

	atomicNumbers *Property
	perAtom       map[string]*Property
	perSystem     map[string]*Property
	metaData      map[string]*Property
}

// NewRecord creates an empty record. With appendProperties set, adding
// a property that already exists concatenates configurations instead of
// failing. Returns ErrInvalidName if name is empty.
func NewRecord(name string, appendProperties bool) (*Record, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: record name is empty", ErrInvalidName)
	}
	return &Record{
		name:       name,
		appendMode: appendProperties,
		logger:     slog.Default(),
		perAtom:    map[string]*Property{},
		perSystem:  map[string]*Property{},
		metaData:   map[string]*Property{},
	}, nil
}

// Name returns the record name.
func (r *Record) Name() string {
	return r.name
}

// AppendMode reports whether duplicate adds concatenate configurations.
func (r *Record) AppendMode() bool {
	return r.appendMode
}

// SetLogger replaces the record's logger. A nil logger resets to
// slog.Default().
func (r *Record) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	r.logger = logger
}

// AddProperty adds a property to the record under the record's append
// mode. Inserts go to the property's classification group; duplicate
// names fail with ErrDuplicateProperty unless append mode merges them
// (per-atom and per-system) or the property is metadata, which
// replaces. Atomic numbers are set at most once.
// Implements: prd002-records-and-datasets R1, R2, R3, R4.
func (r *Record) AddProperty(p *Property) error {
	return r.addProperty(p, r.appendMode)
}

// AppendProperty adds a property with append behavior regardless of the
// record's mode. The override only widens: records in append mode keep
// appending.
// Implements: prd002-records-and-datasets R3.
func (r *Record) AppendProperty(p *Property) error {
	return r.addProperty(p, true)
}

// AddProperties adds properties in order, stopping at the first error.
// Properties added before the failure remain; there is no rollback.
// Implements: prd002-records-and-datasets R6.
func (r *Record) AddProperties(props ...*Property) error {
	for _, p := range props {
		if err := r.AddProperty(p); err != nil {
			return err
		}
	}
	return nil
}

func (r *Record) addProperty(p *Property, appendMode bool) error {
	if p == nil {
		return fmt.Errorf("record %q: %w: nil property", r.name, ErrInvalidPayload)
	}
	switch p.Classification() {
	case ClassAtomicNumbers:
		return r.setAtomicNumbers(p)
	case ClassMetaData:
		return r.setMetaData(p)
	case ClassPerAtom:
		return r.upsertArray(r.perAtom, p, appendMode)
	case ClassPerSystem:
		return r.upsertArray(r.perSystem, p, appendMode)
	default:
		return fmt.Errorf("record %q: %w: classification %q", r.name, ErrInvalidKind, p.Classification())
	}
}

// setAtomicNumbers stores the atomic numbers once and cross-checks the
// atom count against every per-atom property already present.
// Implements: prd002-records-and-datasets R4, R5.
func (r *Record) setAtomicNumbers(p *Property) error {
	if r.atomicNumbers != nil {
		return fmt.Errorf("%w: atomic numbers already set on record %q", ErrDuplicateProperty, r.name)
	}
	if _, class, ok := r.lookup(p.name); ok {
		return fmt.Errorf("%w: name %q already used by a %s property on record %q",
			ErrDuplicateProperty, p.name, class, r.name)
	}
	atoms := p.payload.Rows()
	for _, q := range r.perAtom {
		if n, _ := q.Atoms(); n != atoms {
			return fmt.Errorf("record %q: property %q: %w: atomic numbers give %d atoms, %q has %d",
				r.name, p.name, array.ErrShapeMismatch, atoms, q.name, n)
		}
	}
	r.atomicNumbers = p
	return nil
}

// setMetaData inserts or replaces a metadata property.
// Implements: prd002-records-and-datasets R4.
func (r *Record) setMetaData(p *Property) error {
	if _, class, ok := r.lookup(p.name); ok && class != ClassMetaData {
		return fmt.Errorf("%w: name %q already used by a %s property on record %q",
			ErrDuplicateProperty, p.name, class, r.name)
	}
	if _, ok := r.metaData[p.name]; ok {
		r.logger.Debug("replaced metadata",
			slog.String("record", r.name),
			slog.String("property", p.name))
	}
	r.metaData[p.name] = p
	return nil
}

// upsertArray inserts a per-atom or per-system property, or merges it
// into the existing one when append mode applies.
// Implements: prd002-records-and-datasets R2, R3, R5.
func (r *Record) upsertArray(group map[string]*Property, p *Property, appendMode bool) error {
	existing, class, ok := r.lookup(p.name)
	if !ok {
		if p.Classification() == ClassPerAtom {
			if err := r.checkAtoms(p); err != nil {
				return err
			}
		}
		group[p.name] = p
		return nil
	}
	if class != p.Classification() {
		return fmt.Errorf("%w: name %q already used by a %s property on record %q",
			ErrDuplicateProperty, p.name, class, r.name)
	}
	if !appendMode {
		return fmt.Errorf("%w: property %q already exists on record %q; enable append mode to concatenate configurations",
			ErrDuplicateProperty, p.name, r.name)
	}
	return r.appendTo(existing, p)
}

// appendTo concatenates the incoming payload onto the stored property
// along the configuration axis, converting to the stored units first.
// Implements: prd002-records-and-datasets R3.
func (r *Record) appendTo(existing, incoming *Property) error {
	factor, err := incoming.unit.ConversionFactor(existing.unit)
	if err != nil {
		return fmt.Errorf("record %q: property %q: %w", r.name, incoming.name, err)
	}
	payload := incoming.payload
	if factor != 1 {
		payload = payload.Scaled(factor)
		r.logger.Debug("converted units before append",
			slog.String("record", r.name),
			slog.String("property", incoming.name),
			slog.String("from", incoming.unit.Name()),
			slog.String("to", existing.unit.Name()))
	}
	merged, err := array.ConcatRows(existing.payload, payload)
	if err != nil {
		return fmt.Errorf("record %q: property %q: %w", r.name, incoming.name, err)
	}
	existing.payload = merged
	return nil
}

// checkAtoms verifies a new per-atom property against the record's atom
// count: the atomic numbers when set, otherwise the per-atom properties
// already present.
// Implements: prd002-records-and-datasets R5.
func (r *Record) checkAtoms(p *Property) error {
	atoms, _ := p.Atoms()
	if r.atomicNumbers != nil {
		if n := r.atomicNumbers.payload.Rows(); n != atoms {
			return fmt.Errorf("record %q: property %q: %w: %d atoms, atomic numbers give %d",
				r.name, p.name, array.ErrShapeMismatch, atoms, n)
		}
		return nil
	}
	for _, q := range r.perAtom {
		if n, _ := q.Atoms(); n != atoms {
			return fmt.Errorf("record %q: property %q: %w: %d atoms, property %q has %d",
				r.name, p.name, array.ErrShapeMismatch, atoms, q.name, n)
		}
	}
	return nil
}

// lookup finds a property by name anywhere in the record.
func (r *Record) lookup(name string) (*Property, Classification, bool) {
	if r.atomicNumbers != nil && r.atomicNumbers.name == name {
		return r.atomicNumbers, ClassAtomicNumbers, true
	}
	if p, ok := r.perAtom[name]; ok {
		return p, ClassPerAtom, true
	}
	if p, ok := r.perSystem[name]; ok {
		return p, ClassPerSystem, true
	}
	if p, ok := r.metaData[name]; ok {
		return p, ClassMetaData, true
	}
	return nil, "", false
}

// Property returns the named property.
func (r *Record) Property(name string) (*Property, bool) {
	p, _, ok := r.lookup(name)
	return p, ok
}

// AtomicNumbers returns the atomic numbers property if set.
func (r *Record) AtomicNumbers() (*Property, bool) {
	if r.atomicNumbers == nil {
		return nil, false
	}
	return r.atomicNumbers, true
}

// Properties returns all properties in deterministic order: atomic
// numbers, then per-atom, per-system, and metadata, each name-sorted.
func (r *Record) Properties() []*Property {
	out := make([]*Property, 0, r.Len())
	if r.atomicNumbers != nil {
		out = append(out, r.atomicNumbers)
	}
	for _, group := range []map[string]*Property{r.perAtom, r.perSystem, r.metaData} {
		names := make([]string, 0, len(group))
		for name := range group {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, group[name])
		}
	}
	return out
}

// PropertyNames returns the property names in the Properties order.
func (r *Record) PropertyNames() []string {
	props := r.Properties()
	names := make([]string, len(props))
	for i, p := range props {
		names[i] = p.name
	}
	return names
}

// Len returns the number of properties on the record.
func (r *Record) Len() int {
	n := len(r.perAtom) + len(r.perSystem) + len(r.metaData)
	if r.atomicNumbers != nil {
		n++
	}
	return n
}

// NAtoms returns the record's atom count, derived from the atomic
// numbers. Reports false while atomic numbers are unset.
// Implements: prd002-records-and-datasets R8.
func (r *Record) NAtoms() (int, bool) {
	if r.atomicNumbers == nil {
		return 0, false
	}
	return r.atomicNumbers.payload.Rows(), true
}

// NConfigs returns the configuration count shared by the per-atom and
// per-system properties. Reports false when the record has none or they
// disagree.
// Implements: prd002-records-and-datasets R8.
func (r *Record) NConfigs() (int, bool) {
	n := -1
	for _, group := range []map[string]*Property{r.perAtom, r.perSystem} {
		for _, p := range group {
			configs, _ := p.Configs()
			if n == -1 {
				n = configs
				continue
			}
			if configs != n {
				return 0, false
			}
		}
	}
	if n == -1 {
		return 0, false
	}
	return n, true
}

// Validate reports whether every per-atom and per-system property
// agrees on the configuration count. It returns the verdict and one
// count per property, and logs one warning per property when they
// disagree. Validation never fails the record.
// Implements: prd002-records-and-datasets R7.
func (r *Record) Validate() (bool, []ConfigCount) {
	counts := make([]ConfigCount, 0, len(r.perAtom)+len(r.perSystem))
	for _, class := range []Classification{ClassPerAtom, ClassPerSystem} {
		group := r.perAtom
		if class == ClassPerSystem {
			group = r.perSystem
		}
		names := make([]string, 0, len(group))
		for name := range group {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			configs, _ := group[name].Configs()
			counts = append(counts, ConfigCount{
				Property:       name,
				Classification: class,
				Configs:        configs,
			})
		}
	}

	consistent := true
	for i := 1; i < len(counts); i++ {
		if counts[i].Configs != counts[0].Configs {
			consistent = false
			break
		}
	}
	if !consistent {
		for _, c := range counts {
			r.logger.Warn("inconsistent configuration count",
				slog.String("record", r.name),
				slog.String("property", c.Property),
				slog.Int("configs", c.Configs))
		}
	}
	return consistent, counts
}

// Elements returns the distinct atomic numbers present, sorted
// ascending. Returns ErrNoAtomicNumbers while atomic numbers are unset.
// Implements: prd002-records-and-datasets R11.
func (r *Record) Elements() ([]int64, error) {
	if r.atomicNumbers == nil {
		return nil, fmt.Errorf("record %q: %w", r.name, ErrNoAtomicNumbers)
	}
	zs, err := r.atomicNumbers.payload.Ints()
	if err != nil {
		return nil, fmt.Errorf("record %q: %w", r.name, err)
	}
	seen := map[int64]bool{}
	elements := make([]int64, 0, len(zs))
	for _, z := range zs {
		if !seen[z] {
			seen[z] = true
			elements = append(elements, z)
		}
	}
	sort.Slice(elements, func(i, j int) bool { return elements[i] < elements[j] })
	return elements, nil
}

// ContainsOnlyElements reports whether every atom belongs to the
// allowed element set, for source filters that restrict chemistry.
// Implements: prd002-records-and-datasets R11.
func (r *Record) ContainsOnlyElements(allowed ...int64) (bool, error) {
	elements, err := r.Elements()
	if err != nil {
		return false, err
	}
	set := make(map[int64]bool, len(allowed))
	for _, z := range allowed {
		set[z] = true
	}
	for _, z := range elements {
		if !set[z] {
			return false, nil
		}
	}
	return true, nil
}
