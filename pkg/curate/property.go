package curate

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/benchtop/beaker/pkg/array"
	"github.com/benchtop/beaker/pkg/units"
)

// Property classifications determine payload shape and merge behavior.
// Implements: prd001-property-containers R5.
const (
	ClassAtomicNumbers = Classification("atomic_numbers")
	ClassPerAtom       = Classification("per_atom")
	ClassPerSystem     = Classification("per_system")
	ClassMetaData      = Classification("meta_data")
)

// Classification names a property's shape and merge family.
type Classification string

// validClassifications is the set of recognized classifications.
var validClassifications = map[Classification]bool{
	ClassAtomicNumbers: true,
	ClassPerAtom:       true,
	ClassPerSystem:     true,
	ClassMetaData:      true,
}

// Physical property types. Each maps to the unit dimension its payloads
// must carry.
const (
	TypeAtomicNumbers = PropertyType("atomic_numbers")
	TypeLength        = PropertyType("length")
	TypeEnergy        = PropertyType("energy")
	TypeForce         = PropertyType("force")
	TypeCharge        = PropertyType("charge")
	TypeDipole        = PropertyType("dipole")
	TypeDimensionless = PropertyType("dimensionless")
	TypeMetaData      = PropertyType("meta_data")
)

// PropertyType names the physical quantity a property holds.
type PropertyType string

// typeDimensions maps each property type to its required unit dimension.
// TypeMetaData is absent: metadata carries no units.
var typeDimensions = map[PropertyType]units.Dimension{
	TypeAtomicNumbers: units.DimDimensionless,
	TypeLength:        units.DimLength,
	TypeEnergy:        units.DimEnergy,
	TypeForce:         units.DimForce,
	TypeCharge:        units.DimCharge,
	TypeDipole:        units.DimDipole,
	TypeDimensionless: units.DimDimensionless,
}

// Property and kind errors.
var (
	ErrInvalidKind    = errors.New("invalid property kind")
	ErrInvalidName    = errors.New("invalid name")
	ErrInvalidPayload = errors.New("invalid payload")
)

// Kind fixes the identity of a property: its default name, physical
// type, classification, and trailing component count. Components 0
// leaves the component count unconstrained.
// Implements: prd001-property-containers R5.
type Kind struct {
	Name           string
	Type           PropertyType
	Classification Classification
	Components     int
}

// The built-in property kinds.
var (
	AtomicNumbers  = Kind{Name: "atomic_numbers", Type: TypeAtomicNumbers, Classification: ClassAtomicNumbers, Components: 1}
	Positions      = Kind{Name: "positions", Type: TypeLength, Classification: ClassPerAtom, Components: 3}
	Energies       = Kind{Name: "energies", Type: TypeEnergy, Classification: ClassPerSystem, Components: 1}
	Forces         = Kind{Name: "forces", Type: TypeForce, Classification: ClassPerAtom, Components: 3}
	PartialCharges = Kind{Name: "partial_charges", Type: TypeCharge, Classification: ClassPerAtom, Components: 1}
	TotalCharge    = Kind{Name: "total_charge", Type: TypeCharge, Classification: ClassPerSystem, Components: 1}
	DipoleMoment   = Kind{Name: "dipole_moment", Type: TypeDipole, Classification: ClassPerSystem, Components: 3}
	MetaData       = Kind{Name: "meta_data", Type: TypeMetaData, Classification: ClassMetaData}
)

// Property is a named, unit-tagged payload. Array-backed properties own
// their payload after construction; callers must not mutate the array
// they passed in. The kind is fixed at construction and never mutates.
// Implements: prd001-property-containers R5, R6.
type Property struct {
	name    string
	kind    Kind
	unit    units.Unit
	payload *array.Dense // nil for metadata
	meta    any          // nil for array payloads
}

// New creates an array-backed property of the given kind. The payload
// shape is validated against the classification and component count,
// and the units against the kind's physical type. Rank-1 input is
// normalized where the classification allows it (R7, R8).
// Metadata kinds are rejected; use NewMetaData.
// Implements: prd001-property-containers R6.
func New(kind Kind, value *array.Dense, unit units.Unit) (*Property, error) {
	if err := validateKind(kind); err != nil {
		return nil, err
	}
	if kind.Classification == ClassMetaData {
		return nil, fmt.Errorf("%w: metadata properties are built with NewMetaData", ErrInvalidKind)
	}
	if value == nil {
		return nil, fmt.Errorf("property %q: %w: nil array", kind.Name, ErrInvalidPayload)
	}
	if unit == (units.Unit{}) {
		unit = units.Dimensionless
	}
	if dim := typeDimensions[kind.Type]; unit.Dimension() != dim {
		return nil, fmt.Errorf("property %q: %w: %s is %s, want %s",
			kind.Name, units.ErrUnitMismatch, unit.Name(), unit.Dimension(), dim)
	}
	payload, err := normalizePayload(kind, value)
	if err != nil {
		return nil, err
	}
	return &Property{
		name:    kind.Name,
		kind:    kind,
		unit:    unit,
		payload: payload,
	}, nil
}

// NewAtomicNumbers creates the atomic numbers property from a (n_atoms,)
// or (n_atoms, 1) array of whole numbers in [1, 118].
// Implements: prd001-property-containers R7.
func NewAtomicNumbers(value *array.Dense) (*Property, error) {
	return New(AtomicNumbers, value, units.Dimensionless)
}

// NewPositions creates a per-atom positions property with shape
// (n_configs, n_atoms, 3) in the given length units.
func NewPositions(value *array.Dense, unit units.Unit) (*Property, error) {
	return New(Positions, value, unit)
}

// NewEnergies creates a per-system energies property with shape
// (n_configs, 1) in the given energy units.
func NewEnergies(value *array.Dense, unit units.Unit) (*Property, error) {
	return New(Energies, value, unit)
}

// NewForces creates a per-atom forces property with shape
// (n_configs, n_atoms, 3) in the given force units.
func NewForces(value *array.Dense, unit units.Unit) (*Property, error) {
	return New(Forces, value, unit)
}

// NewPartialCharges creates a per-atom partial charges property with
// shape (n_configs, n_atoms, 1) in the given charge units.
func NewPartialCharges(value *array.Dense, unit units.Unit) (*Property, error) {
	return New(PartialCharges, value, unit)
}

// NewTotalCharge creates a per-system total charge property with shape
// (n_configs, 1) in the given charge units.
func NewTotalCharge(value *array.Dense, unit units.Unit) (*Property, error) {
	return New(TotalCharge, value, unit)
}

// NewDipoleMoment creates a per-system dipole moment property with
// shape (n_configs, 3) in the given dipole units.
func NewDipoleMoment(value *array.Dense, unit units.Unit) (*Property, error) {
	return New(DipoleMoment, value, unit)
}

// NewMetaData creates a metadata property holding any JSON-representable
// value under the given name. Metadata carries no units.
// Implements: prd001-property-containers R9.
func NewMetaData(name string, value any) (*Property, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: metadata name is empty", ErrInvalidName)
	}
	if _, err := json.Marshal(value); err != nil {
		return nil, fmt.Errorf("metadata %q: %w: %v", name, ErrInvalidPayload, err)
	}
	return &Property{
		name: name,
		kind: MetaData,
		unit: units.Dimensionless,
		meta: value,
	}, nil
}

// Name returns the property name.
func (p *Property) Name() string {
	return p.name
}

// Kind returns the property's kind.
func (p *Property) Kind() Kind {
	return p.kind
}

// Type returns the physical property type.
func (p *Property) Type() PropertyType {
	return p.kind.Type
}

// Classification returns the property's classification.
func (p *Property) Classification() Classification {
	return p.kind.Classification
}

// Units returns the property's units. Metadata and atomic numbers
// report dimensionless.
func (p *Property) Units() units.Unit {
	return p.unit
}

// Array returns the payload array, or nil for metadata.
func (p *Property) Array() *array.Dense {
	return p.payload
}

// Meta returns the metadata value, or nil for array-backed properties.
func (p *Property) Meta() any {
	return p.meta
}

// IsMetaData reports whether the property is metadata.
func (p *Property) IsMetaData() bool {
	return p.kind.Classification == ClassMetaData
}

// SetName renames the property, for sources whose field names differ
// from the kind defaults. Returns ErrInvalidName if name is empty.
// The kind is unaffected.
// Implements: prd001-property-containers R9.
func (p *Property) SetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: property name is empty", ErrInvalidName)
	}
	p.name = name
	return nil
}

// Configs returns the configuration count for per-atom and per-system
// properties. Atomic numbers and metadata have no configuration axis
// and report false.
func (p *Property) Configs() (int, bool) {
	switch p.kind.Classification {
	case ClassPerAtom, ClassPerSystem:
		return p.payload.Rows(), true
	default:
		return 0, false
	}
}

// Atoms returns the atom count for atomic numbers and per-atom
// properties, and false for the other classifications.
func (p *Property) Atoms() (int, bool) {
	switch p.kind.Classification {
	case ClassAtomicNumbers:
		return p.payload.Rows(), true
	case ClassPerAtom:
		return p.payload.Dim(1), true
	default:
		return 0, false
	}
}

// Converted returns a copy of the property with its payload re-expressed
// in to. Atomic numbers and metadata do not convert.
// Implements: prd001-property-containers R10.
func (p *Property) Converted(to units.Unit) (*Property, error) {
	switch p.kind.Classification {
	case ClassAtomicNumbers, ClassMetaData:
		return nil, fmt.Errorf("property %q: %w: %s properties do not convert",
			p.name, units.ErrUnitMismatch, p.kind.Classification)
	}
	factor, err := p.unit.ConversionFactor(to)
	if err != nil {
		return nil, fmt.Errorf("property %q: %w", p.name, err)
	}
	return &Property{
		name:    p.name,
		kind:    p.kind,
		unit:    to,
		payload: p.payload.Scaled(factor),
	}, nil
}

// String renders the property for logs and errors.
func (p *Property) String() string {
	if p.IsMetaData() {
		return fmt.Sprintf("%s (%s)", p.name, p.kind.Classification)
	}
	return fmt.Sprintf("%s (%s, %s, %s)", p.name, p.kind.Classification, p.payload, p.unit.Name())
}

// validateKind rejects malformed kinds before any payload work.
func validateKind(kind Kind) error {
	if kind.Name == "" {
		return fmt.Errorf("%w: kind name is empty", ErrInvalidKind)
	}
	if !validClassifications[kind.Classification] {
		return fmt.Errorf("%w: classification %q", ErrInvalidKind, kind.Classification)
	}
	if kind.Components < 0 {
		return fmt.Errorf("%w: negative component count %d", ErrInvalidKind, kind.Components)
	}
	if _, ok := typeDimensions[kind.Type]; !ok && kind.Type != TypeMetaData {
		return fmt.Errorf("%w: property type %q", ErrInvalidKind, kind.Type)
	}
	if (kind.Classification == ClassMetaData) != (kind.Type == TypeMetaData) {
		return fmt.Errorf("%w: classification %q with type %q", ErrInvalidKind, kind.Classification, kind.Type)
	}
	if (kind.Classification == ClassAtomicNumbers) != (kind.Type == TypeAtomicNumbers) {
		return fmt.Errorf("%w: classification %q with type %q", ErrInvalidKind, kind.Classification, kind.Type)
	}
	return nil
}

// normalizePayload validates the payload shape against the
// classification and returns the array in canonical rank.
// Implements: prd001-property-containers R7, R8.
func normalizePayload(kind Kind, value *array.Dense) (*array.Dense, error) {
	switch kind.Classification {
	case ClassAtomicNumbers:
		return normalizeAtomicNumbers(kind, value)

	case ClassPerAtom:
		if value.Rank() != 3 {
			return nil, fmt.Errorf("property %q: %w: per_atom payload is %s, want (n_configs, n_atoms, n_components)",
				kind.Name, array.ErrShapeMismatch, value)
		}
		if kind.Components > 0 && value.Dim(2) != kind.Components {
			return nil, fmt.Errorf("property %q: %w: %d components, want %d",
				kind.Name, array.ErrShapeMismatch, value.Dim(2), kind.Components)
		}
		return value, nil

	case ClassPerSystem:
		if value.Rank() == 1 && kind.Components == 1 {
			return value.Reshape(value.Len(), 1)
		}
		if value.Rank() != 2 {
			return nil, fmt.Errorf("property %q: %w: per_system payload is %s, want (n_configs, n_components)",
				kind.Name, array.ErrShapeMismatch, value)
		}
		if kind.Components > 0 && value.Dim(1) != kind.Components {
			return nil, fmt.Errorf("property %q: %w: %d components, want %d",
				kind.Name, array.ErrShapeMismatch, value.Dim(1), kind.Components)
		}
		return value, nil

	default:
		return nil, fmt.Errorf("%w: classification %q", ErrInvalidKind, kind.Classification)
	}
}

// normalizeAtomicNumbers enforces shape (n_atoms, 1) and whole numbers
// in [1, 118].
func normalizeAtomicNumbers(kind Kind, value *array.Dense) (*array.Dense, error) {
	var payload *array.Dense
	switch {
	case value.Rank() == 1:
		normalized, err := value.Reshape(value.Len(), 1)
		if err != nil {
			return nil, err
		}
		payload = normalized
	case value.Rank() == 2 && value.Dim(1) == 1:
		payload = value
	default:
		return nil, fmt.Errorf("property %q: %w: atomic numbers payload is %s, want (n_atoms, 1)",
			kind.Name, array.ErrShapeMismatch, value)
	}
	zs, err := payload.Ints()
	if err != nil {
		return nil, fmt.Errorf("property %q: %w", kind.Name, err)
	}
	for i, z := range zs {
		if z < 1 || z > 118 {
			return nil, fmt.Errorf("property %q: %w: atomic number %d at index %d out of range [1, 118]",
				kind.Name, ErrInvalidPayload, z, i)
		}
	}
	return payload, nil
}
