// Package units provides the unit registry and conversions for dataset
// curation.
//
// Each unit belongs to one dimension and carries an exact factor to that
// dimension's base unit. Base units follow the conventions of quantum
// chemistry datasets: nanometer, kilojoule per mole, kilojoule per mole
// per nanometer, elementary charge, and elementary charge nanometer.
// Molar and molecular energy units share the energy dimension, so hartree
// converts to kilocalorie per mole directly.
package units

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Dimensions partition the registry; conversion is only defined within one.
// Implements: prd001-property-containers R1.
const (
	DimLength        = Dimension("length")
	DimEnergy        = Dimension("energy")
	DimForce         = Dimension("force")
	DimCharge        = Dimension("charge")
	DimDipole        = Dimension("dipole")
	DimDimensionless = Dimension("dimensionless")
)

// Dimension identifies a physical dimension such as length or energy.
type Dimension string

// Conversion factors to each dimension's base unit, CODATA 2018.
const (
	angstromNanometer        = 0.1
	bohrNanometer            = 0.0529177210903
	picometerNanometer       = 1e-3
	meterNanometer           = 1e9
	hartreeKilojoule         = 2625.4996394798254 // kJ/mol per hartree
	kilocalorieKilojoule     = 4.184
	electronvoltKilojoule    = 96.48533212331 // kJ/mol per eV
	jouleKilojoule           = 1e-3
	coulombElementary        = 6.241509074460763e18
	debyeElementaryNanometer = 0.020819434617145
)

var (
	// ErrUnknownUnit indicates a name or alias absent from the registry.
	ErrUnknownUnit = errors.New("unknown unit")

	// ErrUnitMismatch indicates units of different dimensions where the
	// same dimension is required.
	ErrUnitMismatch = errors.New("unit mismatch")
)

// Unit is one entry of the registry. The zero value is not a valid unit;
// obtain units from the package variables or Parse.
type Unit struct {
	name   string
	dim    Dimension
	factor float64 // multiplier to the dimension's base unit
}

// registry maps normalized names and aliases to units.
var registry = map[string]Unit{}

// define registers a unit under its canonical name and aliases.
func define(name string, dim Dimension, factor float64, aliases ...string) Unit {
	u := Unit{name: name, dim: dim, factor: factor}
	registry[normalize(name)] = u
	for _, alias := range aliases {
		registry[normalize(alias)] = u
	}
	return u
}

// The registered units.
// Implements: prd001-property-containers R1.
var (
	// Length. Base: nanometer.
	Nanometer = define("nanometer", DimLength, 1, "nm")
	Angstrom  = define("angstrom", DimLength, angstromNanometer, "ang")
	Bohr      = define("bohr", DimLength, bohrNanometer, "a0")
	Picometer = define("picometer", DimLength, picometerNanometer, "pm")
	Meter     = define("meter", DimLength, meterNanometer, "m")

	// Energy. Base: kilojoule per mole.
	KilojoulePerMole   = define("kilojoule_per_mole", DimEnergy, 1, "kj/mol")
	Hartree            = define("hartree", DimEnergy, hartreeKilojoule)
	KilocaloriePerMole = define("kilocalorie_per_mole", DimEnergy, kilocalorieKilojoule, "kcal/mol")
	Electronvolt       = define("electronvolt", DimEnergy, electronvoltKilojoule, "ev")
	JoulePerMole       = define("joule_per_mole", DimEnergy, jouleKilojoule, "j/mol")

	// Force. Base: kilojoule per mole per nanometer.
	KilojoulePerMolePerNanometer  = define("kilojoule_per_mole_per_nanometer", DimForce, 1, "kj/mol/nm")
	KilojoulePerMolePerAngstrom   = define("kilojoule_per_mole_per_angstrom", DimForce, 1/angstromNanometer, "kj/mol/ang")
	HartreePerBohr                = define("hartree_per_bohr", DimForce, hartreeKilojoule/bohrNanometer, "hartree/bohr")
	KilocaloriePerMolePerAngstrom = define("kilocalorie_per_mole_per_angstrom", DimForce, kilocalorieKilojoule/angstromNanometer, "kcal/mol/ang")
	ElectronvoltPerAngstrom       = define("electronvolt_per_angstrom", DimForce, electronvoltKilojoule/angstromNanometer, "ev/ang")

	// Charge. Base: elementary charge.
	ElementaryCharge = define("elementary_charge", DimCharge, 1, "e")
	Coulomb          = define("coulomb", DimCharge, coulombElementary, "c")

	// Dipole moment. Base: elementary charge nanometer.
	ElementaryChargeNanometer = define("elementary_charge_nanometer", DimDipole, 1, "e*nm")
	ElementaryChargeAngstrom  = define("elementary_charge_angstrom", DimDipole, angstromNanometer, "e*ang")
	Debye                     = define("debye", DimDipole, debyeElementaryNanometer)

	// Dimensionless quantities, including atomic numbers.
	Dimensionless = define("dimensionless", DimDimensionless, 1, "none", "")
)

// Parse resolves a unit name or alias, case-insensitively.
// Returns ErrUnknownUnit naming the input when unrecognized.
// Implements: prd001-property-containers R1.
func Parse(name string) (Unit, error) {
	u, ok := registry[normalize(name)]
	if !ok {
		return Unit{}, fmt.Errorf("%w: %q", ErrUnknownUnit, name)
	}
	return u, nil
}

// MustParse is Parse for names known at compile time; it panics on
// unknown names.
func MustParse(name string) Unit {
	u, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return u
}

// Names returns the canonical unit names in sorted order.
func Names() []string {
	seen := map[string]bool{}
	names := make([]string, 0, len(registry))
	for _, u := range registry {
		if !seen[u.name] {
			seen[u.name] = true
			names = append(names, u.name)
		}
	}
	sort.Strings(names)
	return names
}

// Name returns the canonical name, such as "kilojoule_per_mole".
func (u Unit) Name() string {
	return u.name
}

// Dimension returns the unit's dimension.
func (u Unit) Dimension() Dimension {
	return u.dim
}

// String returns the canonical name.
func (u Unit) String() string {
	return u.name
}

// ConversionFactor returns the multiplier that converts values in u to
// values in to. Fails with ErrUnitMismatch naming both units when the
// dimensions differ.
// Implements: prd001-property-containers R2.
func (u Unit) ConversionFactor(to Unit) (float64, error) {
	if u.dim != to.dim {
		return 0, fmt.Errorf("%w: cannot convert %s (%s) to %s (%s)",
			ErrUnitMismatch, u.name, u.dim, to.name, to.dim)
	}
	return u.factor / to.factor, nil
}

// Convert re-expresses value from u in to.
// Implements: prd001-property-containers R2.
func (u Unit) Convert(value float64, to Unit) (float64, error) {
	factor, err := u.ConversionFactor(to)
	if err != nil {
		return 0, err
	}
	return value * factor, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
