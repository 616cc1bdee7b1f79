package elements

import (
	"fmt"
	"sort"

	"github.com/benchtop/beaker/pkg/units"
)

// SelfEnergies maps atomic numbers to the isolated-atom energies a
// source reports. Subtracting their sum from a total energy yields the
// formation energy, which is what potentials train on.
// Implements: prd002-records-and-datasets R11.
type SelfEnergies struct {
	byZ map[int64]units.Quantity
}

// NewSelfEnergies creates an empty table.
func NewSelfEnergies() *SelfEnergies {
	return &SelfEnergies{byZ: map[int64]units.Quantity{}}
}

// Set stores the self energy for an atomic number. The quantity must
// carry energy units.
func (s *SelfEnergies) Set(z int64, q units.Quantity) error {
	if z < 1 || z > MaxAtomicNumber {
		return fmt.Errorf("%w: atomic number %d", ErrUnknownElement, z)
	}
	if dim := q.Unit.Dimension(); dim != units.DimEnergy {
		return fmt.Errorf("self energy for Z=%d: %w: %s is %s, want %s",
			z, units.ErrUnitMismatch, q.Unit.Name(), dim, units.DimEnergy)
	}
	s.byZ[z] = q
	return nil
}

// SetBySymbol stores the self energy for an element symbol.
func (s *SelfEnergies) SetBySymbol(symbol string, q units.Quantity) error {
	z, err := Number(symbol)
	if err != nil {
		return err
	}
	return s.Set(z, q)
}

// Energy returns the self energy stored for an atomic number.
func (s *SelfEnergies) Energy(z int64) (units.Quantity, bool) {
	q, ok := s.byZ[z]
	return q, ok
}

// Len returns the number of elements in the table.
func (s *SelfEnergies) Len() int {
	return len(s.byZ)
}

// Elements returns the covered atomic numbers, sorted ascending.
func (s *SelfEnergies) Elements() []int64 {
	zs := make([]int64, 0, len(s.byZ))
	for z := range s.byZ {
		zs = append(zs, z)
	}
	sort.Slice(zs, func(i, j int) bool { return zs[i] < zs[j] })
	return zs
}

// TotalFor sums the self energies of the given atoms, expressed in
// target units. Returns ErrMissingSelfEnergy naming the first element
// the table does not cover.
func (s *SelfEnergies) TotalFor(zs []int64, target units.Unit) (float64, error) {
	total := 0.0
	for _, z := range zs {
		q, ok := s.byZ[z]
		if !ok {
			symbol, err := Symbol(z)
			if err != nil {
				return 0, err
			}
			return 0, fmt.Errorf("%w: %s (Z=%d)", ErrMissingSelfEnergy, symbol, z)
		}
		converted, err := q.ConvertTo(target)
		if err != nil {
			return 0, err
		}
		total += converted.Value
	}
	return total, nil
}

// RemoveFrom subtracts the summed self energies of the atoms from each
// total energy, yielding formation energies in the same units.
// Implements: prd002-records-and-datasets R11.
func (s *SelfEnergies) RemoveFrom(energies []float64, unit units.Unit, zs []int64) ([]float64, error) {
	total, err := s.TotalFor(zs, unit)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(energies))
	for i, e := range energies {
		out[i] = e - total
	}
	return out, nil
}
