// Package geometry provides interatomic distance checks for curation
// QA: pair enumeration within a cutoff and minimum-distance scans, with
// an orthogonal periodic-boundary variant. The pairlist is brute-force
// over atom pairs, which is the right trade for the system sizes
// curation inspects.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/benchtop/beaker/pkg/array"
)

// Geometry errors.
var (
	ErrTooFewAtoms   = errors.New("geometry: need at least two atoms")
	ErrInvalidCutoff = errors.New("geometry: cutoff must be positive")
	ErrInvalidBox    = errors.New("geometry: box lengths must be positive")
)

// Pair is one atom pair and its distance, with I < J.
type Pair struct {
	I        int
	J        int
	Distance float64
}

// Box is an orthogonal periodic box. Distances use the nearest-image
// convention, which is exact for separations up to half the shortest
// box length.
type Box struct {
	X, Y, Z float64
}

func (b Box) validate() error {
	if b.X <= 0 || b.Y <= 0 || b.Z <= 0 {
		return fmt.Errorf("%w: got (%v, %v, %v)", ErrInvalidBox, b.X, b.Y, b.Z)
	}
	return nil
}

// Displacement returns the vector from atom j to atom i in the given
// configuration.
// Implements: prd002-records-and-datasets R12.
func Displacement(positions *array.Dense, config, i, j int) ([3]float64, error) {
	if err := checkAccess(positions, config, i, j); err != nil {
		return [3]float64{}, err
	}
	return displacement(positions, config, i, j, nil), nil
}

// DisplacementPBC is Displacement under an orthogonal periodic box.
func DisplacementPBC(positions *array.Dense, config, i, j int, box Box) ([3]float64, error) {
	if err := box.validate(); err != nil {
		return [3]float64{}, err
	}
	if err := checkAccess(positions, config, i, j); err != nil {
		return [3]float64{}, err
	}
	return displacement(positions, config, i, j, &box), nil
}

// PairsWithinCutoff enumerates the unique atom pairs of one
// configuration whose distance is at most cutoff, ordered by (I, J).
// Implements: prd002-records-and-datasets R12.
func PairsWithinCutoff(positions *array.Dense, config int, cutoff float64) ([]Pair, error) {
	return pairsWithin(positions, config, cutoff, nil)
}

// PairsWithinCutoffPBC is PairsWithinCutoff under an orthogonal
// periodic box.
func PairsWithinCutoffPBC(positions *array.Dense, config int, cutoff float64, box Box) ([]Pair, error) {
	if err := box.validate(); err != nil {
		return nil, err
	}
	return pairsWithin(positions, config, cutoff, &box)
}

// MinDistance returns the closest atom pair of one configuration.
// Implements: prd002-records-and-datasets R12.
func MinDistance(positions *array.Dense, config int) (Pair, error) {
	return minDistance(positions, config, nil)
}

// MinDistancePBC is MinDistance under an orthogonal periodic box.
func MinDistancePBC(positions *array.Dense, config int, box Box) (Pair, error) {
	if err := box.validate(); err != nil {
		return Pair{}, err
	}
	return minDistance(positions, config, &box)
}

// MinDistances returns the closest atom pair of every configuration,
// indexed by configuration.
func MinDistances(positions *array.Dense) ([]Pair, error) {
	if err := checkPositions(positions); err != nil {
		return nil, err
	}
	out := make([]Pair, positions.Dim(0))
	for c := range out {
		p, err := minDistance(positions, c, nil)
		if err != nil {
			return nil, err
		}
		out[c] = p
	}
	return out, nil
}

// MinDistancesPBC is MinDistances under an orthogonal periodic box.
func MinDistancesPBC(positions *array.Dense, box Box) ([]Pair, error) {
	if err := box.validate(); err != nil {
		return nil, err
	}
	if err := checkPositions(positions); err != nil {
		return nil, err
	}
	out := make([]Pair, positions.Dim(0))
	for c := range out {
		p, err := minDistance(positions, c, &box)
		if err != nil {
			return nil, err
		}
		out[c] = p
	}
	return out, nil
}

func pairsWithin(positions *array.Dense, config int, cutoff float64, box *Box) ([]Pair, error) {
	if cutoff <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidCutoff, cutoff)
	}
	if err := checkConfig(positions, config); err != nil {
		return nil, err
	}
	atoms := positions.Dim(1)
	var pairs []Pair
	for i := 0; i < atoms; i++ {
		for j := i + 1; j < atoms; j++ {
			d := distance(positions, config, i, j, box)
			if d <= cutoff {
				pairs = append(pairs, Pair{I: i, J: j, Distance: d})
			}
		}
	}
	return pairs, nil
}

func minDistance(positions *array.Dense, config int, box *Box) (Pair, error) {
	if err := checkConfig(positions, config); err != nil {
		return Pair{}, err
	}
	atoms := positions.Dim(1)
	if atoms < 2 {
		return Pair{}, fmt.Errorf("%w: got %d", ErrTooFewAtoms, atoms)
	}
	best := Pair{Distance: math.Inf(1)}
	for i := 0; i < atoms; i++ {
		for j := i + 1; j < atoms; j++ {
			if d := distance(positions, config, i, j, box); d < best.Distance {
				best = Pair{I: i, J: j, Distance: d}
			}
		}
	}
	return best, nil
}

func displacement(positions *array.Dense, config, i, j int, box *Box) [3]float64 {
	d := [3]float64{
		positions.At(config, i, 0) - positions.At(config, j, 0),
		positions.At(config, i, 1) - positions.At(config, j, 1),
		positions.At(config, i, 2) - positions.At(config, j, 2),
	}
	if box != nil {
		d[0] -= box.X * math.Round(d[0]/box.X)
		d[1] -= box.Y * math.Round(d[1]/box.Y)
		d[2] -= box.Z * math.Round(d[2]/box.Z)
	}
	return d
}

func distance(positions *array.Dense, config, i, j int, box *Box) float64 {
	d := displacement(positions, config, i, j, box)
	return math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
}

func checkPositions(positions *array.Dense) error {
	if positions == nil {
		return fmt.Errorf("%w: nil positions", array.ErrInvalidShape)
	}
	if positions.Rank() != 3 || positions.Dim(2) != 3 {
		return fmt.Errorf("%w: positions are %s, want (n_configs, n_atoms, 3)",
			array.ErrShapeMismatch, positions)
	}
	return nil
}

func checkConfig(positions *array.Dense, config int) error {
	if err := checkPositions(positions); err != nil {
		return err
	}
	if config < 0 || config >= positions.Dim(0) {
		return fmt.Errorf("%w: configuration %d of %d", array.ErrInvalidIndex, config, positions.Dim(0))
	}
	return nil
}

func checkAccess(positions *array.Dense, config, i, j int) error {
	if err := checkConfig(positions, config); err != nil {
		return err
	}
	atoms := positions.Dim(1)
	if i < 0 || i >= atoms || j < 0 || j >= atoms {
		return fmt.Errorf("%w: atoms (%d, %d) of %d", array.ErrInvalidIndex, i, j, atoms)
	}
	return nil
}
