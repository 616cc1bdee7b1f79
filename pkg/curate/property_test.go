package curate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchtop/beaker/pkg/array"
	"github.com/benchtop/beaker/pkg/units"
)

func mustArray(t *testing.T, data []float64, shape ...int) *array.Dense {
	t.Helper()
	d, err := array.FromSlice(data, shape...)
	require.NoError(t, err)
	return d
}

func TestNewPropertyKinds(t *testing.T) {
	tests := []struct {
		name      string
		build     func(t *testing.T) (*Property, error)
		wantName  string
		wantClass Classification
		wantType  PropertyType
		wantShape []int
	}{
		{
			name: "atomic numbers",
			build: func(t *testing.T) (*Property, error) {
				return NewAtomicNumbers(mustArray(t, []float64{8, 1, 1}, 3, 1))
			},
			wantName:  "atomic_numbers",
			wantClass: ClassAtomicNumbers,
			wantType:  TypeAtomicNumbers,
			wantShape: []int{3, 1},
		},
		{
			name: "positions",
			build: func(t *testing.T) (*Property, error) {
				return NewPositions(mustArray(t, make([]float64, 18), 2, 3, 3), units.Angstrom)
			},
			wantName:  "positions",
			wantClass: ClassPerAtom,
			wantType:  TypeLength,
			wantShape: []int{2, 3, 3},
		},
		{
			name: "energies",
			build: func(t *testing.T) (*Property, error) {
				return NewEnergies(mustArray(t, []float64{-1.1, -1.2}, 2, 1), units.Hartree)
			},
			wantName:  "energies",
			wantClass: ClassPerSystem,
			wantType:  TypeEnergy,
			wantShape: []int{2, 1},
		},
		{
			name: "forces",
			build: func(t *testing.T) (*Property, error) {
				return NewForces(mustArray(t, make([]float64, 18), 2, 3, 3), units.HartreePerBohr)
			},
			wantName:  "forces",
			wantClass: ClassPerAtom,
			wantType:  TypeForce,
			wantShape: []int{2, 3, 3},
		},
		{
			name: "partial charges",
			build: func(t *testing.T) (*Property, error) {
				return NewPartialCharges(mustArray(t, make([]float64, 6), 2, 3, 1), units.ElementaryCharge)
			},
			wantName:  "partial_charges",
			wantClass: ClassPerAtom,
			wantType:  TypeCharge,
			wantShape: []int{2, 3, 1},
		},
		{
			name: "total charge",
			build: func(t *testing.T) (*Property, error) {
				return NewTotalCharge(mustArray(t, []float64{0, 1}, 2, 1), units.ElementaryCharge)
			},
			wantName:  "total_charge",
			wantClass: ClassPerSystem,
			wantType:  TypeCharge,
			wantShape: []int{2, 1},
		},
		{
			name: "dipole moment",
			build: func(t *testing.T) (*Property, error) {
				return NewDipoleMoment(mustArray(t, make([]float64, 6), 2, 3), units.Debye)
			},
			wantName:  "dipole_moment",
			wantClass: ClassPerSystem,
			wantType:  TypeDipole,
			wantShape: []int{2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.build(t)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
			assert.Equal(t, tt.wantClass, p.Classification())
			assert.Equal(t, tt.wantType, p.Type())
			assert.Equal(t, tt.wantShape, p.Array().Shape())
			assert.False(t, p.IsMetaData())
		})
	}
}

func TestNewPropertyUnitMismatch(t *testing.T) {
	_, err := NewPositions(mustArray(t, make([]float64, 9), 1, 3, 3), units.Hartree)
	assert.ErrorIs(t, err, units.ErrUnitMismatch)
	assert.ErrorContains(t, err, "positions")

	_, err = NewEnergies(mustArray(t, []float64{1}, 1, 1), units.Nanometer)
	assert.ErrorIs(t, err, units.ErrUnitMismatch)

	_, err = New(AtomicNumbers, mustArray(t, []float64{1}, 1, 1), units.Hartree)
	assert.ErrorIs(t, err, units.ErrUnitMismatch)
}

func TestNewPropertyShapeValidation(t *testing.T) {
	t.Run("per_atom needs rank 3", func(t *testing.T) {
		_, err := NewPositions(mustArray(t, make([]float64, 9), 3, 3), units.Nanometer)
		assert.ErrorIs(t, err, array.ErrShapeMismatch)
		assert.ErrorContains(t, err, "positions")
	})

	t.Run("per_atom component count", func(t *testing.T) {
		_, err := NewPositions(mustArray(t, make([]float64, 8), 1, 2, 4), units.Nanometer)
		assert.ErrorIs(t, err, array.ErrShapeMismatch)
	})

	t.Run("per_system rank 1 normalizes", func(t *testing.T) {
		p, err := NewEnergies(mustArray(t, []float64{1, 2, 3}, 3), units.Hartree)
		require.NoError(t, err)
		assert.Equal(t, []int{3, 1}, p.Array().Shape())
	})

	t.Run("per_system rank 1 needs one component", func(t *testing.T) {
		_, err := NewDipoleMoment(mustArray(t, []float64{1, 2, 3}, 3), units.Debye)
		assert.ErrorIs(t, err, array.ErrShapeMismatch)
	})

	t.Run("per_system component count", func(t *testing.T) {
		_, err := NewDipoleMoment(mustArray(t, make([]float64, 4), 2, 2), units.Debye)
		assert.ErrorIs(t, err, array.ErrShapeMismatch)
	})
}

func TestNewAtomicNumbers(t *testing.T) {
	t.Run("rank 1 normalizes", func(t *testing.T) {
		p, err := NewAtomicNumbers(mustArray(t, []float64{6, 1, 1, 1, 1}, 5))
		require.NoError(t, err)
		assert.Equal(t, []int{5, 1}, p.Array().Shape())
	})

	t.Run("rank 2 column", func(t *testing.T) {
		p, err := NewAtomicNumbers(mustArray(t, []float64{8, 1}, 2, 1))
		require.NoError(t, err)
		assert.Equal(t, []int{2, 1}, p.Array().Shape())
	})

	t.Run("wide rank 2 rejected", func(t *testing.T) {
		_, err := NewAtomicNumbers(mustArray(t, []float64{8, 1, 1, 6}, 2, 2))
		assert.ErrorIs(t, err, array.ErrShapeMismatch)
	})

	t.Run("non-integral rejected", func(t *testing.T) {
		_, err := NewAtomicNumbers(mustArray(t, []float64{1.5}, 1))
		assert.ErrorIs(t, err, array.ErrNotIntegral)
	})

	t.Run("out of range rejected", func(t *testing.T) {
		_, err := NewAtomicNumbers(mustArray(t, []float64{0}, 1))
		assert.ErrorIs(t, err, ErrInvalidPayload)

		_, err = NewAtomicNumbers(mustArray(t, []float64{119}, 1))
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})
}

func TestCustomKind(t *testing.T) {
	spin := Kind{
		Name:           "spin_multiplicities",
		Type:           TypeDimensionless,
		Classification: ClassPerSystem,
		Components:     1,
	}
	p, err := New(spin, mustArray(t, []float64{1, 1, 3}, 3), units.Dimensionless)
	require.NoError(t, err)
	assert.Equal(t, "spin_multiplicities", p.Name())
	assert.Equal(t, []int{3, 1}, p.Array().Shape())
}

func TestInvalidKinds(t *testing.T) {
	payload := mustArray(t, []float64{1}, 1, 1)

	tests := []struct {
		name string
		kind Kind
	}{
		{name: "empty name", kind: Kind{Type: TypeEnergy, Classification: ClassPerSystem}},
		{name: "bad classification", kind: Kind{Name: "x", Type: TypeEnergy, Classification: "per_molecule"}},
		{name: "bad type", kind: Kind{Name: "x", Type: "entropy", Classification: ClassPerSystem}},
		{name: "negative components", kind: Kind{Name: "x", Type: TypeEnergy, Classification: ClassPerSystem, Components: -1}},
		{name: "meta class non-meta type", kind: Kind{Name: "x", Type: TypeEnergy, Classification: ClassMetaData}},
		{name: "meta type non-meta class", kind: Kind{Name: "x", Type: TypeMetaData, Classification: ClassPerSystem}},
		{name: "atomic numbers type elsewhere", kind: Kind{Name: "x", Type: TypeAtomicNumbers, Classification: ClassPerSystem}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.kind, payload, units.Unit{})
			assert.ErrorIs(t, err, ErrInvalidKind)
		})
	}

	t.Run("metadata kind via New", func(t *testing.T) {
		_, err := New(MetaData, payload, units.Unit{})
		assert.ErrorIs(t, err, ErrInvalidKind)
	})

	t.Run("nil payload", func(t *testing.T) {
		_, err := New(Energies, nil, units.Hartree)
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})
}

func TestNewMetaData(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{name: "string", value: "CCO"},
		{name: "float", value: 12.5},
		{name: "int", value: 42},
		{name: "list", value: []string{"a", "b"}},
		{name: "nil", value: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewMetaData("smiles", tt.value)
			require.NoError(t, err)
			assert.True(t, p.IsMetaData())
			assert.Equal(t, "smiles", p.Name())
			assert.Equal(t, tt.value, p.Meta())
			assert.Nil(t, p.Array())
		})
	}

	t.Run("empty name", func(t *testing.T) {
		_, err := NewMetaData("", "x")
		assert.ErrorIs(t, err, ErrInvalidName)
	})

	t.Run("unrepresentable value", func(t *testing.T) {
		_, err := NewMetaData("ch", make(chan int))
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})
}

func TestSetName(t *testing.T) {
	p, err := NewPositions(mustArray(t, make([]float64, 9), 1, 3, 3), units.Angstrom)
	require.NoError(t, err)

	require.NoError(t, p.SetName("geometry"))
	assert.Equal(t, "geometry", p.Name())
	assert.Equal(t, ClassPerAtom, p.Classification(), "kind must survive renames")
	assert.Equal(t, TypeLength, p.Type())

	assert.ErrorIs(t, p.SetName(""), ErrInvalidName)
	assert.Equal(t, "geometry", p.Name(), "failed rename must not change the name")
}

func TestConverted(t *testing.T) {
	p, err := NewEnergies(mustArray(t, []float64{1, 2}, 2, 1), units.Hartree)
	require.NoError(t, err)

	q, err := p.Converted(units.KilojoulePerMole)
	require.NoError(t, err)
	assert.Equal(t, units.KilojoulePerMole, q.Units())
	assert.InDelta(t, 2625.4996394798254, q.Array().At(0, 0), 1e-9)
	assert.InDelta(t, 5250.999278959651, q.Array().At(1, 0), 1e-9)
	assert.Equal(t, float64(1), p.Array().At(0, 0), "source property must be untouched")

	t.Run("cross dimension", func(t *testing.T) {
		_, err := p.Converted(units.Nanometer)
		assert.ErrorIs(t, err, units.ErrUnitMismatch)
	})

	t.Run("atomic numbers refuse", func(t *testing.T) {
		z, err := NewAtomicNumbers(mustArray(t, []float64{1}, 1))
		require.NoError(t, err)
		_, err = z.Converted(units.Dimensionless)
		assert.ErrorIs(t, err, units.ErrUnitMismatch)
	})

	t.Run("metadata refuses", func(t *testing.T) {
		m, err := NewMetaData("smiles", "O")
		require.NoError(t, err)
		_, err = m.Converted(units.Dimensionless)
		assert.ErrorIs(t, err, units.ErrUnitMismatch)
	})
}

func TestPropertyAxes(t *testing.T) {
	z, err := NewAtomicNumbers(mustArray(t, []float64{8, 1, 1}, 3))
	require.NoError(t, err)
	atoms, ok := z.Atoms()
	assert.True(t, ok)
	assert.Equal(t, 3, atoms)
	_, ok = z.Configs()
	assert.False(t, ok, "atomic numbers have no configuration axis")

	pos, err := NewPositions(mustArray(t, make([]float64, 18), 2, 3, 3), units.Nanometer)
	require.NoError(t, err)
	atoms, ok = pos.Atoms()
	assert.True(t, ok)
	assert.Equal(t, 3, atoms)
	configs, ok := pos.Configs()
	assert.True(t, ok)
	assert.Equal(t, 2, configs)

	e, err := NewEnergies(mustArray(t, []float64{1, 2, 3, 4}, 4), units.Hartree)
	require.NoError(t, err)
	configs, ok = e.Configs()
	assert.True(t, ok)
	assert.Equal(t, 4, configs)
	_, ok = e.Atoms()
	assert.False(t, ok, "per-system properties have no atom axis")
}
