package elements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchtop/beaker/pkg/units"
)

func TestSymbol(t *testing.T) {
	tests := []struct {
		z    int64
		want string
	}{
		{1, "H"},
		{6, "C"},
		{8, "O"},
		{26, "Fe"},
		{118, "Og"},
	}
	for _, tt := range tests {
		got, err := Symbol(tt.z)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := Symbol(0)
	assert.ErrorIs(t, err, ErrUnknownElement)
	_, err = Symbol(119)
	assert.ErrorIs(t, err, ErrUnknownElement)
}

func TestNumber(t *testing.T) {
	tests := []struct {
		symbol string
		want   int64
	}{
		{"H", 1},
		{"c", 6},
		{"Fe", 26},
		{"og", 118},
		{" N ", 7},
	}
	for _, tt := range tests {
		got, err := Number(tt.symbol)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "symbol %q", tt.symbol)
	}

	_, err := Number("Xx")
	assert.ErrorIs(t, err, ErrUnknownElement)
}

func TestNumbers(t *testing.T) {
	zs, err := Numbers("C", "H", "O")
	require.NoError(t, err)
	assert.Equal(t, []int64{6, 1, 8}, zs)

	_, err = Numbers("C", "Qq")
	assert.ErrorIs(t, err, ErrUnknownElement)
}

func TestSymbolNumberRoundTrip(t *testing.T) {
	for z := int64(1); z <= MaxAtomicNumber; z++ {
		symbol, err := Symbol(z)
		require.NoError(t, err)
		back, err := Number(symbol)
		require.NoError(t, err)
		assert.Equal(t, z, back, "round trip for %s", symbol)
	}
}

func TestFormula(t *testing.T) {
	tests := []struct {
		name string
		zs   []int64
		want string
	}{
		{name: "water", zs: []int64{8, 1, 1}, want: "H2O"},
		{name: "methane", zs: []int64{6, 1, 1, 1, 1}, want: "CH4"},
		{name: "ethanol", zs: []int64{6, 6, 8, 1, 1, 1, 1, 1, 1}, want: "C2H6O"},
		{name: "salt sorts alphabetically", zs: []int64{11, 17}, want: "ClNa"},
		{name: "sulfuric acid", zs: []int64{1, 1, 16, 8, 8, 8, 8}, want: "H2O4S"},
		{name: "single atom", zs: []int64{10}, want: "Ne"},
		{name: "empty", zs: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Formula(tt.zs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Formula([]int64{0})
	assert.ErrorIs(t, err, ErrUnknownElement)
}

// qm9SelfEnergies builds the table a QM9-style source ships, in kJ/mol.
func qm9SelfEnergies(t *testing.T) *SelfEnergies {
	t.Helper()
	s := NewSelfEnergies()
	values := map[string]float64{
		"H": -1313.4668615546,
		"C": -99366.70745535441,
		"N": -143309.9379722722,
		"O": -197082.0671774158,
		"F": -261811.54555874597,
	}
	for symbol, v := range values {
		require.NoError(t, s.SetBySymbol(symbol, units.NewQuantity(v, units.KilojoulePerMole)))
	}
	return s
}

func TestSelfEnergiesSet(t *testing.T) {
	s := NewSelfEnergies()

	require.NoError(t, s.Set(1, units.NewQuantity(-0.5, units.Hartree)))
	q, ok := s.Energy(1)
	require.True(t, ok)
	assert.Equal(t, units.Hartree, q.Unit)

	err := s.Set(0, units.NewQuantity(1, units.Hartree))
	assert.ErrorIs(t, err, ErrUnknownElement)

	err = s.Set(1, units.NewQuantity(1, units.Nanometer))
	assert.ErrorIs(t, err, units.ErrUnitMismatch)

	err = s.SetBySymbol("Zz", units.NewQuantity(1, units.Hartree))
	assert.ErrorIs(t, err, ErrUnknownElement)
}

func TestSelfEnergiesElements(t *testing.T) {
	s := qm9SelfEnergies(t)
	assert.Equal(t, []int64{1, 6, 7, 8, 9}, s.Elements())
	assert.Equal(t, 5, s.Len())
}

func TestTotalFor(t *testing.T) {
	s := qm9SelfEnergies(t)

	total, err := s.TotalFor([]int64{8, 1, 1}, units.KilojoulePerMole)
	require.NoError(t, err)
	assert.InDelta(t, -199709.000900525, total, 1e-6)

	t.Run("converts to target units", func(t *testing.T) {
		inHartree, err := s.TotalFor([]int64{8, 1, 1}, units.Hartree)
		require.NoError(t, err)
		want, err := units.KilojoulePerMole.Convert(total, units.Hartree)
		require.NoError(t, err)
		assert.InDelta(t, want, inHartree, 1e-9)
	})

	t.Run("missing element", func(t *testing.T) {
		_, err := s.TotalFor([]int64{16}, units.KilojoulePerMole)
		assert.ErrorIs(t, err, ErrMissingSelfEnergy)
		assert.ErrorContains(t, err, "S")
	})
}

func TestRemoveFrom(t *testing.T) {
	s := qm9SelfEnergies(t)

	formation, err := s.RemoveFrom([]float64{-200000, -199800}, units.KilojoulePerMole, []int64{8, 1, 1})
	require.NoError(t, err)
	require.Len(t, formation, 2)
	assert.InDelta(t, -290.999099475, formation[0], 1e-6)
	assert.InDelta(t, -90.999099475, formation[1], 1e-6)

	_, err = s.RemoveFrom([]float64{1}, units.KilojoulePerMole, []int64{3})
	assert.ErrorIs(t, err, ErrMissingSelfEnergy)
}
