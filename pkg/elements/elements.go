// Package elements provides periodic-table lookups and per-element self
// energies for dataset curation: symbol and atomic-number mapping, Hill
// formulas for record listings, and formation-energy bookkeeping.
package elements

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Element errors.
var (
	ErrUnknownElement    = errors.New("unknown element")
	ErrMissingSelfEnergy = errors.New("missing self energy")
)

// symbols lists element symbols indexed by atomic number minus one.
var symbols = [...]string{
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd",
	"In", "Sn", "Sb", "Te", "I", "Xe",
	"Cs", "Ba",
	"La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb", "Lu",
	"Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg",
	"Tl", "Pb", "Bi", "Po", "At", "Rn",
	"Fr", "Ra",
	"Ac", "Th", "Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf", "Es", "Fm", "Md", "No", "Lr",
	"Rf", "Db", "Sg", "Bh", "Hs", "Mt", "Ds", "Rg", "Cn",
	"Nh", "Fl", "Mc", "Lv", "Ts", "Og",
}

// numbers maps lower-cased symbols to atomic numbers.
var numbers = func() map[string]int64 {
	m := make(map[string]int64, len(symbols))
	for i, s := range symbols {
		m[strings.ToLower(s)] = int64(i + 1)
	}
	return m
}()

// MaxAtomicNumber is the highest atomic number in the table.
const MaxAtomicNumber = int64(len(symbols))

// Symbol returns the element symbol for an atomic number.
// Returns ErrUnknownElement outside [1, MaxAtomicNumber].
func Symbol(z int64) (string, error) {
	if z < 1 || z > MaxAtomicNumber {
		return "", fmt.Errorf("%w: atomic number %d", ErrUnknownElement, z)
	}
	return symbols[z-1], nil
}

// Number returns the atomic number for a symbol, case-insensitively.
// Returns ErrUnknownElement for unrecognized symbols.
func Number(symbol string) (int64, error) {
	z, ok := numbers[strings.ToLower(strings.TrimSpace(symbol))]
	if !ok {
		return 0, fmt.Errorf("%w: symbol %q", ErrUnknownElement, symbol)
	}
	return z, nil
}

// Numbers maps a list of symbols to atomic numbers.
func Numbers(symbols ...string) ([]int64, error) {
	zs := make([]int64, len(symbols))
	for i, s := range symbols {
		z, err := Number(s)
		if err != nil {
			return nil, err
		}
		zs[i] = z
	}
	return zs, nil
}

// Formula renders the atoms as a Hill-order formula: carbon first, then
// hydrogen, then the rest alphabetically; fully alphabetical without
// carbon. Counts above one are appended.
// Implements: prd002-records-and-datasets R11.
func Formula(zs []int64) (string, error) {
	counts := map[string]int{}
	for _, z := range zs {
		symbol, err := Symbol(z)
		if err != nil {
			return "", err
		}
		counts[symbol]++
	}
	rest := make([]string, 0, len(counts))
	for symbol := range counts {
		if symbol != "C" && symbol != "H" {
			rest = append(rest, symbol)
		}
	}
	sort.Strings(rest)

	ordered := rest
	if counts["C"] > 0 {
		ordered = append([]string{"C", "H"}, rest...)
	} else if counts["H"] > 0 {
		// Without carbon, hydrogen sorts alphabetically with the rest.
		ordered = insertSorted(rest, "H")
	}

	var b strings.Builder
	for _, symbol := range ordered {
		n := counts[symbol]
		if n == 0 {
			continue
		}
		b.WriteString(symbol)
		if n > 1 {
			b.WriteString(strconv.Itoa(n))
		}
	}
	return b.String(), nil
}

func insertSorted(sorted []string, s string) []string {
	i := sort.SearchStrings(sorted, s)
	out := make([]string, 0, len(sorted)+1)
	out = append(out, sorted[:i]...)
	out = append(out, s)
	out = append(out, sorted[i:]...)
	return out
}
