package formula

import "sort"

// relativeAtomicMasses covers hydrogen through bismuth as printed in the
// syllabus data booklet (one decimal place).
var relativeAtomicMasses = map[string]float64{
	"H": 1.0, "He": 4.0, "Li": 6.9, "Be": 9.0, "B": 10.8, "C": 12.0, "N": 14.0, "O": 16.0,
	"F": 19.0, "Ne": 20.2, "Na": 23.0, "Mg": 24.3, "Al": 27.0, "Si": 28.1, "P": 31.0,
	"S": 32.1, "Cl": 35.5, "Ar": 39.9, "K": 39.1, "Ca": 40.1, "Sc": 45.0, "Ti": 47.9,
	"V": 50.9, "Cr": 52.0, "Mn": 54.9, "Fe": 55.8, "Co": 58.9, "Ni": 58.7, "Cu": 63.5,
	"Zn": 65.4, "Ga": 69.7, "Ge": 72.6, "As": 74.9, "Se": 79.0, "Br": 79.9, "Kr": 83.8,
	"Rb": 85.5, "Sr": 87.6, "Y": 88.9, "Zr": 91.2, "Nb": 92.9, "Mo": 95.9, "Ag": 107.9,
	"Cd": 112.4, "In": 114.8, "Sn": 118.7, "Sb": 121.8, "Te": 127.6, "I": 126.9,
	"Xe": 131.3, "Cs": 132.9, "Ba": 137.3, "La": 138.9, "Hf": 178.5, "Ta": 180.9,
	"W": 183.8, "Re": 186.2, "Os": 190.2, "Ir": 192.2, "Pt": 195.1, "Au": 197.0,
	"Hg": 200.6, "Tl": 204.4, "Pb": 207.2, "Bi": 209.0,
}

// Element is one row of the atomic mass table.
type Element struct {
	Symbol string  `json:"symbol"`
	Mass   float64 `json:"mass"`
}

// AtomicMass returns the relative atomic mass for symbol.
func AtomicMass(symbol string) (float64, bool) {
	m, ok := relativeAtomicMasses[symbol]
	return m, ok
}

// Symbols returns every known element symbol ordered by ascending mass.
func Symbols() []string {
	elements := Elements()
	out := make([]string, len(elements))
	for i, el := range elements {
		out[i] = el.Symbol
	}
	return out
}

// Elements returns the full table ordered by ascending mass.
func Elements() []Element {
	out := make([]Element, 0, len(relativeAtomicMasses))
	for sym, m := range relativeAtomicMasses {
		out = append(out, Element{Symbol: sym, Mass: m})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mass != out[j].Mass {
			return out[i].Mass < out[j].Mass
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}
