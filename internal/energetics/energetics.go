// Package energetics computes enthalpy changes from bond energies.
package energetics

import (
	"fmt"
	"math"
	"strconv"
)

// Kind classifies the sign of an enthalpy change.
type Kind string

const (
	Exothermic  Kind = "Exothermic"
	Endothermic Kind = "Endothermic"
	Neutral     Kind = "Neutral"
)

// Enthalpy is ΔH in kJ/mol.
type Enthalpy struct {
	Broken float64 `json:"broken"`
	Formed float64 `json:"formed"`
	Value  float64 `json:"value"`
	Kind   Kind    `json:"kind"`
}

// DeltaH returns ΔH = Σ(bonds broken) − Σ(bonds formed).
func DeltaH(broken, formed float64) (Enthalpy, error) {
	if math.IsNaN(broken) || math.IsNaN(formed) || math.IsInf(broken, 0) || math.IsInf(formed, 0) {
		return Enthalpy{}, fmt.Errorf("energetics: enter valid numbers for both energy values")
	}
	h := Enthalpy{Broken: broken, Formed: formed, Value: broken - formed}
	switch {
	case h.Value < 0:
		h.Kind = Exothermic
	case h.Value > 0:
		h.Kind = Endothermic
	default:
		h.Kind = Neutral
	}
	return h, nil
}

// Formatted prints whole values without decimals and others to one decimal
// place. Positive values carry a leading '+'.
func (h Enthalpy) Formatted() string {
	var s string
	if h.Value == math.Trunc(h.Value) {
		s = strconv.FormatFloat(h.Value, 'f', 0, 64)
	} else {
		s = strconv.FormatFloat(h.Value, 'f', 1, 64)
	}
	if h.Value > 0 {
		s = "+" + s
	}
	return s
}

// Equation is the worked line shown under the calculator.
func (h Enthalpy) Equation() string {
	return fmt.Sprintf("ΔH = %s - %s = %s kJ/mol",
		strconv.FormatFloat(h.Broken, 'f', -1, 64),
		strconv.FormatFloat(h.Formed, 'f', -1, 64),
		h.Formatted())
}
