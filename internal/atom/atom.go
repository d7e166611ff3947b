// Package atom builds the Bohr-model view of the first twenty elements.
package atom

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	MinProtons = 1
	MaxProtons = 20

	electronSize = 9
	shellOffset  = 15.0
)

var ErrOutOfRange = errors.New("atom: select protons between 1 and 20")

var (
	symbols = [...]string{"", "H", "He", "Li", "Be", "B", "C", "N", "O", "F", "Ne",
		"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar", "K", "Ca"}
	names = [...]string{"", "Hydrogen", "Helium", "Lithium", "Beryllium", "Boron", "Carbon",
		"Nitrogen", "Oxygen", "Fluorine", "Neon", "Sodium", "Magnesium", "Aluminium", "Silicon",
		"Phosphorus", "Sulfur", "Chlorine", "Argon", "Potassium", "Calcium"}

	shellCapacity = [...]int{2, 8, 8, 2}
	shellRadius   = [...]float64{35, 55, 75, 95}
)

// Electron is a dot drawn on a shell, relative to the nucleus centre.
type Electron struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"`
}

// Shell is one occupied electron shell.
type Shell struct {
	Radius    float64    `json:"radius"`
	Electrons []Electron `json:"electrons"`
}

// Atom is a neutral atom with the given protons and neutrons.
type Atom struct {
	Protons       int     `json:"protons"`
	Neutrons      int     `json:"neutrons"`
	MassNumber    int     `json:"mass_number"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Configuration []int   `json:"configuration"`
	Shells        []Shell `json:"shells"`
	ElectronSize  int     `json:"electron_size"`
}

// ConfigString renders the configuration as "2,8,1".
func (a Atom) ConfigString() string {
	parts := make([]string, len(a.Configuration))
	for i, n := range a.Configuration {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// Build returns the atom with protons in [1, 20]. Negative neutron counts are rejected.
func Build(protons, neutrons int) (Atom, error) {
	if protons < MinProtons || protons > MaxProtons {
		return Atom{}, ErrOutOfRange
	}
	if neutrons < 0 {
		return Atom{}, fmt.Errorf("atom: neutrons must not be negative, got %d", neutrons)
	}
	a := Atom{
		Protons:       protons,
		Neutrons:      neutrons,
		MassNumber:    protons + neutrons,
		Symbol:        symbols[protons],
		Name:          names[protons],
		Configuration: Configuration(protons),
		ElectronSize:  electronSize,
	}
	for i, n := range a.Configuration {
		a.Shells = append(a.Shells, layoutShell(i, n))
	}
	return a, nil
}

// Configuration fills shells of capacity 2, 8, 8, 2 in order.
func Configuration(electrons int) []int {
	var config []int
	for _, capacity := range shellCapacity {
		if electrons <= 0 {
			break
		}
		n := min(electrons, capacity)
		config = append(config, n)
		electrons -= n
	}
	return config
}

func layoutShell(index, n int) Shell {
	r := shellRadius[index]
	s := Shell{Radius: r, Electrons: make([]Electron, n)}
	for i := 0; i < n; i++ {
		angle := 360/float64(n)*float64(i) + float64(index)*shellOffset
		rad := angle * math.Pi / 180
		s.Electrons[i] = Electron{X: r * math.Cos(rad), Y: r * math.Sin(rad), Angle: angle}
	}
	return s
}
