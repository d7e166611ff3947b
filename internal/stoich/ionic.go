package stoich

import (
	"strconv"
	"unicode"

	"github.com/stranger0g/NoteBase/internal/formula"
)

// Ion is a charged species. Anion charges may be given with either sign.
type Ion struct {
	Symbol string `json:"symbol"`
	Charge int    `json:"charge"`
}

// Polyatomic reports whether the ion contains more than one element symbol.
func (i Ion) Polyatomic() bool {
	upper := 0
	for _, r := range i.Symbol {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	return upper > 1
}

// Cations and Anions are the ions offered by the formula builder.
var (
	Cations = []Ion{
		{"Na", 1}, {"K", 1}, {"Ag", 1}, {"NH4", 1}, {"H", 1},
		{"Mg", 2}, {"Ca", 2}, {"Cu", 2}, {"Zn", 2}, {"Fe", 2}, {"Pb", 2}, {"Ba", 2},
		{"Fe", 3}, {"Al", 3},
	}
	Anions = []Ion{
		{"Cl", -1}, {"Br", -1}, {"I", -1}, {"OH", -1}, {"NO3", -1}, {"HCO3", -1},
		{"O", -2}, {"S", -2}, {"SO4", -2}, {"CO3", -2},
		{"N", -3}, {"PO4", -3},
	}
)

// IonicResult is a neutral ionic formula built from two ions.
type IonicResult struct {
	Formula     string  `json:"formula"`
	MathJax     string  `json:"mathjax"`
	CationCount int     `json:"cation_count"`
	AnionCount  int     `json:"anion_count"`
	Mr          float64 `json:"mr"`
}

// IonicFormula balances the charges of cation and anion using their lowest
// common multiple. Polyatomic ions are bracketed when more than one is needed.
func IonicFormula(cation, anion Ion) (IonicResult, error) {
	if cation.Symbol == "" || anion.Symbol == "" {
		return IonicResult{}, invalid("ion", "please select valid ions")
	}
	cc, ac := abs(cation.Charge), abs(anion.Charge)
	if cc == 0 || ac == 0 {
		return IonicResult{}, invalid("charge", "charges cannot be zero")
	}

	l := LCM(cc, ac)
	res := IonicResult{CationCount: l / cc, AnionCount: l / ac}
	res.Formula = ionPart(cation, res.CationCount) + ionPart(anion, res.AnionCount)
	res.MathJax = formula.MathJax(res.Formula)

	mr, err := formula.RelativeFormulaMass(res.Formula)
	if err != nil {
		return IonicResult{}, invalid("ion", err.Error())
	}
	res.Mr = mr
	return res, nil
}

func ionPart(ion Ion, n int) string {
	if n == 1 {
		return ion.Symbol
	}
	if ion.Polyatomic() {
		return "(" + ion.Symbol + ")" + strconv.Itoa(n)
	}
	return ion.Symbol + strconv.Itoa(n)
}

// GCD returns the greatest common divisor of |a| and |b|.
func GCD(a, b int) int {
	a, b = abs(a), abs(b)
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// LCM returns the lowest common multiple of |a| and |b|, or 0 if either is 0.
func LCM(a, b int) int {
	a, b = abs(a), abs(b)
	if a == 0 || b == 0 {
		return 0
	}
	return a / GCD(a, b) * b
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
