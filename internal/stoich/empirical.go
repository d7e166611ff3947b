package stoich

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/stranger0g/NoteBase/internal/formula"
)

const (
	empiricalTolerance = 0.1
	maxMultiplier      = 6
)

// ElementInput is one row of the empirical formula form. Composition is a
// mass or a percentage; a non-positive Ar is looked up in the mass table.
type ElementInput struct {
	Symbol      string  `json:"symbol"`
	Ar          float64 `json:"ar"`
	Composition float64 `json:"composition"`
}

// FormulaPart is an element and its whole-number count.
type FormulaPart struct {
	Symbol string `json:"symbol"`
	Count  int    `json:"count"`
}

// EmpiricalResult is the outcome of EmpiricalFormula, including the
// intermediate working shown to students.
type EmpiricalResult struct {
	Formula    string        `json:"formula"`
	Parts      []FormulaPart `json:"parts"`
	Multiplier int           `json:"multiplier"`
	// Approximate is set when no multiplier brought the ratios close to whole numbers.
	Approximate bool     `json:"approximate"`
	Steps       []string `json:"steps"`
}

type empiricalRow struct {
	symbol string
	ar     float64
	comp   float64
	moles  float64
	ratio  float64
}

// NormalizeSymbol capitalizes the first letter and lower-cases the rest.
func NormalizeSymbol(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// EmpiricalFormula derives the simplest whole-number ratio for two or three elements.
func EmpiricalFormula(inputs []ElementInput) (EmpiricalResult, error) {
	if len(inputs) < 2 {
		return EmpiricalResult{}, invalid("elements", "need data for at least 2 elements")
	}
	if len(inputs) > 3 {
		return EmpiricalResult{}, invalid("elements", "at most 3 elements are supported")
	}

	rows := make([]empiricalRow, 0, len(inputs))
	for _, in := range inputs {
		sym := NormalizeSymbol(in.Symbol)
		if sym == "" {
			return EmpiricalResult{}, invalid("symbol", "element symbol required")
		}
		ar := in.Ar
		if ar <= 0 {
			m, ok := formula.AtomicMass(sym)
			if !ok {
				return EmpiricalResult{}, invalid("ar", fmt.Sprintf("valid Ar required for %s", sym))
			}
			ar = m
		}
		if in.Composition <= 0 {
			return EmpiricalResult{}, invalid("composition", fmt.Sprintf("composition/mass for %s must be > 0", sym))
		}
		rows = append(rows, empiricalRow{symbol: sym, ar: ar, comp: in.Composition, moles: in.Composition / ar})
	}

	minMoles := math.Inf(1)
	for _, r := range rows {
		if math.IsNaN(r.moles) || math.IsInf(r.moles, 0) {
			return EmpiricalResult{}, invalid("composition", fmt.Sprintf("invalid calculation for %s", r.symbol))
		}
		minMoles = math.Min(minMoles, r.moles)
	}
	for i := range rows {
		rows[i].ratio = rows[i].moles / minMoles
	}

	// ratios already close to whole numbers keep multiplier 1
	multiplier := 0
	for m := 1; m <= maxMultiplier; m++ {
		if nearWhole(rows, float64(m), empiricalTolerance*float64(m)) {
			multiplier = m
			break
		}
	}
	res := EmpiricalResult{Multiplier: multiplier}
	if multiplier == 0 {
		res.Multiplier = 1
		res.Approximate = true
	}
	multiplier = res.Multiplier

	for _, r := range rows {
		n := int(math.Round(r.ratio * float64(multiplier)))
		if n <= 0 {
			return EmpiricalResult{}, invalid("composition", fmt.Sprintf("cannot get whole ratio for %s", r.symbol))
		}
		res.Parts = append(res.Parts, FormulaPart{Symbol: r.symbol, Count: n})
	}
	sort.SliceStable(res.Parts, func(i, j int) bool {
		return hillLess(res.Parts[i].Symbol, res.Parts[j].Symbol)
	})

	var b strings.Builder
	for _, p := range res.Parts {
		b.WriteString(p.Symbol)
		if p.Count > 1 {
			b.WriteString(strconv.Itoa(p.Count))
		}
	}
	res.Formula = b.String()

	for _, r := range rows {
		res.Steps = append(res.Steps, fmt.Sprintf("Moles %s: %.2f / %.1f = %s mol",
			r.symbol, r.comp, r.ar, Precision(r.moles, displayPrecision)))
	}
	res.Steps = append(res.Steps, fmt.Sprintf("Smallest moles = %s mol", Precision(minMoles, displayPrecision)))
	for _, r := range rows {
		res.Steps = append(res.Steps, fmt.Sprintf("Ratio %s: %s / %s ≈ %.2f",
			r.symbol, Precision(r.moles, displayPrecision), Precision(minMoles, displayPrecision), r.ratio))
	}
	if multiplier > 1 {
		res.Steps = append(res.Steps, fmt.Sprintf("Multiply ratios by %d → Whole numbers.", multiplier))
	}
	return res, nil
}

func nearWhole(rows []empiricalRow, m, tolerance float64) bool {
	for _, r := range rows {
		scaled := r.ratio * m
		if math.Abs(scaled-math.Round(scaled)) > tolerance {
			return false
		}
	}
	return true
}

// hillLess orders carbon first, hydrogen second, then alphabetically.
func hillLess(a, b string) bool {
	switch {
	case a == b:
		return false
	case a == "C":
		return true
	case b == "C":
		return false
	case a == "H":
		return true
	case b == "H":
		return false
	}
	return a < b
}
