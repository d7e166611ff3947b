package formula

// Share is one element's contribution to a compound.
type Share struct {
	Symbol  string  `json:"symbol"`
	Count   int     `json:"count"`
	Mass    float64 `json:"mass"`
	Percent float64 `json:"percent"`
}

// Composition returns the number of atoms of each element in formula,
// with groups expanded.
func Composition(formula string) (map[string]int, error) {
	terms, err := Parse(formula)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	flatten(terms, 1, counts, nil)
	return counts, nil
}

// PercentByMass returns each element's percentage of the formula mass, in
// order of first appearance. Percentages are rounded to one decimal place.
func PercentByMass(formula string) ([]Share, error) {
	terms, err := Parse(formula)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	var order []string
	flatten(terms, 1, counts, &order)

	total := Mass(terms)
	shares := make([]Share, 0, len(order))
	for _, sym := range order {
		m := relativeAtomicMasses[sym] * float64(counts[sym])
		s := Share{Symbol: sym, Count: counts[sym], Mass: Round1(m)}
		if total > 0 {
			s.Percent = Round1(m / total * 100)
		}
		shares = append(shares, s)
	}
	return shares, nil
}

func flatten(terms []Term, factor int, counts map[string]int, order *[]string) {
	for _, t := range terms {
		if t.IsGroup() {
			flatten(t.Group, factor*t.Count, counts, order)
			continue
		}
		if _, seen := counts[t.Symbol]; !seen && order != nil {
			*order = append(*order, t.Symbol)
		}
		counts[t.Symbol] += t.Count * factor
	}
}
