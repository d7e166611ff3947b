package stoich

import "fmt"

// BalanceResult reports atom counts on both sides of 2H₂ + O₂ → 2H₂O.
type BalanceResult struct {
	Balanced  bool   `json:"balanced"`
	ReactantH int    `json:"reactant_h"`
	ReactantO int    `json:"reactant_o"`
	ProductH  int    `json:"product_h"`
	ProductO  int    `json:"product_o"`
	Message   string `json:"message"`
}

// CheckWaterBalance checks the coefficients a student entered for the
// formation of water.
func CheckWaterBalance(h2, o2, h2o int) (BalanceResult, error) {
	if h2 <= 0 || o2 <= 0 || h2o <= 0 {
		return BalanceResult{}, invalid("coefficients", "coefficients must be positive integers")
	}
	r := BalanceResult{
		ReactantH: h2 * 2,
		ReactantO: o2 * 2,
		ProductH:  h2o * 2,
		ProductO:  h2o,
	}
	r.Balanced = r.ReactantH == r.ProductH && r.ReactantO == r.ProductO
	if r.Balanced {
		r.Message = "Equation is BALANCED!"
	} else {
		r.Message = fmt.Sprintf("NOT balanced. Reactants: %dH, %dO | Products: %dH, %dO.",
			r.ReactantH, r.ReactantO, r.ProductH, r.ProductO)
	}
	return r, nil
}
