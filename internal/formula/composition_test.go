package formula

import (
	"errors"
	"testing"
)

func TestComposition(t *testing.T) {
	counts, err := Composition("Al2(SO4)3")
	if err != nil {
		t.Fatalf("Composition failed: %v", err)
	}
	want := map[string]int{"Al": 2, "S": 3, "O": 12}
	if len(counts) != len(want) {
		t.Fatalf("Expected %d elements, got %d", len(want), len(counts))
	}
	for sym, n := range want {
		if counts[sym] != n {
			t.Errorf("Expected %s=%d, got %d", sym, n, counts[sym])
		}
	}

	for _, f := range []string{"(H9223372036854775807)2", "((H2)4611686018427387904)2", "H4611686018427387904(H4611686018427387904)"} {
		counts, err := Composition(f)
		if !errors.Is(err, ErrInvalidMultiplier) {
			t.Errorf("Composition(%q): expected ErrInvalidMultiplier, got %v (%v)", f, err, counts)
		}
	}
}

func TestPercentByMass(t *testing.T) {
	shares, err := PercentByMass("H2O")
	if err != nil {
		t.Fatalf("PercentByMass failed: %v", err)
	}
	if len(shares) != 2 {
		t.Fatalf("Expected 2 shares, got %d", len(shares))
	}
	if shares[0].Symbol != "H" || shares[0].Percent != 11.1 {
		t.Errorf("Expected H 11.1%%, got %+v", shares[0])
	}
	if shares[1].Symbol != "O" || shares[1].Percent != 88.9 {
		t.Errorf("Expected O 88.9%%, got %+v", shares[1])
	}

	if _, err := PercentByMass("Qq"); err == nil {
		t.Error("Expected error for unknown element")
	}
}

func TestElements(t *testing.T) {
	els := Elements()
	if len(els) != len(relativeAtomicMasses) {
		t.Fatalf("Expected %d elements, got %d", len(relativeAtomicMasses), len(els))
	}
	if els[0].Symbol != "H" || els[len(els)-1].Symbol != "Bi" {
		t.Errorf("Expected table to run H..Bi, got %s..%s", els[0].Symbol, els[len(els)-1].Symbol)
	}
	for i := 1; i < len(els); i++ {
		if els[i].Mass < els[i-1].Mass {
			t.Errorf("table not sorted at %d", i)
		}
	}
	if m, ok := AtomicMass("Cu"); !ok || m != 63.5 {
		t.Errorf("Expected Cu 63.5, got %v %v", m, ok)
	}
	if _, ok := AtomicMass("Uuo"); ok {
		t.Error("Expected Uuo to be unknown")
	}
}

func TestMathJax(t *testing.T) {
	tests := map[string]string{
		"H2O":     "H_{2}O",
		"Ca(OH)2": "Ca(OH)_{2}",
		"Na+":     "Na^{+}",
		"Cl-":     "Cl^{-}",
		"2+":      "^{2+}",
		"Na+Cl":   "Na+Cl",
	}
	for in, want := range tests {
		if got := MathJax(in); got != want {
			t.Errorf("MathJax(%q) = %q, want %q", in, got, want)
		}
	}
}
