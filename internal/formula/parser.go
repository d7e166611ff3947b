// Package formula parses chemical formulas and computes relative formula mass.
package formula

import (
	"math"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Term is either an element with a count or a parenthesized group with a
// multiplier. Group is nil for element terms.
type Term struct {
	Symbol string `json:"symbol,omitempty"`
	Count  int    `json:"count"`
	Group  []Term `json:"group,omitempty"`
}

// IsGroup reports whether the term is a parenthesized group.
func (t Term) IsGroup() bool {
	return t.Group != nil
}

// Parse splits formula into terms. Every error is a *ParseError.
func Parse(formula string) ([]Term, error) {
	terms, _, _, err := parseSequence(formula, 0, len(formula))
	if err != nil {
		return nil, err
	}
	return terms, nil
}

// parseSequence scans src[pos:end] and returns the terms found, the cursor
// position it stopped at and the number of atoms the terms expand to. The
// atom total bounds every per-element count and never overflows.
func parseSequence(src string, pos, end int) ([]Term, int, int, error) {
	terms := []Term{}
	atoms := 0
	for pos < end {
		c := src[pos]
		switch {
		case c == '(':
			closeAt, err := matchingParen(src, pos, end)
			if err != nil {
				return nil, pos, 0, err
			}
			inner, _, innerAtoms, err := parseSequence(src, pos+1, closeAt)
			if err != nil {
				return nil, pos, 0, err
			}
			n, next, err := readCount(src, closeAt+1, end, "")
			if err != nil {
				return nil, pos, 0, err
			}
			expanded, ok := mulCount(innerAtoms, n)
			if ok {
				atoms, ok = addCount(atoms, expanded)
			}
			if !ok {
				return nil, pos, 0, &ParseError{Kind: InvalidMultiplier, Index: closeAt + 1}
			}
			terms = append(terms, Term{Count: n, Group: inner})
			pos = next

		case 'A' <= c && c <= 'Z':
			start := pos
			pos++
			if pos < end && 'a' <= src[pos] && src[pos] <= 'z' {
				pos++
			}
			symbol := src[start:pos]
			if _, ok := relativeAtomicMasses[symbol]; !ok {
				return nil, start, 0, &ParseError{Kind: UnknownElement, Index: start, Symbol: symbol}
			}
			n, next, err := readCount(src, pos, end, symbol)
			if err != nil {
				return nil, pos, 0, err
			}
			var ok bool
			if atoms, ok = addCount(atoms, n); !ok {
				return nil, start, 0, &ParseError{Kind: InvalidMultiplier, Index: start, Symbol: symbol}
			}
			terms = append(terms, Term{Symbol: symbol, Count: n})
			pos = next

		default:
			r, size := utf8.DecodeRuneInString(src[pos:end])
			if unicode.IsSpace(r) {
				pos += size
				continue
			}
			return nil, pos, 0, &ParseError{Kind: InvalidCharacter, Index: pos, Char: r}
		}
	}
	return terms, pos, atoms, nil
}

// mulCount and addCount operate on non-negative counts and report false on
// overflow.
func mulCount(a, b int) (int, bool) {
	if a != 0 && b > math.MaxInt/a {
		return 0, false
	}
	return a * b, true
}

func addCount(a, b int) (int, bool) {
	if a > math.MaxInt-b {
		return 0, false
	}
	return a + b, true
}

// matchingParen returns the index of the ')' closing the '(' at open.
func matchingParen(src string, open, end int) (int, error) {
	depth := 0
	for i := open; i < end; i++ {
		switch src[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, &ParseError{Kind: MismatchedParentheses, Index: open, Char: '('}
}

// readCount consumes a run of digits starting at pos. No digits means 1.
func readCount(src string, pos, end int, symbol string) (int, int, error) {
	start := pos
	for pos < end && '0' <= src[pos] && src[pos] <= '9' {
		pos++
	}
	if pos == start {
		return 1, pos, nil
	}
	n, err := strconv.Atoi(src[start:pos])
	if err != nil || n == 0 {
		return 0, pos, &ParseError{Kind: InvalidMultiplier, Index: start, Symbol: symbol}
	}
	return n, pos, nil
}

// Mass returns the unrounded relative mass of terms.
func Mass(terms []Term) float64 {
	total := 0.0
	for _, t := range terms {
		if t.IsGroup() {
			total += Mass(t.Group) * float64(t.Count)
			continue
		}
		total += relativeAtomicMasses[t.Symbol] * float64(t.Count)
	}
	return total
}

// RelativeFormulaMass parses formula and returns its Mr rounded to one
// decimal place. The empty formula has mass 0.
func RelativeFormulaMass(formula string) (float64, error) {
	terms, err := Parse(formula)
	if err != nil {
		return 0, err
	}
	return Round1(Mass(terms)), nil
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
