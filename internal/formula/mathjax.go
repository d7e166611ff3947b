package formula

import "regexp"

var (
	subscriptRe     = regexp.MustCompile(`([a-zA-Z)])(\d+)`)
	numericChargeRe = regexp.MustCompile(`(\d+)([+\-])`)
	// A bare charge must not be followed by a letter; RE2 has no lookahead so
	// the following character is captured and written back.
	bareChargeRe    = regexp.MustCompile(`([a-zA-Z])([+\-])([^a-zA-Z]|$)`)
)

// MathJax rewrites a formula into TeX with subscripts and charges,
// e.g. "H2O" becomes "H_{2}O" and "Na+" becomes "Na^{+}".
func MathJax(formula string) string {
	out := subscriptRe.ReplaceAllString(formula, "${1}_{${2}}")
	out = numericChargeRe.ReplaceAllString(out, "^{${1}${2}}")
	out = bareChargeRe.ReplaceAllString(out, "${1}^{${2}}${3}")
	return out
}
