package stoich

import (
	"strconv"
	"strings"
)

// Precision formats v with p significant figures, switching to exponent
// notation for very large or very small magnitudes ("0.500", "150", "1.20e+25").
func Precision(v float64, p int) string {
	if v == 0 {
		return strconv.FormatFloat(0, 'f', p-1, 64)
	}
	s := strconv.FormatFloat(v, 'e', p-1, 64)
	i := strings.LastIndexByte(s, 'e')
	exp, _ := strconv.Atoi(s[i+1:])
	if exp < -6 || exp >= p {
		return trimExponent(s)
	}
	return strconv.FormatFloat(v, 'f', p-1-exp, 64)
}

// Exponential formats v in exponent notation with the given number of decimals.
func Exponential(v float64, decimals int) string {
	return trimExponent(strconv.FormatFloat(v, 'e', decimals, 64))
}

// trimExponent drops the zero padding Go adds to single-digit exponents.
func trimExponent(s string) string {
	i := strings.LastIndexByte(s, 'e')
	if i < 0 || i+2 >= len(s) {
		return s
	}
	mantissa, sign, digits := s[:i], s[i+1], strings.TrimLeft(s[i+2:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + string(sign) + digits
}
