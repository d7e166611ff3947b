package formula

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownElement        = errors.New("unknown element symbol")
	ErrMismatchedParentheses = errors.New("mismatched parentheses")
	ErrInvalidMultiplier     = errors.New("invalid multiplier")
	ErrInvalidCharacter      = errors.New("invalid character")
)

// ErrorKind classifies a parse failure.
type ErrorKind int

const (
	UnknownElement ErrorKind = iota + 1
	MismatchedParentheses
	InvalidMultiplier
	InvalidCharacter
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownElement:
		return "UnknownElement"
	case MismatchedParentheses:
		return "MismatchedParentheses"
	case InvalidMultiplier:
		return "InvalidMultiplier"
	case InvalidCharacter:
		return "InvalidCharacter"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name, so JSON carries "UnknownElement"
// rather than a number.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k ErrorKind) sentinel() error {
	switch k {
	case UnknownElement:
		return ErrUnknownElement
	case MismatchedParentheses:
		return ErrMismatchedParentheses
	case InvalidMultiplier:
		return ErrInvalidMultiplier
	default:
		return ErrInvalidCharacter
	}
}

// ParseError reports the first offending position in a formula.
// Index is a byte offset into the string passed to Parse.
type ParseError struct {
	Kind   ErrorKind
	Index  int
	Symbol string
	Char   rune
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case UnknownElement:
		return fmt.Sprintf("unknown element symbol %q at index %d", e.Symbol, e.Index)
	case MismatchedParentheses:
		return fmt.Sprintf("mismatched parentheses at index %d", e.Index)
	case InvalidMultiplier:
		if e.Symbol != "" {
			return fmt.Sprintf("invalid count after element %s at index %d", e.Symbol, e.Index)
		}
		return fmt.Sprintf("invalid multiplier at index %d", e.Index)
	default:
		return fmt.Sprintf("invalid character %q at index %d", e.Char, e.Index)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Kind.sentinel()
}
