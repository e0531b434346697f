package deposit

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError reports user input the workflow cannot accept.
type ValidationError struct {
	Field  string
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("deposit: invalid %s %q: %s", e.Field, e.Input, e.Reason)
}

const (
	maxAmountLength = 32
	// exponent bounds keep rounding from rescaling to huge integers
	maxAmountExponent = 15
	minAmountExponent = -20
)

// ParseAmount parses a user typed amount and rounds it to 2 fractional
// digits. The rounded value must be strictly positive.
func ParseAmount(text string) (decimal.Decimal, error) {
	input := strings.TrimSpace(text)
	if input == "" {
		return decimal.Zero, &ValidationError{Field: "amount", Input: text, Reason: "empty"}
	}
	if len(input) > maxAmountLength {
		return decimal.Zero, &ValidationError{Field: "amount", Input: text, Reason: "too long"}
	}
	amount, err := decimal.NewFromString(input)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "amount", Input: text, Reason: "not a number"}
	}
	if exp := amount.Exponent(); exp > maxAmountExponent || exp < minAmountExponent {
		return decimal.Zero, &ValidationError{Field: "amount", Input: text, Reason: "out of range"}
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, &ValidationError{Field: "amount", Input: text, Reason: "must be greater than zero"}
	}
	return amount, nil
}
