package issuance

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxFractionalDigits is the ledger's supported amount precision.
const MaxFractionalDigits = 7

// ValidateAmount checks that an amount string parses as a positive decimal
// within the ledger's precision.
func ValidateAmount(s string) error {
	if s == "" {
		return fmt.Errorf("amount is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("amount %q is not a valid decimal", s)
	}
	if !d.IsPositive() {
		return fmt.Errorf("amount %q must be positive", s)
	}
	if !d.Equal(d.Truncate(MaxFractionalDigits)) {
		return fmt.Errorf("amount %q exceeds %d decimal places", s, MaxFractionalDigits)
	}
	return nil
}
