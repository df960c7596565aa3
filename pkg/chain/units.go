package chain

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ToBaseUnits converts a token amount into the integer base units the
// contract expects. Amounts with more fractional digits than the token
// supports are rejected rather than silently truncated.
func ToBaseUnits(amount decimal.Decimal, decimals uint8) (*big.Int, error) {
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %s", amount)
	}
	scaled := amount.Shift(int32(decimals))
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("amount %s has more than %d decimal places", amount, decimals)
	}
	return scaled.BigInt(), nil
}

// FromBaseUnits converts integer base units back into a token amount.
func FromBaseUnits(value *big.Int, decimals uint8) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, 0).Shift(-int32(decimals))
}
