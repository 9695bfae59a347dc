/*
This file contains common utility functions for converting between the
ledger's 7-decimal fixed-point amount strings and float64, with precision
handled through decimal arithmetic rather than direct float parsing.
*/

package utils

import (
	"errors"
	"fmt"
	"math"

	sdkmath "cosmossdk.io/math"
)

// Error definitions for zero-tolerance error handling
var (
	ErrAmountEmpty    = errors.New("amount string is empty")
	ErrAmountNegative = errors.New("amount is negative")
	ErrNotFinite      = errors.New("value is not finite")
	ErrParseFailed    = errors.New("amount parse failed")
)

// LedgerPrecision is the fixed decimal precision of ledger amounts.
const LedgerPrecision = 7

// ParseLedgerAmount converts a ledger decimal amount string (for example
// "12345.6789012") to float64.
func ParseLedgerAmount(amount string) (float64, error) {
	if amount == "" {
		return 0, ErrAmountEmpty
	}

	dec, err := sdkmath.LegacyNewDecFromStr(amount)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	if dec.IsNegative() {
		return 0, fmt.Errorf("%w: %s", ErrAmountNegative, amount)
	}

	result, err := dec.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, fmt.Errorf("%w: result is %f", ErrNotFinite, result)
	}

	return result, nil
}

// FormatLedgerAmount converts a float64 to the ledger's 7-decimal amount
// string. Uses string conversion to avoid floating point precision issues.
func FormatLedgerAmount(amount float64) (string, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "", fmt.Errorf("%w: amount is %f", ErrNotFinite, amount)
	}
	if amount < 0 {
		return "", fmt.Errorf("%w: %f", ErrAmountNegative, amount)
	}

	formatStr := fmt.Sprintf("%%.%df", LedgerPrecision)
	amountStr := fmt.Sprintf(formatStr, amount)

	dec, err := sdkmath.LegacyNewDecFromStr(amountStr)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create decimal from string: %w", ErrParseFailed, err)
	}
	if dec.IsNegative() {
		return "", fmt.Errorf("%w: %s", ErrAmountNegative, amountStr)
	}

	return amountStr, nil
}
