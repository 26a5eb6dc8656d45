package shared

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
	ErrAmountPrecision   = errors.New("amount must have at most 2 decimal places")
	ErrAmountOverflow    = errors.New("amount is too large")
)

// MinorUnitExponent is the number of decimal places of the ledger currency
const MinorUnitExponent = 2

// MaxMinorUnits is the largest single amount accepted. It leaves headroom
// below the int64 limit of the stored balance.
const MaxMinorUnits int64 = 1<<62 - 1

var maxMinorUnits = decimal.NewFromInt(MaxMinorUnits)

// ToMinorUnits converts an exact decimal amount to integer minor units
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, ErrNonPositiveAmount
	}
	scaled := amount.Shift(MinorUnitExponent)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, ErrAmountPrecision
	}
	if scaled.GreaterThan(maxMinorUnits) {
		return 0, ErrAmountOverflow
	}
	return scaled.IntPart(), nil
}

// FromMinorUnits renders minor units as a fixed two-decimal amount
func FromMinorUnits(units int64) decimal.Decimal {
	return decimal.New(units, -MinorUnitExponent)
}

// FormatMinorUnits renders minor units as "150.00"
func FormatMinorUnits(units int64) string {
	return FromMinorUnits(units).StringFixed(MinorUnitExponent)
}
