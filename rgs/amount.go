package rgs

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// APIAmountMultiplier converts display amounts into the integer minor units
// the live API expects: one currency unit is 1,000,000 API units.
const APIAmountMultiplier int64 = 1_000_000

// BookAmountMultiplier is the minor-unit convention used by historical book
// records (hundredths of a unit). It is a separate convention from the live
// API and the two must never be mixed: requests always use
// APIAmountMultiplier, decoded book records always use this one.
const BookAmountMultiplier int64 = 100

var (
	apiMultiplier  = decimal.NewFromInt(APIAmountMultiplier)
	bookMultiplier = decimal.NewFromInt(BookAmountMultiplier)
)

// ToAPIAmount converts a display amount into live-API minor units.
//
// The conversion is exact or it fails: amounts whose product with the
// multiplier is not an integer (more than six fractional digits) are
// rejected rather than rounded. There is no reverse helper; callers divide
// by APIAmountMultiplier to redisplay. No currency-aware rounding is
// performed; currencies with non-2-decimal minor units get no special
// treatment.
func ToAPIAmount(amount decimal.Decimal) (int64, error) {
	return toMinorUnits(amount, apiMultiplier, APIAmountMultiplier)
}

// ToBookAmount converts a display amount into book-record minor units.
func ToBookAmount(amount decimal.Decimal) (int64, error) {
	return toMinorUnits(amount, bookMultiplier, BookAmountMultiplier)
}

func toMinorUnits(amount decimal.Decimal, multiplier decimal.Decimal, factor int64) (int64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("rgs: amount must not be negative, got %s", amount)
	}
	scaled := amount.Mul(multiplier)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("rgs: amount %s is not representable in minor units (multiplier %d)", amount, factor)
	}
	return scaled.IntPart(), nil
}
