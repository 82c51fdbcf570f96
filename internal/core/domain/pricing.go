package domain

import "github.com/shopspring/decimal"

// Delivery charge tiers by order subtotal.
var (
	freeShippingAt = decimal.NewFromInt(5000)
	midTierAt      = decimal.NewFromInt(3000)
	midTierCharge  = decimal.NewFromInt(550)
	baseCharge     = decimal.NewFromInt(180)
)

// DeliveryCharge returns the shipping charge for a given subtotal:
// below 3000 the flat base rate applies, from 3000 up to 5000 the mid
// tier, and orders of 5000 or more ship free.
func DeliveryCharge(subtotal decimal.Decimal) decimal.Decimal {
	switch {
	case subtotal.GreaterThanOrEqual(freeShippingAt):
		return decimal.Zero
	case subtotal.GreaterThanOrEqual(midTierAt):
		return midTierCharge
	default:
		return baseCharge
	}
}

// Money renders a monetary value with exactly two fractional digits, the
// only form in which amounts leave the process.
func Money(v decimal.Decimal) string {
	return v.StringFixed(2)
}
