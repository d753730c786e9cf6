// Package money holds the pure invoice amount derivations. All functions
// are stateless; the same inputs always produce the same outputs.
package money

import "math"

// DiscountType selects how DiscountValue is interpreted.
type DiscountType string

const (
	DiscountNone       DiscountType = ""
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Totals is the full set of derived invoice amounts.
type Totals struct {
	Subtotal       float64
	DiscountAmount float64
	TaxAmount      float64
	TotalAmount    float64
}

// Round2 rounds half away from zero to 2 decimal places. Rounding is
// applied once per derived field, never on intermediate products.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LineAmount derives a line item amount from quantity and rate.
func LineAmount(quantity, rate float64) float64 {
	return Round2(quantity * rate)
}

// Compute derives subtotal, discount, tax and total from line amounts.
// The discount is clamped to [0, subtotal]; tax applies to the
// discounted base.
func Compute(lineAmounts []float64, discountType DiscountType, discountValue, taxRate float64) Totals {
	var sum float64
	for _, amount := range lineAmounts {
		sum += amount
	}
	subtotal := Round2(sum)

	var discount float64
	switch discountType {
	case DiscountPercentage:
		discount = Round2(subtotal * discountValue / 100)
	case DiscountFixed:
		discount = Round2(discountValue)
	}
	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}

	tax := Round2((subtotal - discount) * taxRate / 100)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		TotalAmount:    Round2(subtotal - discount + tax),
	}
}
