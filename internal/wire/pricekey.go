package wire

import "math"

// PriceKey is a fixed-point price: the original double scaled by 10^precision
// and rounded to a signed 64-bit integer. Order books key on PriceKey rather
// than the original float64 so that repeated updates to the same price level
// compare equal without floating-point equality pitfalls (spec glossary
// "Fixed-point price").
type PriceKey int64

// NewPriceKey scales price by 10^precision and rounds to the nearest
// integer.
func NewPriceKey(price float64, precision int) PriceKey {
	return PriceKey(math.Round(price * math.Pow10(precision)))
}

// Float converts back to the original double, for display/logging only —
// book-internal comparisons must always use the PriceKey form.
func (k PriceKey) Float(precision int) float64 {
	return float64(k) / math.Pow10(precision)
}
