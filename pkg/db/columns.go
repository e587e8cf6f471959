package db

import (
	"math"

	"github.com/shopspring/decimal"
)

// Limits of the money and counter columns shared by the schema.
const (
	PriceScale = 2
	MaxInteger = math.MaxInt32
)

// MaxPrice is the largest value a numeric(12,2) column holds.
var MaxPrice = decimal.New(999999999999, -PriceScale)

// PriceFits reports whether price can be stored in a numeric(12,2) column unchanged.
func PriceFits(price decimal.Decimal) bool {
	return !price.IsNegative() &&
		!price.GreaterThan(MaxPrice) &&
		price.Equal(price.Truncate(PriceScale))
}

// IntegerFits reports whether n fits an INTEGER column without overflow.
func IntegerFits(n int) bool {
	return n >= 0 && n <= MaxInteger
}
