package rewards

import (
	"github.com/shopspring/decimal"
)

// Tier boundaries of the points formula, in whole dollars.
var (
	tierLower = decimal.NewFromInt(50)
	tierUpper = decimal.NewFromInt(100)
)

// PointsFor maps a purchase price to its reward-point value:
//
//	price <= 50          -> 0
//	50 < price <= 100    -> floor(price - 50)
//	price > 100          -> 50 + 2 * floor(price - 100)
//
// Fractional cents are truncated with floor, never rounded: 100.99 earns
// 50 points, not 51. This function is the single source of truth for the
// formula; stores and validators call it rather than re-deriving it.
func PointsFor(price decimal.Decimal) (int64, error) {
	if price.IsNegative() {
		return 0, &InvalidPriceError{Price: price}
	}

	switch {
	case price.LessThanOrEqual(tierLower):
		return 0, nil
	case price.LessThanOrEqual(tierUpper):
		return price.Sub(tierLower).Floor().IntPart(), nil
	default:
		return 50 + 2*price.Sub(tierUpper).Floor().IntPart(), nil
	}
}
