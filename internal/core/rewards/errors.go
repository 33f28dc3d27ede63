package rewards

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InvalidPriceError reports a price the points formula cannot accept.
type InvalidPriceError struct {
	Price decimal.Decimal
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("invalid price %s: must be a non-negative amount", e.Price)
}

// PointsMismatchError reports a transaction whose stored points disagree
// with the freshly computed value. Detecting one fails the entire load;
// a corrupt data set must not silently serve wrong totals.
type PointsMismatchError struct {
	TransactionID string
	Price         decimal.Decimal
	StoredPoints  int64
	// HasStored is false when the points field was absent entirely.
	HasStored      bool
	ExpectedPoints int64
}

func (e *PointsMismatchError) Error() string {
	if !e.HasStored {
		return fmt.Sprintf("transaction %s: points field missing, expected %d for price %s",
			e.TransactionID, e.ExpectedPoints, e.Price)
	}
	return fmt.Sprintf("transaction %s: stored points %d disagree with computed %d for price %s",
		e.TransactionID, e.StoredPoints, e.ExpectedPoints, e.Price)
}

// Details returns the structured fields for API error responses.
func (e *PointsMismatchError) Details() map[string]interface{} {
	d := map[string]interface{}{
		"transaction_id":  e.TransactionID,
		"price":           e.Price.String(),
		"expected_points": e.ExpectedPoints,
	}
	if e.HasStored {
		d["stored_points"] = e.StoredPoints
	}
	return d
}

// MissingPointsError reports a transaction without a usable points value at
// aggregation time. Points are never silently coerced to zero.
type MissingPointsError struct {
	TransactionID string
}

func (e *MissingPointsError) Error() string {
	return fmt.Sprintf("transaction %s has no points value", e.TransactionID)
}
