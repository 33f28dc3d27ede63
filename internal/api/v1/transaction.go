package v1

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the textual purchase date format used on the wire and in
// seed data: DD-MM-YYYY (e.g. "25-12-2024").
const DateLayout = "02-01-2006"

// Transaction is the atomic record of the system: one purchase by one customer.
// Customer attributes are denormalized onto every transaction; there is no
// separate customer table.
type Transaction struct {
	// CustomerID is a positive integer assigned sequentially per customer.
	// New customers get max(existing)+1, so numbering is derived purely from
	// the transaction set itself.
	CustomerID int64 `json:"customerId"`

	// TransactionID is unique across all transactions (e.g. "TXN1A2B3C4D5E6F").
	TransactionID string `json:"transactionId"`

	// CustomerName is duplicated per transaction.
	CustomerName string `json:"customerName"`

	// PurchaseDate is the calendar date in DateLayout form.
	PurchaseDate string `json:"purchaseDate"`

	// Product is the purchased product's name.
	Product string `json:"product"`

	// Price is the non-negative purchase amount in currency units.
	Price decimal.Decimal `json:"price"`

	// Points is the reward-point value derived from Price by the tiered
	// formula. A pointer so that an absent field in untrusted input is
	// distinguishable from a legitimate zero; every stored transaction
	// carries a verified non-nil value.
	Points *int64 `json:"points,omitempty"`
}

// Validate ensures the transaction has all required attributes and a
// well-formed purchase date.
func (t *Transaction) Validate() error {
	if t.CustomerID <= 0 {
		return fmt.Errorf("customerId must be positive")
	}

	if t.TransactionID == "" {
		return fmt.Errorf("transactionId is required")
	}

	if t.CustomerName == "" {
		return fmt.Errorf("customerName is required")
	}

	if _, err := ParseDate(t.PurchaseDate); err != nil {
		return fmt.Errorf("purchaseDate: %w", err)
	}

	if t.Price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}

	return nil
}

// PointsValue returns the stored points value, or ok=false when the field
// was never populated.
func (t *Transaction) PointsValue() (int64, bool) {
	if t.Points == nil {
		return 0, false
	}
	return *t.Points, true
}

// SetPoints populates the points field.
func (t *Transaction) SetPoints(points int64) {
	t.Points = &points
}

// ParseDate parses a DD-MM-YYYY date string.
func ParseDate(value string) (time.Time, error) {
	ts, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid purchase date %q (want DD-MM-YYYY): %w", value, err)
	}
	return ts, nil
}

// FormatDate formats a time as a DD-MM-YYYY date string.
func FormatDate(ts time.Time) string {
	return ts.Format(DateLayout)
}

// YearMonth extracts the (year, month) grouping key from a purchase date.
// The day component is ignored; monthly aggregation groups on this key.
func YearMonth(value string) (int, int, error) {
	ts, err := ParseDate(value)
	if err != nil {
		return 0, 0, err
	}
	return ts.Year(), int(ts.Month()), nil
}
