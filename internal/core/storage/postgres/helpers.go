package postgres

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	v1 "github.com/rewardex-lab/rewardex/internal/api/v1"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTransactionRow scans a database row into a Transaction. The DATE
// column comes back as time.Time and is rendered into the DD-MM-YYYY wire
// form; NUMERIC comes back as text and parses into a decimal.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func scanTransactionRow(row scanner) (*v1.Transaction, error) {
	var (
		txn          v1.Transaction
		purchaseDate time.Time
		price        string
		points       int64
	)

	err := row.Scan(
		&txn.CustomerID,
		&txn.TransactionID,
		&txn.CustomerName,
		&purchaseDate,
		&txn.Product,
		&price,
		&points,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan transaction row: %w", err)
	}

	txn.PurchaseDate = v1.FormatDate(purchaseDate)
	txn.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price %q: %w", price, err)
	}
	txn.SetPoints(points)

	return &txn, nil
}
