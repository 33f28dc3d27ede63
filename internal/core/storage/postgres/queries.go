package postgres

// SQL for transaction storage. The points column is a plain stored value
// written by the Go formula; it is never re-derived in SQL, so there is
// exactly one formula in the system.

const (
	// queryInsertTransaction inserts one transaction.
	// ON CONFLICT DO NOTHING returns no rows (sql.ErrNoRows) for a
	// duplicate transaction_id.
	queryInsertTransaction = `
		INSERT INTO transactions (
			customer_id, transaction_id, customer_name,
			purchase_date, product, price, points
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (transaction_id) DO NOTHING
		RETURNING id
	`

	// queryLoadAllTransactions materializes the full set in insertion
	// order for aggregation.
	queryLoadAllTransactions = `
		SELECT
			customer_id, transaction_id, customer_name,
			purchase_date, product, price, points
		FROM transactions
		ORDER BY id ASC
	`

	// queryMaxCustomerID returns 0 for an empty table, so customer
	// numbering starts at 1.
	queryMaxCustomerID = `
		SELECT COALESCE(MAX(customer_id), 0) FROM transactions
	`

	listSelectColumns = `
		SELECT
			customer_id, transaction_id, customer_name,
			purchase_date, product, price, points
		FROM transactions
	`

	listCountColumns = `
		SELECT COUNT(*) FROM transactions
	`
)

// sortColumns maps the wire-level sort field names onto column identifiers.
// Only values from this map ever reach the ORDER BY clause.
var sortColumns = map[string]string{
	"purchaseDate":  "purchase_date",
	"price":         "price",
	"points":        "points",
	"customerId":    "customer_id",
	"customerName":  "customer_name",
	"product":       "product",
	"transactionId": "transaction_id",
}
