package storage

import (
	"context"
	"errors"

	v1 "github.com/rewardex-lab/rewardex/internal/api/v1"
	"github.com/rewardex-lab/rewardex/internal/core/paging"
)

// ErrDuplicate is returned when a transaction with the same transactionId
// already exists.
var ErrDuplicate = errors.New("transaction already exists")

// ErrInvalidSortField is returned for sort fields outside the whitelist.
// Sort fields reach SQL identifiers, so they are never taken verbatim.
var ErrInvalidSortField = errors.New("invalid sort field")

// Sortable transaction fields. Names match the wire-level JSON keys.
const (
	SortByPurchaseDate  = "purchaseDate"
	SortByPrice         = "price"
	SortByPoints        = "points"
	SortByCustomerID    = "customerId"
	SortByCustomerName  = "customerName"
	SortByProduct       = "product"
	SortByTransactionID = "transactionId"
)

var sortFields = map[string]bool{
	SortByPurchaseDate:  true,
	SortByPrice:         true,
	SortByPoints:        true,
	SortByCustomerID:    true,
	SortByCustomerName:  true,
	SortByProduct:       true,
	SortByTransactionID: true,
}

// ValidSortField reports whether field is a whitelisted sort field.
func ValidSortField(field string) bool {
	return sortFields[field]
}

// TransactionQuery describes one filtered, sorted, paginated listing.
type TransactionQuery struct {
	// CustomerID restricts the listing to one customer when positive.
	// Scoped queries use the lower unpaginated default limit.
	CustomerID int64

	// NameFilter is a case-insensitive substring match on customerName.
	NameFilter string

	// SortField must be a whitelisted field; empty means purchaseDate.
	SortField string

	// Ascending flips the default descending direction.
	Ascending bool

	Page paging.Params
}

// DefaultLimit returns the unpaginated cap for this query's scope.
func (q TransactionQuery) DefaultLimit() int {
	if q.CustomerID > 0 {
		return paging.DefaultCustomerListLimit
	}
	return paging.DefaultListLimit
}

// EffectiveSortField resolves the query's sort field, applying the default.
func (q TransactionQuery) EffectiveSortField() (string, error) {
	if q.SortField == "" {
		return SortByPurchaseDate, nil
	}
	if !ValidSortField(q.SortField) {
		return "", ErrInvalidSortField
	}
	return q.SortField, nil
}

// TransactionStore is the contract every backing store fulfils. The
// Postgres and in-memory implementations must produce identical observable
// results for the same query; the aggregation layer only ever consumes
// LoadAll, so reward math never depends on the engine choice.
type TransactionStore interface {
	// InsertTransaction persists one transaction. The caller has already
	// computed and verified its points. Returns ErrDuplicate when the
	// transactionId is taken. Writes serialize with concurrent reads, so a
	// half-written set is never observed.
	InsertTransaction(ctx context.Context, txn *v1.Transaction) error

	// ListTransactions retrieves a filtered, sorted page of transactions.
	ListTransactions(ctx context.Context, query TransactionQuery) (paging.Result[v1.Transaction], error)

	// LoadAll materializes the full transaction set for aggregation.
	LoadAll(ctx context.Context) ([]v1.Transaction, error)

	// MaxCustomerID returns the highest assigned customer ID, 0 when the
	// store is empty. New customers are numbered max+1.
	MaxCustomerID(ctx context.Context) (int64, error)
}
