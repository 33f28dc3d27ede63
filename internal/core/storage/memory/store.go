// Package memory backs the transaction store with an in-memory collection.
// It serves the JSON-document storage strategy and doubles as the test
// store; query semantics mirror the Postgres adapter exactly.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	v1 "github.com/rewardex-lab/rewardex/internal/api/v1"
	"github.com/rewardex-lab/rewardex/internal/core/paging"
	"github.com/rewardex-lab/rewardex/internal/core/rewards"
	"github.com/rewardex-lab/rewardex/internal/core/storage"
)

// Store is an in-memory implementation of storage.TransactionStore.
type Store struct {
	mu   sync.RWMutex
	txns []v1.Transaction
	ids  map[string]bool
}

// New creates an empty in-memory transaction store.
func New() *Store {
	return &Store{ids: make(map[string]bool)}
}

// LoadFile builds a store from a JSON document holding an array of
// transactions. Every row's points are verified against the formula before
// any row is accepted; the first mismatch rejects the whole file.
func LoadFile(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction data file: %w", err)
	}

	var txns []v1.Transaction
	if err := json.Unmarshal(raw, &txns); err != nil {
		return nil, fmt.Errorf("failed to parse transaction data file %q: %w", path, err)
	}

	for i := range txns {
		if err := txns[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid transaction %q in %q: %w", txns[i].TransactionID, path, err)
		}
	}
	if err := rewards.VerifyPoints(txns); err != nil {
		return nil, fmt.Errorf("rejecting transaction data file %q: %w", path, err)
	}

	s := New()
	for i := range txns {
		if s.ids[txns[i].TransactionID] {
			return nil, fmt.Errorf("duplicate transaction %q in %q: %w", txns[i].TransactionID, path, storage.ErrDuplicate)
		}
		s.ids[txns[i].TransactionID] = true
	}
	s.txns = txns
	return s, nil
}

func (s *Store) InsertTransaction(ctx context.Context, txn *v1.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ids[txn.TransactionID] {
		return storage.ErrDuplicate
	}

	s.ids[txn.TransactionID] = true
	s.txns = append(s.txns, *txn)
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, query storage.TransactionQuery) (paging.Result[v1.Transaction], error) {
	field, err := query.EffectiveSortField()
	if err != nil {
		return paging.Result[v1.Transaction]{}, err
	}

	s.mu.RLock()
	matched := make([]v1.Transaction, 0, len(s.txns))
	for _, txn := range s.txns {
		if query.CustomerID > 0 && txn.CustomerID != query.CustomerID {
			continue
		}
		if !paging.MatchName(txn.CustomerName, query.NameFilter) {
			continue
		}
		matched = append(matched, txn)
	}
	s.mu.RUnlock()

	sortTransactions(matched, field, query.Ascending)

	return paging.Apply(matched, query.Page, query.DefaultLimit()), nil
}

func (s *Store) LoadAll(ctx context.Context) ([]v1.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]v1.Transaction, len(s.txns))
	copy(snapshot, s.txns)
	return snapshot, nil
}

func (s *Store) MaxCustomerID(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var max int64
	for i := range s.txns {
		if s.txns[i].CustomerID > max {
			max = s.txns[i].CustomerID
		}
	}
	return max, nil
}

// sortTransactions orders txns by the whitelisted field. Purchase dates
// compare chronologically, not lexically; equal keys keep their order.
func sortTransactions(txns []v1.Transaction, field string, ascending bool) {
	less := comparatorFor(field)
	sort.SliceStable(txns, func(i, j int) bool {
		if ascending {
			return less(&txns[i], &txns[j])
		}
		return less(&txns[j], &txns[i])
	})
}

func comparatorFor(field string) func(a, b *v1.Transaction) bool {
	switch field {
	case storage.SortByPrice:
		return func(a, b *v1.Transaction) bool { return a.Price.LessThan(b.Price) }
	case storage.SortByPoints:
		return func(a, b *v1.Transaction) bool {
			av, _ := a.PointsValue()
			bv, _ := b.PointsValue()
			return av < bv
		}
	case storage.SortByCustomerID:
		return func(a, b *v1.Transaction) bool { return a.CustomerID < b.CustomerID }
	case storage.SortByCustomerName:
		return func(a, b *v1.Transaction) bool { return a.CustomerName < b.CustomerName }
	case storage.SortByProduct:
		return func(a, b *v1.Transaction) bool { return a.Product < b.Product }
	case storage.SortByTransactionID:
		return func(a, b *v1.Transaction) bool { return a.TransactionID < b.TransactionID }
	default:
		return func(a, b *v1.Transaction) bool {
			return purchaseTime(a).Before(purchaseTime(b))
		}
	}
}

func purchaseTime(txn *v1.Transaction) time.Time {
	ts, err := v1.ParseDate(txn.PurchaseDate)
	if err != nil {
		return time.Time{}
	}
	return ts
}
