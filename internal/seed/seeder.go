package seed

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	v1 "github.com/rewardex-lab/rewardex/internal/api/v1"
	"github.com/rewardex-lab/rewardex/internal/core/rewards"
	"github.com/rewardex-lab/rewardex/internal/core/storage"
)

// insertWorkers bounds the number of concurrent per-customer insert batches.
const insertWorkers = 8

// Seeder populates an empty store with generated customers and purchases.
type Seeder struct {
	store storage.TransactionStore
	gen   *Generator
}

// NewSeeder creates a seeder writing through the given store.
func NewSeeder(store storage.TransactionStore, gen *Generator) *Seeder {
	if store == nil {
		panic("seed: store must not be nil")
	}
	if gen == nil {
		panic("seed: generator must not be nil")
	}
	return &Seeder{store: store, gen: gen}
}

// Seed generates `customers` customers with `txnsPerCustomer` purchases
// each and inserts them. Generation is single-threaded so IDs and points
// are assigned deterministically for a fixed generator seed; insertion
// fans out one goroutine per customer batch.
func (s *Seeder) Seed(ctx context.Context, customers, txnsPerCustomer int) error {
	if customers <= 0 || txnsPerCustomer <= 0 {
		return fmt.Errorf("seed: customers and transactions per customer must be positive")
	}

	batches, err := s.generate(customers, txnsPerCustomer)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(insertWorkers)
	for _, batch := range batches {
		batch := batch
		g.Go(func() error {
			for i := range batch {
				if err := s.store.InsertTransaction(gctx, &batch[i]); err != nil {
					return fmt.Errorf("seed insert for customer %d: %w", batch[i].CustomerID, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("Seeding complete",
		"customers", customers,
		"transactions", customers*txnsPerCustomer,
	)
	return nil
}

// generate builds one batch of transactions per customer. Every points
// value goes through the formula, so seeded data always satisfies the
// points invariant.
func (s *Seeder) generate(customers, txnsPerCustomer int) ([][]v1.Transaction, error) {
	usedIDs := make(map[string]bool, customers*txnsPerCustomer)
	batches := make([][]v1.Transaction, 0, customers)

	for customerID := int64(1); customerID <= int64(customers); customerID++ {
		name := s.gen.RandomCustomerName()
		batch := make([]v1.Transaction, 0, txnsPerCustomer)

		for i := 0; i < txnsPerCustomer; i++ {
			txnID := NewTransactionID()
			for usedIDs[txnID] {
				txnID = NewTransactionID()
			}
			usedIDs[txnID] = true

			price := s.gen.RandomPrice()
			points, err := rewards.PointsFor(price)
			if err != nil {
				return nil, fmt.Errorf("seed points for price %s: %w", price, err)
			}

			batch = append(batch, NewTransaction(
				customerID, name, txnID,
				s.gen.RandomDate(), s.gen.RandomProduct(),
				price, points,
			))
		}
		batches = append(batches, batch)
	}

	return batches, nil
}
