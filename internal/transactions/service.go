package transactions

import (
	"github.com/gin-gonic/gin"

	"github.com/rewardex-lab/rewardex/internal/core/storage"
	"github.com/rewardex-lab/rewardex/internal/seed"
)

// SnapshotInvalidator drops any cached transaction snapshot. The rewards
// cache implements it; every successful insert must invalidate so the next
// aggregation reads fresh data.
type SnapshotInvalidator interface {
	Invalidate()
}

type Service struct {
	store            storage.TransactionStore
	cache            SnapshotInvalidator
	gen              *seed.Generator
	maxBodySizeBytes int
}

func NewService(store storage.TransactionStore, cache SnapshotInvalidator, gen *seed.Generator, maxBodySizeMB int) *Service {
	if store == nil {
		panic("transactions: store must not be nil")
	}
	if cache == nil {
		panic("transactions: cache must not be nil")
	}
	if gen == nil {
		panic("transactions: generator must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		store:            store,
		cache:            cache,
		gen:              gen,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
}

// RegisterRoutes registers the transaction service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/transactions", s.ListHandler)
	r.GET("/v1/transactions/customer/:id", s.ListByCustomerHandler)

	// Creating without a customer id starts a new customer at max+1.
	r.POST("/v1/transactions", s.CreateHandler)
	r.POST("/v1/transactions/customer/:id", s.CreateHandler)
}
