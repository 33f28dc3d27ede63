// Package reporting serves the rewards query API. All three report shapes
// derive from one verified transaction snapshot through the same
// aggregation engine, regardless of which store backs the snapshot.
package reporting

import (
	"context"

	"github.com/rewardex-lab/rewardex/internal/core/paging"
	"github.com/rewardex-lab/rewardex/internal/core/rewards"
)

// DefaultTopLimit is the number of months returned by the top-rewards
// report when the caller does not say otherwise.
const DefaultTopLimit = 3

// Service implements the rewards reporting layer.
type Service struct {
	cache *rewards.Cache
}

// NewService creates a reporting service reading through the given
// snapshot cache.
func NewService(cache *rewards.Cache) *Service {
	if cache == nil {
		panic("reporting: cache must not be nil")
	}
	return &Service{cache: cache}
}

// MonthlyRewardView is the wire shape of a monthly record: the numeric
// month is replaced with its English name. The conversion happens after
// pagination, only for rows actually returned.
type MonthlyRewardView struct {
	CustomerID   int64  `json:"customerId"`
	CustomerName string `json:"customerName"`
	Year         int    `json:"year"`
	Month        string `json:"month"`
	Points       int64  `json:"points"`
}

// TopMonthView is one row of the top-rewards report.
type TopMonthView struct {
	Year   int   `json:"year"`
	Month  int   `json:"month"`
	Points int64 `json:"points"`
}

// TopRewardsResponse is the top-rewards report: a customer's best months
// by points. Count is the customer's total number of monthly records, not
// the truncated row count.
type TopRewardsResponse struct {
	Count int            `json:"count"`
	Rows  []TopMonthView `json:"rows"`
}

// TotalRewards computes per-customer lifetime totals, sorted ascending by
// customer ID. The name filter applies to the aggregated records, before
// pagination.
func (s *Service) TotalRewards(ctx context.Context, params paging.Params, nameFilter string) (paging.Result[rewards.TotalReward], error) {
	var zero paging.Result[rewards.TotalReward]

	txns, err := s.cache.Load(ctx)
	if err != nil {
		return zero, err
	}

	totals, err := rewards.TotalRewards(txns)
	if err != nil {
		return zero, err
	}

	filtered := totals[:0:0]
	for _, rec := range totals {
		if paging.MatchName(rec.CustomerName, nameFilter) {
			filtered = append(filtered, rec)
		}
	}

	return paging.Apply(filtered, params, paging.DefaultListLimit), nil
}

// MonthlyRewards computes per-customer monthly totals ordered by
// (year, month) in the requested direction, filters on the aggregated
// customer name, paginates, and only then renders month names.
func (s *Service) MonthlyRewards(ctx context.Context, params paging.Params, order rewards.SortOrder, nameFilter string) (paging.Result[MonthlyRewardView], error) {
	var zero paging.Result[MonthlyRewardView]

	txns, err := s.cache.Load(ctx)
	if err != nil {
		return zero, err
	}

	monthly, err := rewards.MonthlyRewards(txns, order)
	if err != nil {
		return zero, err
	}

	filtered := monthly[:0:0]
	for _, rec := range monthly {
		if paging.MatchName(rec.CustomerName, nameFilter) {
			filtered = append(filtered, rec)
		}
	}

	sliced := paging.Apply(filtered, params, paging.DefaultListLimit)

	views := make([]MonthlyRewardView, len(sliced.Rows))
	for i, rec := range sliced.Rows {
		views[i] = MonthlyRewardView{
			CustomerID:   rec.CustomerID,
			CustomerName: rec.CustomerName,
			Year:         rec.Year,
			Month:        rewards.MonthName(rec.Month),
			Points:       rec.Points,
		}
	}

	return paging.Result[MonthlyRewardView]{
		Kind:     sliced.Kind,
		Rows:     views,
		Total:    sliced.Total,
		Page:     sliced.Page,
		PageSize: sliced.PageSize,
	}, nil
}

// TopRewards returns one customer's monthly records sorted by points
// descending, truncated to limit (DefaultTopLimit when limit <= 0).
func (s *Service) TopRewards(ctx context.Context, customerID int64, limit int) (TopRewardsResponse, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}

	txns, err := s.cache.Load(ctx)
	if err != nil {
		return TopRewardsResponse{}, err
	}

	top, err := rewards.TopRewardsByCustomer(txns, customerID, limit)
	if err != nil {
		return TopRewardsResponse{}, err
	}

	rows := make([]TopMonthView, len(top.Rows))
	for i, rec := range top.Rows {
		rows[i] = TopMonthView{Year: rec.Year, Month: rec.Month, Points: rec.Points}
	}

	return TopRewardsResponse{Count: top.Count, Rows: rows}, nil
}
