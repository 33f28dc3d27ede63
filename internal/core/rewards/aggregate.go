package rewards

import (
	"sort"

	v1 "github.com/rewardex-lab/rewardex/internal/api/v1"
)

// SortOrder selects the (year, month) ordering of monthly reward listings.
type SortOrder string

const (
	OrderAscending  SortOrder = "asc"
	OrderDescending SortOrder = "desc"
)

// TotalReward is a customer's lifetime point total.
type TotalReward struct {
	CustomerID   int64  `json:"customerId"`
	CustomerName string `json:"customerName"`
	TotalPoints  int64  `json:"totalPoints"`
}

// MonthlyReward is a customer's point total within one calendar month.
// Month is the numeric month (1-12); MonthName converts it for display.
type MonthlyReward struct {
	CustomerID   int64  `json:"customerId"`
	CustomerName string `json:"customerName"`
	Year         int    `json:"year"`
	Month        int    `json:"month"`
	Points       int64  `json:"points"`
}

// TopRewards holds a single customer's best months. Count is the customer's
// total number of monthly records, not the truncated row count.
type TopRewards struct {
	Count int             `json:"count"`
	Rows  []MonthlyReward `json:"rows"`
}

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthName converts a numeric month (1-12) to its English calendar name.
// Out-of-range values return the empty string.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// TotalRewards derives per-customer lifetime totals from a transaction
// snapshot, sorted ascending by customer ID. A transaction without a points
// value fails the whole aggregation.
func TotalRewards(txns []v1.Transaction) ([]TotalReward, error) {
	totals := make(map[int64]*TotalReward)

	for i := range txns {
		txn := &txns[i]
		points, ok := txn.PointsValue()
		if !ok {
			return nil, &MissingPointsError{TransactionID: txn.TransactionID}
		}

		rec, exists := totals[txn.CustomerID]
		if !exists {
			totals[txn.CustomerID] = &TotalReward{
				CustomerID:   txn.CustomerID,
				CustomerName: txn.CustomerName,
				TotalPoints:  points,
			}
			continue
		}
		rec.TotalPoints += points
	}

	results := make([]TotalReward, 0, len(totals))
	for _, rec := range totals {
		results = append(results, *rec)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CustomerID < results[j].CustomerID
	})

	return results, nil
}

type monthKey struct {
	customerID int64
	year       int
	month      int
}

// MonthlyRewards derives per-customer monthly totals, grouped on
// (customerId, year, month) with the day ignored, ordered by (year, month)
// in the requested direction. Ties within the same year and month keep
// their first-seen order.
func MonthlyRewards(txns []v1.Transaction, order SortOrder) ([]MonthlyReward, error) {
	groups := make(map[monthKey]*MonthlyReward)
	keys := make([]monthKey, 0)

	for i := range txns {
		txn := &txns[i]
		points, ok := txn.PointsValue()
		if !ok {
			return nil, &MissingPointsError{TransactionID: txn.TransactionID}
		}

		year, month, err := v1.YearMonth(txn.PurchaseDate)
		if err != nil {
			return nil, err
		}

		key := monthKey{customerID: txn.CustomerID, year: year, month: month}
		rec, exists := groups[key]
		if !exists {
			groups[key] = &MonthlyReward{
				CustomerID:   txn.CustomerID,
				CustomerName: txn.CustomerName,
				Year:         year,
				Month:        month,
				Points:       points,
			}
			keys = append(keys, key)
			continue
		}
		rec.Points += points
	}

	results := make([]MonthlyReward, 0, len(keys))
	for _, key := range keys {
		results = append(results, *groups[key])
	}

	ascending := order == OrderAscending
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Year != b.Year {
			if ascending {
				return a.Year < b.Year
			}
			return a.Year > b.Year
		}
		if a.Month != b.Month {
			if ascending {
				return a.Month < b.Month
			}
			return a.Month > b.Month
		}
		return false
	})

	return results, nil
}

// TopRewardsByCustomer returns one customer's monthly records sorted by
// points descending, truncated to limit.
func TopRewardsByCustomer(txns []v1.Transaction, customerID int64, limit int) (TopRewards, error) {
	monthly, err := MonthlyRewards(txns, OrderDescending)
	if err != nil {
		return TopRewards{}, err
	}

	var rows []MonthlyReward
	for _, rec := range monthly {
		if rec.CustomerID == customerID {
			rows = append(rows, rec)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Points > rows[j].Points
	})

	count := len(rows)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	return TopRewards{Count: count, Rows: rows}, nil
}
