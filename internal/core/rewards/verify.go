package rewards

import (
	v1 "github.com/rewardex-lab/rewardex/internal/api/v1"
)

// VerifyPoints cross-checks every transaction's stored points against the
// formula. It stops at the first offending row and returns a
// *PointsMismatchError identifying it; the caller must reject the whole
// data set, not just that row.
func VerifyPoints(txns []v1.Transaction) error {
	for i := range txns {
		txn := &txns[i]

		expected, err := PointsFor(txn.Price)
		if err != nil {
			return err
		}

		stored, ok := txn.PointsValue()
		if !ok || stored != expected {
			return &PointsMismatchError{
				TransactionID:  txn.TransactionID,
				Price:          txn.Price,
				StoredPoints:   stored,
				HasStored:      ok,
				ExpectedPoints: expected,
			}
		}
	}
	return nil
}
