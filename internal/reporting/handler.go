package reporting

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	httperr "github.com/rewardex-lab/rewardex/internal/core/errors"
	"github.com/rewardex-lab/rewardex/internal/core/paging"
	"github.com/rewardex-lab/rewardex/internal/core/rewards"
)

// RegisterRoutes registers all rewards reporting routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/rewards/total", s.HandleTotalRewards)
	r.GET("/v1/rewards/monthly", s.HandleMonthlyRewards)
	r.GET("/v1/rewards/top/:id", s.HandleTopRewards)
}

// HandleTotalRewards handles GET /v1/rewards/total.
// Query parameters: page, pageSize, limit, customerName.
func (s *Service) HandleTotalRewards(c *gin.Context) {
	params := paging.Normalize(c.Query("page"), c.Query("pageSize"), c.Query("limit"))

	result, err := s.TotalRewards(c.Request.Context(), params, c.Query("customerName"))
	if err != nil {
		writeAggregationError(c, "total rewards", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleMonthlyRewards handles GET /v1/rewards/monthly.
// Query parameters: page, pageSize, limit, sort (asc|desc), customerName.
// Anything other than "asc" sorts descending.
func (s *Service) HandleMonthlyRewards(c *gin.Context) {
	params := paging.Normalize(c.Query("page"), c.Query("pageSize"), c.Query("limit"))

	order := rewards.OrderDescending
	if strings.EqualFold(c.Query("sort"), string(rewards.OrderAscending)) {
		order = rewards.OrderAscending
	}

	result, err := s.MonthlyRewards(c.Request.Context(), params, order, c.Query("customerName"))
	if err != nil {
		writeAggregationError(c, "monthly rewards", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleTopRewards handles GET /v1/rewards/top/:id.
// Query parameter: limit (default 3).
func (s *Service) HandleTopRewards(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || customerID <= 0 {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid customer id",
		})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			limit = 1
		}
	}

	resp, err := s.TopRewards(c.Request.Context(), customerID, limit)
	if err != nil {
		writeAggregationError(c, "top rewards", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// writeAggregationError maps aggregation failures onto HTTP responses. A
// points mismatch means the data set itself is corrupt: fail closed with
// the offending transaction in the details rather than serve wrong totals.
func writeAggregationError(c *gin.Context, report string, err error) {
	var mismatch *rewards.PointsMismatchError
	if errors.As(err, &mismatch) {
		slog.Error("Rejecting corrupt transaction set",
			"report", report,
			"transaction_id", mismatch.TransactionID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpPointsMismatchError,
			Message:   "Transaction data failed points verification",
			Details:   mismatch.Details(),
		})
		return
	}

	var missing *rewards.MissingPointsError
	if errors.As(err, &missing) {
		slog.Error("Aggregation failed: transaction without points",
			"report", report,
			"transaction_id", missing.TransactionID,
		)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   err.Error(),
			Details:   map[string]interface{}{"transaction_id": missing.TransactionID},
		})
		return
	}

	slog.Error("Failed to compute rewards report", "report", report, "error", err)
	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   "Failed to compute " + report,
	})
}
