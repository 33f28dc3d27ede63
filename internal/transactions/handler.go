package transactions

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	v1 "github.com/rewardex-lab/rewardex/internal/api/v1"
	httperr "github.com/rewardex-lab/rewardex/internal/core/errors"
	"github.com/rewardex-lab/rewardex/internal/core/paging"
	"github.com/rewardex-lab/rewardex/internal/core/rewards"
	"github.com/rewardex-lab/rewardex/internal/core/storage"
	"github.com/rewardex-lab/rewardex/internal/seed"
)

const (
	msgReadBodyFailed  = "Failed to read request body"
	msgInvalidJSON     = "Invalid JSON body"
	msgInsertFailed    = "Failed to persist transaction"
	msgDuplicateTxn    = "Transaction already exists"
	msgListFailed      = "Failed to list transactions"
	msgInvalidCustomer = "Invalid customer id"
)

// apiError carries the structured HTTP error shape from a helper back to
// the handler. Helpers return this instead of writing to gin.Context
// directly, keeping them decoupled from HTTP.
type apiError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *apiError) Error() string {
	return e.message
}

// ListHandler handles GET /v1/transactions.
// Query parameters: page, pageSize, limit, sortBy, sortOrder, customerName.
func (s *Service) ListHandler(c *gin.Context) {
	query := storage.TransactionQuery{
		NameFilter: c.Query("customerName"),
		SortField:  c.Query("sortBy"),
		Ascending:  c.Query("sortOrder") == "asc",
		Page:       paging.Normalize(c.Query("page"), c.Query("pageSize"), c.Query("limit")),
	}

	s.listTransactions(c, query)
}

// ListByCustomerHandler handles GET /v1/transactions/customer/:id.
// Listings are fixed to purchase date descending and capped at the
// single-customer default limit when unpaginated.
func (s *Service) ListByCustomerHandler(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || customerID <= 0 {
		writeError(c, &apiError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidQueryError,
			message:    msgInvalidCustomer,
		})
		return
	}

	query := storage.TransactionQuery{
		CustomerID: customerID,
		NameFilter: c.Query("customerName"),
		Page:       paging.Normalize(c.Query("page"), c.Query("pageSize"), c.Query("limit")),
	}

	s.listTransactions(c, query)
}

func (s *Service) listTransactions(c *gin.Context, query storage.TransactionQuery) {
	result, err := s.store.ListTransactions(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidSortField) {
			writeError(c, &apiError{
				statusCode: http.StatusBadRequest,
				errorType:  httperr.HttpInvalidQueryError,
				message:    err.Error(),
			})
			return
		}

		slog.Error("Failed to list transactions", "error", err)
		writeError(c, &apiError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgListFailed,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// createRequest is the POST body. Every field is optional; missing
// attributes are filled from the generator, mirroring seeded data.
type createRequest struct {
	CustomerName  string           `json:"customerName"`
	TransactionID string           `json:"txnId"`
	PurchaseDate  string           `json:"date"`
	Product       string           `json:"productName"`
	Price         *decimal.Decimal `json:"price"`
}

// CreateHandler handles POST /v1/transactions and
// POST /v1/transactions/customer/:id. Without an id the transaction opens
// a new customer numbered max(existing)+1. The stored points value is
// always computed server-side from the price; a client cannot supply it.
func (s *Service) CreateHandler(c *gin.Context) {
	req, hErr := s.parseCreateRequest(c)
	if hErr != nil {
		writeError(c, hErr)
		return
	}

	txn, hErr := s.buildTransaction(c, req)
	if hErr != nil {
		writeError(c, hErr)
		return
	}

	if hErr := s.persistTransaction(c, txn); hErr != nil {
		writeError(c, hErr)
		return
	}

	// The cached snapshot is stale now; the next rewards query reloads.
	s.cache.Invalidate()

	slog.Info("Transaction created",
		"transaction_id", txn.TransactionID,
		"customer_id", txn.CustomerID,
		"price", txn.Price,
	)

	c.JSON(http.StatusCreated, gin.H{
		"status":        "created",
		"transactionId": txn.TransactionID,
		"customerId":    txn.CustomerID,
	})
}

// parseCreateRequest reads the size-limited body. An empty body is a valid
// request: every attribute then comes from the generator.
func (s *Service) parseCreateRequest(c *gin.Context) (*createRequest, *apiError) {
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return nil, &apiError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return nil, &apiError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	var req createRequest
	if len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, &req); err != nil {
			slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
			return nil, &apiError{
				statusCode: http.StatusBadRequest,
				errorType:  httperr.HttpInvalidJsonError,
				message:    msgInvalidJSON,
			}
		}
	}

	return &req, nil
}

// buildTransaction resolves the target customer, fills generated defaults,
// and computes the points value through the formula.
func (s *Service) buildTransaction(c *gin.Context, req *createRequest) (*v1.Transaction, *apiError) {
	var customerID int64
	if raw := c.Param("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return nil, &apiError{
				statusCode: http.StatusBadRequest,
				errorType:  httperr.HttpInvalidQueryError,
				message:    msgInvalidCustomer,
			}
		}
		customerID = id
	} else {
		max, err := s.store.MaxCustomerID(c.Request.Context())
		if err != nil {
			slog.Error("Failed to resolve next customer id", "error", err)
			return nil, &apiError{
				statusCode: http.StatusInternalServerError,
				errorType:  httperr.HttpInternalError,
				message:    msgInsertFailed,
			}
		}
		customerID = max + 1
	}

	name := req.CustomerName
	if name == "" {
		name = s.gen.RandomCustomerName()
	}
	txnID := req.TransactionID
	if txnID == "" {
		txnID = seed.NewTransactionID()
	}
	date := req.PurchaseDate
	if date == "" {
		date = v1.FormatDate(time.Now())
	}
	product := req.Product
	if product == "" {
		product = s.gen.RandomProduct()
	}
	price := s.gen.RandomPrice()
	if req.Price != nil {
		price = *req.Price
	}

	points, err := rewards.PointsFor(price)
	if err != nil {
		return nil, &apiError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidQueryError,
			message:    err.Error(),
		}
	}

	txn := seed.NewTransaction(customerID, name, txnID, date, product, price, points)
	if err := txn.Validate(); err != nil {
		return nil, &apiError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    err.Error(),
		}
	}

	return &txn, nil
}

// persistTransaction saves the transaction to the backing store.
func (s *Service) persistTransaction(c *gin.Context, txn *v1.Transaction) *apiError {
	if err := s.store.InsertTransaction(c.Request.Context(), txn); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			slog.Info("Duplicate transaction rejected", "transaction_id", txn.TransactionID)
			return &apiError{
				statusCode: http.StatusConflict,
				errorType:  httperr.HttpDuplicateTransactionError,
				message:    msgDuplicateTxn,
			}
		}

		slog.Error("Failed to persist transaction", "error", err, "transaction_id", txn.TransactionID)
		return &apiError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgInsertFailed,
		}
	}

	return nil
}

// writeError serializes an apiError as the JSON HTTP response.
func writeError(c *gin.Context, err *apiError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
