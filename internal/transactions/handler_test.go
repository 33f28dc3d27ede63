package transactions

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	v1 "github.com/rewardex-lab/rewardex/internal/api/v1"
	httperr "github.com/rewardex-lab/rewardex/internal/core/errors"
	"github.com/rewardex-lab/rewardex/internal/core/rewards"
	"github.com/rewardex-lab/rewardex/internal/core/storage/memory"
	"github.com/rewardex-lab/rewardex/internal/seed"
)

type testHarness struct {
	store  *memory.Store
	cache  *rewards.Cache
	router *gin.Engine
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.New()
	cache := rewards.NewCache(store)
	gen, err := seed.NewGenerator(1)
	require.NoError(t, err)

	svc := NewService(store, cache, gen, 1)
	router := gin.New()
	svc.RegisterRoutes(router)

	return &testHarness{store: store, cache: cache, router: router}
}

func (h *testHarness) insert(t *testing.T, customerID int64, txnID, name, date, price string) {
	t.Helper()

	amount, err := decimal.NewFromString(price)
	require.NoError(t, err)
	points, err := rewards.PointsFor(amount)
	require.NoError(t, err)

	txn := seed.NewTransaction(customerID, name, txnID, date, "Wireless Mouse", amount, points)
	require.NoError(t, h.store.InsertTransaction(context.Background(), &txn))
}

func (h *testHarness) do(t *testing.T, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	h.router.ServeHTTP(resp, req)
	return resp
}

func TestCreateHandler_FullBody(t *testing.T) {
	h := newTestHarness(t)

	body := []byte(`{
		"customerName": "John Smith",
		"txnId": "TXN000000000001",
		"date": "15-01-2024",
		"productName": "Wireless Mouse",
		"price": 120
	}`)

	resp := h.do(t, http.MethodPost, "/v1/transactions", body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, "created", result["status"])
	require.Equal(t, "TXN000000000001", result["transactionId"])
	// Empty store: the first customer is numbered 1.
	require.Equal(t, float64(1), result["customerId"])

	txns, err := h.store.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, txns, 1)
	points, ok := txns[0].PointsValue()
	require.True(t, ok)
	require.Equal(t, int64(90), points)
}

func TestCreateHandler_EmptyBodyGeneratesEverything(t *testing.T) {
	h := newTestHarness(t)

	resp := h.do(t, http.MethodPost, "/v1/transactions", nil)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	txns, err := h.store.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, txns, 1)
	require.NoError(t, txns[0].Validate())
	require.NoError(t, rewards.VerifyPoints(txns))
}

func TestCreateHandler_ExistingCustomer(t *testing.T) {
	h := newTestHarness(t)
	h.insert(t, 7, "TXN000000000001", "Jane Doe", "10-01-2024", "45")

	resp := h.do(t, http.MethodPost, "/v1/transactions/customer/7", []byte(`{"price": 75}`))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, float64(7), result["customerId"])
}

func TestCreateHandler_NewCustomerNumberedMaxPlusOne(t *testing.T) {
	h := newTestHarness(t)
	h.insert(t, 7, "TXN000000000001", "Jane Doe", "10-01-2024", "45")

	resp := h.do(t, http.MethodPost, "/v1/transactions", []byte(`{"price": 75}`))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, float64(8), result["customerId"])
}

func TestCreateHandler_Duplicate(t *testing.T) {
	h := newTestHarness(t)
	h.insert(t, 1, "TXN000000000001", "Jane Doe", "10-01-2024", "45")

	resp := h.do(t, http.MethodPost, "/v1/transactions/customer/1",
		[]byte(`{"txnId": "TXN000000000001", "price": 75}`))
	require.Equal(t, http.StatusConflict, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpDuplicateTransactionError, errResp.ErrorType)
}

func TestCreateHandler_InvalidJSON(t *testing.T) {
	h := newTestHarness(t)

	resp := h.do(t, http.MethodPost, "/v1/transactions", []byte(`not json`))
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpInvalidJsonError, errResp.ErrorType)
}

func TestCreateHandler_NegativePrice(t *testing.T) {
	h := newTestHarness(t)

	resp := h.do(t, http.MethodPost, "/v1/transactions", []byte(`{"price": -10}`))
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateHandler_BadDate(t *testing.T) {
	h := newTestHarness(t)

	resp := h.do(t, http.MethodPost, "/v1/transactions",
		[]byte(`{"date": "2024-01-15", "price": 75}`))
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateHandler_InvalidCustomerID(t *testing.T) {
	h := newTestHarness(t)

	for _, id := range []string{"0", "-3", "abc"} {
		resp := h.do(t, http.MethodPost, "/v1/transactions/customer/"+id, []byte(`{"price": 75}`))
		require.Equal(t, http.StatusBadRequest, resp.Code, "id %q", id)
	}
}

func TestCreateHandler_OversizedBody(t *testing.T) {
	h := newTestHarness(t)

	// Service was built with a 1MB cap.
	body := bytes.Repeat([]byte("x"), 1024*1024+1)
	resp := h.do(t, http.MethodPost, "/v1/transactions", body)
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
}

func TestCreateHandler_InvalidatesSnapshot(t *testing.T) {
	h := newTestHarness(t)
	h.insert(t, 1, "TXN000000000001", "Jane Doe", "10-01-2024", "45")

	before, err := h.cache.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, before, 1)

	resp := h.do(t, http.MethodPost, "/v1/transactions", []byte(`{"price": 75}`))
	require.Equal(t, http.StatusCreated, resp.Code)

	after, err := h.cache.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, after, 2)
}

func TestListHandler_UnboundedShape(t *testing.T) {
	h := newTestHarness(t)
	h.insert(t, 1, "TXN000000000001", "John Smith", "15-01-2024", "120")
	h.insert(t, 2, "TXN000000000002", "Jane Doe", "03-02-2024", "75")

	resp := h.do(t, http.MethodGet, "/v1/transactions", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	// No explicit pagination: a bare array, newest purchase first.
	var txns []v1.Transaction
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &txns))
	require.Len(t, txns, 2)
	require.Equal(t, "TXN000000000002", txns[0].TransactionID)
}

func TestListHandler_PaginatedShape(t *testing.T) {
	h := newTestHarness(t)
	h.insert(t, 1, "TXN000000000001", "John Smith", "15-01-2024", "120")
	h.insert(t, 2, "TXN000000000002", "Jane Doe", "03-02-2024", "75")
	h.insert(t, 3, "TXN000000000003", "Bob Johnson", "20-03-2024", "45")

	resp := h.do(t, http.MethodGet, "/v1/transactions?page=2&pageSize=1&sortBy=customerId&sortOrder=asc", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Rows     []v1.Transaction `json:"rows"`
		Total    int              `json:"total"`
		Page     int              `json:"page"`
		PageSize int              `json:"pageSize"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Equal(t, 3, envelope.Total)
	require.Equal(t, 2, envelope.Page)
	require.Equal(t, 1, envelope.PageSize)
	require.Len(t, envelope.Rows, 1)
	require.Equal(t, int64(2), envelope.Rows[0].CustomerID)
}

func TestListHandler_NameFilter(t *testing.T) {
	h := newTestHarness(t)
	h.insert(t, 1, "TXN000000000001", "John Smith", "15-01-2024", "120")
	h.insert(t, 2, "TXN000000000002", "Jane Doe", "03-02-2024", "75")

	resp := h.do(t, http.MethodGet, "/v1/transactions?customerName=doe", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var txns []v1.Transaction
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &txns))
	require.Len(t, txns, 1)
	require.Equal(t, "Jane Doe", txns[0].CustomerName)
}

func TestListHandler_InvalidSortField(t *testing.T) {
	h := newTestHarness(t)

	resp := h.do(t, http.MethodGet, "/v1/transactions?sortBy=nope", nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpInvalidQueryError, errResp.ErrorType)
}

func TestListByCustomerHandler(t *testing.T) {
	h := newTestHarness(t)
	h.insert(t, 1, "TXN000000000001", "John Smith", "15-01-2024", "120")
	h.insert(t, 1, "TXN000000000002", "John Smith", "03-02-2024", "75")
	h.insert(t, 2, "TXN000000000003", "Jane Doe", "20-03-2024", "45")

	resp := h.do(t, http.MethodGet, "/v1/transactions/customer/1", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var txns []v1.Transaction
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &txns))
	require.Len(t, txns, 2)
	for _, txn := range txns {
		require.Equal(t, int64(1), txn.CustomerID)
	}
}

func TestListByCustomerHandler_InvalidID(t *testing.T) {
	h := newTestHarness(t)

	resp := h.do(t, http.MethodGet, "/v1/transactions/customer/abc", nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}
