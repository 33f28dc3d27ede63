//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	v1 "github.com/rewardex-lab/rewardex/internal/api/v1"
	"github.com/rewardex-lab/rewardex/internal/core/rewards"
	"github.com/rewardex-lab/rewardex/internal/core/storage/memory"
	"github.com/rewardex-lab/rewardex/internal/reporting"
	"github.com/rewardex-lab/rewardex/internal/seed"
	"github.com/rewardex-lab/rewardex/internal/server"
	"github.com/rewardex-lab/rewardex/internal/transactions"
)

type integrationHarness struct {
	baseURL    string
	client     *http.Client
	cancel     context.CancelFunc
	serverDone chan error
}

func startHarness(t *testing.T) *integrationHarness {
	t.Helper()

	store := memory.New()
	cache := rewards.NewCache(store)
	gen, err := seed.NewGenerator(1)
	require.NoError(t, err)

	txnSvc := transactions.NewService(store, cache, gen, 1)
	reportSvc := reporting.NewService(cache)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	srv := server.New(addr, nil, "release")
	txnSvc.RegisterRoutes(srv.Engine)
	reportSvc.RegisterRoutes(srv.Engine)

	ctx, cancel := context.WithCancel(context.Background())
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Run(ctx)
	}()

	h := &integrationHarness{
		baseURL:    "http://" + addr,
		client:     &http.Client{Timeout: 5 * time.Second},
		cancel:     cancel,
		serverDone: serverDone,
	}
	h.waitHealthy(t)
	return h
}

func (h *integrationHarness) waitHealthy(t *testing.T) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := h.client.Get(h.baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("server never became healthy")
}

func (h *integrationHarness) close(t *testing.T) {
	t.Helper()

	h.cancel()
	select {
	case err := <-h.serverDone:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Log("server shutdown timed out")
	}
}

func postJSON(t *testing.T, client *http.Client, url string, payload interface{}) (int, []byte) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, respBody
}

func getJSON(t *testing.T, client *http.Client, url string, out interface{}) int {
	t.Helper()

	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(body, out), string(body))
	}
	return resp.StatusCode
}

func TestRewardsAPI_EndToEnd(t *testing.T) {
	h := startHarness(t)
	defer h.close(t)

	// Create two customers with known purchases. 120 -> 90 points,
	// 75 -> 25, 200 -> 250.
	creates := []map[string]interface{}{
		{"customerName": "John Smith", "txnId": "TXN000000000001", "date": "15-01-2024", "price": 120},
		{"customerName": "Jane Doe", "txnId": "TXN000000000002", "date": "22-12-2023", "price": 200},
	}
	for _, payload := range creates {
		status, body := postJSON(t, h.client, h.baseURL+"/v1/transactions", payload)
		require.Equal(t, http.StatusCreated, status, string(body))
	}

	// Second purchase for customer 1 in the same month.
	status, body := postJSON(t, h.client, h.baseURL+"/v1/transactions/customer/1",
		map[string]interface{}{"customerName": "John Smith", "txnId": "TXN000000000003", "date": "28-01-2024", "price": 75})
	require.Equal(t, http.StatusCreated, status, string(body))

	// Duplicate transaction ID is rejected.
	status, _ = postJSON(t, h.client, h.baseURL+"/v1/transactions/customer/1",
		map[string]interface{}{"txnId": "TXN000000000003", "price": 50})
	require.Equal(t, http.StatusConflict, status)

	// Raw listing, scoped to customer 1.
	var txns []v1.Transaction
	status = getJSON(t, h.client, h.baseURL+"/v1/transactions/customer/1", &txns)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, txns, 2)

	// Lifetime totals reflect every verified purchase.
	var totals []rewards.TotalReward
	status = getJSON(t, h.client, h.baseURL+"/v1/rewards/total", &totals)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []rewards.TotalReward{
		{CustomerID: 1, CustomerName: "John Smith", TotalPoints: 115},
		{CustomerID: 2, CustomerName: "Jane Doe", TotalPoints: 250},
	}, totals)

	// Monthly report groups January's two purchases and renders month names.
	var monthly []reporting.MonthlyRewardView
	status = getJSON(t, h.client, h.baseURL+"/v1/rewards/monthly?sort=asc", &monthly)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, monthly, 2)
	require.Equal(t, "December", monthly[0].Month)
	require.Equal(t, int64(250), monthly[0].Points)
	require.Equal(t, "January", monthly[1].Month)
	require.Equal(t, int64(115), monthly[1].Points)

	// Top months for customer 1.
	var top reporting.TopRewardsResponse
	status = getJSON(t, h.client, fmt.Sprintf("%s/v1/rewards/top/%d", h.baseURL, 1), &top)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, top.Count)
	require.Len(t, top.Rows, 1)
	require.Equal(t, int64(115), top.Rows[0].Points)
}

func TestRewardsAPI_PaginationEnvelope(t *testing.T) {
	h := startHarness(t)
	defer h.close(t)

	for i := 1; i <= 4; i++ {
		status, body := postJSON(t, h.client, h.baseURL+"/v1/transactions", map[string]interface{}{
			"customerName": fmt.Sprintf("Customer %d", i),
			"txnId":        fmt.Sprintf("TXN%012d", i),
			"date":         fmt.Sprintf("%02d-01-2024", i),
			"price":        100 + i,
		})
		require.Equal(t, http.StatusCreated, status, string(body))
	}

	var envelope struct {
		Rows     []rewards.TotalReward `json:"rows"`
		Total    int                   `json:"total"`
		Page     int                   `json:"page"`
		PageSize int                   `json:"pageSize"`
	}
	status := getJSON(t, h.client, h.baseURL+"/v1/rewards/total?page=2&pageSize=2", &envelope)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 4, envelope.Total)
	require.Equal(t, 2, envelope.Page)
	require.Len(t, envelope.Rows, 2)
	require.Equal(t, int64(3), envelope.Rows[0].CustomerID)
}
