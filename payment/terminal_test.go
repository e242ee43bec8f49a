package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTerminal(url string) *Terminal {
	return &Terminal{
		baseURL: url,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func gatewayStub(t *testing.T, states []chargeStatus) *httptest.Server {
	var polls int64
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/charges", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chargeStatus{ChargeID: "chg-test", Stage: "sending", Status: "pending"})
	})
	mux.HandleFunc("/v1/charges/chg-test", func(w http.ResponseWriter, r *http.Request) {
		i := atomic.AddInt64(&polls, 1) - 1
		if i >= int64(len(states)) {
			i = int64(len(states)) - 1
		}
		json.NewEncoder(w).Encode(states[i])
	})
	return httptest.NewServer(mux)
}

func TestChargeApproved(t *testing.T) {
	srv := gatewayStub(t, []chargeStatus{
		{ChargeID: "chg-test", Stage: "processing", Status: "pending"},
		{ChargeID: "chg-test", Stage: "approving", Status: "pending"},
		{ChargeID: "chg-test", Stage: "approving", Status: "approved",
			TransactionID: "txn-1", AuthCode: "A123", CardBrand: "visa", CardLast4: "4242"},
	})
	defer srv.Close()

	var stages []string
	result, err := newTestTerminal(srv.URL).Charge(context.Background(),
		ChargeRequest{AmountCents: 1000, Reference: "ord-1"},
		func(stage string) { stages = append(stages, stage) },
	)
	require.NoError(t, err)

	assert.Equal(t, "txn-1", result.TransactionID)
	assert.Equal(t, "A123", result.AuthCode)
	assert.Equal(t, "4242", result.CardLast4)
	assert.Equal(t, []string{"initializing", "sending", "waiting", "processing", "approving", "success"}, stages)
}

func TestChargeDeclined(t *testing.T) {
	srv := gatewayStub(t, []chargeStatus{
		{ChargeID: "chg-test", Stage: "processing", Status: "declined", ErrorCode: "declined"},
	})
	defer srv.Close()

	_, err := newTestTerminal(srv.URL).Charge(context.Background(),
		ChargeRequest{AmountCents: 1000}, func(string) {})
	assert.Equal(t, ErrDeclined, err)
}

func TestChargeGatewayError(t *testing.T) {
	srv := gatewayStub(t, []chargeStatus{
		{ChargeID: "chg-test", Status: "error", ErrorCode: "session_expired"},
	})
	defer srv.Close()

	_, err := newTestTerminal(srv.URL).Charge(context.Background(),
		ChargeRequest{AmountCents: 1000}, func(string) {})
	assert.Equal(t, ErrSessionExpired, err)
}

func TestChargeTerminalOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := newTestTerminal(srv.URL).Charge(context.Background(),
		ChargeRequest{AmountCents: 1000}, func(string) {})
	assert.Equal(t, ErrTerminalOffline, err)
}

func TestChargeUnavailableGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestTerminal(srv.URL).Charge(context.Background(),
		ChargeRequest{AmountCents: 1000}, func(string) {})
	assert.Equal(t, ErrTerminalOffline, err)
}
