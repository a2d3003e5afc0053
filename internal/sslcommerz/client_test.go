package sslcommerz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/config"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := New(config.SSLCommerzConfig{
		StoreID:       "teststore",
		StorePassword: "testpass",
		Sandbox:       true,
	}, zerolog.Nop())
	c.baseURL = server.URL
	return c
}

func TestInitiateSessionSuccess(t *testing.T) {
	var gotForm map[string]string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"store_id":     r.PostFormValue("store_id"),
			"total_amount": r.PostFormValue("total_amount"),
			"tran_id":      r.PostFormValue("tran_id"),
			"currency":     r.PostFormValue("currency"),
			"ipn_url":      r.PostFormValue("ipn_url"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"SUCCESS","sessionkey":"sess-1","GatewayPageURL":"https://pay.example/session/sess-1"}`))
	}))

	resp, err := c.InitiateSession(context.Background(), InitRequest{
		Amount:     460,
		Currency:   "BDT",
		TranID:     "order-abc",
		SuccessURL: "https://api.example/payment/success",
		FailURL:    "https://api.example/payment/fail",
		CancelURL:  "https://api.example/payment/cancel",
		IPNURL:     "https://api.example/payment/ipn",
	})

	require.NoError(t, err)
	assert.Equal(t, "sess-1", resp.SessionKey)
	assert.Equal(t, "https://pay.example/session/sess-1", resp.GatewayPageURL)
	assert.Equal(t, "teststore", gotForm["store_id"])
	assert.Equal(t, "460.00", gotForm["total_amount"])
	assert.Equal(t, "order-abc", gotForm["tran_id"])
	assert.Equal(t, "BDT", gotForm["currency"])
	assert.Equal(t, "https://api.example/payment/ipn", gotForm["ipn_url"])
}

func TestInitiateSessionRejected(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"FAILED","failedreason":"store credential invalid"}`))
	}))

	_, err := c.InitiateSession(context.Background(), InitRequest{Amount: 100, Currency: "BDT", TranID: "t1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store credential invalid")
}

func TestInitiateSessionEmptyURL(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"SUCCESS","sessionkey":"sess-2"}`))
	}))

	_, err := c.InitiateSession(context.Background(), InitRequest{Amount: 100, Currency: "BDT", TranID: "t2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty payment URL")
}

func TestValidateTransaction(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "val-9", r.URL.Query().Get("val_id"))
		assert.Equal(t, "teststore", r.URL.Query().Get("store_id"))
		w.Write([]byte(`{"status":"VALID","tran_id":"order-abc","val_id":"val-9","amount":"460.00","currency_amount":"460.00"}`))
	}))

	resp, err := c.ValidateTransaction(context.Background(), "val-9")
	require.NoError(t, err)
	assert.True(t, resp.Settled())
	assert.Equal(t, "order-abc", resp.TranID)
	assert.Equal(t, "460.00", resp.Amount)
}

func TestValidationResponseSettled(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{"VALID", true},
		{"VALIDATED", true},
		{"INVALID_TRANSACTION", false},
		{"CANCELLED", false},
		{"", false},
	}
	for _, tt := range tests {
		got := ValidationResponse{Status: tt.status}.Settled()
		assert.Equal(t, tt.want, got, "status %q", tt.status)
	}
}

func TestValidateTransactionTransportError(t *testing.T) {
	c := New(config.SSLCommerzConfig{StoreID: "s", StorePassword: "p", Sandbox: true}, zerolog.Nop())
	c.baseURL = "http://127.0.0.1:1"

	_, err := c.ValidateTransaction(context.Background(), "val-1")
	require.Error(t, err, "a transport failure must surface as an error, not a failed validation")
}
