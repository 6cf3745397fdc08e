package paypal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/drukuje3d/internal/domain"
)

func fakePayPal(t *testing.T, tokenCalls *int32) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(tokenCalls, 1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		var req createOrderReq
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) || !assert.Len(t, req.PurchaseUnits, 1) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "CAPTURE", req.Intent)
		assert.Equal(t, "55.99", req.PurchaseUnits[0].Amount.Value)
		assert.Equal(t, "PLN", req.PurchaseUnits[0].Amount.CurrencyCode)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"PP-1","status":"CREATED"}`))
	})
	mux.HandleFunc("/v2/checkout/orders/PP-1/capture", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"PP-1","status":"COMPLETED","purchase_units":[{"payments":{"captures":[` +
			`{"status":"COMPLETED","amount":{"currency_code":"PLN","value":"50.00"}},` +
			`{"status":"COMPLETED","amount":{"currency_code":"PLN","value":"5.99"}},` +
			`{"status":"DECLINED","amount":{"currency_code":"PLN","value":"100.00"}}]}}]}`))
	})
	mux.HandleFunc("/v2/checkout/orders/PP-2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"PP-2","status":"APPROVED","purchase_units":[{"payments":{}}]}`))
	})
	mux.HandleFunc("/v2/checkout/orders/PP-404", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"name":"RESOURCE_NOT_FOUND","message":"The specified resource does not exist."}`))
	})
	return httptest.NewServer(mux)
}

func TestGateway_CreateAndCapture(t *testing.T) {
	var tokenCalls int32
	srv := fakePayPal(t, &tokenCalls)
	defer srv.Close()

	g := NewGateway(Config{ClientID: "client", ClientSecret: "secret", APIURL: srv.URL})
	o := &domain.Order{ID: uuid.New(), Total: decimal.RequireFromString("55.99")}

	id, err := g.CreateOrder(context.Background(), o)
	require.NoError(t, err)
	assert.Equal(t, "PP-1", id)

	c, err := g.Capture(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", c.Status)
	assert.Equal(t, "55.99", c.Amount.StringFixed(2))
	assert.Equal(t, "PLN", c.Currency)
	assert.EqualValues(t, 1, atomic.LoadInt32(&tokenCalls))
}

func TestGateway_GetOrderWithoutCaptures(t *testing.T) {
	var tokenCalls int32
	srv := fakePayPal(t, &tokenCalls)
	defer srv.Close()

	g := NewGateway(Config{ClientID: "client", ClientSecret: "secret", APIURL: srv.URL})
	c, err := g.GetOrder(context.Background(), "PP-2")
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", c.Status)
	assert.True(t, c.Amount.IsZero())
	assert.Empty(t, c.Currency)
}

func TestGateway_ErrorBody(t *testing.T) {
	var tokenCalls int32
	srv := fakePayPal(t, &tokenCalls)
	defer srv.Close()

	g := NewGateway(Config{ClientID: "client", ClientSecret: "secret", APIURL: srv.URL})
	_, err := g.GetOrder(context.Background(), "PP-404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RESOURCE_NOT_FOUND")
}

func TestGateway_MissingCredentials(t *testing.T) {
	g := NewGateway(Config{})
	_, err := g.Capture(context.Background(), "PP-1")
	require.ErrorIs(t, err, ErrMissingCredentials)
}
