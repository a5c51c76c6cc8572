package voltage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voltage_wallet_demo/models"
	"voltage_wallet_demo/pkg/config"
)

type recorded struct {
	method string
	path   string
	query  url.Values
	apiKey string
	body   map[string]any
}

type recorder struct {
	mu    sync.Mutex
	calls []recorded
}

func (r *recorder) add(rec recorded) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, rec)
}

func (r *recorder) get(i int) recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[i]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *recorder) {
	t.Helper()
	calls := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			apiKey: r.Header.Get(apiKeyHeader),
		}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			assert.NoError(t, json.Unmarshal(raw, &rec.body))
		}
		calls.add(rec)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := New(config.Voltage{
		APIKey:         "key-123",
		BaseURL:        srv.URL,
		OrganizationID: "org",
		EnvironmentID:  "env",
		WalletID:       "wal",
		Network:        "mutinynet",
	}, WithHTTPClient(srv.Client()), WithIDGenerator(func() string { return "pay-1" }))
	require.NoError(t, err)
	return c, calls
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNew_ConfigErrorBeforeAnyRequest(t *testing.T) {
	_, err := New(config.Voltage{APIKey: "k", OrganizationID: "o"})
	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"VOLTAGE_ENVIRONMENT_ID", "VOLTAGE_WALLET_ID"}, cfgErr.Missing)
}

func TestGetWallet(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"wal","name":"demo","balances":[{"available":{"amount":5000,"currency":"btc","unit":"msats"}}]}`)
	})

	wallet, err := c.GetWallet(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "wal", wallet.ID)
	assert.Equal(t, "demo", wallet.Name)

	require.Equal(t, 1, calls.count())
	got := calls.get(0)
	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/organizations/org/wallets/wal", got.path)
	assert.Equal(t, "key-123", got.apiKey)
}

func TestGetPayments_Query(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"items":[{"id":"p1","status":"completed"}],"total":1,"limit":20,"offset":0}`)
	})

	page, err := c.GetPayments(context.Background(), 0, 40)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, models.StatusCompleted, page.Items[0].Status)

	got := calls.get(0)
	assert.Equal(t, "/organizations/org/environments/env/payments", got.path)
	assert.Equal(t, "20", got.query.Get("limit"))
	assert.Equal(t, "40", got.query.Get("offset"))
	assert.Equal(t, "wal", got.query.Get("wallet_id"))
}

func TestGetSupportedAssets_Network(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"assets":[{"asset":"abc","name":"Voltage Cash","network":"mutinynet","decimal_display":2}]}`)
	})

	assets, err := c.GetSupportedAssets(context.Background())
	require.NoError(t, err)
	require.Len(t, assets.Assets, 1)
	assert.Equal(t, int32(2), assets.Assets[0].DecimalDisplay)
	assert.Equal(t, "mutinynet", calls.get(0).query.Get("network"))
}

func TestGetWalletLedger_Query(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"items":[],"offset":0,"limit":50,"total":0}`)
	})

	_, err := c.GetWalletLedger(context.Background(), 0, 0, "pay-9")
	require.NoError(t, err)
	got := calls.get(0)
	assert.Equal(t, "/organizations/org/wallets/wal/ledger", got.path)
	assert.Equal(t, "50", got.query.Get("limit"))
	assert.Equal(t, "pay-9", got.query.Get("payment_id"))
}

func TestGetPayment_APIError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"detail":"payment not found"}`)
	})

	_, err := c.GetPayment(context.Background(), "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, `{"detail":"payment not found"}`, apiErr.Body)
	assert.Equal(t, "payment not found", apiErr.Message())
	assert.Equal(t, `Voltage API Error 404: {"detail":"payment not found"}`, apiErr.Error())
	assert.True(t, IsNotFound(err))
}

func TestAPIError_PlainTextBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream down")
	})

	_, err := c.GetWallet(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Empty(t, apiErr.Detail)
	assert.Equal(t, "Voltage API Error 502: upstream down", apiErr.Message())
	assert.False(t, IsNotFound(err))
}

func TestGet_EmptyBodies(t *testing.T) {
	tests := []struct {
		name    string
		handler func(w http.ResponseWriter, r *http.Request)
	}{
		{
			name: "accepted",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusAccepted)
			},
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				_, _ = io.WriteString(w, "ok")
			},
		},
		{
			name: "blank json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, "  ")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, tt.handler)
			_, err := c.GetPayment(context.Background(), "p1")
			assert.True(t, errors.Is(err, ErrEmptyResponse))
		})
	}
}

func TestGet_DecodeError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":`)
	})

	_, err := c.GetWallet(context.Background())
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, http.StatusOK, decErr.StatusCode)
	assert.Equal(t, `{"id":`, decErr.Body)
}

func TestPostPayment_AcceptedIsSuccess(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	id, err := c.CreateReceivePayment(context.Background(), 150000, "")
	require.NoError(t, err)
	assert.Equal(t, "pay-1", id)

	got := calls.get(0)
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/organizations/org/environments/env/payments", got.path)
	assert.Equal(t, map[string]any{
		"id":           "pay-1",
		"wallet_id":    "wal",
		"currency":     "btc",
		"amount_msats": float64(150000),
		"description":  "Payment",
		"payment_kind": "bolt11",
	}, got.body)
}

func TestCreateReceiveOnchainPayment_Payload(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})

	_, err := c.CreateReceiveOnchainPayment(context.Background(), 2500, "")
	require.NoError(t, err)
	body := calls.get(0).body
	assert.Equal(t, float64(2500000), body["amount_msats"])
	assert.Equal(t, "onchain", body["payment_kind"])
	assert.NotContains(t, body, "description")
}

func TestCreateReceiveAssetPayment_Payload(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	_, err := c.CreateReceiveAssetPayment(context.Background(), "02abc", 1234, "coffee")
	require.NoError(t, err)
	body := calls.get(0).body
	assert.Equal(t, "asset:02abc", body["currency"])
	assert.Equal(t, "taprootasset", body["payment_kind"])
	assert.Equal(t, "coffee", body["description"])
	assert.Equal(t, map[string]any{
		"amount":   float64(1234),
		"currency": "asset:02abc",
		"unit":     "base units",
	}, body["amount"])
}

func TestCreateSendPayment_OmitsOverrides(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	zero := int64(0)
	_, err := c.CreateSendPayment(context.Background(), "lnbc1invoice", &zero, nil)
	require.NoError(t, err)

	body := calls.get(0).body
	assert.Equal(t, "bolt11", body["type"])
	assert.Equal(t, map[string]any{"payment_request": "lnbc1invoice"}, body["data"])
}

func TestCreateSendPayment_WithOverrides(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	amount, fee := int64(21000), int64(3000)
	_, err := c.CreateSendPayment(context.Background(), "lnbc1invoice", &amount, &fee)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"payment_request": "lnbc1invoice",
		"amount_msats":    float64(21000),
		"max_fee_msats":   float64(3000),
	}, calls.get(0).body["data"])
}

func TestCreateSendOnchainPayment_Payload(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	_, err := c.CreateSendOnchainPayment(context.Background(), "tb1qexample", 5000, 100, "rent")
	require.NoError(t, err)

	body := calls.get(0).body
	assert.Equal(t, "onchain", body["type"])
	assert.Equal(t, map[string]any{
		"address":      "tb1qexample",
		"amount_sats":  float64(5000),
		"max_fee_sats": float64(100),
		"memo":         "rent",
	}, body["data"])
}

func TestCreateSendAssetPayment_Payload(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	fee := models.BTCMsats(5000)
	_, err := c.CreateSendAssetPayment(context.Background(), "lntb1assetinvoice", "02abc", 700, &fee)
	require.NoError(t, err)

	body := calls.get(0).body
	assert.Equal(t, "taprootasset", body["type"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "02abc", data["asset"])
	assert.Equal(t, "lntb1assetinvoice", data["payment_request"])
	assert.Equal(t, map[string]any{"amount": float64(5000), "currency": "btc", "unit": "msats"}, data["max_fee"])
}

func TestCreate_APIErrorReturnsNoID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"message":"insufficient balance"}`)
	})

	id, err := c.CreateSendOnchainPayment(context.Background(), "tb1qexample", 5000, 100, "")
	assert.Empty(t, id)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "insufficient balance", apiErr.Message())
}
