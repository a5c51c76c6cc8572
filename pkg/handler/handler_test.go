package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voltage_wallet_demo/pkg/config"
	"voltage_wallet_demo/pkg/eventbus"
	"voltage_wallet_demo/pkg/middleware"
	"voltage_wallet_demo/pkg/service"
	"voltage_wallet_demo/pkg/session"
	"voltage_wallet_demo/pkg/voltage"
)

const paymentsPrefix = "/organizations/org/environments/env/payments"

// fakeVoltage answers like the wallet service: every payment is generated
// and completed by the time it is first fetched.
func fakeVoltage(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	reply := func(w http.ResponseWriter, status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
	mux.HandleFunc("GET /organizations/org/wallets/wal", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{"id":"wal","name":"demo","network":"mutinynet","balances":[
			{"id":"b1","currency":"btc","available":{"amount":2500000,"currency":"btc","unit":"msats"},"total":{"amount":2500000,"currency":"btc","unit":"msats"}}]}`)
	})
	mux.HandleFunc("GET /organizations/org/wallets/wal/ledger", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{"items":[],"offset":0,"limit":50,"total":0}`)
	})
	mux.HandleFunc("GET /organizations/org/assets", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{"assets":[{"asset":"02cash","name":"Voltage Cash","network":"mutinynet","decimal_display":2}]}`)
	})
	mux.HandleFunc("GET "+paymentsPrefix, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{"items":[{"id":"p1","type":"taprootasset","direction":"receive","status":"completed",
			"requested_amount":{"amount":150,"currency":"asset:02CASH","unit":"base units"}}],"total":1,"limit":100,"offset":0}`)
	})
	mux.HandleFunc("POST "+paymentsPrefix, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET "+paymentsPrefix+"/missing", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusNotFound, `{"detail":"payment not found"}`)
	})
	mux.HandleFunc("GET "+paymentsPrefix+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{"id":"`+r.PathValue("id")+`","status":"completed","direction":"receive","type":"bolt11",
			"data":{"payment_request":"lntb1invoice"}}`)
	})
	mux.HandleFunc("GET "+paymentsPrefix+"/{id}/history", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `[{"status":"generating"},{"status":"completed"}]`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(t *testing.T) (*gin.Engine, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := fakeVoltage(t)

	cfg := config.Config{
		Voltage: config.Voltage{
			APIKey:         "key",
			BaseURL:        srv.URL,
			OrganizationID: "org",
			EnvironmentID:  "env",
			WalletID:       "wal",
		},
		Monitor: config.Monitor{
			StatusInterval:    time.Millisecond,
			ReadinessInterval: time.Millisecond,
			Timeout:           2 * time.Second,
		},
		Server: config.Server{BalanceTTL: time.Minute},
	}
	client, err := voltage.New(cfg.Voltage)
	require.NoError(t, err)

	sessions := session.NewManager(context.Background())
	t.Cleanup(sessions.CloseAll)
	svc := service.NewService(client, cfg, eventbus.New())
	return NewHandler(svc, sessions, []string{"http://localhost:5173"}).InitRoute(), sessions
}

func do(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(middleware.SessionHeader, "s1")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestSessionHeaderRequired(t *testing.T) {
	router, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/wallet/balance", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetBalance(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(router, http.MethodGet, "/api/wallet/balance", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]any)
	official := data["official"].([]any)
	require.Len(t, official, 1)
	btc := official[0].(map[string]any)
	assert.Equal(t, "Bitcoin", btc["label"])
	assert.Equal(t, "2,500 sats", btc["available"].(map[string]any)["headline"])

	computed := data["computed"].([]any)
	require.Len(t, computed, 1)
	cash := computed[0].(map[string]any)
	assert.Equal(t, "1.50 Voltage Cash", cash["available"].(map[string]any)["headline"])
	assert.Equal(t, true, cash["approximate"])
}

func TestRefreshBalance(t *testing.T) {
	router, _ := newTestRouter(t)
	w := do(router, http.MethodPost, "/api/wallet/refresh", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestGetLedger_BadQuery(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(router, http.MethodGet, "/api/wallet/ledger?limit=lots", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodGet, "/api/wallet/ledger?limit=10", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSend_ValidationError(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(router, http.MethodPost, "/api/payments/send", service.SendRequest{Rail: "lightning", Destination: "garbage"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Enter a valid Lightning invoice", decodeBody(t, w)["message"])
}

func TestSend_Completes(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(router, http.MethodPost, "/api/payments/send", service.SendRequest{Rail: "lightning", Destination: "lntb1invoice"})

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "completed", data["payment"].(map[string]any)["status"])
}

func TestReceive_ThenStatus(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(router, http.MethodPost, "/api/payments/receive", service.ReceiveRequest{Rail: "lightning", Amount: "100"})
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "lntb1invoice", data["payment_request"])
	id := data["payment_id"].(string)
	require.NotEmpty(t, id)

	require.Eventually(t, func() bool {
		w := do(router, http.MethodGet, "/api/payments/"+id+"/status", nil)
		if w.Code != http.StatusOK {
			return false
		}
		tracked := decodeBody(t, w)["data"].(map[string]any)
		return tracked["done"] == true && tracked["message"] == "Payment received"
	}, time.Second, 5*time.Millisecond)
}

func TestGetPaymentStatus_Unknown(t *testing.T) {
	router, _ := newTestRouter(t)
	w := do(router, http.MethodGet, "/api/payments/nope/status", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPayment_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(router, http.MethodGet, "/api/payments/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "payment not found", decodeBody(t, w)["message"])
}

func TestGetPaymentHistory(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(router, http.MethodGet, "/api/payments/p1/history", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["data"], 2)
}

func TestListPaymentsAndAssets(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(router, http.MethodGet, "/api/payments?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeBody(t, w)["data"].(map[string]any)["total"])

	w = do(router, http.MethodGet, "/api/assets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sel := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, true, sel["enabled"])
	assert.Equal(t, "Voltage Cash", sel["selected"].(map[string]any)["name"])
}

func TestValidate(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(router, http.MethodPost, "/api/validate", map[string]string{
		"rail":  "onchain",
		"input": "bitcoin:bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq?amount=0.0001&label=Coffee",
	})

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, true, data["valid"])
	assert.EqualValues(t, 10000, data["bitcoin"].(map[string]any)["amount_sats"])
}

func TestCloseSession(t *testing.T) {
	router, sessions := newTestRouter(t)

	w := do(router, http.MethodDelete, "/api/session", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, sessions.Len())
}
