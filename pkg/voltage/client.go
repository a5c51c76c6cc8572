// Package voltage is the HTTP client of the Voltage Payments API: wallets,
// supported assets, the payment list and payment creation.
package voltage

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"voltage_wallet_demo/models"
	"voltage_wallet_demo/pkg/config"
)

const apiKeyHeader = "X-Api-Key"

type Client struct {
	cfg   config.Voltage
	http  *resty.Client
	newID func() string
}

type Option func(*Client)

// WithHTTPClient swaps the transport, e.g. for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc)
	}
}

// WithIDGenerator replaces uuid.NewString for client-assigned payment ids.
func WithIDGenerator(fn func() string) Option {
	return func(c *Client) {
		c.newID = fn
	}
}

// New validates cfg and builds a client. A configuration error is returned
// before any request is made.
func New(cfg config.Voltage, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultBaseURL
	}

	c := &Client{
		cfg:   cfg,
		http:  resty.New(),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http.
		SetBaseURL(cfg.BaseURL).
		SetHeader(apiKeyHeader, cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetLogger(logrus.StandardLogger())
	if cfg.RequestTimeout > 0 {
		c.http.SetTimeout(cfg.RequestTimeout)
	}
	return c, nil
}

// Config returns the validated configuration the client was built with.
func (c *Client) Config() config.Voltage {
	return c.cfg
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"org":    c.cfg.OrganizationID,
			"env":    c.cfg.EnvironmentID,
			"wallet": c.cfg.WalletID,
		})
}

// do executes the request and turns non-2xx answers into *APIError.
// Transport failures are wrapped; errors.Cause returns the original.
func (c *Client) do(req *resty.Request, method, path string) (*resty.Response, error) {
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		apiErr := newAPIError(resp.StatusCode(), resp.Body())
		logrus.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode(),
		}).Warn("voltage request failed")
		return nil, apiErr
	}
	return resp, nil
}

func get[T any](ctx context.Context, c *Client, path string, query map[string]string) (*T, error) {
	req := c.request(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	resp, err := c.do(req, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	body, err := decode[T](resp)
	if err != nil {
		return nil, err
	}
	if body.Empty() {
		return nil, errors.Wrapf(ErrEmptyResponse, "GET %s", path)
	}
	return body.Value, nil
}

const (
	walletPath          = "/organizations/{org}/wallets/{wallet}"
	ledgerPath          = "/organizations/{org}/wallets/{wallet}/ledger"
	assetsPath          = "/organizations/{org}/assets"
	paymentsPath        = "/organizations/{org}/environments/{env}/payments"
	paymentPath         = "/organizations/{org}/environments/{env}/payments/{payment}"
	paymentHistoryPath  = "/organizations/{org}/environments/{env}/payments/{payment}/history"
	defaultLedgerLimit  = 50
	defaultPaymentLimit = 20
)

func (c *Client) GetWallet(ctx context.Context) (*models.Wallet, error) {
	return get[models.Wallet](ctx, c, walletPath, nil)
}

// GetWalletLedger returns one page of the legacy ledger. paymentID narrows it
// to the entries of one payment when non-empty.
func (c *Client) GetWalletLedger(ctx context.Context, offset, limit int, paymentID string) (*models.LedgerResponse, error) {
	if limit <= 0 {
		limit = defaultLedgerLimit
	}
	query := map[string]string{
		"offset": strconv.Itoa(offset),
		"limit":  strconv.Itoa(limit),
	}
	if paymentID != "" {
		query["payment_id"] = paymentID
	}
	return get[models.LedgerResponse](ctx, c, ledgerPath, query)
}

// GetSupportedAssets lists asset metadata (name, decimal_display) for the
// configured network.
func (c *Client) GetSupportedAssets(ctx context.Context) (*models.SupportedAssets, error) {
	var query map[string]string
	if c.cfg.Network != "" {
		query = map[string]string{"network": c.cfg.Network}
	}
	return get[models.SupportedAssets](ctx, c, assetsPath, query)
}

func (c *Client) GetPayments(ctx context.Context, limit, offset int) (*models.PaymentsPage, error) {
	if limit <= 0 {
		limit = defaultPaymentLimit
	}
	return get[models.PaymentsPage](ctx, c, paymentsPath, map[string]string{
		"limit":     strconv.Itoa(limit),
		"offset":    strconv.Itoa(offset),
		"wallet_id": c.cfg.WalletID,
	})
}

func (c *Client) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	req := c.request(ctx).SetPathParam("payment", paymentID)
	resp, err := c.do(req, http.MethodGet, paymentPath)
	if err != nil {
		return nil, err
	}
	body, err := decode[models.Payment](resp)
	if err != nil {
		return nil, err
	}
	if body.Empty() {
		return nil, errors.Wrapf(ErrEmptyResponse, "GET payment %s", paymentID)
	}
	return body.Value, nil
}

// GetPaymentHistory returns the raw state history of a payment.
func (c *Client) GetPaymentHistory(ctx context.Context, paymentID string) (json.RawMessage, error) {
	req := c.request(ctx).SetPathParam("payment", paymentID)
	resp, err := c.do(req, http.MethodGet, paymentHistoryPath)
	if err != nil {
		return nil, err
	}
	body, err := decode[json.RawMessage](resp)
	if err != nil {
		return nil, err
	}
	if body.Empty() {
		return json.RawMessage("null"), nil
	}
	return *body.Value, nil
}

// postPayment submits a creation payload. The answer body is ignored: the
// client-assigned id is the handle for the payment.
func (c *Client) postPayment(ctx context.Context, payload any) error {
	req := c.request(ctx).SetBody(payload)
	resp, err := c.do(req, http.MethodPost, paymentsPath)
	if err != nil {
		return err
	}
	_, err = decode[json.RawMessage](resp)
	return err
}
