package voltage

import (
	"context"

	"github.com/sirupsen/logrus"

	"voltage_wallet_demo/models"
	"voltage_wallet_demo/pkg/amount"
)

// receiveRequest is the receive-style creation body: top-level
// payment_kind and amount.
type receiveRequest struct {
	ID          string             `json:"id"`
	WalletID    string             `json:"wallet_id"`
	Currency    models.Currency    `json:"currency"`
	AmountMsats *int64             `json:"amount_msats,omitempty"`
	Amount      *models.Amount     `json:"amount,omitempty"`
	Description *string            `json:"description,omitempty"`
	PaymentKind models.PaymentType `json:"payment_kind"`
}

// sendRequest is the send-style creation body: type plus a rail specific
// data object.
type sendRequest struct {
	ID       string             `json:"id"`
	WalletID string             `json:"wallet_id"`
	Currency models.Currency    `json:"currency"`
	Type     models.PaymentType `json:"type"`
	Data     models.PaymentData `json:"data"`
}

func positive(v *int64) *int64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (c *Client) submit(ctx context.Context, id string, kind models.PaymentType, direction models.PaymentDirection, payload any) (string, error) {
	if err := c.postPayment(ctx, payload); err != nil {
		return "", err
	}
	logrus.WithFields(logrus.Fields{
		"payment_id": id,
		"type":       kind,
		"direction":  direction,
	}).Info("payment submitted")
	return id, nil
}

// CreateReceivePayment requests a Lightning invoice for amountMsats and
// returns the client-assigned payment id.
func (c *Client) CreateReceivePayment(ctx context.Context, amountMsats int64, description string) (string, error) {
	if description == "" {
		description = "Payment"
	}
	id := c.newID()
	return c.submit(ctx, id, models.PaymentTypeBolt11, models.DirectionReceive, receiveRequest{
		ID:          id,
		WalletID:    c.cfg.WalletID,
		Currency:    models.CurrencyBTC,
		AmountMsats: &amountMsats,
		Description: &description,
		PaymentKind: models.PaymentTypeBolt11,
	})
}

// CreateReceiveOnchainPayment requests an on-chain address for amountSats.
func (c *Client) CreateReceiveOnchainPayment(ctx context.Context, amountSats int64, memo string) (string, error) {
	id := c.newID()
	amountMsats := amount.SatsToMsats(amountSats)
	return c.submit(ctx, id, models.PaymentTypeOnchain, models.DirectionReceive, receiveRequest{
		ID:          id,
		WalletID:    c.cfg.WalletID,
		Currency:    models.CurrencyBTC,
		AmountMsats: &amountMsats,
		Description: optionalString(memo),
		PaymentKind: models.PaymentTypeOnchain,
	})
}

// CreateReceiveAssetPayment requests a taproot asset invoice.
func (c *Client) CreateReceiveAssetPayment(ctx context.Context, assetGroupKey string, amountBaseUnits int64, description string) (string, error) {
	id := c.newID()
	base := models.AssetBaseUnits(assetGroupKey, amountBaseUnits)
	return c.submit(ctx, id, models.PaymentTypeTaprootAsset, models.DirectionReceive, receiveRequest{
		ID:          id,
		WalletID:    c.cfg.WalletID,
		Currency:    base.Currency,
		Amount:      &base,
		Description: optionalString(description),
		PaymentKind: models.PaymentTypeTaprootAsset,
	})
}

// CreateSendPayment pays a Lightning invoice. A nil amountMsats uses the
// amount embedded in the invoice; a nil maxFeeMsats leaves the fee cap to the
// service.
func (c *Client) CreateSendPayment(ctx context.Context, invoice string, amountMsats, maxFeeMsats *int64) (string, error) {
	id := c.newID()
	return c.submit(ctx, id, models.PaymentTypeBolt11, models.DirectionSend, sendRequest{
		ID:       id,
		WalletID: c.cfg.WalletID,
		Currency: models.CurrencyBTC,
		Type:     models.PaymentTypeBolt11,
		Data: models.PaymentData{
			PaymentRequest: invoice,
			AmountMsats:    positive(amountMsats),
			MaxFeeMsats:    positive(maxFeeMsats),
		},
	})
}

// CreateSendOnchainPayment sends amountSats to a bitcoin address.
func (c *Client) CreateSendOnchainPayment(ctx context.Context, address string, amountSats, maxFeeSats int64, memo string) (string, error) {
	id := c.newID()
	return c.submit(ctx, id, models.PaymentTypeOnchain, models.DirectionSend, sendRequest{
		ID:       id,
		WalletID: c.cfg.WalletID,
		Currency: models.CurrencyBTC,
		Type:     models.PaymentTypeOnchain,
		Data: models.PaymentData{
			Address:    address,
			AmountSats: &amountSats,
			MaxFeeSats: &maxFeeSats,
			Memo:       memo,
		},
	})
}

// CreateSendAssetPayment pays a taproot asset invoice. maxFee may be in btc
// msats or in the asset's base units; it is sent in whichever currency the
// caller chose.
func (c *Client) CreateSendAssetPayment(ctx context.Context, invoice, assetGroupKey string, amountBaseUnits int64, maxFee *models.Amount) (string, error) {
	id := c.newID()
	base := models.AssetBaseUnits(assetGroupKey, amountBaseUnits)
	return c.submit(ctx, id, models.PaymentTypeTaprootAsset, models.DirectionSend, sendRequest{
		ID:       id,
		WalletID: c.cfg.WalletID,
		Currency: base.Currency,
		Type:     models.PaymentTypeTaprootAsset,
		Data: models.PaymentData{
			PaymentRequest: invoice,
			Asset:          assetGroupKey,
			Amount:         &base,
			MaxFee:         maxFee,
		},
	})
}
