package models

import "time"

type PaymentStatus string

const (
	StatusGenerating PaymentStatus = "generating"
	StatusSending    PaymentStatus = "sending"
	StatusReceiving  PaymentStatus = "receiving"
	StatusCompleted  PaymentStatus = "completed"
	StatusFailed     PaymentStatus = "failed"
	StatusExpired    PaymentStatus = "expired"
)

// Terminal reports whether no further transition can happen.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusExpired:
		return true
	}
	return false
}

type PaymentType string

const (
	PaymentTypeBolt11       PaymentType = "bolt11"
	PaymentTypeOnchain      PaymentType = "onchain"
	PaymentTypeBIP21        PaymentType = "bip21"
	PaymentTypeTaprootAsset PaymentType = "taprootasset"
)

type PaymentDirection string

const (
	DirectionSend    PaymentDirection = "send"
	DirectionReceive PaymentDirection = "receive"
)

// OnchainOutput is one outflow or receipt of an on-chain payment.
type OnchainOutput struct {
	TxID        string  `json:"tx_id"`
	Address     string  `json:"address,omitempty"`
	AmountSats  int64   `json:"amount_sats,omitempty"`
	Status      string  `json:"status,omitempty"`
	BlockHeight *uint32 `json:"block_height,omitempty"`
}

// PaymentData is the rail specific part of a Payment. Only the fields of the
// payment's rail are populated.
type PaymentData struct {
	// bolt11
	AmountMsats *int64 `json:"amount_msats,omitempty"`
	MaxFeeMsats *int64 `json:"max_fee_msats,omitempty"`
	FeeMsats    *int64 `json:"fee_msats,omitempty"`

	// shared
	Memo           string `json:"memo,omitempty"`
	PaymentRequest string `json:"payment_request,omitempty"`

	// taproot asset
	Asset  string  `json:"asset,omitempty"`
	Amount *Amount `json:"amount,omitempty"`
	MaxFee *Amount `json:"max_fee,omitempty"`
	Fees   *Amount `json:"fees,omitempty"`

	// onchain
	Address    string          `json:"address,omitempty"`
	AmountSats *int64          `json:"amount_sats,omitempty"`
	MaxFeeSats *int64          `json:"max_fee_sats,omitempty"`
	FeeSats    *int64          `json:"fee_sats,omitempty"`
	Outflows   []OnchainOutput `json:"outflows,omitempty"`
	Receipts   []OnchainOutput `json:"receipts,omitempty"`
}

// Payment is owned by the remote service. The client only observes it by
// re-fetching after submission.
type Payment struct {
	ID              string           `json:"id"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Currency        Currency         `json:"currency"`
	Data            PaymentData      `json:"data"`
	Direction       PaymentDirection `json:"direction"`
	EnvironmentID   string           `json:"environment_id"`
	OrganizationID  string           `json:"organization_id"`
	Status          PaymentStatus    `json:"status"`
	Type            PaymentType      `json:"type"`
	WalletID        string           `json:"wallet_id"`
	Error           *string          `json:"error"`
	BIP21URI        string           `json:"bip21_uri,omitempty"`
	RequestedAmount *Amount          `json:"requested_amount,omitempty"`
}

// ResolvedAmount prefers the requested amount and falls back to data.amount.
func (p *Payment) ResolvedAmount() *Amount {
	if p.RequestedAmount != nil {
		return p.RequestedAmount
	}
	return p.Data.Amount
}

// ErrorMessage returns the payment error or "".
func (p *Payment) ErrorMessage() string {
	if p.Error == nil {
		return ""
	}
	return *p.Error
}

// PaymentStatusUpdate is what a status monitor reports on every poll.
type PaymentStatusUpdate struct {
	Status PaymentStatus `json:"status"`
	Error  string        `json:"error,omitempty"`
}

type PaymentsPage struct {
	Items  []Payment `json:"items"`
	Total  int       `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}
