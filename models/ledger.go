package models

import "time"

type LedgerEntryType string

const (
	LedgerCredited LedgerEntryType = "credited"
	LedgerDebited  LedgerEntryType = "debited"
)

// LedgerEntry is a legacy history record. AmountMsats only carries btc
// entries; asset entries are read from the payment list instead.
type LedgerEntry struct {
	CreditID      string          `json:"credit_id"`
	PaymentID     string          `json:"payment_id"`
	AmountMsats   int64           `json:"amount_msats"`
	Currency      Currency        `json:"currency"`
	EffectiveTime time.Time       `json:"effective_time"`
	Type          LedgerEntryType `json:"type"`
}

type LedgerResponse struct {
	Items  []LedgerEntry `json:"items"`
	Offset int           `json:"offset"`
	Limit  int           `json:"limit"`
	Total  int           `json:"total"`
}
