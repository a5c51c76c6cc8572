package models

import "time"

// WalletBalance pairs the available and total amount of one currency.
type WalletBalance struct {
	ID            string    `json:"id"`
	WalletID      string    `json:"wallet_id"`
	EffectiveTime time.Time `json:"effective_time"`
	Available     Amount    `json:"available"`
	Total         Amount    `json:"total"`
	Network       string    `json:"network"`
	Currency      Currency  `json:"currency"`
}
