package models

import (
	"encoding/json"
	"time"
)

type Wallet struct {
	ID             string                     `json:"id"`
	Active         bool                       `json:"active"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
	Name           string                     `json:"name"`
	OrganizationID string                     `json:"organization_id"`
	EnvironmentID  string                     `json:"environment_id"`
	Limit          int64                      `json:"limit"`
	LineOfCreditID string                     `json:"line_of_credit_id"`
	Network        string                     `json:"network"`
	Metadata       map[string]json.RawMessage `json:"metadata,omitempty"`
	Balances       []WalletBalance            `json:"balances"`
	Holds          []json.RawMessage          `json:"holds"`
	Error          *string                    `json:"error"`
}
