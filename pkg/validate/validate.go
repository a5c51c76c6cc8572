// Package validate holds the format checks run on pasted invoices and
// addresses before a payment is submitted. They are prefix and charset
// heuristics only; nothing here verifies a checksum.
package validate

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"voltage_wallet_demo/models"
	"voltage_wallet_demo/pkg/amount"
)

var (
	ErrInvalidInvoice = errors.New("invalid invoice")
	ErrInvalidAddress = errors.New("invalid bitcoin address")
	ErrInvalidAmount  = errors.New("invalid BIP21 amount")
	ErrUnknownRail    = errors.New("unknown payment rail")
)

const bip21Scheme = "bitcoin:"

var (
	bech32Lower = regexp.MustCompile(`^(bc1|tb1|bcrt1)[0-9ac-hj-np-z]{11,}$`)
	bech32Upper = regexp.MustCompile(`^(BC1|TB1|BCRT1)[0-9AC-HJ-NP-Z]{11,}$`)
	legacy      = regexp.MustCompile(`^[13][a-km-zA-HJ-NP-Z1-9]{25,34}$`)
)

var lightningPrefixes = []string{"lnbc", "lntb", "lnbs"}

// IsLightningInvoice reports whether s looks like a bolt11 invoice.
func IsLightningInvoice(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range lightningPrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// IsAssetInvoice accepts anything longer than ten characters.
func IsAssetInvoice(s string) bool {
	return len(strings.TrimSpace(s)) > 10
}

// IsBitcoinAddress accepts bech32 addresses written entirely in lower or
// upper case, and base58 legacy addresses.
func IsBitcoinAddress(s string) bool {
	return bech32Lower.MatchString(s) || bech32Upper.MatchString(s) || legacy.MatchString(s)
}

// BitcoinTarget is a bare address or the parts of a BIP21 URI that can
// pre-fill the send form.
type BitcoinTarget struct {
	Address    string `json:"address"`
	AmountSats *int64 `json:"amount_sats,omitempty"`
	Label      string `json:"label,omitempty"`
	Message    string `json:"message,omitempty"`
	URI        bool   `json:"uri"`
}

// Memo returns the label, or the message when there is no label.
func (t BitcoinTarget) Memo() string {
	if t.Label != "" {
		return t.Label
	}
	return t.Message
}

// ParseBitcoin parses a bare address or a bitcoin: URI. The amount of a URI
// is in BTC and is converted to sats, rounded to the nearest sat.
func ParseBitcoin(input string) (BitcoinTarget, error) {
	s := strings.TrimSpace(input)
	if len(s) < len(bip21Scheme) || !strings.EqualFold(s[:len(bip21Scheme)], bip21Scheme) {
		if !IsBitcoinAddress(s) {
			return BitcoinTarget{}, errors.Wrapf(ErrInvalidAddress, "%q", s)
		}
		return BitcoinTarget{Address: s}, nil
	}

	rest := s[len(bip21Scheme):]
	address, rawQuery, _ := strings.Cut(rest, "?")
	if !IsBitcoinAddress(address) {
		return BitcoinTarget{}, errors.Wrapf(ErrInvalidAddress, "%q", address)
	}
	target := BitcoinTarget{Address: address, URI: true}
	if rawQuery == "" {
		return target, nil
	}

	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		return BitcoinTarget{}, errors.Wrap(err, "parse BIP21 query")
	}
	if v := params.Get("amount"); v != "" {
		btc, err := decimal.NewFromString(v)
		if err != nil || !btc.IsPositive() {
			return BitcoinTarget{}, errors.Wrapf(ErrInvalidAmount, "%q", v)
		}
		sats := amount.BTCToSats(btc)
		target.AmountSats = &sats
	}
	target.Label = params.Get("label")
	target.Message = params.Get("message")
	return target, nil
}

// Destination runs the check for the rail the destination was pasted into.
func Destination(rail models.Rail, input string) error {
	switch rail {
	case models.RailLightning:
		if !IsLightningInvoice(input) {
			return ErrInvalidInvoice
		}
		return nil
	case models.RailAsset:
		if !IsAssetInvoice(input) {
			return ErrInvalidInvoice
		}
		return nil
	case models.RailOnchain:
		_, err := ParseBitcoin(input)
		return err
	}
	return errors.Wrapf(ErrUnknownRail, "%q", rail)
}
