package models

import "strings"

// Currency identifies what an Amount is denominated in: "btc", "usd" or
// "asset:<group key>".
type Currency string

// AmountUnit names the smallest unit an Amount is expressed in.
type AmountUnit string

const (
	CurrencyBTC Currency = "btc"
	CurrencyUSD Currency = "usd"

	assetCurrencyPrefix = "asset:"
)

const (
	UnitMsats     AmountUnit = "msats"
	UnitCents     AmountUnit = "cents"
	UnitBaseUnits AmountUnit = "base units"

	// unitMsat is the singular spelling some older balance payloads still use.
	unitMsat AmountUnit = "msat"
)

// Amount is always expressed in the smallest unit of its currency:
// millisatoshis for btc, base units for assets. It never carries display
// decimals; those live on the asset metadata.
type Amount struct {
	Amount   int64      `json:"amount"`
	Currency Currency   `json:"currency"`
	Unit     AmountUnit `json:"unit,omitempty"`
	Negative bool       `json:"negative,omitempty"`
}

// AssetCurrency builds the currency string for a taproot asset group key.
func AssetCurrency(groupKey string) Currency {
	return Currency(assetCurrencyPrefix + groupKey)
}

// Normalized returns the lower-cased currency, used as a map key.
func (c Currency) Normalized() Currency {
	return Currency(strings.ToLower(string(c)))
}

func (c Currency) IsBTC() bool {
	return c.Normalized() == CurrencyBTC
}

func (c Currency) IsAsset() bool {
	return strings.HasPrefix(string(c.Normalized()), assetCurrencyPrefix)
}

// AssetKey returns the group key of an asset currency, or "" otherwise.
func (c Currency) AssetKey() string {
	if !c.IsAsset() {
		return ""
	}
	return string(c)[len(assetCurrencyPrefix):]
}

// IsMsats reports whether the unit is millisatoshis in either spelling.
func (u AmountUnit) IsMsats() bool {
	return u == UnitMsats || u == unitMsat
}

// BTCMsats returns an msat-denominated btc Amount.
func BTCMsats(msats int64) Amount {
	return Amount{Amount: msats, Currency: CurrencyBTC, Unit: UnitMsats}
}

// AssetBaseUnits returns a base-unit Amount of the given asset.
func AssetBaseUnits(groupKey string, baseUnits int64) Amount {
	return Amount{Amount: baseUnits, Currency: AssetCurrency(groupKey), Unit: UnitBaseUnits}
}
