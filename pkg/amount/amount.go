// Package amount converts between display units and the smallest units the
// wallet service works in, and renders amounts for the balance and history
// views.
package amount

import (
	"github.com/shopspring/decimal"
)

const (
	MsatsPerSat = 1000
	SatsPerBTC  = 100_000_000
)

// SatsToMsats converts whole satoshis to millisatoshis.
func SatsToMsats(sats int64) int64 {
	return sats * MsatsPerSat
}

// SatsDecimalToMsats converts a possibly fractional sat value typed by a user
// to msats, flooring any sub-msat remainder.
func SatsDecimalToMsats(sats decimal.Decimal) int64 {
	return sats.Shift(3).Floor().IntPart()
}

// MsatsToSats returns the exact sat value of an msat amount.
func MsatsToSats(msats int64) decimal.Decimal {
	return decimal.New(msats, -3)
}

// BTCToSats converts a BTC value (as found in a BIP21 amount) to sats,
// rounding to the nearest sat.
func BTCToSats(btc decimal.Decimal) int64 {
	return btc.Shift(8).Round(0).IntPart()
}

// WholeToBaseUnits converts a whole-unit asset value to base units:
// floor(whole * 10^decimals).
func WholeToBaseUnits(whole decimal.Decimal, decimals int32) int64 {
	return whole.Shift(decimals).Floor().IntPart()
}

// BaseUnitsToWhole converts base units back to whole units:
// base / 10^decimals.
func BaseUnitsToWhole(base int64, decimals int32) decimal.Decimal {
	return decimal.New(base, -decimals)
}

// OnchainDefaultMaxFeeSats is the fee cap the client submits for an on-chain
// send when the user leaves the field blank: max(floor(sats*2%), 100).
func OnchainDefaultMaxFeeSats(amountSats int64) int64 {
	fee := decimal.NewFromInt(amountSats).Mul(decimal.New(2, -2)).Floor().IntPart()
	if fee < 100 {
		return 100
	}
	return fee
}
