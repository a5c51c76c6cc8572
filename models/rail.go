package models

import "strings"

// Rail is the payment network a user picked in the send or receive form.
type Rail string

const (
	RailLightning Rail = "lightning"
	RailOnchain   Rail = "onchain"
	RailAsset     Rail = "asset"
)

// ParseRail accepts the rail names used by the front-end, including "btc" as
// an alias for lightning.
func ParseRail(s string) (Rail, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lightning", "btc", "bolt11", "":
		return RailLightning, true
	case "onchain", "bitcoin", "bip21":
		return RailOnchain, true
	case "asset", "taprootasset":
		return RailAsset, true
	}
	return "", false
}
