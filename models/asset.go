package models

// NamedAsset is the display metadata of a taproot asset.
type NamedAsset struct {
	// Asset is the 66 hex character group key.
	Asset string `json:"asset"`
	Name  string `json:"name"`
	// Network the asset lives on (mutinynet, mainnet, testnet3, signet, testnet).
	Network string `json:"network"`
	// DecimalDisplay is how many fraction digits a whole unit has:
	// display_value = amount / 10^DecimalDisplay.
	DecimalDisplay int32 `json:"decimal_display"`
}

// Currency returns the "asset:<key>" currency of the asset.
func (a NamedAsset) Currency() Currency {
	return AssetCurrency(a.Asset)
}

type SupportedAssets struct {
	Assets []NamedAsset `json:"assets"`
}

// ByCurrency indexes the assets by their lower-cased currency string.
func (s *SupportedAssets) ByCurrency() map[Currency]NamedAsset {
	out := make(map[Currency]NamedAsset)
	if s == nil {
		return out
	}
	for _, a := range s.Assets {
		out[a.Currency().Normalized()] = a
	}
	return out
}
