package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"voltage_wallet_demo/models"
)

// AssetSelection is what the asset rail offers. Enabled is false when the
// asset list could not be loaded or is empty.
type AssetSelection struct {
	Assets   []models.NamedAsset `json:"assets"`
	Selected *models.NamedAsset  `json:"selected,omitempty"`
	Enabled  bool                `json:"enabled"`
}

// Find returns the asset with the given group key, or the selected one when
// key is blank.
func (s AssetSelection) Find(key string) *models.NamedAsset {
	if strings.TrimSpace(key) == "" {
		return s.Selected
	}
	for i := range s.Assets {
		if strings.EqualFold(s.Assets[i].Asset, key) {
			return &s.Assets[i]
		}
	}
	return nil
}

// selectAsset prefers the pinned group key, then an asset named like
// "Voltage Cash", then the first one.
func selectAsset(assets []models.NamedAsset, pinned string) *models.NamedAsset {
	if len(assets) == 0 {
		return nil
	}
	if pinned != "" {
		for i := range assets {
			if strings.EqualFold(assets[i].Asset, pinned) {
				return &assets[i]
			}
		}
	}
	for i := range assets {
		if strings.Contains(strings.ToLower(assets[i].Name), "voltage cash") {
			return &assets[i]
		}
	}
	return &assets[0]
}

func (s *PaymentService) Assets(ctx context.Context) AssetSelection {
	supported, err := s.api.GetSupportedAssets(ctx)
	if err != nil {
		logrus.WithError(err).Warn("supported assets unavailable, asset rail disabled")
		return AssetSelection{Assets: []models.NamedAsset{}}
	}
	if supported == nil || len(supported.Assets) == 0 {
		return AssetSelection{Assets: []models.NamedAsset{}}
	}
	return AssetSelection{
		Assets:   supported.Assets,
		Selected: selectAsset(supported.Assets, s.cashAsset),
		Enabled:  true,
	}
}
