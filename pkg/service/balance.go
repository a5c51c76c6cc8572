package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"

	"voltage_wallet_demo/models"
	"voltage_wallet_demo/pkg/amount"
	"voltage_wallet_demo/pkg/cache"
	"voltage_wallet_demo/pkg/eventbus"
)

const (
	balanceCacheKey = "wallet"

	// reconcilePageSize is how many recent payments feed the computed asset
	// balances.
	reconcilePageSize = 100
)

type BalanceEntry struct {
	Currency    models.Currency `json:"currency"`
	Label       string          `json:"label"`
	Badge       string          `json:"badge"`
	Available   amount.Display  `json:"available"`
	Total       *amount.Display `json:"total,omitempty"`
	Approximate bool            `json:"approximate"`
}

// BalanceView is the balance screen. Computed entries only exist for asset
// currencies the wallet does not report itself.
type BalanceView struct {
	WalletID   string         `json:"wallet_id"`
	WalletName string         `json:"wallet_name"`
	Network    string         `json:"network"`
	Official   []BalanceEntry `json:"official"`
	Computed   []BalanceEntry `json:"computed"`
	FetchedAt  time.Time      `json:"fetched_at"`
}

func (v *BalanceView) Empty() bool {
	return len(v.Official) == 0 && len(v.Computed) == 0
}

type BalanceService struct {
	api   WalletAPI
	cache *cache.Cache[*BalanceView]
	bus   *eventbus.Bus
}

func NewBalanceService(api WalletAPI, c *cache.Cache[*BalanceView], bus *eventbus.Bus) *BalanceService {
	return &BalanceService{api: api, cache: c, bus: bus}
}

// View returns the cached balance view, reconciling on a miss. A view whose
// reconcile overlapped an invalidation is returned but not cached.
func (s *BalanceService) View(ctx context.Context) (*BalanceView, error) {
	if v, ok := s.cache.Get(balanceCacheKey); ok {
		return v, nil
	}
	gen := s.cache.Generation()
	v, err := s.Reconcile(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetIf(balanceCacheKey, v, gen)
	return v, nil
}

// Invalidate drops the cached view without notifying anyone.
func (s *BalanceService) Invalidate() {
	s.cache.Invalidate(balanceCacheKey)
}

// Refresh drops the cached view and tells other listeners the wallet
// changed.
func (s *BalanceService) Refresh() {
	s.Invalidate()
	s.bus.Publish(eventbus.Event{Topic: eventbus.WalletRefresh})
}

// Run invalidates the cached view on every wallet:refresh event until ctx is
// done.
func (s *BalanceService) Run(ctx context.Context) {
	events, unsubscribe := s.bus.Subscribe()
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Topic == eventbus.WalletRefresh {
				s.Invalidate()
				logrus.WithField("payment_id", ev.PaymentID).Debug("balance view invalidated")
			}
		}
	}
}

// Reconcile fetches the wallet, the asset metadata and the latest payments
// and merges them. Only the wallet fetch is required.
func (s *BalanceService) Reconcile(ctx context.Context) (*BalanceView, error) {
	var (
		wallet    *models.Wallet
		walletErr error
		assets    *models.SupportedAssets
		payments  []models.Payment
		wg        conc.WaitGroup
	)
	wg.Go(func() {
		wallet, walletErr = s.api.GetWallet(ctx)
	})
	wg.Go(func() {
		var err error
		if assets, err = s.api.GetSupportedAssets(ctx); err != nil {
			logrus.WithError(err).Warn("supported assets unavailable")
			assets = nil
		}
	})
	wg.Go(func() {
		page, err := s.api.GetPayments(ctx, reconcilePageSize, 0)
		if err != nil {
			logrus.WithError(err).Warn("payments unavailable, computed balances skipped")
			return
		}
		if page != nil {
			payments = page.Items
		}
	})
	wg.Wait()
	if walletErr != nil {
		return nil, walletErr
	}

	meta := assets.ByCurrency()
	official, computed := MergeBalances(wallet.Balances, ComputeAssetTotals(payments), meta)
	return &BalanceView{
		WalletID:   wallet.ID,
		WalletName: wallet.Name,
		Network:    wallet.Network,
		Official:   official,
		Computed:   computed,
		FetchedAt:  time.Now(),
	}, nil
}

// ComputeAssetTotals sums completed taproot asset payments per lower-cased
// asset currency: receives add, sends subtract.
func ComputeAssetTotals(payments []models.Payment) map[models.Currency]int64 {
	totals := make(map[models.Currency]int64)
	for i := range payments {
		p := &payments[i]
		if p.Type != models.PaymentTypeTaprootAsset || p.Status != models.StatusCompleted {
			continue
		}
		amt := p.ResolvedAmount()
		if amt == nil || !amt.Currency.IsAsset() {
			continue
		}
		key := amt.Currency.Normalized()
		switch p.Direction {
		case models.DirectionReceive:
			totals[key] += amt.Amount
		case models.DirectionSend:
			totals[key] -= amt.Amount
		}
	}
	return totals
}

// MergeBalances renders the official balances and adds a computed entry for
// every non-zero total whose currency has no official balance.
func MergeBalances(balances []models.WalletBalance, totals map[models.Currency]int64, meta map[models.Currency]models.NamedAsset) (official, computed []BalanceEntry) {
	official = make([]BalanceEntry, 0, len(balances))
	present := make(map[models.Currency]bool, len(balances))
	for _, b := range balances {
		cur := balanceCurrency(b)
		present[cur.Normalized()] = true
		total := amount.Format(b.Total, meta)
		official = append(official, BalanceEntry{
			Currency:  cur,
			Label:     balanceLabel(cur, meta),
			Badge:     strings.ToUpper(string(cur)),
			Available: amount.Format(b.Available, meta),
			Total:     &total,
		})
	}

	currencies := make([]models.Currency, 0, len(totals))
	for cur, sum := range totals {
		if sum != 0 && !present[cur.Normalized()] {
			currencies = append(currencies, cur)
		}
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i] < currencies[j] })

	computed = make([]BalanceEntry, 0, len(currencies))
	for _, cur := range currencies {
		a := meta[cur.Normalized()]
		name := a.Name
		if name == "" {
			name = "Asset"
		}
		computed = append(computed, BalanceEntry{
			Currency:    cur,
			Label:       name,
			Badge:       "Computed",
			Available:   amount.FormatAsset(totals[cur], a.DecimalDisplay, name),
			Approximate: true,
		})
	}
	return official, computed
}

func balanceCurrency(b models.WalletBalance) models.Currency {
	if b.Currency != "" {
		return b.Currency
	}
	return b.Available.Currency
}

func balanceLabel(cur models.Currency, meta map[models.Currency]models.NamedAsset) string {
	switch {
	case cur.IsBTC():
		return "Bitcoin"
	case cur.IsAsset():
		if a, ok := meta[cur.Normalized()]; ok && a.Name != "" {
			return a.Name
		}
		return "Asset"
	}
	return strings.ToUpper(string(cur))
}
