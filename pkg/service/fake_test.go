package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"voltage_wallet_demo/models"
	"voltage_wallet_demo/pkg/config"
	"voltage_wallet_demo/pkg/eventbus"
	"voltage_wallet_demo/pkg/monitor"
)

type createCall struct {
	Kind        string
	Invoice     string
	Address     string
	AssetKey    string
	Description string
	Amount      int64
	MaxFee      int64
	AmountMsats *int64
	MaxFeeMsats *int64
	MaxFeeAsset *models.Amount
}

// fakeAPI stands in for the Voltage client. GetPayment replays script and
// then repeats its last entry.
type fakeAPI struct {
	mu      sync.Mutex
	creates []createCall
	script  []models.Payment
	polls   int

	wallet      *models.Wallet
	walletErr   error
	walletCalls int
	assets      *models.SupportedAssets
	assetsErr   error
	page        *models.PaymentsPage
	pageErr     error
	createErr   error

	// walletGate, when set, holds the first GetWallet until it is closed.
	walletGate chan struct{}
}

func (f *fakeAPI) record(c createCall) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.creates = append(f.creates, c)
	return "pay-1", nil
}

func (f *fakeAPI) lastCreate() (createCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.creates) == 0 {
		return createCall{}, false
	}
	return f.creates[len(f.creates)-1], true
}

func (f *fakeAPI) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates)
}

func (f *fakeAPI) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.polls
	f.polls++
	if idx >= len(f.script) {
		idx = len(f.script) - 1
	}
	p := f.script[idx]
	p.ID = paymentID
	return &p, nil
}

func (f *fakeAPI) GetWallet(ctx context.Context) (*models.Wallet, error) {
	f.mu.Lock()
	f.walletCalls++
	gate := f.walletGate
	f.walletGate = nil
	w := f.wallet
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if gate != nil {
		return w, f.walletErr
	}
	return f.wallet, f.walletErr
}

func (f *fakeAPI) setWallet(w *models.Wallet) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wallet = w
}

func (f *fakeAPI) walletCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.walletCalls
}

func (f *fakeAPI) GetSupportedAssets(ctx context.Context) (*models.SupportedAssets, error) {
	return f.assets, f.assetsErr
}

func (f *fakeAPI) GetPayments(ctx context.Context, limit, offset int) (*models.PaymentsPage, error) {
	return f.page, f.pageErr
}

func (f *fakeAPI) GetPaymentHistory(ctx context.Context, paymentID string) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

func (f *fakeAPI) GetWalletLedger(ctx context.Context, offset, limit int, paymentID string) (*models.LedgerResponse, error) {
	return &models.LedgerResponse{Offset: offset, Limit: limit}, nil
}

func (f *fakeAPI) CreateReceivePayment(ctx context.Context, amountMsats int64, description string) (string, error) {
	return f.record(createCall{Kind: "receive", Amount: amountMsats, Description: description})
}

func (f *fakeAPI) CreateReceiveOnchainPayment(ctx context.Context, amountSats int64, memo string) (string, error) {
	return f.record(createCall{Kind: "receive_onchain", Amount: amountSats, Description: memo})
}

func (f *fakeAPI) CreateReceiveAssetPayment(ctx context.Context, assetGroupKey string, amountBaseUnits int64, description string) (string, error) {
	return f.record(createCall{Kind: "receive_asset", AssetKey: assetGroupKey, Amount: amountBaseUnits, Description: description})
}

func (f *fakeAPI) CreateSendPayment(ctx context.Context, invoice string, amountMsats, maxFeeMsats *int64) (string, error) {
	return f.record(createCall{Kind: "send", Invoice: invoice, AmountMsats: amountMsats, MaxFeeMsats: maxFeeMsats})
}

func (f *fakeAPI) CreateSendOnchainPayment(ctx context.Context, address string, amountSats, maxFeeSats int64, memo string) (string, error) {
	return f.record(createCall{Kind: "send_onchain", Address: address, Amount: amountSats, MaxFee: maxFeeSats, Description: memo})
}

func (f *fakeAPI) CreateSendAssetPayment(ctx context.Context, invoice, assetGroupKey string, amountBaseUnits int64, maxFee *models.Amount) (string, error) {
	return f.record(createCall{Kind: "send_asset", Invoice: invoice, AssetKey: assetGroupKey, Amount: amountBaseUnits, MaxFeeAsset: maxFee})
}

func statuses(direction models.PaymentDirection, ss ...models.PaymentStatus) []models.Payment {
	out := make([]models.Payment, len(ss))
	for i, s := range ss {
		out[i] = models.Payment{Status: s, Direction: direction}
	}
	return out
}

func newTestPaymentService(api *fakeAPI, cashAsset string) (*PaymentService, *eventbus.Bus) {
	bus := eventbus.New()
	mon := monitor.New(api, config.Monitor{
		StatusInterval:    time.Millisecond,
		ReadinessInterval: time.Millisecond,
		Timeout:           2 * time.Second,
	})
	return NewPaymentService(api, mon, bus, nil, cashAsset), bus
}
