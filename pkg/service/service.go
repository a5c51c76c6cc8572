package service

import (
	"context"
	"encoding/json"

	"voltage_wallet_demo/models"
	"voltage_wallet_demo/pkg/cache"
	"voltage_wallet_demo/pkg/config"
	"voltage_wallet_demo/pkg/eventbus"
	"voltage_wallet_demo/pkg/monitor"
	"voltage_wallet_demo/pkg/session"
)

// WalletAPI is the part of the Voltage client the services use.
type WalletAPI interface {
	monitor.PaymentGetter
	GetWallet(ctx context.Context) (*models.Wallet, error)
	GetSupportedAssets(ctx context.Context) (*models.SupportedAssets, error)
	GetPayments(ctx context.Context, limit, offset int) (*models.PaymentsPage, error)
	GetPaymentHistory(ctx context.Context, paymentID string) (json.RawMessage, error)
	GetWalletLedger(ctx context.Context, offset, limit int, paymentID string) (*models.LedgerResponse, error)

	CreateReceivePayment(ctx context.Context, amountMsats int64, description string) (string, error)
	CreateReceiveOnchainPayment(ctx context.Context, amountSats int64, memo string) (string, error)
	CreateReceiveAssetPayment(ctx context.Context, assetGroupKey string, amountBaseUnits int64, description string) (string, error)
	CreateSendPayment(ctx context.Context, invoice string, amountMsats, maxFeeMsats *int64) (string, error)
	CreateSendOnchainPayment(ctx context.Context, address string, amountSats, maxFeeSats int64, memo string) (string, error)
	CreateSendAssetPayment(ctx context.Context, invoice, assetGroupKey string, amountBaseUnits int64, maxFee *models.Amount) (string, error)
}

type Payments interface {
	Send(ctx context.Context, sess *session.Session, req SendRequest) (*SendResult, error)
	Receive(ctx context.Context, sess *session.Session, req ReceiveRequest) (*ReceiveResult, error)
	Payment(ctx context.Context, paymentID string) (*models.Payment, error)
	History(ctx context.Context, paymentID string) (json.RawMessage, error)
	List(ctx context.Context, limit, offset int) (*models.PaymentsPage, error)
	Ledger(ctx context.Context, offset, limit int, paymentID string) (*models.LedgerResponse, error)
	Assets(ctx context.Context) AssetSelection
	Check(rail, input string) CheckResult
}

type Balance interface {
	View(ctx context.Context) (*BalanceView, error)
	Refresh()
	Run(ctx context.Context)
}

type Service struct {
	Payments
	Balance
}

func NewService(api WalletAPI, cfg config.Config, bus *eventbus.Bus) *Service {
	mon := monitor.New(api, cfg.Monitor)
	balance := NewBalanceService(api, cache.New[*BalanceView](cfg.Server.BalanceTTL), bus)
	return &Service{
		Payments: NewPaymentService(api, mon, bus, balance, cfg.Voltage.CashAssetGroupKey),
		Balance:  balance,
	}
}
