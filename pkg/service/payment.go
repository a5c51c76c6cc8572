package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"voltage_wallet_demo/models"
	"voltage_wallet_demo/pkg/amount"
	"voltage_wallet_demo/pkg/eventbus"
	"voltage_wallet_demo/pkg/monitor"
	"voltage_wallet_demo/pkg/session"
	"voltage_wallet_demo/pkg/validate"
)

const (
	FeeCurrencyBTC   = "btc"
	FeeCurrencyAsset = "asset"
)

// SendRequest carries the raw send form. Amount and MaxFee are in sats on
// the lightning and on-chain rails and in whole asset units on the asset
// rail, unless FeeCurrency is "btc".
type SendRequest struct {
	Rail        string `json:"rail"`
	Destination string `json:"destination"`
	Amount      string `json:"amount"`
	MaxFee      string `json:"max_fee"`
	FeeCurrency string `json:"fee_currency"`
	Memo        string `json:"memo"`
	Asset       string `json:"asset"`
}

type SendResult struct {
	Payment *models.Payment              `json:"payment"`
	Message string                       `json:"message"`
	Updates []models.PaymentStatusUpdate `json:"updates"`
}

// ReceiveRequest carries the raw receive form. Amount is in sats, or in
// whole asset units on the asset rail.
type ReceiveRequest struct {
	Rail        string `json:"rail"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Asset       string `json:"asset"`
}

type ReceiveResult struct {
	PaymentID      string          `json:"payment_id"`
	PaymentRequest string          `json:"payment_request,omitempty"`
	Address        string          `json:"address,omitempty"`
	BIP21URI       string          `json:"bip21_uri,omitempty"`
	Payment        *models.Payment `json:"payment"`
}

// CheckResult is the outcome of a destination sanity check. Bitcoin is set
// for on-chain input so the form can pre-fill amount and memo.
type CheckResult struct {
	Valid   bool                    `json:"valid"`
	Rail    models.Rail             `json:"rail,omitempty"`
	Message string                  `json:"message,omitempty"`
	Bitcoin *validate.BitcoinTarget `json:"bitcoin,omitempty"`
}

// Invalidator drops cached wallet state.
type Invalidator interface {
	Invalidate()
}

type PaymentService struct {
	api       WalletAPI
	monitor   *monitor.Monitor
	bus       *eventbus.Bus
	balance   Invalidator
	cashAsset string
}

// NewPaymentService takes the balance cache so a completed payment
// invalidates it before the caller sees the result. balance may be nil.
func NewPaymentService(api WalletAPI, mon *monitor.Monitor, bus *eventbus.Bus, balance Invalidator, cashAsset string) *PaymentService {
	return &PaymentService{
		api:       api,
		monitor:   mon,
		bus:       bus,
		balance:   balance,
		cashAsset: cashAsset,
	}
}

// submission is a validated form, ready to be posted.
type submission struct {
	rail   models.Rail
	create func(ctx context.Context) (string, error)
}

func parseRail(raw string) (models.Rail, error) {
	rail, ok := models.ParseRail(raw)
	if !ok {
		return "", invalid("rail", "Unknown payment rail "+raw)
	}
	return rail, nil
}

func (s *PaymentService) Check(rail, input string) CheckResult {
	r, err := parseRail(rail)
	if err != nil {
		return CheckResult{Message: UserMessage(err)}
	}
	res := CheckResult{Rail: r}
	if r == models.RailOnchain {
		target, err := validate.ParseBitcoin(input)
		if err != nil {
			res.Message = "Enter a valid bitcoin address or BIP21 URI"
			return res
		}
		res.Valid = true
		res.Bitcoin = &target
		return res
	}
	if err := validate.Destination(r, input); err != nil {
		res.Message = "Enter a valid invoice"
		return res
	}
	res.Valid = true
	return res
}

// prepareSend validates the form and converts its amounts without calling
// the wallet service, except for the asset lookup on the asset rail.
func (s *PaymentService) prepareSend(ctx context.Context, req SendRequest) (submission, error) {
	rail, err := parseRail(req.Rail)
	if err != nil {
		return submission{}, err
	}
	dest := strings.TrimSpace(req.Destination)
	if dest == "" {
		return submission{}, invalid("destination", "Please enter an invoice")
	}

	switch rail {
	case models.RailLightning:
		return s.prepareLightningSend(dest, req)
	case models.RailOnchain:
		return s.prepareOnchainSend(dest, req)
	default:
		return s.prepareAssetSend(ctx, dest, req)
	}
}

func (s *PaymentService) prepareLightningSend(invoice string, req SendRequest) (submission, error) {
	if !validate.IsLightningInvoice(invoice) {
		return submission{}, invalid("destination", "Enter a valid Lightning invoice")
	}
	var amountMsats, maxFeeMsats *int64
	if sats, ok, err := parseNumber("amount", req.Amount); err != nil {
		return submission{}, err
	} else if ok {
		v := amount.SatsDecimalToMsats(sats)
		amountMsats = &v
	}
	if sats, ok, err := parseNumber("max fee", req.MaxFee); err != nil {
		return submission{}, err
	} else if ok {
		v := amount.SatsDecimalToMsats(sats)
		maxFeeMsats = &v
	}
	return submission{
		rail: models.RailLightning,
		create: func(ctx context.Context) (string, error) {
			return s.api.CreateSendPayment(ctx, invoice, amountMsats, maxFeeMsats)
		},
	}, nil
}

func (s *PaymentService) prepareOnchainSend(input string, req SendRequest) (submission, error) {
	target, err := validate.ParseBitcoin(input)
	if err != nil {
		return submission{}, invalid("destination", "Enter a valid bitcoin address or BIP21 URI")
	}

	rawAmount := strings.TrimSpace(req.Amount)
	var sats int64
	if rawAmount == "" && target.AmountSats != nil {
		sats = *target.AmountSats
	} else {
		d, err := requirePositive("amount", rawAmount)
		if err != nil {
			return submission{}, err
		}
		sats = d.Floor().IntPart()
	}
	if sats <= 0 {
		return submission{}, invalid("amount", "Amount must be at least 1 sat")
	}

	maxFee := amount.OnchainDefaultMaxFeeSats(sats)
	if d, ok, err := parseNumber("max fee", req.MaxFee); err != nil {
		return submission{}, err
	} else if ok {
		maxFee = d.Floor().IntPart()
	}

	memo := strings.TrimSpace(req.Memo)
	if memo == "" {
		memo = target.Memo()
	}
	return submission{
		rail: models.RailOnchain,
		create: func(ctx context.Context) (string, error) {
			return s.api.CreateSendOnchainPayment(ctx, target.Address, sats, maxFee, memo)
		},
	}, nil
}

func (s *PaymentService) prepareAssetSend(ctx context.Context, invoice string, req SendRequest) (submission, error) {
	if !validate.IsAssetInvoice(invoice) {
		return submission{}, invalid("destination", "Enter a valid asset invoice")
	}
	asset := s.Assets(ctx).Find(req.Asset)
	if asset == nil {
		return submission{}, invalid("asset", "No asset available for sending")
	}
	whole, err := requirePositive("amount", req.Amount)
	if err != nil {
		return submission{}, err
	}
	baseUnits := amount.WholeToBaseUnits(whole, asset.DecimalDisplay)
	if baseUnits <= 0 {
		return submission{}, invalid("amount", "Amount is smaller than one base unit")
	}

	var maxFee *models.Amount
	if fee, ok, err := parseNumber("max fee", req.MaxFee); err != nil {
		return submission{}, err
	} else if ok {
		switch strings.ToLower(strings.TrimSpace(req.FeeCurrency)) {
		case FeeCurrencyAsset:
			v := models.AssetBaseUnits(asset.Asset, amount.WholeToBaseUnits(fee, asset.DecimalDisplay))
			maxFee = &v
		case "", FeeCurrencyBTC:
			v := models.BTCMsats(amount.SatsDecimalToMsats(fee))
			maxFee = &v
		default:
			return submission{}, invalid("fee_currency", "Unknown fee currency "+req.FeeCurrency)
		}
	}

	key := asset.Asset
	return submission{
		rail: models.RailAsset,
		create: func(ctx context.Context) (string, error) {
			return s.api.CreateSendAssetPayment(ctx, invoice, key, baseUnits, maxFee)
		},
	}, nil
}

func (s *PaymentService) prepareReceive(ctx context.Context, req ReceiveRequest) (submission, error) {
	rail, err := parseRail(req.Rail)
	if err != nil {
		return submission{}, err
	}
	description := strings.TrimSpace(req.Description)

	switch rail {
	case models.RailLightning:
		sats, err := requirePositive("amount", req.Amount)
		if err != nil {
			return submission{}, err
		}
		msats := amount.SatsDecimalToMsats(sats)
		return submission{
			rail: rail,
			create: func(ctx context.Context) (string, error) {
				return s.api.CreateReceivePayment(ctx, msats, description)
			},
		}, nil

	case models.RailOnchain:
		d, err := requirePositive("amount", req.Amount)
		if err != nil {
			return submission{}, err
		}
		sats := d.Floor().IntPart()
		if sats <= 0 {
			return submission{}, invalid("amount", "Amount must be at least 1 sat")
		}
		return submission{
			rail: rail,
			create: func(ctx context.Context) (string, error) {
				return s.api.CreateReceiveOnchainPayment(ctx, sats, description)
			},
		}, nil
	}

	asset := s.Assets(ctx).Find(req.Asset)
	if asset == nil {
		return submission{}, invalid("asset", "No asset available for receiving")
	}
	whole, err := requirePositive("amount", req.Amount)
	if err != nil {
		return submission{}, err
	}
	baseUnits := amount.WholeToBaseUnits(whole, asset.DecimalDisplay)
	if baseUnits <= 0 {
		return submission{}, invalid("amount", "Amount is smaller than one base unit")
	}
	key := asset.Asset
	return submission{
		rail: rail,
		create: func(ctx context.Context) (string, error) {
			return s.api.CreateReceiveAssetPayment(ctx, key, baseUnits, description)
		},
	}, nil
}

// sessionScoped returns ctx cancelled also when the session is closed.
func sessionScoped(ctx context.Context, sess *session.Session) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	if sess == nil {
		return ctx, cancel
	}
	stop := context.AfterFunc(sess.Context(), cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Send submits a payment and follows it to a terminal status. A completed
// payment triggers a wallet refresh.
func (s *PaymentService) Send(ctx context.Context, sess *session.Session, req SendRequest) (*SendResult, error) {
	sub, err := s.prepareSend(ctx, req)
	if err != nil {
		return nil, err
	}
	ctx, cancel := sessionScoped(ctx, sess)
	defer cancel()

	id, err := sub.create(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "create send payment")
	}
	log := logrus.WithFields(logrus.Fields{"payment_id": id, "rail": sub.rail})
	log.Info("send submitted")

	res := &SendResult{}
	p, err := s.monitor.PaymentStatus(ctx, id, func(u models.PaymentStatusUpdate) {
		res.Updates = append(res.Updates, u)
		if sess != nil {
			sess.Record(id, u)
		}
	}, 0)
	if err != nil {
		log.WithError(err).Warn("send monitoring stopped")
		return nil, err
	}
	s.finish(sess, p)

	res.Payment = p
	res.Message = StatusMessage(p)
	return res, nil
}

// Receive requests an invoice or address, waits until the service has
// generated it, and leaves a monitor running in the session until the
// payment settles.
func (s *PaymentService) Receive(ctx context.Context, sess *session.Session, req ReceiveRequest) (*ReceiveResult, error) {
	sub, err := s.prepareReceive(ctx, req)
	if err != nil {
		return nil, err
	}
	readyCtx, cancel := sessionScoped(ctx, sess)
	defer cancel()

	id, err := sub.create(readyCtx)
	if err != nil {
		return nil, errors.Wrap(err, "create receive payment")
	}
	log := logrus.WithFields(logrus.Fields{"payment_id": id, "rail": sub.rail})
	log.Info("receive submitted")

	p, err := s.monitor.PaymentRequest(readyCtx, id, sub.rail, 0)
	if err != nil {
		log.WithError(err).Warn("payment request not ready")
		return nil, err
	}
	if sess != nil {
		sess.Record(id, models.PaymentStatusUpdate{Status: p.Status, Error: p.ErrorMessage()})
		s.watch(sess, id)
	}

	return &ReceiveResult{
		PaymentID:      id,
		PaymentRequest: p.Data.PaymentRequest,
		Address:        p.Data.Address,
		BIP21URI:       p.BIP21URI,
		Payment:        p,
	}, nil
}

// watch runs the completion monitor of a receive payment in the session.
func (s *PaymentService) watch(sess *session.Session, paymentID string) {
	started := sess.Go(func(ctx context.Context) {
		p, err := s.monitor.PaymentStatus(ctx, paymentID, func(u models.PaymentStatusUpdate) {
			sess.Record(paymentID, u)
		}, 0)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logrus.WithError(err).WithField("payment_id", paymentID).Warn("receive monitoring stopped")
			sess.Finish(paymentID, UserMessage(err))
			return
		}
		s.finish(sess, p)
	})
	if !started {
		logrus.WithField("payment_id", paymentID).Debug("session closed, receive not monitored")
	}
}

func (s *PaymentService) finish(sess *session.Session, p *models.Payment) {
	if sess != nil {
		sess.Finish(p.ID, StatusMessage(p))
	}
	if p.Status == models.StatusCompleted {
		if s.balance != nil {
			s.balance.Invalidate()
		}
		s.bus.Publish(eventbus.Event{Topic: eventbus.WalletRefresh, PaymentID: p.ID, Status: p.Status})
	}
	logrus.WithFields(logrus.Fields{"payment_id": p.ID, "status": p.Status}).Info("payment settled")
}

func (s *PaymentService) Payment(ctx context.Context, paymentID string) (*models.Payment, error) {
	return s.api.GetPayment(ctx, paymentID)
}

func (s *PaymentService) History(ctx context.Context, paymentID string) (json.RawMessage, error) {
	return s.api.GetPaymentHistory(ctx, paymentID)
}

func (s *PaymentService) List(ctx context.Context, limit, offset int) (*models.PaymentsPage, error) {
	return s.api.GetPayments(ctx, limit, offset)
}

func (s *PaymentService) Ledger(ctx context.Context, offset, limit int, paymentID string) (*models.LedgerResponse, error) {
	return s.api.GetWalletLedger(ctx, offset, limit, paymentID)
}
