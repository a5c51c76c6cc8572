// Package monitor polls the wallet service for the state of a payment. The
// service is authoritative; the monitor only re-fetches.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"voltage_wallet_demo/models"
	"voltage_wallet_demo/pkg/config"
)

const (
	DefaultStatusInterval    = 2 * time.Second
	DefaultReadinessInterval = time.Second
	DefaultTimeout           = 60 * time.Second
)

var (
	// ErrTimeout matches every *TimeoutError. The payment outcome is unknown:
	// it may still complete on the service side.
	ErrTimeout = errors.New("payment monitoring timeout")

	// ErrNotGenerated means the payment left "generating" without the
	// invoice or address the rail needs.
	ErrNotGenerated = errors.New("payment request was not generated")
)

type TimeoutError struct {
	PaymentID  string
	After      time.Duration
	LastStatus models.PaymentStatus
}

func (e *TimeoutError) Error() string {
	if e.LastStatus == "" {
		return fmt.Sprintf("%s: payment %s after %s", ErrTimeout, e.PaymentID, e.After)
	}
	return fmt.Sprintf("%s: payment %s after %s (last status %s)", ErrTimeout, e.PaymentID, e.After, e.LastStatus)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// PaymentGetter is the one call the monitor needs from the API client.
type PaymentGetter interface {
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)
}

type Monitor struct {
	getter            PaymentGetter
	StatusInterval    time.Duration
	ReadinessInterval time.Duration
	Timeout           time.Duration
}

func New(getter PaymentGetter, cfg config.Monitor) *Monitor {
	m := &Monitor{
		getter:            getter,
		StatusInterval:    cfg.StatusInterval,
		ReadinessInterval: cfg.ReadinessInterval,
		Timeout:           cfg.Timeout,
	}
	if m.StatusInterval <= 0 {
		m.StatusInterval = DefaultStatusInterval
	}
	if m.ReadinessInterval <= 0 {
		m.ReadinessInterval = DefaultReadinessInterval
	}
	if m.Timeout <= 0 {
		m.Timeout = DefaultTimeout
	}
	return m
}

// PaymentStatus polls until the payment reaches a terminal status and returns
// it. onUpdate sees every fetch, repeated statuses included, in fetch order.
// A failed or expired payment is returned without error; the caller reads
// the status. timeout <= 0 uses the monitor default.
//
// Cancelling ctx stops the loop, suppresses further callbacks and returns
// ctx.Err().
func (m *Monitor) PaymentStatus(ctx context.Context, paymentID string, onUpdate func(models.PaymentStatusUpdate), timeout time.Duration) (*models.Payment, error) {
	return m.poll(ctx, paymentID, m.StatusInterval, timeout, func(p *models.Payment) (bool, error) {
		if onUpdate != nil && ctx.Err() == nil {
			onUpdate(models.PaymentStatusUpdate{Status: p.Status, Error: p.ErrorMessage()})
		}
		return p.Status.Terminal(), nil
	})
}

// PaymentRequest waits until the service has generated the invoice or
// address of a receive payment. It is bounded by the same timeout as
// PaymentStatus.
func (m *Monitor) PaymentRequest(ctx context.Context, paymentID string, rail models.Rail, timeout time.Duration) (*models.Payment, error) {
	return m.poll(ctx, paymentID, m.ReadinessInterval, timeout, func(p *models.Payment) (bool, error) {
		if Ready(p, rail) {
			return true, nil
		}
		if p.Status != models.StatusGenerating {
			return false, errors.Wrapf(ErrNotGenerated, "payment %s is %s", paymentID, p.Status)
		}
		return false, nil
	})
}

// Ready reports whether the rail specific request field is filled in:
// the invoice for lightning and asset payments, the address or BIP21 URI
// for on-chain ones.
func Ready(p *models.Payment, rail models.Rail) bool {
	if rail == models.RailOnchain {
		return p.Data.Address != "" || p.BIP21URI != ""
	}
	return p.Data.PaymentRequest != ""
}

func (m *Monitor) poll(ctx context.Context, paymentID string, interval, timeout time.Duration, check func(*models.Payment) (bool, error)) (*models.Payment, error) {
	if timeout <= 0 {
		timeout = m.Timeout
	}
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := logrus.WithField("payment_id", paymentID)

	var last models.PaymentStatus
	timedOut := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.WithField("last_status", last).Warn("payment monitoring timed out")
		return &TimeoutError{PaymentID: paymentID, After: timeout, LastStatus: last}
	}

	for {
		p, err := m.getter.GetPayment(pollCtx, paymentID)
		if err != nil {
			if pollCtx.Err() != nil {
				return nil, timedOut()
			}
			return nil, errors.Wrapf(err, "poll payment %s", paymentID)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if p.Status != last {
			log.WithField("status", p.Status).Debug("payment status")
		}
		last = p.Status

		done, err := check(p)
		if err != nil {
			return nil, err
		}
		if done {
			return p, nil
		}

		if !sleep(pollCtx, interval) {
			return nil, timedOut()
		}
	}
}

// sleep waits d counted from the end of the last fetch. It reports false if
// ctx ends first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
