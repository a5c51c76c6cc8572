package service

import "voltage_wallet_demo/models"

// StatusMessage is the line shown to the user once a payment stops moving.
// An expired payment is reported as such, not as a failure.
func StatusMessage(p *models.Payment) string {
	switch p.Status {
	case models.StatusCompleted:
		if p.Direction == models.DirectionReceive {
			return "Payment received"
		}
		return "Payment sent"
	case models.StatusFailed:
		if msg := p.ErrorMessage(); msg != "" {
			return msg
		}
		return "Payment failed"
	case models.StatusExpired:
		return "Payment expired"
	}
	return "Payment " + string(p.Status)
}
