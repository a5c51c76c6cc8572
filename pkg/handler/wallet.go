package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voltage_wallet_demo/pkg/amount"
)

// GetBalance returns the reconciled balance view: official balances plus
// approximate asset balances the wallet does not report yet.
func (h *Handler) GetBalance(c *gin.Context) {
	view, err := h.service.Balance.View(c.Request.Context())
	if err != nil {
		newServiceErrorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"data":  view,
		"empty": view.Empty(),
	})
}

func (h *Handler) RefreshBalance(c *gin.Context) {
	h.service.Balance.Refresh()
	c.Status(http.StatusAccepted)
}

// GetLedger returns a page of the legacy ledger. Query: offset, limit,
// payment_id.
func (h *Handler) GetLedger(c *gin.Context) {
	offset, ok := intQuery(c, "offset", 0)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", 0)
	if !ok {
		return
	}
	ledger, err := h.service.Payments.Ledger(c.Request.Context(), offset, limit, c.Query("payment_id"))
	if err != nil {
		newServiceErrorResponse(c, err)
		return
	}
	amounts := make([]string, len(ledger.Items))
	for i, e := range ledger.Items {
		amounts[i] = amount.FormatSats(e.AmountMsats) + " sats"
	}
	wrapOkJSON(c, map[string]interface{}{
		"data":    ledger,
		"amounts": amounts,
	})
}
