package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voltage_wallet_demo/pkg/middleware"
	"voltage_wallet_demo/pkg/service"
)

func (h *Handler) ListPayments(c *gin.Context) {
	limit, ok := intQuery(c, "limit", 0)
	if !ok {
		return
	}
	offset, ok := intQuery(c, "offset", 0)
	if !ok {
		return
	}
	page, err := h.service.Payments.List(c.Request.Context(), limit, offset)
	if err != nil {
		newServiceErrorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"data": page,
	})
}

// GetAssets never fails: when the asset list is unavailable the asset rail
// is reported as disabled.
func (h *Handler) GetAssets(c *gin.Context) {
	wrapOkJSON(c, map[string]interface{}{
		"data": h.service.Payments.Assets(c.Request.Context()),
	})
}

// Send submits a payment and answers once it is completed, failed or
// expired. Body: service.SendRequest.
func (h *Handler) Send(c *gin.Context) {
	var req service.SendRequest
	if err := c.BindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.service.Payments.Send(c.Request.Context(), middleware.Session(c), req)
	if err != nil {
		newServiceErrorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"data": res,
	})
}

// Receive answers with the invoice or address as soon as the wallet service
// has generated it. Completion is tracked in the session, see
// GetPaymentStatus.
func (h *Handler) Receive(c *gin.Context) {
	var req service.ReceiveRequest
	if err := c.BindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.service.Payments.Receive(c.Request.Context(), middleware.Session(c), req)
	if err != nil {
		newServiceErrorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"data": res,
	})
}

func (h *Handler) GetPayment(c *gin.Context) {
	p, err := h.service.Payments.Payment(c.Request.Context(), c.Param("id"))
	if err != nil {
		newServiceErrorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"data": p,
	})
}

func (h *Handler) GetPaymentHistory(c *gin.Context) {
	history, err := h.service.Payments.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		newServiceErrorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"data": history,
	})
}

// GetPaymentStatus returns what this session's monitor last saw for the
// payment.
func (h *Handler) GetPaymentStatus(c *gin.Context) {
	tracked, ok := middleware.Session(c).Status(c.Param("id"))
	if !ok {
		newErrorResponse(c, http.StatusNotFound, "payment is not monitored in this session")
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"data": tracked,
	})
}

type validateRequest struct {
	Rail  string `json:"rail"`
	Input string `json:"input" binding:"required"`
}

func (h *Handler) Validate(c *gin.Context) {
	var req validateRequest
	if err := c.BindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"data": h.service.Payments.Check(req.Rail, req.Input),
	})
}

// CloseSession cancels the session's monitors and forgets it.
func (h *Handler) CloseSession(c *gin.Context) {
	h.sessions.Close(middleware.Session(c).ID)
	c.Status(http.StatusNoContent)
}
