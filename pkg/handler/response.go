package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"voltage_wallet_demo/pkg/monitor"
	"voltage_wallet_demo/pkg/service"
	"voltage_wallet_demo/pkg/voltage"
)

type Error struct {
	Message string `json:"message"`
}

func newErrorResponse(c *gin.Context, statusCode int, message string) {
	logrus.Error(message)
	c.AbortWithStatusJSON(statusCode, Error{Message: message})
}

// newServiceErrorResponse maps a service error to a status code and renders
// it for the user.
func newServiceErrorResponse(c *gin.Context, err error) {
	logrus.WithError(err).WithField("path", c.FullPath()).Warn("request failed")
	newErrorResponse(c, errorStatus(err), service.UserMessage(err))
}

func errorStatus(err error) int {
	var validationErr *service.ValidationError
	var apiErr *voltage.APIError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case voltage.IsNotFound(err):
		return http.StatusNotFound
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	case errors.Is(err, monitor.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusConflict
	case errors.Is(err, monitor.ErrNotGenerated), errors.Is(err, voltage.ErrEmptyResponse):
		return http.StatusBadGateway
	}
	var decodeErr *voltage.DecodeError
	if errors.As(err, &decodeErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func wrapOkJSON(c *gin.Context, response map[string]interface{}) {
	c.JSON(http.StatusOK, response)
}

// intQuery reads a non-negative integer query parameter.
func intQuery(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		newErrorResponse(c, http.StatusBadRequest, "invalid '"+name+"' query parameter")
		return 0, false
	}
	return v, true
}
