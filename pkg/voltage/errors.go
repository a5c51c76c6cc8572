package voltage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrEmptyResponse is returned by reads that got a 2xx without a JSON body.
var ErrEmptyResponse = errors.New("voltage API returned an empty response")

// APIError is a non-2xx answer from the wallet service.
type APIError struct {
	StatusCode int
	// Body is the raw response text.
	Body string
	// Detail is the "detail" or "message" field of a JSON error body, if any.
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Voltage API Error %d: %s", e.StatusCode, e.Body)
}

// Message is what a user should see: the structured detail when the service
// sent one, the full error otherwise.
func (e *APIError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Error()
}

func newAPIError(status int, body []byte) *APIError {
	return &APIError{
		StatusCode: status,
		Body:       string(body),
		Detail:     errorDetail(body),
	}
}

func errorDetail(body []byte) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, raw := range []json.RawMessage{payload.Detail, payload.Message} {
		var s string
		if len(raw) > 0 && json.Unmarshal(raw, &s) == nil && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// DecodeError means the service claimed JSON but sent something else.
type DecodeError struct {
	StatusCode  int
	ContentType string
	Body        string
	Err         error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response (status %d): %v", e.ContentType, e.StatusCode, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a 404 from the wallet service.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
