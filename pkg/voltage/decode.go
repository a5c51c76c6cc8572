package voltage

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Body is the decoded result of a successful response. Value is nil when the
// service answered without a JSON payload (202 Accepted, no content type,
// blank body).
type Body[T any] struct {
	Value *T
}

func (b Body[T]) Empty() bool {
	return b.Value == nil
}

func decode[T any](resp *resty.Response) (Body[T], error) {
	if resp.StatusCode() == http.StatusAccepted {
		return Body[T]{}, nil
	}
	contentType := resp.Header().Get("Content-Type")
	raw := resp.Body()
	if !strings.Contains(contentType, "application/json") || len(bytes.TrimSpace(raw)) == 0 {
		return Body[T]{}, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return Body[T]{}, &DecodeError{
			StatusCode:  resp.StatusCode(),
			ContentType: contentType,
			Body:        string(raw),
			Err:         err,
		}
	}
	return Body[T]{Value: &v}, nil
}
