package cloudflare

import (
	"errors"
	"fmt"
	"strings"

	cfapi "github.com/cloudflare/cloudflare-go/v4"
)

// Error is the only error type returned by the adapter. Status is the
// upstream HTTP status, or 0 when no response was received.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// normalize converts any failure from the SDK or the transport into *Error.
//
// When the upstream answered with a structured error list, the messages are
// joined with "; " (an item without a message is rendered as "code <n>") and
// prefixed with "<status>: ". A response without such a list keeps only its
// status. Anything else carries the underlying error text.
func normalize(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}

	var apiErr *cfapi.Error
	if errors.As(err, &apiErr) {
		if len(apiErr.Errors) > 0 {
			parts := make([]string, 0, len(apiErr.Errors))
			for _, item := range apiErr.Errors {
				parts = append(parts, itemText(item.Code, item.Message))
			}
			return statusError(apiErr.StatusCode, strings.Join(parts, "; "), err)
		}
		if apiErr.StatusCode > 0 {
			return &Error{
				Status:  apiErr.StatusCode,
				Message: fmt.Sprintf("request failed with status code %d", apiErr.StatusCode),
				Err:     err,
			}
		}
	}

	return &Error{Message: err.Error(), Err: err}
}

// unsuccessful reports a 2xx envelope with success == false.
func unsuccessful(status int, items []apiMessage) *Error {
	if len(items) == 0 {
		return statusError(status, "request was not successful", nil)
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, itemText(item.Code, item.Message))
	}
	return statusError(status, strings.Join(parts, "; "), nil)
}

func statusError(status int, msg string, err error) *Error {
	if status > 0 {
		msg = fmt.Sprintf("%d: %s", status, msg)
	}
	return &Error{Status: status, Message: msg, Err: err}
}

func itemText(code int64, message string) string {
	if msg := strings.TrimSpace(message); msg != "" {
		return msg
	}
	return fmt.Sprintf("code %d", code)
}
