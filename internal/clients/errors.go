package clients

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnavailable classifies transport-level failures: network errors, 5xx
// responses, undecodable payloads and an open circuit breaker. Callers treat
// these as generic failures and never retry automatically.
var ErrUnavailable = errors.New("clients: collaborator unavailable")

// StatusError carries a collaborator rejection verbatim. The message is the
// collaborator's own wording (voucher expired, out of coverage, and so on)
// and is surfaced to the caller without local reinterpretation.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("clients: collaborator rejected request (status %d)", e.Status)
	}
	return fmt.Sprintf("clients: %s (status %d)", e.Message, e.Status)
}

// NotFound reports whether the rejection was a 404.
func (e *StatusError) NotFound() bool {
	return e != nil && e.Status == http.StatusNotFound
}

// RejectionMessage extracts the collaborator's message from err when err is a
// collaborator rejection, along with whether it was one.
func RejectionMessage(err error) (string, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Message, true
	}
	return "", false
}
