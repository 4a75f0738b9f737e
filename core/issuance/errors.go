package issuance

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/acme"
)

var (
	// ErrDirectoryURLRequired is returned when the ACME directory URL is not configured.
	ErrDirectoryURLRequired = errors.New("acme directory URL is required")

	// ErrEmailRequired is returned when the account contact email is not configured.
	ErrEmailRequired = errors.New("contact email is required")

	// ErrAccountKeyPathRequired is returned when no account key location is configured.
	ErrAccountKeyPathRequired = errors.New("account key path is required")

	// ErrNoHTTP01Challenge is returned when the CA offers no http-01 challenge
	// for a pending authorization.
	ErrNoHTTP01Challenge = errors.New("no http-01 challenge offered by the CA")

	// ErrNoPendingAuthorization is returned when a pending order carries no
	// authorization left to solve.
	ErrNoPendingAuthorization = errors.New("order has no pending authorization")

	// ErrCertificateURLMissing is returned when a valid order never exposes a
	// certificate URL.
	ErrCertificateURLMissing = errors.New("certificate URL missing on valid order")

	// ErrOrderNotPrepared is returned when a phase runs before PrepareOrder.
	ErrOrderNotPrepared = errors.New("order has not been prepared")
)

// ACMEError is a protocol-level rejection by the CA. It carries the problem
// detail the CA reported so operators can see why validation or finalization
// failed.
type ACMEError struct {
	// OrderStatus is the order status observed when the failure surfaced,
	// usually "invalid".
	OrderStatus string

	// ProblemType is the RFC 7807 problem type URN reported by the CA, if any.
	ProblemType string

	// Detail is the human-readable problem detail reported by the CA, if any.
	Detail string

	err error
}

func (e *ACMEError) Error() string {
	msg := "acme order failed"
	if e.OrderStatus != "" {
		msg = fmt.Sprintf("acme order is %q", e.OrderStatus)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.ProblemType != "" {
		msg += " (" + e.ProblemType + ")"
	}
	if e.Detail == "" && e.ProblemType == "" && e.err != nil {
		msg += ": " + e.err.Error()
	}
	return msg
}

func (e *ACMEError) Unwrap() error { return e.err }

// newACMEError builds an ACMEError from the observed order status and the
// underlying error, lifting the CA's problem detail when one is present.
func newACMEError(status string, err error) *ACMEError {
	out := &ACMEError{OrderStatus: status, err: err}

	var wireErr *acme.Error
	if errors.As(err, &wireErr) {
		out.ProblemType = wireErr.ProblemType
		out.Detail = wireErr.Detail
	}
	return out
}
