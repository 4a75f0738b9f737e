package pipeline

import "errors"

// Error kinds, one per stage family. The underlying cause is always wrapped,
// so errors.As still reaches typed details such as *issuance.ACMEError.
var (
	// ErrAuth indicates the identity/credential exchange failed.
	ErrAuth = errors.New("authentication failed")

	// ErrACME indicates an ACME protocol-level rejection, including invalid
	// orders and challenge validation failures.
	ErrACME = errors.New("acme order failed")

	// ErrPublish indicates the challenge response could not be published.
	ErrPublish = errors.New("challenge publication failed")

	// ErrInstall indicates the gateway rejected the certificate update.
	ErrInstall = errors.New("certificate installation failed")
)

// Construction errors.
var (
	// ErrDomainRequired is returned when no domain is configured.
	ErrDomainRequired = errors.New("domain is required")

	// ErrBundlePasswordRequired is returned when no PFX password is configured.
	ErrBundlePasswordRequired = errors.New("bundle password is required")

	// ErrMissingDependency is returned when a pipeline collaborator is nil.
	ErrMissingDependency = errors.New("missing pipeline dependency")

	// ErrCertificateURLEmpty is returned when issuance reports success
	// without a certificate URL; installation must never proceed then.
	ErrCertificateURLEmpty = errors.New("certificate URL is empty")
)
