package azure

import "errors"

var (
	// ErrTenantIDRequired is returned when a service principal is configured
	// without its tenant.
	ErrTenantIDRequired = errors.New("tenant ID is required for service principal auth")

	// ErrCredentialRequired is returned when no token credential is provided.
	ErrCredentialRequired = errors.New("token credential is required")
)
