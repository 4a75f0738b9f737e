package appgateway

import "errors"

var (
	// ErrSubscriptionIDRequired is returned when no subscription is configured.
	ErrSubscriptionIDRequired = errors.New("subscription ID is required")

	// ErrResourceGroupRequired is returned when no resource group is configured.
	ErrResourceGroupRequired = errors.New("resource group is required")

	// ErrGatewayNameRequired is returned when no gateway name is configured.
	ErrGatewayNameRequired = errors.New("gateway name is required")

	// ErrCertificateNameRequired is returned when no certificate slot is configured.
	ErrCertificateNameRequired = errors.New("certificate name is required")

	// ErrCredentialRequired is returned when neither a credential nor a
	// pre-built gateway API is provided.
	ErrCredentialRequired = errors.New("token credential is required")

	// ErrSlotNotFound is returned when the configured certificate slot does
	// not exist on the gateway. Creating slots is out of the installer's
	// hands; the gateway must be provisioned with the slot up front.
	ErrSlotNotFound = errors.New("certificate slot not found")

	// ErrEmptyBundle is returned when the PFX bundle is empty.
	ErrEmptyBundle = errors.New("pfx bundle is empty")
)
