package azureblob

import "errors"

var (
	// ErrAccountNameRequired is returned when no storage account is configured.
	ErrAccountNameRequired = errors.New("storage account name is required")

	// ErrContainerRequired is returned when no container is configured.
	ErrContainerRequired = errors.New("container name is required")

	// ErrCredentialRequired is returned when neither a credential nor a
	// pre-built client is provided.
	ErrCredentialRequired = errors.New("token credential is required")
)
