package azure

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/dmitrymomot/certpipe/core/logger"
)

// Config selects how the pipeline authenticates against Azure. With a client
// secret configured a service principal is used; otherwise the credential
// falls back to managed identity and the rest of the default chain.
type Config struct {
	// TenantID is the Entra ID tenant, required for service principal auth.
	TenantID string `env:"CERTPIPE_AZURE_TENANT_ID"`

	// ClientID identifies the service principal or a user-assigned managed
	// identity.
	ClientID string `env:"CERTPIPE_AZURE_CLIENT_ID"`

	// ClientSecret is the service principal secret.
	ClientSecret string `env:"CERTPIPE_AZURE_CLIENT_SECRET"`
}

// managementScope is the resource all ARM calls are authorized against.
const managementScope = "https://management.azure.com/.default"

// NewCredential builds a token credential from the configuration.
func NewCredential(cfg Config) (azcore.TokenCredential, error) {
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		if cfg.TenantID == "" {
			return nil, ErrTenantIDRequired
		}
		cred, err := azidentity.NewClientSecretCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret, nil)
		if err != nil {
			return nil, fmt.Errorf("create service principal credential: %w", err)
		}
		return cred, nil
	}

	if cfg.ClientID != "" {
		cred, err := azidentity.NewManagedIdentityCredential(&azidentity.ManagedIdentityCredentialOptions{
			ID: azidentity.ClientID(cfg.ClientID),
		})
		if err != nil {
			return nil, fmt.Errorf("create managed identity credential: %w", err)
		}
		return cred, nil
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("create default credential: %w", err)
	}
	return cred, nil
}

// Verifier confirms the credential can mint management-plane tokens. The
// pipeline runs it first so a misconfigured identity fails the run before any
// ACME state is created.
type Verifier struct {
	cred azcore.TokenCredential
	log  *slog.Logger
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) VerifierOption {
	return func(v *Verifier) { v.log = log }
}

// NewVerifier creates a Verifier over the given credential.
func NewVerifier(cred azcore.TokenCredential, opts ...VerifierOption) (*Verifier, error) {
	if cred == nil {
		return nil, ErrCredentialRequired
	}

	v := &Verifier{
		cred: cred,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.log = v.log.With(logger.Component("identity"))

	return v, nil
}

// Authenticate requests a management-plane token and discards it. Success
// proves the identity is usable for the blob and gateway calls that follow.
func (v *Verifier) Authenticate(ctx context.Context) error {
	token, err := v.cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{managementScope},
	})
	if err != nil {
		return fmt.Errorf("acquire management token: %w", err)
	}

	v.log.Info("identity verified", slog.Time("token_expires", token.ExpiresOn))
	return nil
}
