package issuance

import (
	"context"
	"crypto"

	"golang.org/x/crypto/acme"
)

// ACMEClient is the subset of the ACME v2 protocol the issuer drives.
// The production implementation adapts golang.org/x/crypto/acme.Client;
// tests substitute a scripted fake. Protocol internals (directory discovery,
// nonces, JWS signing) stay behind this boundary.
type ACMEClient interface {
	// Register creates a new account for the client key.
	Register(ctx context.Context, account *acme.Account, prompt func(tosURL string) bool) (*acme.Account, error)

	// GetReg retrieves the account bound to the client key.
	GetReg(ctx context.Context) (*acme.Account, error)

	// AuthorizeOrder creates a new order for the given identifiers.
	AuthorizeOrder(ctx context.Context, ids []acme.AuthzID) (*acme.Order, error)

	// GetAuthorization fetches an authorization object by URL.
	GetAuthorization(ctx context.Context, url string) (*acme.Authorization, error)

	// Accept signals the CA that a challenge is ready for validation.
	Accept(ctx context.Context, chal *acme.Challenge) (*acme.Challenge, error)

	// GetOrder re-reads an order by URL.
	GetOrder(ctx context.Context, url string) (*acme.Order, error)

	// CreateOrderCert submits the CSR to the order's finalize URL and, when
	// the CA issues synchronously, downloads the certificate chain.
	CreateOrderCert(ctx context.Context, finalizeURL string, csr []byte, bundle bool) (der [][]byte, certURL string, err error)

	// FetchCert downloads the certificate chain from its URL.
	FetchCert(ctx context.Context, url string, bundle bool) ([][]byte, error)
}

// ClientFactory builds an ACMEClient bound to the given account key.
// Injected so tests can run the whole issuance flow against a fake CA.
type ClientFactory func(key crypto.Signer) ACMEClient

const userAgent = "certpipe/1.0"

func defaultClientFactory(directoryURL string) ClientFactory {
	return func(key crypto.Signer) ACMEClient {
		return &clientAdapter{client: &acme.Client{
			Key:          key,
			DirectoryURL: directoryURL,
			UserAgent:    userAgent,
		}}
	}
}

// clientAdapter narrows *acme.Client to the ACMEClient interface, dropping
// legacy arguments of the pre-RFC 8555 API.
type clientAdapter struct {
	client *acme.Client
}

func (a *clientAdapter) Register(ctx context.Context, account *acme.Account, prompt func(tosURL string) bool) (*acme.Account, error) {
	return a.client.Register(ctx, account, prompt)
}

func (a *clientAdapter) GetReg(ctx context.Context) (*acme.Account, error) {
	// The argument is a legacy artifact of the pre-RFC 8555 API and is ignored.
	return a.client.GetReg(ctx, "")
}

func (a *clientAdapter) AuthorizeOrder(ctx context.Context, ids []acme.AuthzID) (*acme.Order, error) {
	return a.client.AuthorizeOrder(ctx, ids)
}

func (a *clientAdapter) GetAuthorization(ctx context.Context, url string) (*acme.Authorization, error) {
	return a.client.GetAuthorization(ctx, url)
}

func (a *clientAdapter) Accept(ctx context.Context, chal *acme.Challenge) (*acme.Challenge, error) {
	return a.client.Accept(ctx, chal)
}

func (a *clientAdapter) GetOrder(ctx context.Context, url string) (*acme.Order, error) {
	return a.client.GetOrder(ctx, url)
}

func (a *clientAdapter) CreateOrderCert(ctx context.Context, finalizeURL string, csr []byte, bundle bool) ([][]byte, string, error) {
	return a.client.CreateOrderCert(ctx, finalizeURL, csr, bundle)
}

func (a *clientAdapter) FetchCert(ctx context.Context, url string, bundle bool) ([][]byte, error) {
	return a.client.FetchCert(ctx, url, bundle)
}
