package issuance

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-acme/lego/v4/certcrypto"
	jose "github.com/go-jose/go-jose/v4"
	"golang.org/x/crypto/acme"

	"github.com/dmitrymomot/certpipe/core/logger"
	"github.com/dmitrymomot/certpipe/core/poll"
)

// Config holds configuration for the issuer.
type Config struct {
	// DirectoryURL is the ACME service directory endpoint.
	DirectoryURL string

	// Email is the account contact address, registered as a mailto contact.
	Email string

	// AccountKeyPath is where the account key lives between runs.
	AccountKeyPath string

	// Poll governs how order state transitions are awaited.
	// The zero value polls every 10 seconds with a bounded budget.
	Poll poll.Policy
}

// Issuer drives one ACME order from account registration through certificate
// download. It is single-use: one Issuer per renewal run, phases invoked in
// order by the pipeline driver. All protocol mechanics are delegated to the
// injected ACMEClient.
type Issuer struct {
	cfg       Config
	keys      *AccountKeyStore
	newClient ClientFactory
	log       *slog.Logger

	client     ACMEClient
	accountKey crypto.Signer
	domain     string
	order      *acme.Order
	challenge  *acme.Challenge
	authzURL   string
	certKey    crypto.PrivateKey
	chain      [][]byte
	certURL    string
}

// Option configures an Issuer during construction.
type Option func(*Issuer)

// WithClientFactory sets a custom ACME client factory.
// This is primarily useful for testing against a fake CA.
func WithClientFactory(factory ClientFactory) Option {
	return func(i *Issuer) { i.newClient = factory }
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(i *Issuer) { i.log = log }
}

// New creates an Issuer from the given configuration.
func New(cfg Config, opts ...Option) (*Issuer, error) {
	if cfg.DirectoryURL == "" {
		return nil, ErrDirectoryURLRequired
	}
	if cfg.Email == "" {
		return nil, ErrEmailRequired
	}
	if cfg.AccountKeyPath == "" {
		return nil, ErrAccountKeyPathRequired
	}

	i := &Issuer{
		cfg:       cfg,
		keys:      NewAccountKeyStore(cfg.AccountKeyPath),
		newClient: defaultClientFactory(cfg.DirectoryURL),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.log = i.log.With(logger.Component("issuance"))

	return i, nil
}

// EnsureAccount loads or creates the account key and makes sure a valid
// account is registered for it with the CA.
func (i *Issuer) EnsureAccount(ctx context.Context) error {
	key, created, err := i.keys.LoadOrCreate()
	if err != nil {
		return err
	}
	i.accountKey = key
	i.client = i.newClient(key)

	if created {
		i.log.Info("registering new acme account", "directory", i.cfg.DirectoryURL)
		return i.register(ctx)
	}

	account, err := i.client.GetReg(ctx)
	switch {
	case errors.Is(err, acme.ErrNoAccount):
		// Key exists on disk but the CA has no account for it, e.g. after
		// switching directory URLs. Register under the same key.
		return i.register(ctx)
	case err != nil:
		return fmt.Errorf("retrieve acme account: %w", err)
	}

	if account.Status != acme.StatusValid {
		return fmt.Errorf("acme account is %q, not %q", account.Status, acme.StatusValid)
	}
	i.log.Info("reusing acme account", "key_path", i.keys.Path())
	return nil
}

func (i *Issuer) register(ctx context.Context) error {
	account := &acme.Account{Contact: []string{"mailto:" + i.cfg.Email}}
	_, err := i.client.Register(ctx, account, acme.AcceptTOS)
	if errors.Is(err, acme.ErrAccountAlreadyExists) {
		_, err = i.client.GetReg(ctx)
	}
	if err != nil {
		return fmt.Errorf("register acme account for %s: %w", i.cfg.Email, err)
	}
	return nil
}

// PrepareOrder creates a new order for the domain and selects its http-01
// challenge. It returns the challenge token and key authorization to publish.
// An empty token means the CA already holds a valid authorization for the
// domain and no challenge needs publishing.
func (i *Issuer) PrepareOrder(ctx context.Context, domain string) (token, keyAuth string, err error) {
	if i.client == nil {
		return "", "", ErrOrderNotPrepared
	}
	i.domain = domain

	order, err := i.client.AuthorizeOrder(ctx, []acme.AuthzID{{Type: "dns", Value: domain}})
	if err != nil {
		return "", "", fmt.Errorf("create order for %s: %w", domain, err)
	}
	i.order = order
	i.log.Info("acme order created", logger.Domain(domain), logger.OrderStatus(order.Status))

	switch order.Status {
	case acme.StatusInvalid:
		return "", "", newACMEError(order.Status, errFromOrder(order))
	case acme.StatusReady:
		// Authorization cached from a previous run; nothing to publish.
		return "", "", nil
	}

	for _, authzURL := range order.AuthzURLs {
		authz, err := i.client.GetAuthorization(ctx, authzURL)
		if err != nil {
			return "", "", fmt.Errorf("fetch authorization: %w", err)
		}
		if authz.Status != acme.StatusPending {
			continue
		}

		for _, chal := range authz.Challenges {
			if chal.Type != "http-01" {
				continue
			}
			keyAuth, err := i.keyAuthorization(chal.Token)
			if err != nil {
				return "", "", err
			}
			i.challenge = chal
			i.authzURL = authzURL
			return chal.Token, keyAuth, nil
		}
		return "", "", fmt.Errorf("%w for %s", ErrNoHTTP01Challenge, authz.Identifier.Value)
	}

	return "", "", fmt.Errorf("%w: %s", ErrNoPendingAuthorization, order.URI)
}

// keyAuthorization computes token || '.' || base64url(sha256(JWK(accountKey))).
func (i *Issuer) keyAuthorization(token string) (string, error) {
	jwk := &jose.JSONWebKey{Key: i.accountKey.Public()}
	thumbprint, err := jwk.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", fmt.Errorf("compute account key thumbprint: %w", err)
	}
	return token + "." + base64.RawURLEncoding.EncodeToString(thumbprint), nil
}

// CompleteChallenge tells the CA the challenge response is published, then
// polls the order until it leaves pending/processing. An order turning
// invalid is fatal and surfaces the CA's authorization error detail; there is
// no retry. Transient order reads are retried within the polling budget.
func (i *Issuer) CompleteChallenge(ctx context.Context) error {
	if i.order == nil {
		return ErrOrderNotPrepared
	}
	if i.challenge == nil {
		// Order came back ready; no challenge was published.
		return nil
	}

	if _, err := i.client.Accept(ctx, i.challenge); err != nil {
		return fmt.Errorf("accept challenge: %w", err)
	}

	return i.cfg.Poll.Wait(ctx, func(ctx context.Context) (bool, error) {
		order, err := i.client.GetOrder(ctx, i.order.URI)
		if err != nil {
			i.log.Warn("order status read failed, will retry", logger.Error(err))
			return false, nil
		}
		i.order = order

		switch order.Status {
		case acme.StatusPending, acme.StatusProcessing:
			return false, nil
		case acme.StatusReady, acme.StatusValid:
			i.log.Info("order validated", logger.Domain(i.domain), logger.OrderStatus(order.Status))
			return true, nil
		case acme.StatusInvalid:
			return false, i.invalidOrderError(ctx, order)
		default:
			return false, newACMEError(order.Status, fmt.Errorf("unexpected order status %q", order.Status))
		}
	})
}

// invalidOrderError enriches the failure with the authorization's challenge
// error detail, which is where CAs report why validation failed.
func (i *Issuer) invalidOrderError(ctx context.Context, order *acme.Order) error {
	cause := errFromOrder(order)

	if i.authzURL != "" {
		if authz, err := i.client.GetAuthorization(ctx, i.authzURL); err == nil {
			for _, chal := range authz.Challenges {
				if chal.Error != nil {
					cause = chal.Error
					break
				}
			}
		}
	}

	acmeErr := newACMEError(order.Status, cause)
	i.log.Error("order validation failed",
		logger.Domain(i.domain),
		logger.OrderStatus(order.Status),
		slog.String("problem", acmeErr.Detail),
	)
	return acmeErr
}

// Finalize generates the certificate key, builds a CSR for the domain and
// submits it to the order's finalize URL. When the CA issues synchronously
// the chain is captured immediately; otherwise AwaitCertificate picks it up.
func (i *Issuer) Finalize(ctx context.Context) error {
	if i.order == nil {
		return ErrOrderNotPrepared
	}

	certKey, err := certcrypto.GeneratePrivateKey(certcrypto.EC256)
	if err != nil {
		return fmt.Errorf("generate certificate key: %w", err)
	}
	i.certKey = certKey

	csr, err := x509.CreateCertificateRequest(rand.Reader, &x509.CertificateRequest{
		DNSNames: []string{i.domain},
	}, certKey)
	if err != nil {
		return fmt.Errorf("create csr for %s: %w", i.domain, err)
	}

	chain, certURL, err := i.client.CreateOrderCert(ctx, i.order.FinalizeURL, csr, true)
	if err != nil {
		var orderErr *acme.OrderError
		if errors.As(err, &orderErr) && orderErr.Status == acme.StatusProcessing {
			// CA is issuing asynchronously; AwaitCertificate polls for the URL.
			i.log.Info("order finalization pending", logger.Domain(i.domain))
			return nil
		}
		return newACMEError("", err)
	}

	i.chain = chain
	i.certURL = certURL
	return nil
}

// AwaitCertificate waits for the certificate URL to be populated, downloads
// the chain when Finalize did not receive it synchronously, and returns the
// certificate URL together with the PEM-encoded chain and private key.
func (i *Issuer) AwaitCertificate(ctx context.Context) (certURL string, chainPEM, keyPEM []byte, err error) {
	if i.order == nil || i.certKey == nil {
		return "", nil, nil, ErrOrderNotPrepared
	}

	if i.certURL == "" {
		err := i.cfg.Poll.Wait(ctx, func(ctx context.Context) (bool, error) {
			order, err := i.client.GetOrder(ctx, i.order.URI)
			if err != nil {
				i.log.Warn("order status read failed, will retry", logger.Error(err))
				return false, nil
			}
			i.order = order

			if order.Status == acme.StatusInvalid {
				return false, newACMEError(order.Status, errFromOrder(order))
			}
			return order.Status == acme.StatusValid && order.CertURL != "", nil
		})
		if err != nil {
			return "", nil, nil, err
		}
		i.certURL = i.order.CertURL
	}

	if i.certURL == "" {
		return "", nil, nil, ErrCertificateURLMissing
	}

	if len(i.chain) == 0 {
		chain, err := i.client.FetchCert(ctx, i.certURL, true)
		if err != nil {
			return "", nil, nil, fmt.Errorf("download certificate: %w", err)
		}
		i.chain = chain
	}

	var buf []byte
	for _, der := range i.chain {
		buf = append(buf, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})...)
	}

	i.log.Info("certificate downloaded", logger.Domain(i.domain), slog.String("certificate_url", i.certURL))
	return i.certURL, buf, certcrypto.PEMEncode(i.certKey), nil
}

// errFromOrder surfaces the order's embedded problem document, if any.
func errFromOrder(order *acme.Order) error {
	if order.Error != nil {
		return order.Error
	}
	return fmt.Errorf("order %s is %q", order.URI, order.Status)
}
