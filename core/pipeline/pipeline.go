package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/certpipe/core/bundle"
	"github.com/dmitrymomot/certpipe/core/logger"
)

// Authenticator proves the configured cloud identity can mint access tokens
// before any mutating call is attempted.
type Authenticator interface {
	Authenticate(ctx context.Context) error
}

// CertificateIssuer drives one ACME order through its lifecycle. The phases
// are invoked in order, once each, by a single run.
type CertificateIssuer interface {
	EnsureAccount(ctx context.Context) error
	PrepareOrder(ctx context.Context, domain string) (token, keyAuth string, err error)
	CompleteChallenge(ctx context.Context) error
	Finalize(ctx context.Context) error
	AwaitCertificate(ctx context.Context) (certURL string, chainPEM, keyPEM []byte, err error)
}

// ChallengePublisher exposes the http-01 key authorization at the well-known
// challenge path and removes it once the order reaches a terminal state.
type ChallengePublisher interface {
	Publish(ctx context.Context, domain, token, keyAuth string) error
	Unpublish(ctx context.Context, domain, token string) error
}

// Installer replaces a certificate slot on the load balancer with the given
// password-protected PFX bundle.
type Installer interface {
	Install(ctx context.Context, pfx []byte, password string) error
}

// Config holds the run parameters of the pipeline.
type Config struct {
	// Domain is the single DNS name the certificate is requested for.
	Domain string `env:"CERTPIPE_DOMAIN,required"`

	// BundlePassword protects the exported PFX container and is handed to
	// the gateway alongside the certificate data.
	BundlePassword string `env:"CERTPIPE_BUNDLE_PASSWORD,required"`
}

// Pipeline sequences one certificate renewal run from identity verification
// through gateway installation. It is single-use; create a new Pipeline for
// each run.
type Pipeline struct {
	cfg       Config
	auth      Authenticator
	issuer    CertificateIssuer
	publisher ChallengePublisher
	installer Installer
	log       *slog.Logger

	runID uuid.UUID

	mu    sync.Mutex
	state State
}

// Option configures a Pipeline during construction.
type Option func(*Pipeline)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// New creates a Pipeline wired with its collaborators.
func New(cfg Config, auth Authenticator, issuer CertificateIssuer, publisher ChallengePublisher, installer Installer, opts ...Option) (*Pipeline, error) {
	if cfg.Domain == "" {
		return nil, ErrDomainRequired
	}
	if cfg.BundlePassword == "" {
		return nil, ErrBundlePasswordRequired
	}
	if auth == nil {
		return nil, fmt.Errorf("%w: authenticator", ErrMissingDependency)
	}
	if issuer == nil {
		return nil, fmt.Errorf("%w: issuer", ErrMissingDependency)
	}
	if publisher == nil {
		return nil, fmt.Errorf("%w: publisher", ErrMissingDependency)
	}
	if installer == nil {
		return nil, fmt.Errorf("%w: installer", ErrMissingDependency)
	}

	p := &Pipeline{
		cfg:       cfg,
		auth:      auth,
		issuer:    issuer,
		publisher: publisher,
		installer: installer,
		log:       slog.Default(),
		runID:     uuid.New(),
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With(
		logger.Component("pipeline"),
		logger.ID("run_id", p.runID),
		logger.Domain(cfg.Domain),
	)

	return p, nil
}

// State reports the stage the pipeline is currently in.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) transition(next State) {
	p.mu.Lock()
	p.state = next
	p.mu.Unlock()
	p.log.Info("stage started", logger.State(next.String()))
}

// fail records the terminal failure before returning, so any deferred
// cleanup observes a pipeline that has already reported its outcome.
func (p *Pipeline) fail(err error) error {
	p.mu.Lock()
	at := p.state
	p.state = StateFailed
	p.mu.Unlock()

	p.log.Error("renewal failed", logger.State(at.String()), logger.Error(err))
	return err
}

// Run executes the renewal end to end. Stages run strictly in order; the
// first failing stage aborts the run and leaves the pipeline in StateFailed.
// A challenge published during the run is removed after the run settles,
// whether it succeeded or not.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()

	p.transition(StateAuthenticating)
	if err := p.auth.Authenticate(ctx); err != nil {
		return p.fail(fmt.Errorf("%w: %w", ErrAuth, err))
	}

	p.transition(StateRegistering)
	if err := p.issuer.EnsureAccount(ctx); err != nil {
		return p.fail(fmt.Errorf("%w: %w", ErrACME, err))
	}

	p.transition(StateChallenging)
	token, keyAuth, err := p.issuer.PrepareOrder(ctx, p.cfg.Domain)
	if err != nil {
		return p.fail(fmt.Errorf("%w: %w", ErrACME, err))
	}

	if token != "" {
		if err := p.publisher.Publish(ctx, p.cfg.Domain, token, keyAuth); err != nil {
			return p.fail(fmt.Errorf("%w: %w", ErrPublish, err))
		}
		defer p.unpublish(ctx, token)

		p.transition(StateAwaitingValidation)
		if err := p.issuer.CompleteChallenge(ctx); err != nil {
			return p.fail(fmt.Errorf("%w: %w", ErrACME, err))
		}
	} else {
		// The CA already holds a valid authorization; nothing to publish
		// and nothing to validate.
		p.log.Info("authorization cached, skipping challenge")
	}

	p.transition(StateFinalizing)
	if err := p.issuer.Finalize(ctx); err != nil {
		return p.fail(fmt.Errorf("%w: %w", ErrACME, err))
	}

	p.transition(StateAwaitingCertificate)
	certURL, chainPEM, keyPEM, err := p.issuer.AwaitCertificate(ctx)
	if err != nil {
		return p.fail(fmt.Errorf("%w: %w", ErrACME, err))
	}
	if certURL == "" {
		return p.fail(fmt.Errorf("%w: %w", ErrACME, ErrCertificateURLEmpty))
	}

	pfx, err := bundle.Export(p.cfg.BundlePassword, chainPEM, keyPEM)
	if err != nil {
		return p.fail(fmt.Errorf("%w: %w", ErrInstall, err))
	}

	p.transition(StateInstalling)
	if err := p.installer.Install(ctx, pfx, p.cfg.BundlePassword); err != nil {
		return p.fail(fmt.Errorf("%w: %w", ErrInstall, err))
	}

	p.transition(StateDone)
	p.log.Info("certificate renewed and installed",
		slog.String("certificate_url", certURL),
		logger.Elapsed(start),
	)
	return nil
}

// unpublish removes the challenge response after the run has settled. The
// removal runs even when the surrounding context was cancelled; a failure
// here leaves residue behind but never changes the run's outcome.
func (p *Pipeline) unpublish(ctx context.Context, token string) {
	if err := p.publisher.Unpublish(context.WithoutCancel(ctx), p.cfg.Domain, token); err != nil {
		p.log.Warn("challenge cleanup failed", slog.String("token", token), logger.Error(err))
	}
}
