package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	"github.com/dmitrymomot/certpipe/core/config"
	"github.com/dmitrymomot/certpipe/core/issuance"
	"github.com/dmitrymomot/certpipe/core/logger"
	"github.com/dmitrymomot/certpipe/core/pipeline"
	"github.com/dmitrymomot/certpipe/core/poll"
	"github.com/dmitrymomot/certpipe/integration/gateway/appgateway"
	identityazure "github.com/dmitrymomot/certpipe/integration/identity/azure"
	"github.com/dmitrymomot/certpipe/integration/publisher/azureblob"
	publishers3 "github.com/dmitrymomot/certpipe/integration/publisher/s3"
)

type appConfig struct {
	// Environment toggles production JSON logging.
	Environment string `env:"CERTPIPE_ENV" envDefault:"production"`

	// PublisherBackend selects where challenge responses are published:
	// "azureblob" or "s3".
	PublisherBackend string `env:"CERTPIPE_PUBLISHER" envDefault:"azureblob"`
}

type acmeConfig struct {
	DirectoryURL    string        `env:"CERTPIPE_ACME_DIRECTORY" envDefault:"https://acme-v02.api.letsencrypt.org/directory"`
	Email           string        `env:"CERTPIPE_ACME_EMAIL,required"`
	AccountKeyPath  string        `env:"CERTPIPE_ACME_ACCOUNT_KEY" envDefault:"acme-account.key"`
	PollInterval    time.Duration `env:"CERTPIPE_ACME_POLL_INTERVAL" envDefault:"10s"`
	PollMaxAttempts int           `env:"CERTPIPE_ACME_POLL_MAX_ATTEMPTS" envDefault:"60"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "certpipe:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var app appConfig
	config.MustLoad(&app)

	logOpts := []logger.Option{logger.WithProduction("certpipe")}
	if app.Environment == "development" {
		logOpts = []logger.Option{logger.WithDevelopment("certpipe")}
	}
	log := logger.New(logOpts...)
	slog.SetDefault(log)

	var (
		runCfg   pipeline.Config
		acmeCfg  acmeConfig
		identCfg identityazure.Config
	)
	config.MustLoad(&runCfg)
	config.MustLoad(&acmeCfg)
	config.MustLoad(&identCfg)

	cred, err := identityazure.NewCredential(identCfg)
	if err != nil {
		return err
	}
	verifier, err := identityazure.NewVerifier(cred, identityazure.WithLogger(log))
	if err != nil {
		return err
	}

	issuer, err := issuance.New(issuance.Config{
		DirectoryURL:   acmeCfg.DirectoryURL,
		Email:          acmeCfg.Email,
		AccountKeyPath: acmeCfg.AccountKeyPath,
		Poll: poll.Policy{
			Interval:    acmeCfg.PollInterval,
			MaxAttempts: acmeCfg.PollMaxAttempts,
		},
	}, issuance.WithLogger(log))
	if err != nil {
		return err
	}

	publisher, err := newPublisher(ctx, app.PublisherBackend, cred, log)
	if err != nil {
		return err
	}

	var gwCfg appgateway.Config
	config.MustLoad(&gwCfg)
	installer, err := appgateway.New(gwCfg, cred, appgateway.WithLogger(log))
	if err != nil {
		return err
	}

	p, err := pipeline.New(runCfg, verifier, issuer, publisher, installer, pipeline.WithLogger(log))
	if err != nil {
		return err
	}

	return p.Run(ctx)
}

func newPublisher(ctx context.Context, backend string, cred azcore.TokenCredential, log *slog.Logger) (pipeline.ChallengePublisher, error) {
	switch backend {
	case "azureblob":
		var cfg azureblob.Config
		config.MustLoad(&cfg)
		return azureblob.New(cfg, cred, azureblob.WithLogger(log))
	case "s3":
		var cfg publishers3.Config
		config.MustLoad(&cfg)
		return publishers3.New(ctx, cfg, publishers3.WithLogger(log))
	default:
		return nil, fmt.Errorf("unknown publisher backend %q", backend)
	}
}
