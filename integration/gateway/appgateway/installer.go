package appgateway

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v6"

	"github.com/dmitrymomot/certpipe/core/logger"
)

// GatewayAPI defines the gateway operations used by the installer.
type GatewayAPI interface {
	Get(ctx context.Context, resourceGroup, name string) (armnetwork.ApplicationGateway, error)
	Update(ctx context.Context, resourceGroup, name string, gw armnetwork.ApplicationGateway) error
}

// Config locates the gateway and the certificate slot to replace.
type Config struct {
	// SubscriptionID is the subscription holding the gateway.
	SubscriptionID string `env:"CERTPIPE_AZURE_SUBSCRIPTION_ID"`

	// ResourceGroup is the gateway's resource group.
	ResourceGroup string `env:"CERTPIPE_GATEWAY_RESOURCE_GROUP"`

	// GatewayName is the Application Gateway resource name.
	GatewayName string `env:"CERTPIPE_GATEWAY_NAME"`

	// CertificateName is the SSL certificate slot to replace. The slot must
	// already exist; the installer never creates listeners or slots.
	CertificateName string `env:"CERTPIPE_GATEWAY_CERTIFICATE_NAME"`
}

// Installer replaces the named SSL certificate slot on an Application
// Gateway with a freshly issued PFX bundle.
type Installer struct {
	cfg Config
	api GatewayAPI
	log *slog.Logger
}

// Option configures an Installer.
type Option func(*Installer)

// WithGatewayAPI sets a custom gateway API. Primarily used for testing.
func WithGatewayAPI(api GatewayAPI) Option {
	return func(i *Installer) { i.api = api }
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(i *Installer) { i.log = log }
}

// New creates an Installer for the configured gateway, authenticating ARM
// calls with the given credential.
func New(cfg Config, cred azcore.TokenCredential, opts ...Option) (*Installer, error) {
	if cfg.ResourceGroup == "" {
		return nil, ErrResourceGroupRequired
	}
	if cfg.GatewayName == "" {
		return nil, ErrGatewayNameRequired
	}
	if cfg.CertificateName == "" {
		return nil, ErrCertificateNameRequired
	}

	i := &Installer{
		cfg: cfg,
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.log = i.log.With(logger.Component("appgateway"))

	if i.api == nil {
		if cfg.SubscriptionID == "" {
			return nil, ErrSubscriptionIDRequired
		}
		if cred == nil {
			return nil, ErrCredentialRequired
		}
		client, err := armnetwork.NewApplicationGatewaysClient(cfg.SubscriptionID, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("create gateway client: %w", err)
		}
		i.api = &armGateway{client: client}
	}

	return i, nil
}

// Install reads the gateway, swaps the configured certificate slot's data and
// password for the new bundle and writes the gateway back. The rest of the
// gateway configuration is round-tripped untouched, so listeners keep
// pointing at the same slot and pick up the new certificate.
func (i *Installer) Install(ctx context.Context, pfx []byte, password string) error {
	if len(pfx) == 0 {
		return ErrEmptyBundle
	}

	gw, err := i.api.Get(ctx, i.cfg.ResourceGroup, i.cfg.GatewayName)
	if err != nil {
		return fmt.Errorf("read gateway %s: %w", i.cfg.GatewayName, err)
	}
	if gw.Properties == nil {
		return fmt.Errorf("%w: gateway %s has no properties", ErrSlotNotFound, i.cfg.GatewayName)
	}

	var slot *armnetwork.ApplicationGatewaySSLCertificate
	for _, cert := range gw.Properties.SSLCertificates {
		if cert != nil && cert.Name != nil && *cert.Name == i.cfg.CertificateName {
			slot = cert
			break
		}
	}
	if slot == nil {
		return fmt.Errorf("%w: %q on gateway %s", ErrSlotNotFound, i.cfg.CertificateName, i.cfg.GatewayName)
	}

	if slot.Properties == nil {
		slot.Properties = &armnetwork.ApplicationGatewaySSLCertificatePropertiesFormat{}
	}
	slot.Properties.Data = to.Ptr(base64.StdEncoding.EncodeToString(pfx))
	slot.Properties.Password = to.Ptr(password)

	if err := i.api.Update(ctx, i.cfg.ResourceGroup, i.cfg.GatewayName, gw); err != nil {
		return fmt.Errorf("update gateway %s: %w", i.cfg.GatewayName, err)
	}

	i.log.Info("certificate installed",
		slog.String("gateway", i.cfg.GatewayName),
		slog.String("certificate", i.cfg.CertificateName),
	)
	return nil
}

// armGateway adapts the ARM SDK client to GatewayAPI. Updates go through the
// long-running create-or-update operation and block until it completes.
type armGateway struct {
	client *armnetwork.ApplicationGatewaysClient
}

func (a *armGateway) Get(ctx context.Context, resourceGroup, name string) (armnetwork.ApplicationGateway, error) {
	resp, err := a.client.Get(ctx, resourceGroup, name, nil)
	if err != nil {
		return armnetwork.ApplicationGateway{}, err
	}
	return resp.ApplicationGateway, nil
}

func (a *armGateway) Update(ctx context.Context, resourceGroup, name string, gw armnetwork.ApplicationGateway) error {
	poller, err := a.client.BeginCreateOrUpdate(ctx, resourceGroup, name, gw, nil)
	if err != nil {
		return err
	}
	_, err = poller.PollUntilDone(ctx, nil)
	return err
}
