package azureblob

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/go-acme/lego/v4/challenge/http01"

	"github.com/dmitrymomot/certpipe/core/logger"
)

// blobAPI defines the blob operations used by the publisher.
// *azblob.Client satisfies it.
type blobAPI interface {
	UploadBuffer(ctx context.Context, containerName, blobName string, buffer []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
	DeleteBlob(ctx context.Context, containerName, blobName string, o *azblob.DeleteBlobOptions) (azblob.DeleteBlobResponse, error)
}

// Config contains configuration for the blob-backed challenge publisher.
// The container is expected to be served at the site root so that blobs named
// .well-known/acme-challenge/{token} answer http-01 probes.
type Config struct {
	// AccountName is the storage account hosting the challenge container.
	AccountName string `env:"CERTPIPE_BLOB_ACCOUNT"`

	// Container is the container the site serves static content from.
	Container string `env:"CERTPIPE_BLOB_CONTAINER" envDefault:"$web"`
}

// Publisher writes http-01 key authorizations into blob storage and removes
// them after the order settles.
type Publisher struct {
	client    blobAPI
	container string
	log       *slog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithClient sets a custom blob client. Primarily used for testing.
func WithClient(client blobAPI) Option {
	return func(p *Publisher) { p.client = client }
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(p *Publisher) { p.log = log }
}

// New creates a Publisher for the configured storage account and container,
// authenticating blob calls with the given credential.
func New(cfg Config, cred azcore.TokenCredential, opts ...Option) (*Publisher, error) {
	if cfg.AccountName == "" {
		return nil, ErrAccountNameRequired
	}
	if cfg.Container == "" {
		return nil, ErrContainerRequired
	}

	p := &Publisher{
		container: cfg.Container,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With(logger.Component("azureblob"))

	if p.client == nil {
		if cred == nil {
			return nil, ErrCredentialRequired
		}
		serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.AccountName)
		client, err := azblob.NewClient(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("create blob client: %w", err)
		}
		p.client = client
	}

	return p, nil
}

// Publish uploads the key authorization so the CA finds it at
// /.well-known/acme-challenge/{token} on the domain.
func (p *Publisher) Publish(ctx context.Context, domain, token, keyAuth string) error {
	name := challengeBlobName(token)

	_, err := p.client.UploadBuffer(ctx, p.container, name, []byte(keyAuth), &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			// Validation servers expect a plain-text body.
			BlobContentType: to.Ptr("text/plain"),
		},
	})
	if err != nil {
		return fmt.Errorf("upload challenge blob %s: %w", name, err)
	}

	p.log.Info("challenge published", logger.Domain(domain), slog.String("blob", name))
	return nil
}

// Unpublish removes the challenge blob. A blob that is already gone is not
// an error.
func (p *Publisher) Unpublish(ctx context.Context, domain, token string) error {
	name := challengeBlobName(token)

	_, err := p.client.DeleteBlob(ctx, p.container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil
		}
		return fmt.Errorf("delete challenge blob %s: %w", name, err)
	}

	p.log.Info("challenge removed", logger.Domain(domain), slog.String("blob", name))
	return nil
}

// challengeBlobName maps a token to its blob name, the well-known challenge
// path without the leading slash.
func challengeBlobName(token string) string {
	return strings.TrimPrefix(http01.ChallengePath(token), "/")
}
