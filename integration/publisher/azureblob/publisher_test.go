package azureblob

import (
	"context"
	"errors"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBlobClient struct {
	uploadFunc func(ctx context.Context, container, name string, buf []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
	deleteFunc func(ctx context.Context, container, name string, o *azblob.DeleteBlobOptions) (azblob.DeleteBlobResponse, error)

	uploads map[string][]byte
	deletes []string
}

func (f *fakeBlobClient) UploadBuffer(ctx context.Context, container, name string, buf []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error) {
	if f.uploadFunc != nil {
		if _, err := f.uploadFunc(ctx, container, name, buf, o); err != nil {
			return azblob.UploadBufferResponse{}, err
		}
	}
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	f.uploads[container+"/"+name] = buf
	return azblob.UploadBufferResponse{}, nil
}

func (f *fakeBlobClient) DeleteBlob(ctx context.Context, container, name string, o *azblob.DeleteBlobOptions) (azblob.DeleteBlobResponse, error) {
	if f.deleteFunc != nil {
		if _, err := f.deleteFunc(ctx, container, name, o); err != nil {
			return azblob.DeleteBlobResponse{}, err
		}
	}
	f.deletes = append(f.deletes, container+"/"+name)
	return azblob.DeleteBlobResponse{}, nil
}

func newTestPublisher(t *testing.T, client *fakeBlobClient) *Publisher {
	t.Helper()
	p, err := New(Config{AccountName: "certsite", Container: "$web"}, nil, WithClient(client))
	require.NoError(t, err)
	return p
}

func TestNewValidation(t *testing.T) {
	t.Run("missing account", func(t *testing.T) {
		_, err := New(Config{Container: "$web"}, nil)
		assert.ErrorIs(t, err, ErrAccountNameRequired)
	})

	t.Run("missing container", func(t *testing.T) {
		_, err := New(Config{AccountName: "certsite"}, nil)
		assert.ErrorIs(t, err, ErrContainerRequired)
	})

	t.Run("missing credential", func(t *testing.T) {
		_, err := New(Config{AccountName: "certsite", Container: "$web"}, nil)
		assert.ErrorIs(t, err, ErrCredentialRequired)
	})
}

func TestPublishWritesWellKnownPath(t *testing.T) {
	client := &fakeBlobClient{}
	p := newTestPublisher(t, client)

	err := p.Publish(context.Background(), "example.com", "abc123", "abc123.thumb")
	require.NoError(t, err)

	body, ok := client.uploads["$web/.well-known/acme-challenge/abc123"]
	require.True(t, ok)
	assert.Equal(t, "abc123.thumb", string(body))
}

func TestPublishSetsPlainTextContentType(t *testing.T) {
	var contentType string
	client := &fakeBlobClient{
		uploadFunc: func(_ context.Context, _, _ string, _ []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error) {
			if o != nil && o.HTTPHeaders != nil && o.HTTPHeaders.BlobContentType != nil {
				contentType = *o.HTTPHeaders.BlobContentType
			}
			return azblob.UploadBufferResponse{}, nil
		},
	}
	p := newTestPublisher(t, client)

	require.NoError(t, p.Publish(context.Background(), "example.com", "abc123", "abc123.thumb"))
	assert.Equal(t, "text/plain", contentType)
}

func TestPublishError(t *testing.T) {
	client := &fakeBlobClient{
		uploadFunc: func(_ context.Context, _, _ string, _ []byte, _ *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error) {
			return azblob.UploadBufferResponse{}, errors.New("403 forbidden")
		},
	}
	p := newTestPublisher(t, client)

	err := p.Publish(context.Background(), "example.com", "abc123", "abc123.thumb")
	assert.ErrorContains(t, err, "upload challenge blob")
}

func TestUnpublishDeletesBlob(t *testing.T) {
	client := &fakeBlobClient{}
	p := newTestPublisher(t, client)

	require.NoError(t, p.Unpublish(context.Background(), "example.com", "abc123"))
	assert.Equal(t, []string{"$web/.well-known/acme-challenge/abc123"}, client.deletes)
}

func TestUnpublishError(t *testing.T) {
	client := &fakeBlobClient{
		deleteFunc: func(_ context.Context, _, _ string, _ *azblob.DeleteBlobOptions) (azblob.DeleteBlobResponse, error) {
			return azblob.DeleteBlobResponse{}, errors.New("503 busy")
		},
	}
	p := newTestPublisher(t, client)

	err := p.Unpublish(context.Background(), "example.com", "abc123")
	assert.ErrorContains(t, err, "delete challenge blob")
}
