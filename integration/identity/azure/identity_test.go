package azure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCredential struct {
	getTokenFunc func(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error)
	scopes       []string
}

func (f *fakeCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	f.scopes = opts.Scopes
	if f.getTokenFunc != nil {
		return f.getTokenFunc(ctx, opts)
	}
	return azcore.AccessToken{Token: "tok", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

func TestNewCredentialRequiresTenantForServicePrincipal(t *testing.T) {
	_, err := NewCredential(Config{ClientID: "app", ClientSecret: "secret"})
	assert.ErrorIs(t, err, ErrTenantIDRequired)
}

func TestNewCredentialServicePrincipal(t *testing.T) {
	cred, err := NewCredential(Config{TenantID: "tenant", ClientID: "app", ClientSecret: "secret"})
	require.NoError(t, err)
	assert.NotNil(t, cred)
}

func TestNewVerifierRequiresCredential(t *testing.T) {
	_, err := NewVerifier(nil)
	assert.ErrorIs(t, err, ErrCredentialRequired)
}

func TestAuthenticateRequestsManagementScope(t *testing.T) {
	cred := &fakeCredential{}
	v, err := NewVerifier(cred)
	require.NoError(t, err)

	require.NoError(t, v.Authenticate(context.Background()))
	assert.Equal(t, []string{"https://management.azure.com/.default"}, cred.scopes)
}

func TestAuthenticateSurfacesTokenFailure(t *testing.T) {
	cred := &fakeCredential{
		getTokenFunc: func(_ context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
			return azcore.AccessToken{}, errors.New("AADSTS7000215: invalid client secret")
		},
	}
	v, err := NewVerifier(cred)
	require.NoError(t, err)

	err = v.Authenticate(context.Background())
	assert.ErrorContains(t, err, "acquire management token")
}
