package issuance_test

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/crypto/acme"
)

// fakeACMEClient is a scripted test implementation of issuance.ACMEClient.
// Behavior is driven by function fields; unset fields fail the call so tests
// only exercise the protocol surface they script.
type fakeACMEClient struct {
	mu sync.Mutex

	registerFunc         func(ctx context.Context, account *acme.Account) (*acme.Account, error)
	getRegFunc           func(ctx context.Context) (*acme.Account, error)
	authorizeOrderFunc   func(ctx context.Context, ids []acme.AuthzID) (*acme.Order, error)
	getAuthorizationFunc func(ctx context.Context, url string) (*acme.Authorization, error)
	acceptFunc           func(ctx context.Context, chal *acme.Challenge) (*acme.Challenge, error)
	getOrderFunc         func(ctx context.Context, url string) (*acme.Order, error)
	createOrderCertFunc  func(ctx context.Context, finalizeURL string, csr []byte, bundle bool) ([][]byte, string, error)
	fetchCertFunc        func(ctx context.Context, url string, bundle bool) ([][]byte, error)

	registerCalls int
	acceptCalls   int
	getOrderCalls int
	finalizeCalls int
	lastCSR       []byte
	acceptedToken string
}

func (f *fakeACMEClient) Register(ctx context.Context, account *acme.Account, prompt func(string) bool) (*acme.Account, error) {
	f.mu.Lock()
	f.registerCalls++
	f.mu.Unlock()
	if f.registerFunc == nil {
		return nil, errors.New("fake: Register not scripted")
	}
	return f.registerFunc(ctx, account)
}

func (f *fakeACMEClient) GetReg(ctx context.Context) (*acme.Account, error) {
	if f.getRegFunc == nil {
		return nil, errors.New("fake: GetReg not scripted")
	}
	return f.getRegFunc(ctx)
}

func (f *fakeACMEClient) AuthorizeOrder(ctx context.Context, ids []acme.AuthzID) (*acme.Order, error) {
	if f.authorizeOrderFunc == nil {
		return nil, errors.New("fake: AuthorizeOrder not scripted")
	}
	return f.authorizeOrderFunc(ctx, ids)
}

func (f *fakeACMEClient) GetAuthorization(ctx context.Context, url string) (*acme.Authorization, error) {
	if f.getAuthorizationFunc == nil {
		return nil, errors.New("fake: GetAuthorization not scripted")
	}
	return f.getAuthorizationFunc(ctx, url)
}

func (f *fakeACMEClient) Accept(ctx context.Context, chal *acme.Challenge) (*acme.Challenge, error) {
	f.mu.Lock()
	f.acceptCalls++
	f.acceptedToken = chal.Token
	f.mu.Unlock()
	if f.acceptFunc == nil {
		return chal, nil
	}
	return f.acceptFunc(ctx, chal)
}

func (f *fakeACMEClient) GetOrder(ctx context.Context, url string) (*acme.Order, error) {
	f.mu.Lock()
	f.getOrderCalls++
	f.mu.Unlock()
	if f.getOrderFunc == nil {
		return nil, errors.New("fake: GetOrder not scripted")
	}
	return f.getOrderFunc(ctx, url)
}

func (f *fakeACMEClient) CreateOrderCert(ctx context.Context, finalizeURL string, csr []byte, bundle bool) ([][]byte, string, error) {
	f.mu.Lock()
	f.finalizeCalls++
	f.lastCSR = csr
	f.mu.Unlock()
	if f.createOrderCertFunc == nil {
		return nil, "", errors.New("fake: CreateOrderCert not scripted")
	}
	return f.createOrderCertFunc(ctx, finalizeURL, csr, bundle)
}

func (f *fakeACMEClient) FetchCert(ctx context.Context, url string, bundle bool) ([][]byte, error) {
	if f.fetchCertFunc == nil {
		return nil, errors.New("fake: FetchCert not scripted")
	}
	return f.fetchCertFunc(ctx, url, bundle)
}
