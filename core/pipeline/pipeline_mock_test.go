package pipeline_test

import "context"

type fakeAuthenticator struct {
	authenticateFunc func(ctx context.Context) error
	calls            int
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context) error {
	f.calls++
	if f.authenticateFunc != nil {
		return f.authenticateFunc(ctx)
	}
	return nil
}

type fakeIssuer struct {
	ensureAccountFunc     func(ctx context.Context) error
	prepareOrderFunc      func(ctx context.Context, domain string) (string, string, error)
	completeChallengeFunc func(ctx context.Context) error
	finalizeFunc          func(ctx context.Context) error
	awaitCertificateFunc  func(ctx context.Context) (string, []byte, []byte, error)

	ensureCalls   int
	prepareCalls  int
	completeCalls int
	finalizeCalls int
	awaitCalls    int
	lastDomain    string
}

func (f *fakeIssuer) EnsureAccount(ctx context.Context) error {
	f.ensureCalls++
	if f.ensureAccountFunc != nil {
		return f.ensureAccountFunc(ctx)
	}
	return nil
}

func (f *fakeIssuer) PrepareOrder(ctx context.Context, domain string) (string, string, error) {
	f.prepareCalls++
	f.lastDomain = domain
	if f.prepareOrderFunc != nil {
		return f.prepareOrderFunc(ctx, domain)
	}
	return "", "", nil
}

func (f *fakeIssuer) CompleteChallenge(ctx context.Context) error {
	f.completeCalls++
	if f.completeChallengeFunc != nil {
		return f.completeChallengeFunc(ctx)
	}
	return nil
}

func (f *fakeIssuer) Finalize(ctx context.Context) error {
	f.finalizeCalls++
	if f.finalizeFunc != nil {
		return f.finalizeFunc(ctx)
	}
	return nil
}

func (f *fakeIssuer) AwaitCertificate(ctx context.Context) (string, []byte, []byte, error) {
	f.awaitCalls++
	if f.awaitCertificateFunc != nil {
		return f.awaitCertificateFunc(ctx)
	}
	return "", nil, nil, nil
}

type publishRecord struct {
	domain  string
	token   string
	keyAuth string
}

type fakePublisher struct {
	publishFunc   func(ctx context.Context, domain, token, keyAuth string) error
	unpublishFunc func(ctx context.Context, domain, token string) error

	// onUnpublish lets tests observe pipeline state at cleanup time.
	onUnpublish func()

	published   []publishRecord
	unpublished []string
}

func (f *fakePublisher) Publish(ctx context.Context, domain, token, keyAuth string) error {
	if f.publishFunc != nil {
		if err := f.publishFunc(ctx, domain, token, keyAuth); err != nil {
			return err
		}
	}
	f.published = append(f.published, publishRecord{domain: domain, token: token, keyAuth: keyAuth})
	return nil
}

func (f *fakePublisher) Unpublish(ctx context.Context, domain, token string) error {
	if f.onUnpublish != nil {
		f.onUnpublish()
	}
	if f.unpublishFunc != nil {
		if err := f.unpublishFunc(ctx, domain, token); err != nil {
			return err
		}
	}
	f.unpublished = append(f.unpublished, token)
	return nil
}

type fakeInstaller struct {
	installFunc func(ctx context.Context, pfx []byte, password string) error

	installs     int
	lastPFX      []byte
	lastPassword string
}

func (f *fakeInstaller) Install(ctx context.Context, pfx []byte, password string) error {
	f.installs++
	f.lastPFX = pfx
	f.lastPassword = password
	if f.installFunc != nil {
		return f.installFunc(ctx, pfx, password)
	}
	return nil
}
