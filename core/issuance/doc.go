// Package issuance drives a single ACME v2 certificate order from account
// registration through certificate download, using the http-01 challenge.
//
// The package deliberately implements none of the ACME protocol itself:
// directory discovery, nonce handling and JWS signing live behind the
// ACMEClient interface, whose production adapter wraps
// golang.org/x/crypto/acme.Client. Publishing the challenge response is the
// caller's job; the issuer hands out the token and key authorization and
// resumes once the caller confirms publication.
//
// The account key is persisted between runs (see AccountKeyStore) so renewals
// reuse one account instead of registering a new one each time.
//
// Phases, invoked in order by the pipeline driver:
//
//	issuer, _ := issuance.New(issuance.Config{
//		DirectoryURL:   "https://acme-v02.api.letsencrypt.org/directory",
//		Email:          "admin@example.com",
//		AccountKeyPath: "/var/lib/certpipe/account.key",
//	})
//
//	_ = issuer.EnsureAccount(ctx)
//	token, keyAuth, _ := issuer.PrepareOrder(ctx, "example.com")
//	// ... publish keyAuth at /.well-known/acme-challenge/<token> ...
//	_ = issuer.CompleteChallenge(ctx)
//	_ = issuer.Finalize(ctx)
//	certURL, chainPEM, keyPEM, _ := issuer.AwaitCertificate(ctx)
//
// An order turning invalid is fatal: CompleteChallenge surfaces the CA's
// problem detail as *ACMEError and nothing is finalized. Order status reads
// that fail transiently are retried within the configured polling budget.
package issuance
