// Package pipeline sequences a certificate renewal run: identity
// verification, ACME account registration, http-01 challenge publication,
// order validation and finalization, PFX export and gateway installation.
//
// The pipeline owns no protocol or cloud mechanics; it drives small
// collaborator interfaces (Authenticator, CertificateIssuer,
// ChallengePublisher, Installer) strictly in order and stops at the first
// failure. Each run is tagged with a generated run ID and walks a linear
// state machine whose current stage is observable through State.
//
// A challenge object published during the run is removed once the run
// settles, on success and on failure alike. Cleanup failures are logged,
// never fatal.
//
// Usage:
//
//	p, err := pipeline.New(cfg, verifier, issuer, publisher, installer,
//		pipeline.WithLogger(log),
//	)
//	if err != nil {
//		return err
//	}
//	if err := p.Run(ctx); err != nil {
//		// errors.Is against pipeline.ErrAuth, ErrACME, ErrPublish,
//		// ErrInstall tells which stage family failed.
//	}
package pipeline
