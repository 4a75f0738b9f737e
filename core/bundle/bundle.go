package bundle

import (
	"errors"
	"fmt"

	"github.com/go-acme/lego/v4/certcrypto"
	pkcs12 "software.sslmate.com/src/go-pkcs12"
)

var (
	// ErrPasswordRequired is returned when no bundle password is provided.
	ErrPasswordRequired = errors.New("bundle password is required")

	// ErrEmptyChain is returned when the certificate chain contains no certificates.
	ErrEmptyChain = errors.New("certificate chain is empty")
)

// Export packages a PEM certificate chain and its PEM private key into a
// password-protected PFX (PKCS#12) container. The first certificate in the
// chain becomes the bundle's leaf; any remaining certificates are carried as
// the CA chain. The password protects both the container and key export.
func Export(password string, chainPEM, keyPEM []byte) ([]byte, error) {
	if password == "" {
		return nil, ErrPasswordRequired
	}

	key, err := certcrypto.ParsePEMPrivateKey(keyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	certs, err := certcrypto.ParsePEMBundle(chainPEM)
	if err != nil {
		return nil, fmt.Errorf("parse certificate chain: %w", err)
	}
	if len(certs) == 0 {
		return nil, ErrEmptyChain
	}

	pfx, err := pkcs12.Modern.Encode(key, certs[0], certs[1:], password)
	if err != nil {
		return nil, fmt.Errorf("encode pfx bundle: %w", err)
	}
	return pfx, nil
}
