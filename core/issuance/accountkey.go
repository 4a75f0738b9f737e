package issuance

import (
	"crypto"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-acme/lego/v4/certcrypto"
)

// AccountKeyStore persists the ACME account key on disk so renewals reuse the
// same account instead of registering a new one per run. The key is stored as
// a PEM-encoded private key, readable only by the owner.
type AccountKeyStore struct {
	path string
}

// NewAccountKeyStore creates a store for the given key file path.
func NewAccountKeyStore(path string) *AccountKeyStore {
	return &AccountKeyStore{path: path}
}

// LoadOrCreate returns the stored account key, generating and persisting a
// fresh ECDSA P-256 key when none exists yet. The second return value reports
// whether a new key was created.
func (s *AccountKeyStore) LoadOrCreate() (crypto.Signer, bool, error) {
	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		key, err := certcrypto.ParsePEMPrivateKey(data)
		if err != nil {
			return nil, false, fmt.Errorf("malformed account key at %s: %w", s.path, err)
		}
		signer, ok := key.(crypto.Signer)
		if !ok {
			return nil, false, fmt.Errorf("account key at %s does not implement crypto.Signer", s.path)
		}
		return signer, false, nil

	case os.IsNotExist(err):
		key, err := certcrypto.GeneratePrivateKey(certcrypto.EC256)
		if err != nil {
			return nil, false, fmt.Errorf("generate account key: %w", err)
		}
		if err := s.write(certcrypto.PEMEncode(key)); err != nil {
			return nil, false, err
		}
		return key.(crypto.Signer), true, nil

	default:
		return nil, false, fmt.Errorf("read account key: %w", err)
	}
}

// write persists the key with a tmp+rename so a crash never leaves a partial file.
func (s *AccountKeyStore) write(pemData []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create account key directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, pemData, 0o600); err != nil {
		return fmt.Errorf("write account key: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath) // Best effort cleanup
		return fmt.Errorf("save account key: %w", err)
	}
	return nil
}

// Path returns the key file location.
func (s *AccountKeyStore) Path() string {
	return s.path
}
