// Package tokenfile persists the auth credential as a single JSON file on disk.
package tokenfile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
)

type tokenStore struct {
	path string
	mu   sync.Mutex
}

var _ core.TokenStore = (*tokenStore)(nil)

func New(path string) core.TokenStore {
	return &tokenStore{path: path}
}

func (s *tokenStore) Token() (string, error) {
	cred, err := s.Credential()
	return cred.Token, err
}

func (s *tokenStore) SetToken(token string) error {
	return s.SetCredential(core.Credential{Token: token})
}

// Credential reads the stored record. A file holding a bare token (no JSON) is read as that token.
func (s *tokenStore) Credential() (core.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return core.Credential{}, nil
		}
		return core.Credential{}, errors.Wrapf(err, "reading token file %s", s.path)
	}
	data = bytes.TrimSpace(data)
	if !bytes.HasPrefix(data, []byte("{")) {
		return core.Credential{Token: string(data)}, nil
	}

	var cred core.Credential
	if err := sonic.Unmarshal(data, &cred); err != nil {
		return core.Credential{}, errors.Wrapf(err, "decoding token file %s", s.path)
	}
	cred.Token = strings.TrimSpace(cred.Token)
	return cred, nil
}

func (s *tokenStore) SetCredential(cred core.Credential) error {
	data, err := sonic.Marshal(cred)
	if err != nil {
		return errors.Wrap(err, "encoding credential")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "creating token directory")
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return errors.Wrapf(err, "writing token file %s", s.path)
	}
	return nil
}

func (s *tokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing token file %s", s.path)
	}
	return nil
}
