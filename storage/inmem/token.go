package inmemdb

import (
	"sync"

	"github.com/trezcool/masomo-portal/core"
)

type tokenStore struct {
	mutex sync.RWMutex
	cred  core.Credential
}

var _ core.TokenStore = (*tokenStore)(nil)

// NewTokenStore returns a TokenStore that forgets the token when the process exits.
func NewTokenStore(token ...string) core.TokenStore {
	s := &tokenStore{}
	if len(token) > 0 {
		s.cred.Token = token[0]
	}
	return s
}

func (s *tokenStore) Token() (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.cred.Token, nil
}

func (s *tokenStore) SetToken(token string) error {
	return s.SetCredential(core.Credential{Token: token})
}

func (s *tokenStore) Credential() (core.Credential, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.cred, nil
}

func (s *tokenStore) SetCredential(cred core.Credential) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.cred = cred
	return nil
}

func (s *tokenStore) Clear() error {
	return s.SetCredential(core.Credential{})
}
