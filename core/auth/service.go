package auth

import (
	"context"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/store"
)

const loginPath = "/auth/login"

type Service struct {
	api        core.APIClient
	tokens     core.TokenStore
	validate   *validator.Validate
	translator ut.Translator

	slice *store.Slice[Session]
	guard store.Guard
}

func NewService(api core.APIClient, tokens core.TokenStore, validate *validator.Validate, translator ut.Translator, opts ...store.Option) *Service {
	return &Service{
		api:        api,
		tokens:     tokens,
		validate:   validate,
		translator: translator,
		slice:      store.NewSlice[Session]("auth", opts...),
	}
}

func (svc *Service) Slice() *store.Slice[Session] { return svc.slice }

func (svc *Service) State() store.State[Session] { return svc.slice.State() }

// Login authenticates against the backend and persists the returned token.
func (svc *Service) Login(ctx context.Context, creds Credentials) (Session, error) {
	if err := creds.Validate(svc.validate); err != nil {
		return Session{}, core.TranslateValidation(err, svc.translator)
	}

	var sess Session
	err := svc.guard.Do(func() error {
		var err error
		sess, err = svc.slice.Run(ctx, func(ctx context.Context) (Session, error) {
			req := core.Post(loginPath, creds)
			req.Public = true

			var resp LoginResponse
			if err := svc.api.Do(ctx, req, &resp); err != nil {
				return Session{}, err
			}
			if resp.Token == "" {
				return Session{}, &core.RequestError{Message: "login response carries no token"}
			}
			sess := resp.session()
			if err := svc.tokens.SetCredential(sess.credential()); err != nil {
				return Session{}, errors.Wrap(err, "storing token")
			}
			return sess, nil
		})
		return err
	})
	return sess, err
}

// Logout clears the stored token and the auth slice.
func (svc *Service) Logout() error {
	svc.slice.Reset()
	return errors.Wrap(svc.tokens.Clear(), "clearing token")
}

// Restore loads the session stored by a previous login, if any.
func (svc *Service) Restore() (Session, error) {
	cred, err := svc.tokens.Credential()
	if err != nil {
		return Session{}, errors.Wrap(err, "reading token")
	}
	sess, err := sessionFromCredential(cred)
	if err != nil {
		return Session{}, err
	}
	svc.slice.Set(sess)
	return sess, nil
}

// Current returns the session held by the store, restoring it from the token store
// when the store is still empty.
func (svc *Service) Current() (Session, error) {
	if sess := svc.slice.State().Data; sess.Token != "" {
		return sess, nil
	}
	return svc.Restore()
}
