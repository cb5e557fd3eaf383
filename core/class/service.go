package class

import (
	"context"
	"net/url"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/store"
)

const basePath = "/classes"

type Service struct {
	api        core.APIClient
	validate   *validator.Validate
	translator ut.Translator

	slice *store.Slice[[]Class]
	guard store.Guard
}

func NewService(api core.APIClient, validate *validator.Validate, translator ut.Translator, opts ...store.Option) *Service {
	return &Service{
		api:        api,
		validate:   validate,
		translator: translator,
		slice:      store.NewSlice[[]Class]("class", opts...),
	}
}

func (svc *Service) Slice() *store.Slice[[]Class] { return svc.slice }

func (svc *Service) State() store.State[[]Class] { return svc.slice.State() }

func (svc *Service) Reset() {
	svc.slice.Reset()
}

func (svc *Service) Pending() bool { return svc.guard.Pending() }

func (svc *Service) List(ctx context.Context) ([]Class, error) {
	return svc.slice.Run(ctx, func(ctx context.Context) ([]Class, error) {
		var classes []Class
		if err := svc.api.Do(ctx, core.Get(basePath), &classes); err != nil {
			return nil, err
		}
		if classes == nil {
			classes = []Class{}
		}
		return classes, nil
	})
}

// Create validates and creates a class, then re-fetches the list.
func (svc *Service) Create(ctx context.Context, nc NewClass) (Class, error) {
	if err := nc.Validate(svc.validate); err != nil {
		return Class{}, core.TranslateValidation(err, svc.translator)
	}

	var c Class
	err := svc.guard.Do(func() error {
		if err := svc.api.Do(ctx, core.Post(basePath, nc), &c); err != nil {
			return err
		}
		_, _ = svc.List(ctx)
		return nil
	})
	return c, err
}

// Delete removes a class, then re-fetches the list.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.guard.Do(func() error {
		if err := svc.api.Do(ctx, core.Delete(basePath+"/"+url.PathEscape(id)), nil); err != nil {
			return err
		}
		_, _ = svc.List(ctx)
		return nil
	})
}
