package school

import (
	"context"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/store"
)

const basePath = "/school"

type Service struct {
	api        core.APIClient
	validate   *validator.Validate
	translator ut.Translator

	slice *store.Slice[Info]
	guard store.Guard
}

func NewService(api core.APIClient, validate *validator.Validate, translator ut.Translator, opts ...store.Option) *Service {
	return &Service{
		api:        api,
		validate:   validate,
		translator: translator,
		slice:      store.NewSlice[Info]("school", append([]store.Option{store.KeepDataOnError()}, opts...)...), // the header keeps the name
	}
}

func (svc *Service) Slice() *store.Slice[Info] { return svc.slice }

func (svc *Service) State() store.State[Info] { return svc.slice.State() }

// Reset forgets the fetched data, e.g. when the user logs out.
func (svc *Service) Reset() {
	svc.slice.Reset()
}

func (svc *Service) Get(ctx context.Context) (Info, error) {
	return svc.slice.Run(ctx, func(ctx context.Context) (Info, error) {
		var info Info
		err := svc.api.Do(ctx, core.Get(basePath), &info)
		return info, err
	})
}

// Update saves the school profile, then re-fetches it.
// The profile is fetched first when the store does not hold it yet.
func (svc *Service) Update(ctx context.Context, data UpdateInfo) (Info, error) {
	orig := svc.slice.State().Data
	if orig.Name == "" {
		var err error
		if orig, err = svc.Get(ctx); err != nil {
			return Info{}, err
		}
	}
	if err := data.Validate(orig, svc.validate); err != nil {
		return Info{}, core.TranslateValidation(err, svc.translator)
	}

	var info Info
	err := svc.guard.Do(func() error {
		if err := svc.api.Do(ctx, core.Put(basePath, data), nil); err != nil {
			return err
		}
		var err error
		info, err = svc.Get(ctx)
		return err
	})
	return info, err
}
