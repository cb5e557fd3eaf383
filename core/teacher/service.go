package teacher

import (
	"context"
	"net/url"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/store"
)

const (
	basePath    = "/teachers"
	profilePath = "/teacher/profile"
)

var ErrNotFound = errors.New("teacher not found")

// Created is the outcome of a successful Add. Password is only set when it was generated
// by the client, so that it can be handed over to the teacher.
type Created struct {
	Teacher  Teacher
	Password string
}

type Service struct {
	api        core.APIClient
	validate   *validator.Validate
	translator ut.Translator

	slice   *store.Slice[[]Teacher]
	profile *store.Slice[Teacher]
	guard   store.Guard
}

func NewService(api core.APIClient, validate *validator.Validate, translator ut.Translator, opts ...store.Option) *Service {
	return &Service{
		api:        api,
		validate:   validate,
		translator: translator,
		slice:      store.NewSlice[[]Teacher]("teacher", opts...),
		profile:    store.NewSlice[Teacher]("teacherProfile", opts...),
	}
}

func (svc *Service) Slice() *store.Slice[[]Teacher] { return svc.slice }

func (svc *Service) State() store.State[[]Teacher] { return svc.slice.State() }

// Reset forgets the fetched data, e.g. when the user logs out.
func (svc *Service) Reset() {
	svc.slice.Reset()
	svc.profile.Reset()
}

// Pending reports whether a create/update/delete is in flight.
func (svc *Service) Pending() bool { return svc.guard.Pending() }

// List fetches every teacher.
func (svc *Service) List(ctx context.Context) ([]Teacher, error) {
	return svc.slice.Run(ctx, func(ctx context.Context) ([]Teacher, error) {
		var teachers []Teacher
		if err := svc.api.Do(ctx, core.Get(basePath), &teachers); err != nil {
			return nil, err
		}
		if teachers == nil {
			teachers = []Teacher{}
		}
		return teachers, nil
	})
}

// Profile fetches the logged in teacher's own record.
func (svc *Service) Profile(ctx context.Context) (Teacher, error) {
	return svc.profile.Run(ctx, func(ctx context.Context) (Teacher, error) {
		var t Teacher
		err := svc.api.Do(ctx, core.Get(profilePath), &t)
		return t, err
	})
}

// Find looks a teacher up in the fetched list.
func (svc *Service) Find(id string) (Teacher, error) {
	for _, t := range svc.slice.State().Data {
		if t.ID == id {
			return t, nil
		}
	}
	return Teacher{}, ErrNotFound
}

// Add validates and creates a teacher, then re-fetches the list.
func (svc *Service) Add(ctx context.Context, nt NewTeacher) (Created, error) {
	if err := nt.Validate(svc.validate); err != nil {
		return Created{}, core.TranslateValidation(err, svc.translator)
	}

	var generated string
	if nt.Password == "" {
		pwd, err := GeneratePassword()
		if err != nil {
			return Created{}, errors.Wrap(err, "generating password")
		}
		nt.Password = pwd
		nt.GeneratedPassword = true
		generated = pwd
	}

	var created Created
	err := svc.guard.Do(func() error {
		var t Teacher
		if err := svc.api.Do(ctx, core.Post(basePath, nt), &t); err != nil {
			return err
		}
		created = Created{Teacher: t, Password: generated}
		_, _ = svc.List(ctx) // failures are kept in the slice
		return nil
	})
	return created, err
}

// Update validates and saves a teacher, then re-fetches the list.
// Blank fields of `data` keep the values of the fetched teacher.
func (svc *Service) Update(ctx context.Context, id string, data UpdateTeacher) (Teacher, error) {
	orig, err := svc.Find(id)
	if err != nil {
		return Teacher{}, err
	}
	if err := data.Validate(orig, svc.validate); err != nil {
		return Teacher{}, core.TranslateValidation(err, svc.translator)
	}

	var updated Teacher
	err = svc.guard.Do(func() error {
		if err := svc.api.Do(ctx, core.Put(detailPath(id), data), &updated); err != nil {
			return err
		}
		_, _ = svc.List(ctx)
		return nil
	})
	return updated, err
}

// Delete removes a teacher, then re-fetches the list.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.guard.Do(func() error {
		if err := svc.api.Do(ctx, core.Delete(detailPath(id)), nil); err != nil {
			return err
		}
		_, _ = svc.List(ctx)
		return nil
	})
}

func detailPath(id string) string {
	return basePath + "/" + url.PathEscape(id)
}
