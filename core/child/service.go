package child

import (
	"context"
	"net/url"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/store"
)

const basePath = "/parent/children"

var ErrNotFound = errors.New("child not found")

type Service struct {
	api     core.APIClient
	slice   *store.Slice[[]Child]
	results *store.Slice[[]Result]
}

func NewService(api core.APIClient, opts ...store.Option) *Service {
	return &Service{
		api:     api,
		slice:   store.NewSlice[[]Child]("children", opts...),
		results: store.NewSlice[[]Result]("results", opts...),
	}
}

func (svc *Service) Slice() *store.Slice[[]Child] { return svc.slice }

func (svc *Service) State() store.State[[]Child] { return svc.slice.State() }

// Reset forgets the fetched data, e.g. when the user logs out.
func (svc *Service) Reset() {
	svc.slice.Reset()
	svc.results.Reset()
}

func (svc *Service) ResultsState() store.State[[]Result] { return svc.results.State() }

// List fetches the children of the logged in parent.
func (svc *Service) List(ctx context.Context) ([]Child, error) {
	return svc.slice.Run(ctx, func(ctx context.Context) ([]Child, error) {
		var children []Child
		if err := svc.api.Do(ctx, core.Get(basePath), &children); err != nil {
			return nil, err
		}
		if children == nil {
			children = []Child{}
		}
		return children, nil
	})
}

func (svc *Service) Find(id string) (Child, error) {
	for _, c := range svc.slice.State().Data {
		if c.ID == id {
			return c, nil
		}
	}
	return Child{}, ErrNotFound
}

// Results fetches the exam results of one child.
func (svc *Service) Results(ctx context.Context, childID string) ([]Result, error) {
	return svc.results.Run(ctx, func(ctx context.Context) ([]Result, error) {
		var results []Result
		path := basePath + "/" + url.PathEscape(childID) + "/results"
		if err := svc.api.Do(ctx, core.Get(path), &results); err != nil {
			return nil, err
		}
		if results == nil {
			results = []Result{}
		}
		return results, nil
	})
}
