package payment

import (
	"context"
	"net/url"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/store"
)

const basePath = "/payments"

var (
	ErrNotFound   = errors.New("payment not found")
	ErrNotPending = errors.New("only pending payments can be approved")
)

type Service struct {
	api   core.APIClient
	slice *store.Slice[[]Payment]
	guard store.Guard
}

func NewService(api core.APIClient, opts ...store.Option) *Service {
	return &Service{
		api:   api,
		slice: store.NewSlice[[]Payment]("payment", opts...),
	}
}

func (svc *Service) Slice() *store.Slice[[]Payment] { return svc.slice }

func (svc *Service) State() store.State[[]Payment] { return svc.slice.State() }

func (svc *Service) Reset() {
	svc.slice.Reset()
}

func (svc *Service) Pending() bool { return svc.guard.Pending() }

func (svc *Service) List(ctx context.Context) ([]Payment, error) {
	return svc.slice.Run(ctx, func(ctx context.Context) ([]Payment, error) {
		var payments []Payment
		if err := svc.api.Do(ctx, core.Get(basePath), &payments); err != nil {
			return nil, err
		}
		if payments == nil {
			payments = []Payment{}
		}
		return payments, nil
	})
}

func (svc *Service) Find(id string) (Payment, error) {
	for _, p := range svc.slice.State().Data {
		if p.ID == id {
			return p, nil
		}
	}
	return Payment{}, ErrNotFound
}

// Approve flips a pending payment to paid, then re-fetches the list.
// A payment known to the store as not pending is refused without calling the backend;
// a payment the store does not know is left for the backend to judge.
func (svc *Service) Approve(ctx context.Context, id string) (Payment, error) {
	if p, err := svc.Find(id); err == nil && !p.IsPending() {
		return Payment{}, ErrNotPending
	}

	var approved Payment
	err := svc.guard.Do(func() error {
		path := basePath + "/" + url.PathEscape(id) + "/approve"
		if err := svc.api.Do(ctx, core.Put(path, nil), &approved); err != nil {
			return err
		}
		_, _ = svc.List(ctx)
		return nil
	})
	return approved, err
}
