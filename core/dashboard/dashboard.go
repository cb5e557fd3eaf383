// Package dashboard holds the admin dashboard summary.
package dashboard

import (
	"context"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/payment"
	"github.com/trezcool/masomo-portal/core/store"
)

const summaryPath = "/admin/dashboard"

// recentLimit caps the payments shown on the dashboard.
const recentLimit = 5

type Summary struct {
	TotalStudents  int               `json:"totalStudents"`
	TotalTeachers  int               `json:"totalTeachers"`
	TotalClasses   int               `json:"totalClasses"`
	TotalRevenue   float64           `json:"totalRevenue"`
	PendingFees    float64           `json:"pendingFees"`
	RecentPayments []payment.Payment `json:"recentPayments"`
}

// Recent returns at most the `recentLimit` first recent payments.
func (s Summary) Recent() []payment.Payment {
	if len(s.RecentPayments) > recentLimit {
		return s.RecentPayments[:recentLimit]
	}
	return s.RecentPayments
}

type Service struct {
	api   core.APIClient
	slice *store.Slice[Summary]
}

func NewService(api core.APIClient, opts ...store.Option) *Service {
	return &Service{api: api, slice: store.NewSlice[Summary]("adminDashboard", opts...)}
}

func (svc *Service) Slice() *store.Slice[Summary] { return svc.slice }

func (svc *Service) State() store.State[Summary] { return svc.slice.State() }

func (svc *Service) Reset() {
	svc.slice.Reset()
}

func (svc *Service) Fetch(ctx context.Context) (Summary, error) {
	return svc.slice.Run(ctx, func(ctx context.Context) (Summary, error) {
		var sum Summary
		err := svc.api.Do(ctx, core.Get(summaryPath), &sum)
		return sum, err
	})
}
