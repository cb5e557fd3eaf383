package payment

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/store"
	testutil "github.com/trezcool/masomo-portal/tests"
)

var (
	p1  = Payment{ID: "p1", Student: Student{ID: "s1", Name: "Amani Otieno", Class: "Grade 5"}, Amount: 15000, FeeType: "tuition", Status: StatusPaid}
	p2  = Payment{ID: "p2", Student: Student{ID: "s2", Name: "Baraka Otieno", Class: "Grade 6"}, Amount: 4000, FeeType: "transport", Status: StatusPending}
	p3  = Payment{ID: "p3", Student: Student{ID: "s3", Name: "Chloe Wanjiru", Class: "Grade 5"}, Amount: 15000, FeeType: "Tuition", Status: StatusFailed}
	all = []Payment{p1, p2, p3}
)

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []Payment
	}{
		{name: "empty", filter: Filter{}, want: all},
		{name: "student", filter: Filter{Search: "otieno"}, want: []Payment{p1, p2}},
		{name: "class", filter: Filter{Search: "grade 5"}, want: []Payment{p1, p3}},
		{name: "status", filter: Filter{Status: "Pending"}, want: []Payment{p2}},
		{name: "fee type ignores case", filter: Filter{FeeType: "tuition"}, want: []Payment{p1, p3}},
		{name: "combined", filter: Filter{Search: "otieno", FeeType: "tuition", Status: "paid"}, want: []Payment{p1}},
		{name: "no match", filter: Filter{Search: "otieno", Status: "failed"}, want: []Payment{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(all)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, tt.filter.Apply(got))
		})
	}
}

func TestSummarize(t *testing.T) {
	sum := Summarize(all)
	assert.Equal(t, Total{Count: 3, Amount: 34000}, sum.Total)
	assert.Equal(t, map[string]Total{
		StatusPaid:    {Count: 1, Amount: 15000},
		StatusPending: {Count: 1, Amount: 4000},
		StatusFailed:  {Count: 1, Amount: 15000},
	}, sum.ByStatus)
	assert.Equal(t, map[string]Total{
		"tuition":   {Count: 2, Amount: 30000},
		"transport": {Count: 1, Amount: 4000},
	}, sum.ByFeeType)
	assert.InDelta(t, 15000.0/34000, sum.CollectionRate(), 1e-9)

	assert.Zero(t, Summarize(nil).CollectionRate())
	assert.Equal(t, []string{"transport", "tuition"}, FeeTypes(all))
}

func TestService_Approve(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Service, *testutil.FakeAPI) {
		api := testutil.NewFakeAPI()
		api.Reply(http.MethodGet, basePath, all)
		svc := NewService(api)
		_, err := svc.List(ctx)
		require.NoError(t, err)
		return svc, api
	}

	t.Run("pending payment", func(t *testing.T) {
		svc, api := setup(t)
		approved := p2
		approved.Status = StatusPaid
		api.Reply(http.MethodPut, "/payments/p2/approve", approved)

		got, err := svc.Approve(ctx, "p2")
		require.NoError(t, err)
		assert.Equal(t, StatusPaid, got.Status)
		assert.Equal(t, 1, api.Count(http.MethodPut, "/payments/p2/approve"))
		assert.Equal(t, 2, api.Count(http.MethodGet, basePath))
	})

	t.Run("not pending", func(t *testing.T) {
		svc, api := setup(t)
		_, err := svc.Approve(ctx, "p1")
		assert.Equal(t, ErrNotPending, err)
		assert.Equal(t, 0, api.Count(http.MethodPut, "/payments/p1/approve"))
	})

	t.Run("backend decides on unknown payments", func(t *testing.T) {
		svc, api := setup(t)
		api.Fail(http.MethodPut, "/payments/p9/approve", http.StatusNotFound, "Payment not found")

		_, err := svc.Approve(ctx, "p9")
		assert.EqualError(t, err, "Payment not found")
		assert.Equal(t, 1, api.Count(http.MethodGet, basePath))
		assert.Equal(t, all, svc.State().Data, "failed mutations leave the list alone")
	})
}

func TestService_List(t *testing.T) {
	api := testutil.NewFakeAPI()
	svc := NewService(api)

	var loading []bool
	svc.Slice().Subscribe(func(st store.State[[]Payment]) { loading = append(loading, st.Loading) })

	api.Fail(http.MethodGet, basePath, http.StatusInternalServerError, "")
	_, err := svc.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, []bool{true, false}, loading)
	assert.Equal(t, core.DefaultFallbackErrorMessage, svc.State().Error)
	assert.Equal(t, store.StatusRejected, svc.State().Status())

	api.Reply(http.MethodGet, basePath, nil)
	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, svc.State().Error)
	assert.Equal(t, store.StatusFulfilled, svc.State().Status())
}
