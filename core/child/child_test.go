package child

import (
	"context"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/store"
	testutil "github.com/trezcool/masomo-portal/tests"
)

var (
	amani  = Child{ID: "s1", FirstName: "Amani", LastName: "Otieno", Class: "Grade 5", Section: "A", RollNumber: "12"}
	baraka = Child{ID: "s2", FirstName: "Baraka", LastName: "Otieno", Class: "Grade 6", Section: "B", RollNumber: "7"}
	kids   = []Child{amani, baraka}
)

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []Child
	}{
		{name: "empty", want: kids},
		{name: "last name", filter: Filter{Search: "OTIENO"}, want: kids},
		{name: "first name", filter: Filter{Search: "bar"}, want: []Child{baraka}},
		{name: "roll number", filter: Filter{Search: "12"}, want: []Child{amani}},
		{name: "class", filter: Filter{Class: "grade 6"}, want: []Child{baraka}},
		{name: "none", filter: Filter{Search: "amani", Class: "Grade 6"}, want: []Child{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(kids)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, tt.filter.Apply(got))
		})
	}
}

func TestService(t *testing.T) {
	ctx := context.Background()
	api := testutil.NewFakeAPI()
	svc := NewService(api)

	api.Reply(http.MethodGet, basePath, kids)
	got, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, kids, got)

	c, err := svc.Find("s2")
	require.NoError(t, err)
	assert.Equal(t, "Baraka Otieno", c.Name())
	assert.Equal(t, "Grade 6 B", c.ClassLabel())
	_, err = svc.Find("s9")
	assert.Equal(t, ErrNotFound, err)

	results := []Result{
		{Subject: "Mathematics", Marks: 78, MaxMarks: 100, Grade: "B+"},
		{Subject: "English", Marks: 44, MaxMarks: 50, Grade: "A"},
	}
	api.Reply(http.MethodGet, basePath+"/s1/results", results)
	res, err := svc.Results(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, results, res)
	avg, ok := Average(res)
	assert.True(t, ok)
	assert.InDelta(t, 83, avg, 1e-9)
	assert.Equal(t, results, svc.ResultsState().Data)

	api.Fail(http.MethodGet, basePath+"/s2/results", http.StatusNotFound, "Student not found")
	_, err = svc.Results(ctx, "s2")
	assert.EqualError(t, err, "Student not found")
	assert.Equal(t, "Student not found", svc.ResultsState().Error)
	assert.Equal(t, kids, svc.State().Data, "the children slice is independent")

	_, ok = Average(nil)
	assert.False(t, ok)
	_, ok = Average([]Result{{Subject: "Art", Marks: 7}})
	assert.False(t, ok, "no MaxMarks, no average")
}

func TestService_ResetAndFallback(t *testing.T) {
	ctx := context.Background()
	api := testutil.NewFakeAPI()
	svc := NewService(api, store.WithFallbackMessage("The school server is unreachable."))

	api.Reply(http.MethodGet, basePath, kids)
	api.Reply(http.MethodGet, basePath+"/s1/results", []Result{{Subject: "Art", Marks: 7, MaxMarks: 10}})
	_, err := svc.List(ctx)
	require.NoError(t, err)
	_, err = svc.Results(ctx, "s1")
	require.NoError(t, err)

	svc.Reset()
	assert.Equal(t, store.StatusIdle, svc.State().Status())
	assert.Empty(t, svc.State().Data)
	assert.Equal(t, store.StatusIdle, svc.ResultsState().Status())

	api.On(http.MethodGet, basePath, func(core.Request) (interface{}, error) {
		return nil, errors.New("dial tcp 127.0.0.1:8000: connection refused")
	})
	_, err = svc.List(ctx)
	require.Error(t, err)
	assert.Equal(t, "The school server is unreachable.", svc.State().Error)
}
