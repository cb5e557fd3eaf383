package school

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-portal/core"
	testutil "github.com/trezcool/masomo-portal/tests"
)

var green = Info{
	Name:    "Green Hills Academy",
	Logo:    "https://cdn.school.test/logo.png",
	Gallery: []string{"https://cdn.school.test/1.jpg"},
	Email:   "office@school.test",
}

func setup() (*Service, *testutil.FakeAPI) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	api := testutil.NewFakeAPI()
	return NewService(api, validate, translator), api
}

func TestService_Get(t *testing.T) {
	svc, api := setup()

	api.Fail(http.MethodGet, basePath, http.StatusUnauthorized, "")
	_, err := svc.Get(context.Background())
	require.Error(t, err)
	assert.True(t, core.IsUnauthorized(err))
	assert.Equal(t, core.DefaultFallbackErrorMessage, svc.State().Error)

	api.Reply(http.MethodGet, basePath, green)
	info, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, green, info)

	st := svc.State()
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)

	api.Fail(http.MethodGet, basePath, http.StatusInternalServerError, "")
	_, err = svc.Get(context.Background())
	require.Error(t, err)
	st = svc.State()
	assert.Equal(t, green, st.Data, "a failed re-fetch keeps the profile")
	assert.Equal(t, core.DefaultFallbackErrorMessage, st.Error)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		data    UpdateInfo
		wantErr map[string]string
		want    map[string]interface{}
	}{
		{
			name: "blank fields keep their value",
			data: UpdateInfo{Address: " 1 Valley Road "},
			want: map[string]interface{}{
				"name":    green.Name,
				"logo":    green.Logo,
				"gallery": []interface{}{green.Gallery[0]},
				"address": "1 Valley Road",
				"email":   green.Email,
			},
		},
		{
			name: "gallery is replaced",
			data: UpdateInfo{Gallery: []string{"https://cdn.school.test/2.jpg", " "}},
			want: map[string]interface{}{
				"name":    green.Name,
				"logo":    green.Logo,
				"gallery": []interface{}{"https://cdn.school.test/2.jpg"},
				"email":   green.Email,
			},
		},
		{
			name:    "invalid urls and email",
			data:    UpdateInfo{Logo: "logo.png", Gallery: []string{"nope"}, Email: "office"},
			wantErr: map[string]string{"logo": "", "gallery[0]": "", "email": ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, api := setup()
			api.Reply(http.MethodGet, basePath, green)
			api.Reply(http.MethodPut, basePath, green)

			_, err := svc.Update(ctx, tt.data)
			if tt.wantErr != nil {
				vErr, ok := err.(*core.ValidationError)
				require.True(t, ok, "got %v", err)
				for _, f := range vErr.Fields {
					assert.Contains(t, tt.wantErr, f.Field)
				}
				assert.Len(t, vErr.Fields, len(tt.wantErr))
				assert.Equal(t, 0, api.Count(http.MethodPut, basePath))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, api.LastBody(t, http.MethodPut, basePath))
			assert.Equal(t, 1, api.Count(http.MethodPut, basePath))
			assert.Equal(t, 2, api.Count(http.MethodGet, basePath), "initial fetch + re-fetch")
		})
	}
}
