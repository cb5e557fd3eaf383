package apisvc

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-portal/core"
	logsvc "github.com/trezcool/masomo-portal/services/logger"
	inmemdb "github.com/trezcool/masomo-portal/storage/inmem"
	testutil "github.com/trezcool/masomo-portal/tests"
)

type classRow struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Section string `json:"section"`
}

func newClient(backend *testutil.Backend, tokens core.TokenStore) *Client {
	return NewClient(Options{BaseURL: backend.URL + "/", Timeout: 5 * time.Second}, tokens, logsvc.NewDiscardLogger())
}

func TestClient_Do(t *testing.T) {
	ctx := context.Background()
	backend := testutil.NewBackend(t)
	adminToken := testutil.Token(t, "admin", "Grace Admin", testutil.AdminEmail)

	t.Run("no token: nothing is sent", func(t *testing.T) {
		c := newClient(backend, inmemdb.NewTokenStore())
		err := c.Do(ctx, core.Get("/classes"), nil)
		assert.Equal(t, core.ErrNoToken, err)
		assert.Equal(t, 0, backend.Hits(http.MethodGet, "/classes"))
	})

	t.Run("token is read at call time", func(t *testing.T) {
		tokens := inmemdb.NewTokenStore()
		c := newClient(backend, tokens)
		require.NoError(t, tokens.SetToken(adminToken))

		var classes []classRow
		require.NoError(t, c.Do(ctx, core.Get("/classes"), &classes))
		assert.Len(t, classes, 2)
		assert.Equal(t, classRow{ID: "c1", Name: "Grade 5", Section: "A"}, classes[0])
	})

	t.Run("public request", func(t *testing.T) {
		c := newClient(backend, inmemdb.NewTokenStore())
		req := core.Post("/auth/login", map[string]string{"email": testutil.ParentEmail, "password": testutil.ParentPassword})
		req.Public = true

		var resp struct {
			Token string `json:"token"`
			Role  string `json:"role"`
		}
		require.NoError(t, c.Do(ctx, req, &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "parent", resp.Role)
	})

	tests := []struct {
		name     string
		token    string
		req      core.Request
		failNext string
		code     int
		msg      string
	}{
		{
			name: "backend message",
			req:  core.Put("/payments/p1/approve", nil), token: adminToken,
			code: http.StatusBadRequest, msg: "Only pending payments can be approved",
		},
		{
			name: "invalid token",
			req:  core.Get("/classes"), token: "not-a-jwt",
			code: http.StatusUnauthorized, msg: "Not authorized, token failed",
		},
		{
			name: "wrong role",
			req:  core.Get("/teachers"), token: testutil.Token(t, "parent", "Paul Parent", testutil.ParentEmail),
			code: http.StatusForbidden, msg: "Access denied",
		},
		{
			name: "no message: fallback",
			req:  core.Get("/school"), token: adminToken, failNext: "GET /school",
			code: http.StatusInternalServerError, msg: core.DefaultFallbackErrorMessage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.failNext != "" {
				backend.FailNext[tt.failNext] = tt.code
			}
			c := newClient(backend, inmemdb.NewTokenStore(tt.token))
			err := c.Do(ctx, tt.req, nil)

			var reqErr *core.RequestError
			require.True(t, errors.As(err, &reqErr), "got %v", err)
			assert.Equal(t, tt.code, reqErr.StatusCode)
			assert.Equal(t, tt.msg, reqErr.Message)
			assert.Equal(t, tt.msg, core.ErrorMessage(err, core.DefaultFallbackErrorMessage))
			assert.Equal(t, tt.code == http.StatusUnauthorized, core.IsUnauthorized(err))
		})
	}

	t.Run("configured fallback", func(t *testing.T) {
		backend.FailNext["GET /school"] = http.StatusBadGateway
		c := NewClient(Options{BaseURL: backend.URL, FallbackMessage: "Try later"}, inmemdb.NewTokenStore(adminToken), logsvc.NewDiscardLogger())
		err := c.Do(ctx, core.Get("/school"), nil)
		assert.EqualError(t, err, "Try later")
	})

	t.Run("network error", func(t *testing.T) {
		c := NewClient(Options{BaseURL: "http://127.0.0.1:1"}, inmemdb.NewTokenStore(adminToken), logsvc.NewDiscardLogger())
		err := c.Do(ctx, core.Get("/school"), nil)
		require.Error(t, err)
		assert.Equal(t, core.DefaultFallbackErrorMessage, core.ErrorMessage(err, core.DefaultFallbackErrorMessage))
	})
}

func TestClient_RequestHeaders(t *testing.T) {
	var got http.Header
	srv := testutil.NewRecorder(t, func(h http.Header) { got = h })
	c := NewClient(Options{BaseURL: srv.URL}, inmemdb.NewTokenStore("tok"), logsvc.NewDiscardLogger())

	require.NoError(t, c.Do(context.Background(), core.Post("/classes", map[string]string{"name": "Grade 1"}), nil))
	assert.Equal(t, "Bearer tok", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Len(t, got.Get("X-Request-ID"), 36)
}
