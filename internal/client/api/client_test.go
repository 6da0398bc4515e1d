package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/api/", time.Second, logging.NopLogger{})
	require.NoError(t, err)
	t.Cleanup(c.CloseIdleConnections)
	return c
}

func TestNew_RejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "localhost:3001", "/api", "http://"} {
		_, err := New(u, time.Second, logging.NopLogger{})
		assert.Error(t, err, u)
	}
}

func TestLogin(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"email": "a@example.com", "password": "pw"}, body)

		_, _ = w.Write([]byte(`{"message":"Login successful","token":"tok","expiresAt":"2030-01-01T00:00:00Z","user":{"id":7,"username":"alice","email":"a@example.com"}}`))
	})

	res, err := c.Login(context.Background(), "a@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	require.NotNil(t, res.ExpiresAt)
	assert.True(t, res.ExpiresAt.Equal(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, int64(7), res.User.ID)
	assert.Equal(t, "alice", res.User.Username)
}

func TestLogin_WithoutExpiry(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"Login successful","token":"tok","user":{"id":1,"username":"u","email":"e"}}`))
	})

	res, err := c.Login(context.Background(), "e", "pw")
	require.NoError(t, err)
	assert.Nil(t, res.ExpiresAt)
}

func TestLogin_EmptyTokenIsAnError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"Login successful","token":" "}`))
	})

	_, err := c.Login(context.Background(), "e", "pw")
	require.Error(t, err)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		match  []error
		not    []error
	}{
		{http.StatusBadRequest, []error{common.ErrValidation}, []error{ErrUnauthorized}},
		{http.StatusUnauthorized, []error{ErrUnauthorized, common.ErrInvalidCredentials, common.ErrMissingToken}, []error{common.ErrInvalidToken}},
		{http.StatusForbidden, []error{ErrUnauthorized, common.ErrInvalidToken}, []error{common.ErrInvalidCredentials}},
		{http.StatusNotFound, []error{common.ErrNotFound}, []error{ErrUnauthorized}},
		{http.StatusConflict, []error{common.ErrDuplicateIdentity}, []error{common.ErrValidation}},
		{http.StatusInternalServerError, []error{common.ErrInternal}, []error{ErrUnavailable}},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"message":"nope"}`))
			})

			err := c.DeleteUser(context.Background(), "tok", 3)
			require.Error(t, err)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, "nope", apiErr.Message)
			for _, m := range tt.match {
				assert.ErrorIs(t, err, m)
			}
			for _, m := range tt.not {
				assert.NotErrorIs(t, err, m)
			}
		})
	}
}

func TestError_NonJSONBody(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	err := c.Ping(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Empty(t, apiErr.Message)
	assert.Contains(t, err.Error(), "502")
}

func TestProtectedCallsSendBearer(t *testing.T) {
	var seen []string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path+" "+r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/users":
			_, _ = w.Write([]byte(`[{"id":1,"username":"a","email":"a@x","createdAt":"2024-01-01T00:00:00Z"}]`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/users/1":
			_, _ = w.Write([]byte(`{"id":1,"username":"a","email":"a@x","createdAt":"2024-01-01T00:00:00Z"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/me":
			_, _ = w.Write([]byte(`{"id":1,"username":"a","email":"a@x"}`))
		default:
			_, _ = w.Write([]byte(`{"message":"ok"}`))
		}
	})
	ctx := context.Background()

	list, err := c.ListUsers(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, list, 1)

	p, err := c.GetUser(ctx, "tok", 1)
	require.NoError(t, err)
	assert.Equal(t, "a", p.Username)

	require.NoError(t, c.UpdateUser(ctx, "tok", 1, "b", "b@x"))
	require.NoError(t, c.DeleteUser(ctx, "tok", 1))

	me, err := c.Me(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(1), me.ID)

	assert.Equal(t, []string{
		"GET /api/users Bearer tok",
		"GET /api/users/1 Bearer tok",
		"PUT /api/users/1 Bearer tok",
		"DELETE /api/users/1 Bearer tok",
		"GET /api/me Bearer tok",
	}, seen)
}

func TestRegister(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/register", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"User registered successfully","userId":42}`))
	})

	id, err := c.Register(context.Background(), "u", "e@x", "pw")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, time.Second, logging.NopLogger{})
	require.NoError(t, err)

	err = c.Ping(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestTimeoutAndCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := New(srv.URL, 50*time.Millisecond, logging.NopLogger{})
	require.NoError(t, err)
	defer c.CloseIdleConnections()

	err = c.Ping(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)

	c.timeout = time.Minute
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err = c.Ping(ctx)
	require.True(t, errors.Is(err, context.Canceled), "got %v", err)
}
