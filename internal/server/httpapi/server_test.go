package httpapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServer serves srv on a loopback port until the test ends.
func startServer(t *testing.T, srv *HTTPServer) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return "http://" + ln.Addr().String()
}

func TestServe_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.srv.Serve(ctx, ln) }()

	client := &http.Client{Timeout: 2 * time.Second}
	defer client.CloseIdleConnections()

	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_BadAddress(t *testing.T) {
	srv := NewHTTPServer(Options{Address: "256.0.0.1:-1"}, logging.NopLogger{}, &fakeUsers{}, nil, metrics.New())
	require.Error(t, srv.Run(context.Background()))
}

func TestEndToEnd_SQLite(t *testing.T) {
	ctx := context.Background()
	db, dialect, err := repomanager.Open(ctx, "file:"+filepath.Join(t.TempDir(), "api.db"), logging.NopLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := repomanager.NewRepositoryManager(dialect)
	require.NoError(t, rm.RunMigrations(ctx, db))

	hasher, err := cryptox.NewHasher(cryptox.HasherConfig{MemoryKB: 8 * 1024, Iterations: 1, Parallelism: 1})
	require.NoError(t, err)
	iss, err := auth.NewIssuer([]byte(testSecret))
	require.NoError(t, err)
	ver, err := auth.NewVerifier([]byte(testSecret))
	require.NoError(t, err)

	svc := services.NewUserService(db, rm, hasher, iss, time.Hour, logging.NopLogger{})
	srv := NewHTTPServer(Options{}, logging.NopLogger{}, svc, ver, metrics.New())
	base := startServer(t, srv)

	client := &http.Client{Timeout: 5 * time.Second}
	t.Cleanup(client.CloseIdleConnections)

	call := func(method, path, body, token string, out any) int {
		t.Helper()
		req, err := http.NewRequest(method, base+path, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		if out != nil {
			require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
		}
		return resp.StatusCode
	}

	var reg registerResponse
	require.Equal(t, http.StatusCreated, call(http.MethodPost, "/api/register",
		`{"username":"alice","email":"alice@example.com","password":"s3cret"}`, "", &reg))
	assert.Positive(t, reg.UserID)

	assert.Equal(t, http.StatusConflict, call(http.MethodPost, "/register",
		`{"username":"alice2","email":"alice@example.com","password":"x"}`, "", nil))

	assert.Equal(t, http.StatusUnauthorized, call(http.MethodPost, "/login",
		`{"email":"alice@example.com","password":"wrong"}`, "", nil))
	assert.Equal(t, http.StatusUnauthorized, call(http.MethodPost, "/login",
		`{"email":"nobody@example.com","password":"s3cret"}`, "", nil))

	var login loginResponse
	require.Equal(t, http.StatusOK, call(http.MethodPost, "/login",
		`{"email":"alice@example.com","password":"s3cret"}`, "", &login))
	require.NotEmpty(t, login.Token)
	assert.Equal(t, reg.UserID, login.User.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), login.ExpiresAt, time.Minute)

	assert.Equal(t, http.StatusUnauthorized, call(http.MethodGet, "/users", "", "", nil))

	var list []map[string]any
	require.Equal(t, http.StatusOK, call(http.MethodGet, "/users", "", login.Token, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "alice", list[0]["username"])
	assert.NotContains(t, list[0], "passwordDigest")
	assert.NotContains(t, list[0], "PasswordDigest")

	assert.Equal(t, http.StatusOK, call(http.MethodPut, "/users/"+strconv.FormatInt(reg.UserID, 10),
		`{"username":"alicia","email":"alicia@example.com"}`, login.Token, nil))

	var me userSummary
	require.Equal(t, http.StatusOK, call(http.MethodGet, "/me", "", login.Token, &me))
	assert.Equal(t, "alice", me.Username, "claims are not refreshed by an update")

	assert.Equal(t, http.StatusOK, call(http.MethodDelete, "/users/"+strconv.FormatInt(reg.UserID, 10), "", login.Token, nil))
	assert.Equal(t, http.StatusNotFound, call(http.MethodGet, "/users/"+strconv.FormatInt(reg.UserID, 10), "", login.Token, nil))
}
