package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/netx"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/metrics"
	"github.com/google/uuid"
)

type middleware = func(http.HandlerFunc) http.HandlerFunc

// ChainMiddleware wraps h so that mw[0] runs first.
func ChainMiddleware(h http.HandlerFunc, mw ...middleware) http.HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// RequestIDMiddleware propagates X-Request-ID, generating one when absent,
// and scopes the request logger with it.
func (s *HTTPServer) RequestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(common.RequestIDHeaderName))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(common.RequestIDHeaderName, id)

		ctx := logging.IntoContext(r.Context(), s.logger.With("request_id", id))
		next(w, r.WithContext(ctx))
	}
}

func (s *HTTPServer) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		elapsed := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveRequest(r.Method, route, rec.status, elapsed)

		logging.FromContext(r.Context(), s.logger).Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	}
}

func (s *HTTPServer) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				logging.FromContext(r.Context(), s.logger).Error(r.Context(), "panic in handler",
					"panic", fmt.Sprint(p), "stack", string(debug.Stack()))
				writeMessage(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next(w, r)
	}
}

const (
	corsMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsHeaders = "Authorization, Content-Type, X-Request-ID"
)

// CorsMiddleware answers preflight requests and marks allowed origins. An
// origin list containing "*" allows every origin without credentials.
func (s *HTTPServer) CorsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next(w, r)
			return
		}

		allowed := slices.Contains(s.opts.AllowedOrigins, origin)
		wildcard := slices.Contains(s.opts.AllowedOrigins, "*")

		h := w.Header()
		h.Add("Vary", "Origin")
		switch {
		case allowed:
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
		case wildcard:
			h.Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if allowed || wildcard {
				h.Set("Access-Control-Allow-Methods", corsMethods)
				h.Set("Access-Control-Allow-Headers", corsHeaders)
				h.Set("Access-Control-Max-Age", "86400")
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

// RequireAuth admits requests carrying a valid bearer token and stores the
// verified claims in the request context. A missing or blank credential is
// answered with 401, a rejected one with 403.
func (s *HTTPServer) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := netx.BearerToken(r.Header.Get(common.AuthorizationHeaderName))
		if !ok {
			s.metrics.ObserveGate(metrics.GateMissing)
			s.writeError(w, r, common.ErrMissingToken)
			return
		}

		claims, err := s.verifier.Verify(token)
		if err != nil {
			decision := metrics.GateRejected
			if errors.Is(err, common.ErrTokenExpired) {
				decision = metrics.GateExpired
			}
			s.metrics.ObserveGate(decision)
			logging.FromContext(r.Context(), s.logger).Warn(r.Context(), "token rejected", "reason", err.Error())
			s.writeError(w, r, common.ErrInvalidToken)
			return
		}

		s.metrics.ObserveGate(metrics.GateAdmitted)
		ctx := auth.WithClaims(r.Context(), claims)
		ctx = logging.IntoContext(ctx, logging.FromContext(ctx, s.logger).With("user_id", claims.UserID))
		next(w, r.WithContext(ctx))
	}
}
