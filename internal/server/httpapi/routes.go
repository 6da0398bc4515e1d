package httpapi

import "net/http"

// prefixes under which every route is mounted; "/api" is the path used by
// the browser client.
var prefixes = []string{"", "/api"}

// Handler returns the full HTTP handler: routes plus the middleware stack.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	for _, p := range prefixes {
		mux.HandleFunc("POST "+p+"/register", s.handleRegister)
		mux.HandleFunc("POST "+p+"/login", s.handleLogin)

		mux.HandleFunc("GET "+p+"/users", ChainMiddleware(s.handleListUsers, s.RequireAuth))
		mux.HandleFunc("GET "+p+"/users/{id}", ChainMiddleware(s.handleGetUser, s.RequireAuth))
		mux.HandleFunc("PUT "+p+"/users/{id}", ChainMiddleware(s.handleUpdateUser, s.RequireAuth))
		mux.HandleFunc("DELETE "+p+"/users/{id}", ChainMiddleware(s.handleDeleteUser, s.RequireAuth))
		mux.HandleFunc("GET "+p+"/me", ChainMiddleware(s.handleMe, s.RequireAuth))
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	return ChainMiddleware(mux.ServeHTTP,
		s.RecoverMiddleware,
		s.RequestIDMiddleware,
		s.LoggingMiddleware,
		s.CorsMiddleware,
	)
}
