// Package server implements hana's compile-as-a-service HTTP API
// (SPEC_FULL.md §3.3), grounded on the teacher's server/endpoints.go,
// server/token.go, and server/server.go: a chi router, a single
// logging+recovery middleware chain, and EndpointResult-shaped handlers —
// simplified from the teacher's full user/session/JWT system to a single
// shared-secret bearer token, since there are no user accounts here.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/maxvdec/hana/internal/cache"
	"github.com/maxvdec/hana/server/middle"
)

// API holds the dependencies every compile-service route needs.
type API struct {
	cache  *cache.Store
	secret string
}

// Server is a running hana compile service.
type Server struct {
	api    API
	router chi.Router
}

// New builds a Server backed by store and authenticated with tokenSecret.
func New(store *cache.Store, tokenSecret string) *Server {
	s := &Server{api: API{cache: store, secret: tokenSecret}}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler { return middle.DontPanic()(next) })

	r.Get("/v1/health", Endpoint(s.api.epHealth))

	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler { return middle.RequireBearerToken(s.api.secret)(next) })
		r.Post("/v1/compile", Endpoint(s.api.epCompile))
		r.Get("/v1/history", Endpoint(s.api.epHistory))
	})

	return r
}

// Router returns the service's http.Handler, for use with http.Server or in
// tests with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe blocks serving the compile service on addr until ctx is
// canceled or an unrecoverable error occurs.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return httpSrv.Shutdown(context.Background())
	}
}
