// Package middle contains middleware for use with the hana compile service,
// adapted from the teacher's server/middle package: a panic-to-500 wrapper
// and a token-checking handler, simplified from user/session JWT lookup
// down to a single shared-secret bearer token (SPEC_FULL.md §3.3).
package middle

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/maxvdec/hana/server/result"
	"github.com/maxvdec/hana/server/serr"
	"github.com/maxvdec/hana/server/token"
)

type mwFunc http.HandlerFunc

func (sf mwFunc) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	sf(w, req)
}

// Middleware wraps a handler with additional behavior.
type Middleware func(next http.Handler) http.Handler

// DontPanic returns a Middleware that converts a panicking handler into an
// HTTP-500 response instead of crashing the server.
func DontPanic() Middleware {
	return func(next http.Handler) http.Handler {
		return mwFunc(func(w http.ResponseWriter, r *http.Request) {
			defer panicTo500(w, r)
			next.ServeHTTP(w, r)
		})
	}
}

func panicTo500(w http.ResponseWriter, req *http.Request) {
	if panicErr := recover(); panicErr != nil {
		res := result.InternalServerError("panic: %v\nSTACK TRACE: %s", panicErr, string(debug.Stack()))
		res.WriteResponse(w)
		res.Log(req, 0)
	}
}

// RequireBearerToken returns a Middleware that rejects any request whose
// Authorization header does not carry a valid service token signed with
// secret.
func RequireBearerToken(secret string) Middleware {
	return func(next http.Handler) http.Handler {
		return mwFunc(func(w http.ResponseWriter, req *http.Request) {
			tok, err := token.Get(req)
			if err != nil {
				authErr := serr.New(err.Error(), serr.ErrUnauthorized)
				res := result.Unauthorized("", authErr.Error())
				res.WriteResponse(w)
				res.Log(req, 0)
				return
			}

			if err := token.Validate(tok, secret); err != nil {
				authErr := serr.New(fmt.Sprintf("invalid token: %s", err.Error()), serr.ErrUnauthorized)
				res := result.Unauthorized("", authErr.Error())
				res.WriteResponse(w)
				res.Log(req, 0)
				return
			}

			next.ServeHTTP(w, req)
		})
	}
}
