// Package token issues and validates the compile service's bearer tokens,
// adapted from the teacher's server/token.go. The teacher signs a JWT whose
// claims are verified against a looked-up dao.User's password hash and
// logout time; there is no user domain here, so this package signs and
// checks a single shared-secret service token instead (SPEC_FULL.md §3.3).
package token

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "hana"

// Issue signs a new service token with secret. The token has no subject and
// does not expire; it identifies "a holder of the shared secret", not an
// individual user.
func Issue(secret string) (string, error) {
	claims := jwt.MapClaims{
		"iss": issuer,
		"iat": time.Now().Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(secret))
}

// Validate checks that tok is a well-formed, unexpired service token signed
// with secret and carrying the expected issuer.
func Validate(tok string, secret string) error {
	_, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer), jwt.WithLeeway(time.Minute))
	return err
}

// Get extracts the bearer token from req's Authorization header.
func Get(req *http.Request) (string, error) {
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))
	if authHeader == "" {
		return "", fmt.Errorf("no authorization header present")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	scheme := strings.TrimSpace(strings.ToLower(parts[0]))
	tok := strings.TrimSpace(parts[1])
	if scheme != "bearer" {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}
	return tok, nil
}
