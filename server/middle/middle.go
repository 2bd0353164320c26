// Package middle contains middleware for use with the gudgeon server.
package middle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dekarrin/gudgeon/server/result"
)

type mwFunc http.HandlerFunc

func (sf mwFunc) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	sf(w, req)
}

// Middleware is a function that takes a handler and returns a new handler
// which wraps the given one and provides some additional functionality.
type Middleware func(next http.Handler) http.Handler

// authCtxKey is a key in the context of a request populated by an
// AuthHandler.
type authCtxKey int

// AuthSubject holds the validated bearer token's subject claim, once an
// AuthHandler has run.
const AuthSubject authCtxKey = iota

// AuthHandler is middleware that extracts a bearer-token JWT from a
// request and validates it against a single shared secret. Unlike the
// donor server's AuthHandler, there is no user database to look up:
// gudgeon-server authenticates a single operator via a static API key
// exchanged for a JWT at /login, so validation only ever needs the
// signing secret.
type AuthHandler struct {
	secret        []byte
	required      bool
	unauthedDelay time.Duration
	next          http.Handler
}

func (ah AuthHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	tokStr, err := getBearerToken(req)
	if err == nil {
		var subject string
		subject, err = validateToken(tokStr, ah.secret)
		if err == nil {
			ctx := context.WithValue(req.Context(), AuthSubject, subject)
			ah.next.ServeHTTP(w, req.WithContext(ctx))
			return
		}
	}

	// err may have come from either getBearerToken or validateToken
	// above.
	if ah.required {
		r := result.Unauthorized("", err.Error())
		time.Sleep(ah.unauthedDelay)
		r.WriteResponse(w)
		return
	}

	ah.next.ServeHTTP(w, req)
}

// RequireAuth returns middleware that rejects any request lacking a valid
// bearer token with an HTTP-401, after waiting unauthedDelay.
func RequireAuth(secret []byte, unauthedDelay time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return AuthHandler{secret: secret, unauthedDelay: unauthedDelay, required: true, next: next}
	}
}

// OptionalAuth returns middleware that validates a bearer token if one is
// present but passes the request through either way.
func OptionalAuth(secret []byte, unauthedDelay time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return AuthHandler{secret: secret, unauthedDelay: unauthedDelay, required: false, next: next}
	}
}

func getBearerToken(req *http.Request) (string, error) {
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))
	if authHeader == "" {
		return "", errors.New("no authorization header present")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(strings.TrimSpace(parts[0])) != "bearer" {
		return "", errors.New("authorization header not in Bearer format")
	}

	return strings.TrimSpace(parts[1]), nil
}

func validateToken(tokStr string, secret []byte) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokStr, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer("gudgeon"), jwt.WithLeeway(time.Minute))
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// DontPanic returns a Middleware that performs a panic check as it exits.
// If the wrapped handler is panicking, it writes out an HTTP-500 with a
// generic message instead of letting the panic escape.
func DontPanic() Middleware {
	return func(next http.Handler) http.Handler {
		return mwFunc(func(w http.ResponseWriter, r *http.Request) {
			defer panicTo500(w)
			next.ServeHTTP(w, r)
		})
	}
}

func panicTo500(w http.ResponseWriter) {
	if panicErr := recover(); panicErr != nil {
		r := result.TextErr(
			http.StatusInternalServerError,
			"An internal server error occurred",
			fmt.Sprintf("panic: %v\nSTACK TRACE: %s", panicErr, string(debug.Stack())),
		)
		r.WriteResponse(w)
	}
}
