// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielhkuo/shadow-board/apperr"
	"github.com/danielhkuo/shadow-board/auth"
)

type identityKey struct{}

// WithIdentity returns a context carrying id
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller attached by Authenticate
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(auth.Identity)
	return id, ok
}

// Authenticate rejects requests without a valid bearer token and attaches the
// caller's identity to the request context.
func Authenticate(v *auth.Verifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			id, err := v.Verify(auth.BearerToken(r.Header.Get("Authorization")))
			if errors.Is(err, auth.ErrTokenExpired) {
				WriteError(w, r, apperr.ErrTokenExpired)
				return
			}
			if err != nil {
				WriteError(w, r, apperr.ErrUnauthorized)
				return
			}

			next(w, r.WithContext(WithIdentity(r.Context(), id)))
		}
	}
}
