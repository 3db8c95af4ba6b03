package middleware

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/gradabroad/internal/auth"
	"github.com/JonMunkholm/gradabroad/internal/logging"
)

// Authenticate resolves the request's access token and stores the caller in
// the request context for handlers to read with auth.CallerFromContext.
//
// Requests are never rejected here: a missing or invalid token leaves the
// zero Caller, and the operation decides whether it needs one.
func Authenticate(v *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := v.CallerFromRequest(r)
			if err != nil && !errors.Is(err, auth.ErrNoToken) {
				logging.FromContext(r.Context()).Warn("auth: rejected access token",
					"path", r.URL.Path,
					"ip", ClientIP(r),
					"error", err,
				)
			}

			if caller.Authenticated() {
				recordCaller(r.Context(), caller.OwnerID)
			}
			next.ServeHTTP(w, r.WithContext(auth.WithCaller(r.Context(), caller)))
		})
	}
}
