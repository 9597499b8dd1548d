package middleware

import (
	"context"
	"net/http"

	"medibook/pkg/model"
)

// Headers populated by the identity gateway in front of this core.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

const RequesterKey contextKey = "requester"

// RequesterContext lifts the identity collaborator's headers into a
// model.Requester on the request context. Routes that need an authenticated
// caller fetch it with RequesterFrom and reject when absent.
func RequesterContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderUserID)
			role := r.Header.Get(HeaderUserRole)

			if id != "" && role != "" {
				ctx := context.WithValue(r.Context(), RequesterKey, model.Requester{
					ID:   id,
					Role: role,
				})
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequesterFrom returns the authenticated caller, if any.
func RequesterFrom(ctx context.Context) (model.Requester, bool) {
	requester, ok := ctx.Value(RequesterKey).(model.Requester)
	return requester, ok
}
