package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/xavierca1/contractorconnect/internal/entity"
)

type identityKey struct{}

// Authenticator resolves a raw bearer token.
type Authenticator interface {
	Authenticate(token string) (entity.Identity, error)
}

func WithIdentity(ctx context.Context, id entity.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller set by Auth, or the zero Identity.
func IdentityFrom(ctx context.Context) entity.Identity {
	id, _ := ctx.Value(identityKey{}).(entity.Identity)
	return id
}

// Auth requires "Authorization: Bearer <token>" on every request.
func Auth(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
				return
			}

			id, err := a.Authenticate(strings.TrimSpace(token))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
