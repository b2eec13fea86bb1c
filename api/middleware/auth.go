package middleware

import (
	"net/http"
	"strings"

	"github.com/luisocampo/nichesmith-backend/api/responses"
	pkgerrors "github.com/luisocampo/nichesmith-backend/pkg/errors"
	"github.com/luisocampo/nichesmith-backend/pkg/identity"
	"github.com/luisocampo/nichesmith-backend/pkg/logger"
)

// Auth resolves the bearer token against the identity provider and seeds the
// request context with the resolved user. The verifier distinguishes bad
// credentials (401) from provider outages (503); both pass through untouched.
func Auth(verifier identity.Verifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth verifier unavailable"))
				return
			}

			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			ident, err := verifier.Verify(r.Context(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithUser(r.Context(), ident.UserID.String(), ident.Email)
			if logg != nil {
				ctx = logg.WithUserID(ctx, ident.UserID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
