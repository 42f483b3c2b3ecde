package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-doc-library/internal/model"
	"go-doc-library/pkg/apierror"
)

type tokenValidator interface {
	ValidateToken(tokenString string, expectedType string) (*model.Identity, error)
}

type contextKey string

const identityContextKey contextKey = "identity"

const accessTokenType = "access"

type AuthMiddleware struct {
	validator tokenValidator
}

func NewAuthMiddleware(validator tokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
			writeJSONError(w, http.StatusUnauthorized, apierror.CodeUnauthorized, "missing or invalid authorization header")
			return
		}

		identity, err := m.validator.ValidateToken(strings.TrimSpace(header[7:]), accessTokenType)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, apierror.CodeUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	roleSet := map[string]struct{}{}
	for _, role := range allowedRoles {
		roleSet[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, apierror.CodeUnauthorized, "authentication required")
				return
			}

			if _, exists := roleSet[strings.ToLower(identity.Role)]; !exists {
				writeJSONError(w, http.StatusForbidden, apierror.CodeForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func IdentityFromContext(ctx context.Context) (*model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*model.Identity)
	return identity, ok
}

// WithIdentity stores identity in ctx the way RequireAuth does.
func WithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}
