package service

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"go-doc-library/internal/model"
	"go-doc-library/pkg/apierror"
)

// TokenValidator verifies HS256 access tokens issued elsewhere and turns
// their claims into an Identity.
type TokenValidator struct {
	secret []byte
}

func NewTokenValidator(secret string) (*TokenValidator, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret cannot be empty")
	}
	return &TokenValidator{secret: []byte(secret)}, nil
}

// ValidateToken checks signature and expiry. When expectedType is set the
// "typ" claim must match it; tokens without a "typ" claim are accepted.
func (v *TokenValidator) ValidateToken(tokenString string, expectedType string) (*model.Identity, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apierror.New(apierror.CodeUnauthorized, "invalid token signing method", "", http.StatusUnauthorized)
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, apierror.New(apierror.CodeUnauthorized, "invalid token", "", http.StatusUnauthorized)
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apierror.New(apierror.CodeUnauthorized, "invalid token claims", "", http.StatusUnauthorized)
	}

	typ, _ := claimsMap["typ"].(string)
	if expectedType != "" && typ != "" && typ != expectedType {
		return nil, apierror.New(apierror.CodeUnauthorized, "invalid token type", "", http.StatusUnauthorized)
	}

	identity := &model.Identity{Type: typ}
	identity.UserID, _ = claimsMap["sub"].(string)
	identity.Username, _ = claimsMap["username"].(string)
	identity.Role, _ = claimsMap["role"].(string)

	if identity.UserID == "" {
		return nil, apierror.New(apierror.CodeUnauthorized, "invalid token subject", "", http.StatusUnauthorized)
	}

	return identity, nil
}
