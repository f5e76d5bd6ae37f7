package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rezkam/stride/internal/infrastructure/http/response"
)

type contextKey struct{ name string }

var userIDKey = contextKey{"user_id"}

// UserID returns the authenticated user ID stored by the Auth middleware.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// WithUserID returns a context carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Auth is HTTP middleware validating bearer access tokens. Tokens are issued
// by the identity service; this service only verifies the HS256 signature and
// reads the user ID from the subject claim.
type Auth struct {
	secret []byte
	issuer string
}

// NewAuth creates a new auth middleware.
func NewAuth(secret, issuer string) *Auth {
	return &Auth{secret: []byte(secret), issuer: issuer}
}

// Validate is a Chi middleware that validates tokens from the Authorization
// header. Expects format: "Authorization: Bearer <token>".
func (a *Auth) Validate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			slog.WarnContext(r.Context(), "authentication failed: missing Authorization header",
				"path", r.URL.Path,
				"method", r.Method)
			response.Unauthorized(w, "missing Authorization header")
			return
		}

		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			slog.WarnContext(r.Context(), "authentication failed: invalid Authorization header format",
				"path", r.URL.Path,
				"method", r.Method)
			response.Unauthorized(w, "invalid Authorization header format, expected: Bearer <token>")
			return
		}

		userID, err := a.validateToken(token)
		if err != nil {
			slog.WarnContext(r.Context(), "authentication failed: invalid or expired token",
				"path", r.URL.Path,
				"method", r.Method,
				"error", err)
			response.Unauthorized(w, "invalid or expired access token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// validateToken parses and verifies an HS256 token and returns the subject
// user ID.
func (a *Auth) validateToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithIssuer(a.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}

	// The subject must be a user UUID.
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("invalid subject: %w", err)
	}

	return claims.Subject, nil
}
