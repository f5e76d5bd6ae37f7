package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "0123456789abcdef0123456789abcdef"
	testIssuer = "stride"
)

func signToken(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(subject string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    testIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
}

func TestAuthValidate(t *testing.T) {
	auth := NewAuth(testSecret, testIssuer)
	subject := uuid.Must(uuid.NewV7()).String()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserID(r.Context())
		require.True(t, ok)
		assert.Equal(t, subject, id)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/habits", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims(subject)))

		w := httptest.NewRecorder()
		auth.Validate(next).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	rejected := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for a rejected request")
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/habits", nil)
		w := httptest.NewRecorder()
		auth.Validate(rejected).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("not a bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/habits", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		auth.Validate(rejected).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/habits", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "ffffffffffffffffffffffffffffffff", validClaims(subject)))
		w := httptest.NewRecorder()
		auth.Validate(rejected).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := validClaims(subject)
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		req := httptest.NewRequest(http.MethodGet, "/v1/habits", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, claims))
		w := httptest.NewRecorder()
		auth.Validate(rejected).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token without expiry", func(t *testing.T) {
		claims := validClaims(subject)
		claims.ExpiresAt = nil
		req := httptest.NewRequest(http.MethodGet, "/v1/habits", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, claims))
		w := httptest.NewRecorder()
		auth.Validate(rejected).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := validClaims(subject)
		claims.Issuer = "someone-else"
		req := httptest.NewRequest(http.MethodGet, "/v1/habits", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, claims))
		w := httptest.NewRecorder()
		auth.Validate(rejected).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("non-uuid subject", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/habits", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims("not-a-uuid")))
		w := httptest.NewRecorder()
		auth.Validate(rejected).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
