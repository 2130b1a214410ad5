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

func TestGenerateAndValidateToken(t *testing.T) {
	SetSigningKey("test-secret-with-enough-bytes", time.Hour)
	userID := uuid.New()

	token, err := GenerateToken(userID)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestValidateToken_Rejects(t *testing.T) {
	SetSigningKey("test-secret-with-enough-bytes", time.Hour)

	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)

	// signed with a different key
	other := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: uuid.New()})
	signed, err := other.SignedString([]byte("some-other-secret"))
	require.NoError(t, err)
	_, err = ValidateToken(signed)
	assert.Error(t, err)

	// expired
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err = expired.SignedString([]byte("test-secret-with-enough-bytes"))
	require.NoError(t, err)
	_, err = ValidateToken(signed)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	SetSigningKey("test-secret-with-enough-bytes", time.Hour)
	userID := uuid.New()
	token, err := GenerateToken(userID)
	require.NoError(t, err)

	var seen *uuid.UUID
	handler := OptionalAuth(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = Viewer(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"no header", "", http.StatusUnauthorized, NotAuthenticated},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Invalid authorization format"},
		{"bad token", "Bearer garbage", http.StatusUnauthorized, "Invalid token"},
		{"valid", "Bearer " + token, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Contains(t, rec.Body.String(), tt.body)
			}
			if tt.status == http.StatusNoContent {
				require.NotNil(t, seen)
				assert.Equal(t, userID, *seen)
			}
		})
	}
}

func TestOptionalAuth_Anonymous(t *testing.T) {
	called := false
	handler := OptionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Nil(t, Viewer(r.Context()))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/feed", nil))
	assert.True(t, called)
}

func TestRateLimit(t *testing.T) {
	handler := RateLimit(2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
