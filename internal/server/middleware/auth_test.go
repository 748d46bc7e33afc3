package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonathan/sng-admin/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPrincipal string

func (p testPrincipal) Username() string { return string(p) }

// testTokenValidator accepts the tokens registered in it.
type testTokenValidator struct {
	validTokens map[string]string
}

func (v *testTokenValidator) ValidateToken(tokenString string) (Principal, error) {
	username, ok := v.validTokens[tokenString]
	if !ok {
		return nil, apperr.New(apperr.Unauthorized, "Недействительный токен доступа")
	}
	return testPrincipal(username), nil
}

type plainErrValidator struct{}

func (plainErrValidator) ValidateToken(string) (Principal, error) {
	return nil, fmt.Errorf("boom")
}

func protected(t *testing.T, validator TokenValidator) (http.Handler, *string) {
	t.Helper()
	var seen string
	h := AuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, err := GetUsername(r)
		require.NoError(t, err)
		seen = username
		w.WriteHeader(http.StatusNoContent)
	}))
	return h, &seen
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["message"]
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	h, seen := protected(t, &testTokenValidator{validTokens: map[string]string{"good": "admin"}})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/vacancies", nil)
	req.Header.Set("Authorization", "bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "admin", *seen)
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	validator := &testTokenValidator{validTokens: map[string]string{"good": "admin"}}

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{name: "missing header", header: "", message: MissingTokenMessage},
		{name: "wrong scheme", header: "Basic good", message: MissingTokenMessage},
		{name: "no token", header: "Bearer", message: MissingTokenMessage},
		{name: "extra parts", header: "Bearer good extra", message: MissingTokenMessage},
		{name: "unknown token", header: "Bearer bad", message: "Недействительный токен доступа"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, seen := protected(t, validator)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.message, messageOf(t, rec))
			assert.Empty(t, *seen)
		})
	}
}

func TestAuthMiddleware_PlainValidatorError(t *testing.T) {
	h, _ := protected(t, plainErrValidator{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer x")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Недействительный токен доступа", messageOf(t, rec))
}

func TestGetUsername_Missing(t *testing.T) {
	_, err := GetUsername(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Error(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithUsername(req.Context(), "admin"))
	username, err := GetUsername(req)
	require.NoError(t, err)
	assert.Equal(t, "admin", username)
}
