package delivery

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoginAndValidate(t *testing.T) {
	auth := NewAuthService("secret-pass", "signing-key")

	token, err := auth.Login("secret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, auth.ValidateToken(token))
}

func TestLoginWrongPassword(t *testing.T) {
	auth := NewAuthService("secret-pass", "signing-key")

	_, err := auth.Login("guess")
	require.ErrorIs(t, err, ErrWrongPassword)
}

func TestLoginNotConfigured(t *testing.T) {
	auth := NewAuthService("", "")

	_, err := auth.Login("anything")
	require.ErrorIs(t, err, ErrAuthNotEnabled)
}

func TestValidateRejectsForeignToken(t *testing.T) {
	issuer := NewAuthService("secret-pass", "key-one")
	verifier := NewAuthService("secret-pass", "key-two")

	token, err := issuer.Login("secret-pass")
	require.NoError(t, err)

	require.ErrorIs(t, verifier.ValidateToken(token), ErrInvalidToken)
	require.ErrorIs(t, verifier.ValidateToken("not-a-jwt"), ErrInvalidToken)
}

func TestAuthMiddleware(t *testing.T) {
	auth := NewAuthService("secret-pass", "signing-key")
	token, err := auth.Login("secret-pass")
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthMiddleware(auth)(next)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/usage/1", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			require.Equal(t, tc.want, rec.Code)
		})
	}
}
