package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-site/backend/auth"
)

type brokenAuthenticator struct{}

func (brokenAuthenticator) Authenticate(context.Context, string, string) error {
	return errors.New("parameter store unreachable")
}

func adminOnly(t *testing.T, authenticator auth.Authenticator, tokens *auth.TokenIssuer) http.Handler {
	t.Helper()
	m := newAuthMiddleware(authenticator, tokens)
	return m.authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := ctxGetAdmin(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(username))
	}))
}

func TestAuthenticateMiddleware(t *testing.T) {
	authenticator, err := auth.NewStaticAuthenticator(testAdmin, testPassword, "")
	require.NoError(t, err)
	tokens, err := auth.NewTokenIssuer("k", 0)
	require.NoError(t, err)
	token, _, err := tokens.Issue(testAdmin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		basic  []string
		status int
	}{
		{name: "missing", status: http.StatusUnauthorized},
		{name: "basic ok", basic: []string{testAdmin, testPassword}, status: http.StatusOK},
		{name: "basic wrong user", basic: []string{"root", testPassword}, status: http.StatusUnauthorized},
		{name: "basic garbage", header: "Basic !!!", status: http.StatusUnauthorized},
		{name: "bearer ok", header: "Bearer " + token, status: http.StatusOK},
		{name: "bearer lowercase scheme", header: "bearer " + token, status: http.StatusOK},
		{name: "bearer bad", header: "Bearer abc.def.ghi", status: http.StatusUnauthorized},
		{name: "unknown scheme", header: "Digest x", status: http.StatusUnauthorized},
	}

	handler := adminOnly(t, authenticator, tokens)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.basic != nil {
				req.SetBasicAuth(tt.basic[0], tt.basic[1])
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status == http.StatusOK {
				assert.Equal(t, testAdmin, rec.Body.String())
			}
		})
	}
}

func TestAuthenticateMiddlewareRejectsUnknownScheme(t *testing.T) {
	authenticator, err := auth.NewStaticAuthenticator(testAdmin, testPassword, "")
	require.NoError(t, err)
	handler := adminOnly(t, authenticator, nil)

	for _, header := range []string{"Digest username=admin", "Bearer some-token"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.Contains(t, rec.Body.String(), "unsupported authorization scheme", header)
	}
}

func TestAuthenticateMiddlewareLookupFailure(t *testing.T) {
	handler := adminOnly(t, brokenAuthenticator{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth(testAdmin, testPassword)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "unreachable")
}

func TestLogInternalServerErrorsRecoversPanics(t *testing.T) {
	handler := LogInternalServerErrors(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLimitBodyRejectsDeclaredOversize(t *testing.T) {
	handler := limitBody(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", http.NoBody))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.ContentLength = 9
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/projects", nil)
	req.Header.Set("Origin", "https://portfolio.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := env.do(req)

	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}
