package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticAuthenticator(t *testing.T) {
	a, err := NewStaticAuthenticator("admin", "s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", a.PasswordHash)

	assert.NoError(t, a.Authenticate("admin", "s3cret"))
	assert.ErrorIs(t, a.Authenticate("admin", "wrong"), ErrInvalidCredentials)
	assert.ErrorIs(t, a.Authenticate("root", "s3cret"), ErrInvalidCredentials)
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, exp, err := issuer.Issue("admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, _, err := issuer.Issue("admin")
	require.NoError(t, err)

	_, err = NewTokenIssuer("other", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenIssuer("secret", time.Minute)
	expired.Now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _, err := expired.Issue("admin")
	require.NoError(t, err)
	_, err = issuer.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_ZeroTTLNeverExpires(t *testing.T) {
	issuer := NewTokenIssuer("secret", 0)
	issuer.Now = func() time.Time { return time.Now().Add(-24 * 365 * time.Hour) }
	token, exp, err := issuer.Issue("admin")
	require.NoError(t, err)
	assert.True(t, exp.IsZero())

	claims, err := NewTokenIssuer("secret", 0).Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Nil(t, claims.ExpiresAt)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := NewTokenIssuer("secret", time.Hour)
	r := gin.New()
	r.GET("/private", Middleware(issuer), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, _, err := issuer.Issue("admin")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
}
