package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudo-init-do/userhub/internal/apperr"
	"github.com/sudo-init-do/userhub/internal/auth"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)}
}

func newIssuer(t *testing.T, secret string, clk *clock) *auth.TokenIssuer {
	t.Helper()
	issuer, err := auth.NewTokenIssuer(secret, 24*time.Hour)
	require.NoError(t, err)
	issuer.SetClock(clk.Now)
	return issuer
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	clk := newClock()
	issuer := newIssuer(t, "secret", clk)

	token, expires, err := issuer.Issue("user-1")
	require.NoError(t, err)
	assert.Equal(t, clk.t.Add(24*time.Hour), expires)

	id, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestTokenIssuer_Expiry(t *testing.T) {
	clk := newClock()
	issuer := newIssuer(t, "secret", clk)

	token, _, err := issuer.Issue("user-1")
	require.NoError(t, err)

	clk.Advance(23*time.Hour + 59*time.Minute)
	_, err = issuer.Verify(token)
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)
	_, err = issuer.Verify(token)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidToken, apperr.Code(err))
}

func TestTokenIssuer_Rejects(t *testing.T) {
	clk := newClock()
	issuer := newIssuer(t, "secret", clk)

	sign := func(method jwt.SigningMethod, key any, claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := jwt.MapClaims{"id": "user-1", "exp": clk.t.Add(time.Hour).Unix()}

	otherToken, _, err := newIssuer(t, "other-secret", clk).Issue("user-1")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "wrong secret", token: otherToken},
		{name: "unsigned", token: sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid)},
		{name: "other hmac algorithm", token: sign(jwt.SigningMethodHS512, []byte("secret"), valid)},
		{name: "missing exp", token: sign(jwt.SigningMethodHS256, []byte("secret"), jwt.MapClaims{"id": "user-1"})},
		{name: "missing id", token: sign(jwt.SigningMethodHS256, []byte("secret"), jwt.MapClaims{"exp": clk.t.Add(time.Hour).Unix()})},
		{name: "garbage", token: "not.a.jwt"},
		{name: "empty", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Verify(tt.token)
			require.Error(t, err)
			assert.Equal(t, apperr.CodeInvalidToken, apperr.Code(err))
		})
	}
}

func TestNewTokenIssuer_EmptySecret(t *testing.T) {
	_, err := auth.NewTokenIssuer("", time.Hour)
	assert.Error(t, err)
}
