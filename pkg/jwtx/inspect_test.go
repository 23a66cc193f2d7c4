package jwtx_test

import (
	"testing"
	"time"

	"github.com/bensonnlee/SRCode/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwtx.Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return tok
}

func TestInspect(t *testing.T) {
	t.Parallel()

	exp := time.Unix(1900000000, 0)
	tok := signed(t, jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "42", ExpiresAt: jwt.NewNumericDate(exp)},
		Username:         "student1",
	})

	t.Run("reads claims without the key", func(t *testing.T) {
		c, err := jwtx.Inspect(tok)
		require.NoError(t, err)
		require.Equal(t, "42", c.Subject)
		require.Equal(t, "student1", c.Username)
		require.NotNil(t, c.ExpiresAt)
		require.True(t, exp.Equal(c.ExpiresAt.Time))
	})

	t.Run("opaque token", func(t *testing.T) {
		_, err := jwtx.Inspect("DEMO_TOKEN_12345")
		require.ErrorIs(t, err, jwtx.ErrNotJWT)
	})
}
