package cryptox_test

import (
	"testing"

	"github.com/bensonnlee/SRCode/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	a, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	require.Len(t, a, 43)

	b, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	_, err = cryptox.GenerateToken(0)
	require.Error(t, err)
}

func TestFingerprintToken(t *testing.T) {
	t.Parallel()

	fp := cryptox.FingerprintToken("abc")
	require.Len(t, fp, 43)
	require.Equal(t, fp, cryptox.FingerprintToken("abc"))
	require.NotEqual(t, fp, cryptox.FingerprintToken("abd"))
	require.Empty(t, cryptox.FingerprintToken(""))
}
