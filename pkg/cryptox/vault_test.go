package cryptox_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bensonnlee/SRCode/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestVaultRoundTrip(t *testing.T) {
	t.Parallel()

	v, err := cryptox.NewVault([]byte("correct horse battery staple"))
	require.NoError(t, err)

	sealed, err := v.SealString("hunter2", "student1")
	require.NoError(t, err)
	require.NotContains(t, string(sealed), "hunter2")

	got, err := v.OpenString(sealed, "student1")
	require.NoError(t, err)
	require.Equal(t, "hunter2", got)

	again, err := v.SealString("hunter2", "student1")
	require.NoError(t, err)
	require.NotEqual(t, sealed, again, "nonces are random")
}

func TestVaultRejects(t *testing.T) {
	t.Parallel()

	v, err := cryptox.NewVault([]byte("key-a"))
	require.NoError(t, err)
	sealed, err := v.SealString("secret", "alice")
	require.NoError(t, err)

	t.Run("wrong associated data", func(t *testing.T) {
		_, err := v.OpenString(sealed, "bob")
		require.ErrorIs(t, err, cryptox.ErrCiphertext)
	})

	t.Run("wrong key", func(t *testing.T) {
		other, err := cryptox.NewVault([]byte("key-b"))
		require.NoError(t, err)
		_, err = other.OpenString(sealed, "alice")
		require.ErrorIs(t, err, cryptox.ErrCiphertext)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := v.Open(sealed[:10], "alice")
		require.ErrorIs(t, err, cryptox.ErrCiphertext)
	})

	t.Run("tampered", func(t *testing.T) {
		bad := append([]byte(nil), sealed...)
		bad[len(bad)-1] ^= 0xff
		_, err := v.Open(bad, "alice")
		require.ErrorIs(t, err, cryptox.ErrCiphertext)
	})

	t.Run("empty material", func(t *testing.T) {
		_, err := cryptox.NewVault(nil)
		require.Error(t, err)
	})
}

func TestLoadVault(t *testing.T) {
	t.Parallel()

	t.Run("file and env derive the same key from the same material", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "master.key")
		require.NoError(t, os.WriteFile(path, []byte("material\n"), 0o600))

		fromFile, err := cryptox.LoadVault(path, "ignored")
		require.NoError(t, err)
		require.False(t, fromFile.Ephemeral())

		fromEnv, err := cryptox.LoadVault("", "material")
		require.NoError(t, err)

		sealed, err := fromFile.SealString("pw", "u")
		require.NoError(t, err)
		got, err := fromEnv.OpenString(sealed, "u")
		require.NoError(t, err)
		require.Equal(t, "pw", got)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := cryptox.LoadVault(filepath.Join(t.TempDir(), "nope"), "")
		require.Error(t, err)
	})

	t.Run("ephemeral fallback", func(t *testing.T) {
		v, err := cryptox.LoadVault("", "")
		require.NoError(t, err)
		require.True(t, v.Ephemeral())
	})
}
