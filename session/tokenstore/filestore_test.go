package tokenstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-storefront-client/session/tokenstore"
)

func newFileStore(t *testing.T) (*tokenstore.FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tokens.json")
	return tokenstore.NewFileStore(path, zerolog.Nop()), path
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs, _ := newFileStore(t)

	require.True(t, fs.Get().Empty())

	require.NoError(t, fs.Set("access-1", "refresh-1"))
	pair := fs.Get()
	require.Equal(t, "access-1", pair.AccessToken)
	require.Equal(t, "refresh-1", pair.RefreshToken)

	// Set is a full replace.
	require.NoError(t, fs.Set("access-2", "refresh-2"))
	pair = fs.Get()
	require.Equal(t, "access-2", pair.AccessToken)
	require.Equal(t, "refresh-2", pair.RefreshToken)

	require.NoError(t, fs.Clear())
	require.True(t, fs.Get().Empty())
}

func TestFileStoreClearIsIdempotent(t *testing.T) {
	fs, _ := newFileStore(t)

	require.NoError(t, fs.Clear())
	require.NoError(t, fs.Set("a", "r"))
	require.NoError(t, fs.Clear())
	require.NoError(t, fs.Clear())
	require.True(t, fs.Get().Empty())
}

func TestFileStoreCorruptFileDegradesToEmpty(t *testing.T) {
	fs, path := newFileStore(t)

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	require.True(t, fs.Get().Empty())
}

func TestFileStoreTokenFileIsPrivate(t *testing.T) {
	fs, path := newFileStore(t)

	require.NoError(t, fs.Set("access", "refresh"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestPairPredicates(t *testing.T) {
	require.True(t, tokenstore.Pair{}.Empty())
	require.False(t, tokenstore.Pair{AccessToken: "a"}.Empty())
	require.True(t, tokenstore.Pair{AccessToken: "a"}.HasAccessToken())
	require.False(t, tokenstore.Pair{AccessToken: "a"}.HasRefreshToken())
	require.True(t, tokenstore.Pair{RefreshToken: "r"}.HasRefreshToken())
}
