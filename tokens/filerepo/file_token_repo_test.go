package filerepo_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jrsteele09/go-course-client/tokens"
	"github.com/jrsteele09/go-course-client/tokens/filerepo"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestFileTokenRepoRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "auth_tokens.json")

	repo, err := filerepo.New(path)
	require.NoError(t, err)

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	require.True(t, got.Empty(), "missing file reads as no session")

	want := tokens.Pair{AccessToken: "access-1", RefreshToken: "refresh-1"}
	require.NoError(t, repo.Set(ctx, want))

	// A second repo on the same path sees the session, as after a restart.
	reopened, err := filerepo.New(path)
	require.NoError(t, err)
	got, err = reopened.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, repo.Clear(ctx))
	require.NoError(t, repo.Clear(ctx))
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestFileTokenRepoEncrypted(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "auth_tokens.json")

	repo, err := filerepo.New(path, filerepo.WithHexKey(testKey))
	require.NoError(t, err)

	want := tokens.Pair{AccessToken: "secret-access", RefreshToken: "secret-refresh"}
	require.NoError(t, repo.Set(ctx, want))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.False(t, strings.Contains(string(raw), "secret-access"))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)

	otherKey := strings.Repeat("ff", 32)
	wrong, err := filerepo.New(path, filerepo.WithHexKey(otherKey))
	require.NoError(t, err)
	_, err = wrong.Get(ctx)
	require.Error(t, err)
}

func TestFileTokenRepoInvalidKey(t *testing.T) {
	_, err := filerepo.New("tokens.json", filerepo.WithHexKey("zz"))
	require.Error(t, err)

	_, err = filerepo.New("tokens.json", filerepo.WithHexKey("abcd"))
	require.Error(t, err)

	_, err = filerepo.New("")
	require.Error(t, err)
}
