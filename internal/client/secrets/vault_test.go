package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zuno-wallet/zuno-go/internal/common"
)

func newVault(t *testing.T) *FileVault {
	t.Helper()
	return NewFileVault(filepath.Join(t.TempDir(), "vault.json"))
}

func TestCreateAndReopen(t *testing.T) {
	v := newVault(t)
	require.False(t, v.Initialized())

	require.NoError(t, v.Create([]byte("1234")))
	require.True(t, v.Initialized())
	require.NoError(t, v.Save("access_token", []byte("tok")))

	// A second vault instance over the same file must unlock with the PIN.
	v2 := NewFileVault(v.path)
	require.NoError(t, v2.Unlock([]byte("1234")))

	got, err := v2.Retrieve("access_token")
	require.NoError(t, err)
	require.Equal(t, []byte("tok"), got)
}

func TestCreate_TwiceFails(t *testing.T) {
	v := newVault(t)
	require.NoError(t, v.Create([]byte("1234")))
	require.ErrorIs(t, v.Create([]byte("1234")), ErrAlreadyExists)
}

func TestUnlock_WrongPIN(t *testing.T) {
	v := newVault(t)
	require.NoError(t, v.Create([]byte("1234")))

	v2 := NewFileVault(v.path)
	require.ErrorIs(t, v2.Unlock([]byte("0000")), ErrBadPIN)
}

func TestUnlock_NotInitialized(t *testing.T) {
	v := newVault(t)
	require.ErrorIs(t, v.Unlock([]byte("1234")), ErrNotInitialized)
}

func TestLockedOperationsFail(t *testing.T) {
	v := newVault(t)
	require.NoError(t, v.Create([]byte("1234")))
	v.Lock()

	require.ErrorIs(t, v.Save("k", []byte("v")), ErrLocked)
	_, err := v.Retrieve("k")
	require.ErrorIs(t, err, ErrLocked)
	_, err = v.Exists("k")
	require.ErrorIs(t, err, ErrLocked)
	require.ErrorIs(t, v.Delete("k"), ErrLocked)
}

func TestSaveExistsRetrieveDelete(t *testing.T) {
	v := newVault(t)
	require.NoError(t, v.Create([]byte("1234")))

	ok, err := v.Exists("refresh_token")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = v.Retrieve("refresh_token")
	require.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, v.Save("refresh_token", []byte("r1")))
	ok, err = v.Exists("refresh_token")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, v.Delete("refresh_token"))
	ok, err = v.Exists("refresh_token")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeleteAll_RemovesEveryKeyInOneWrite(t *testing.T) {
	v := newVault(t)
	require.NoError(t, v.Create([]byte("1234")))

	keys := []string{
		common.KeyAccessToken, common.KeyRefreshToken,
		common.KeyUserID, common.KeyZunoTag,
	}
	for _, k := range keys {
		require.NoError(t, v.Save(k, []byte("v:"+k)))
	}

	require.NoError(t, v.DeleteAll(keys...))

	for _, k := range keys {
		ok, err := v.Exists(k)
		require.NoError(t, err)
		require.False(t, ok, k)
	}
}

func TestVaultFileIsNotPlaintext(t *testing.T) {
	dir := t.TempDir()
	v := NewFileVault(filepath.Join(dir, "vault.json"))
	require.NoError(t, v.Create([]byte("1234")))
	require.NoError(t, v.Save("access_token", []byte("super-secret-token")))

	data, err := os.ReadFile(v.path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "super-secret-token")
}
