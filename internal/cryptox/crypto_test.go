package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveVaultKey_DeterministicPerSalt(t *testing.T) {
	pin := []byte("1234")
	salt := []byte("0123456789abcdef")

	k1 := DeriveVaultKey(pin, salt)
	k2 := DeriveVaultKey(pin, salt)
	require.Equal(t, k1, k2)
	require.Len(t, k1, 32)

	k3 := DeriveVaultKey(pin, []byte("fedcba9876543210"))
	require.NotEqual(t, k1, k3)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := DeriveVaultKey([]byte("pin"), []byte("salt-salt-salt-s"))
	plaintext := []byte(`{"access_token":"a","refresh_token":"r"}`)

	ciphertext, nonce, err := Seal(plaintext, key)
	require.NoError(t, err)
	require.NotEqual(t, plaintext, ciphertext)
	require.Len(t, nonce, 12)

	back, err := Open(ciphertext, nonce, key)
	require.NoError(t, err)
	require.True(t, bytes.Equal(plaintext, back))
}

func TestOpen_WrongKeyFails(t *testing.T) {
	key := DeriveVaultKey([]byte("pin"), []byte("salt-salt-salt-s"))
	other := DeriveVaultKey([]byte("nope"), []byte("salt-salt-salt-s"))

	ciphertext, nonce, err := Seal([]byte("secret"), key)
	require.NoError(t, err)

	_, err = Open(ciphertext, nonce, other)
	require.Error(t, err)
}

func TestMakeVerifier_StableAndDistinct(t *testing.T) {
	a := MakeVerifier([]byte("key-a"))
	b := MakeVerifier([]byte("key-b"))
	require.Len(t, a, 32)
	require.Equal(t, a, MakeVerifier([]byte("key-a")))
	require.NotEqual(t, a, b)
}
