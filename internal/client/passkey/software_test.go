package passkey

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"
	"github.com/zuno-wallet/zuno-go/internal/webauthnx"
)

const testRP = "zuno.test"

func newAuthenticator(t *testing.T, gate Gate) *SoftwareAuthenticator {
	t.Helper()
	return NewSoftwareAuthenticator(t.TempDir(), gate)
}

// parseAttestation pulls the authenticator data and COSE public key out of a
// registration credential.
func parseAttestation(t *testing.T, cred *RegistrationCredential) (authData []byte, pub *ecdsa.PublicKey) {
	t.Helper()

	var obj struct {
		AuthData []byte         `cbor:"authData"`
		Fmt      string         `cbor:"fmt"`
		AttStmt  map[string]any `cbor:"attStmt"`
	}
	require.NoError(t, cbor.Unmarshal(cred.AttestationObject, &obj))
	require.Equal(t, "none", obj.Fmt)
	require.Empty(t, obj.AttStmt)

	// rpIdHash(32) | flags(1) | signCount(4) | aaguid(16) | credIDLen(2) | credID | COSE key
	require.Greater(t, len(obj.AuthData), 55)
	credIDLen := int(binary.BigEndian.Uint16(obj.AuthData[53:55]))
	require.Equal(t, cred.CredentialID, obj.AuthData[55:55+credIDLen])

	var cose map[int]cbor.RawMessage
	require.NoError(t, cbor.Unmarshal(obj.AuthData[55+credIDLen:], &cose))

	var x, y []byte
	require.NoError(t, cbor.Unmarshal(cose[-2], &x))
	require.NoError(t, cbor.Unmarshal(cose[-3], &y))

	return obj.AuthData, &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(x),
		Y:     new(big.Int).SetBytes(y),
	}
}

func TestRegistration_ProducesWellFormedCredential(t *testing.T) {
	a := newAuthenticator(t, nil)
	challenge := []byte("server-challenge-1234")

	cred, err := a.CreateRegistrationCredential(context.Background(), challenge, testRP, "alice_1", []byte("u_1"))
	require.NoError(t, err)
	require.Len(t, cred.CredentialID, 16)

	var cd map[string]any
	require.NoError(t, json.Unmarshal(cred.ClientDataJSON, &cd))
	require.Equal(t, "webauthn.create", cd["type"])
	require.Equal(t, webauthnx.Base64URLEncode(challenge), cd["challenge"])
	require.Equal(t, "https://"+testRP, cd["origin"])

	authData, _ := parseAttestation(t, cred)
	h := sha256.Sum256([]byte(testRP))
	require.Equal(t, h[:], authData[:32])
	require.Equal(t, byte(0x45), authData[32]) // UP | UV | AT
}

func TestAssertion_SignatureVerifiesAgainstRegisteredKey(t *testing.T) {
	a := newAuthenticator(t, nil)
	ctx := context.Background()

	reg, err := a.CreateRegistrationCredential(ctx, []byte("c1"), testRP, "alice_1", []byte("u_1"))
	require.NoError(t, err)
	_, pub := parseAttestation(t, reg)

	challenge := []byte("login-challenge")
	assertion, err := a.CreateAssertionCredential(ctx, challenge, testRP)
	require.NoError(t, err)

	require.Equal(t, reg.CredentialID, assertion.CredentialID)
	require.Equal(t, []byte("u_1"), assertion.UserHandle)

	var cd map[string]any
	require.NoError(t, json.Unmarshal(assertion.ClientDataJSON, &cd))
	require.Equal(t, "webauthn.get", cd["type"])

	// Verify the WebAuthn signature: authData || SHA256(clientDataJSON).
	cdHash := sha256.Sum256(assertion.ClientDataJSON)
	signed := append(append([]byte{}, assertion.AuthenticatorData...), cdHash[:]...)
	digest := sha256.Sum256(signed)
	require.True(t, ecdsa.VerifyASN1(pub, digest[:], assertion.Signature))
}

func TestAssertion_SignCountAdvances(t *testing.T) {
	a := newAuthenticator(t, nil)
	ctx := context.Background()

	_, err := a.CreateRegistrationCredential(ctx, []byte("c"), testRP, "alice_1", []byte("u_1"))
	require.NoError(t, err)

	first, err := a.CreateAssertionCredential(ctx, []byte("c2"), testRP)
	require.NoError(t, err)
	second, err := a.CreateAssertionCredential(ctx, []byte("c3"), testRP)
	require.NoError(t, err)

	count1 := binary.BigEndian.Uint32(first.AuthenticatorData[33:37])
	count2 := binary.BigEndian.Uint32(second.AuthenticatorData[33:37])
	require.Equal(t, uint32(1), count1)
	require.Equal(t, uint32(2), count2)
}

func TestAssertion_NoRegisteredKey(t *testing.T) {
	a := newAuthenticator(t, nil)

	_, err := a.CreateAssertionCredential(context.Background(), []byte("c"), "unknown.rp")
	require.ErrorIs(t, err, ErrNotAvailable)
}

func TestGate_CancelMapsToErrCancelled(t *testing.T) {
	a := newAuthenticator(t, func(ctx context.Context, prompt string) error {
		return ErrCancelled
	})

	_, err := a.CreateRegistrationCredential(context.Background(), []byte("c"), testRP, "alice_1", []byte("u_1"))
	require.ErrorIs(t, err, ErrCancelled)
}

func TestGate_OtherFailureMapsToCeremonyFailed(t *testing.T) {
	a := newAuthenticator(t, func(ctx context.Context, prompt string) error {
		return errors.New("sensor error")
	})

	_, err := a.CreateAssertionCredential(context.Background(), []byte("c"), testRP)
	require.ErrorIs(t, err, ErrCeremonyFailed)
}

func TestConcurrentCeremony_SecondFailsFast(t *testing.T) {
	started := make(chan struct{})
	unblock := make(chan struct{})
	var startedOnce sync.Once
	// The gate runs again for the final ceremony below; signal only the first.
	a := newAuthenticator(t, func(ctx context.Context, prompt string) error {
		startedOnce.Do(func() { close(started) })
		<-unblock
		return nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := a.CreateRegistrationCredential(context.Background(), []byte("c"), testRP, "alice_1", []byte("u_1"))
		require.NoError(t, err)
	}()

	<-started
	_, err := a.CreateAssertionCredential(context.Background(), []byte("c"), testRP)
	require.ErrorIs(t, err, ErrCeremonyPending)

	close(unblock)
	wg.Wait()

	// Slot is free again after the first ceremony resolves.
	_, err = a.CreateAssertionCredential(context.Background(), []byte("c2"), testRP)
	require.NoError(t, err)
}

func TestContextAlreadyCancelled(t *testing.T) {
	a := newAuthenticator(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.CreateRegistrationCredential(ctx, []byte("c"), testRP, "alice_1", []byte("u_1"))
	require.ErrorIs(t, err, ErrCancelled)
}
