package passkey

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/google/uuid"
	"github.com/zuno-wallet/zuno-go/internal/webauthnx"
)

// SoftwareAuthenticator is a file-backed Provider: it holds one P-256 device
// key per relying party and produces "none"-format attestations and ECDSA
// assertions over the standard authenticator-data layout. It stands in for
// the platform authenticator of the mobile apps.
type SoftwareAuthenticator struct {
	dir  string
	gate Gate

	mu      sync.Mutex
	pending bool
}

// NewSoftwareAuthenticator stores device keys under dir and gates every
// ceremony through gate (nil means ApproveAlways).
func NewSoftwareAuthenticator(dir string, gate Gate) *SoftwareAuthenticator {
	if gate == nil {
		gate = ApproveAlways
	}
	return &SoftwareAuthenticator{dir: dir, gate: gate}
}

// deviceKey is the persisted state of one relying-party credential.
type deviceKey struct {
	CredentialID string `json:"credential_id"`
	RPID         string `json:"rp_id"`
	UserHandle   string `json:"user_handle"`
	SignCount    uint32 `json:"sign_count"`
	PrivateKey   string `json:"private_key"`
}

func (a *SoftwareAuthenticator) keyPath(rpID string) string {
	return filepath.Join(a.dir, rpID+".json")
}

// begin acquires the single-ceremony slot and runs the approval gate.
// The returned release func must be called when the ceremony resolves.
func (a *SoftwareAuthenticator) begin(ctx context.Context, prompt string) (func(), error) {
	a.mu.Lock()
	if a.pending {
		a.mu.Unlock()
		return nil, ErrCeremonyPending
	}
	a.pending = true
	a.mu.Unlock()

	release := func() {
		a.mu.Lock()
		a.pending = false
		a.mu.Unlock()
	}

	if err := ctx.Err(); err != nil {
		release()
		return nil, fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	if err := a.gate(ctx, prompt); err != nil {
		release()
		if errors.Is(err, ErrCancelled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrCeremonyFailed, err)
	}
	return release, nil
}

func rpIDHash(rpID string) []byte {
	h := sha256.Sum256([]byte(rpID))
	return h[:]
}

// attestationObject is the CBOR structure posted back to the relying party.
type attestationObject struct {
	AuthData []byte         `cbor:"authData"`
	Fmt      string         `cbor:"fmt"`
	AttStmt  map[string]any `cbor:"attStmt"`
}

// coseKey encodes a P-256 public key as a COSE_Key (EC2, ES256).
func coseKey(pub *ecdsa.PublicKey) ([]byte, error) {
	key := map[int]any{
		1:  2,  // kty: EC2
		3:  -7, // alg: ES256
		-1: 1,  // crv: P-256
		-2: pub.X.FillBytes(make([]byte, 32)),
		-3: pub.Y.FillBytes(make([]byte, 32)),
	}
	return cbor.Marshal(key)
}

func clientData(ceremony protocol.CeremonyType, challenge []byte, rpID string) ([]byte, error) {
	cd := protocol.CollectedClientData{
		Type:      ceremony,
		Challenge: webauthnx.Base64URLEncode(challenge),
		Origin:    "https://" + rpID,
	}
	return json.Marshal(cd)
}

// CreateRegistrationCredential mints a fresh device key for rpID and returns
// a registration credential with a "none"-format attestation object.
func (a *SoftwareAuthenticator) CreateRegistrationCredential(ctx context.Context, challenge []byte, rpID, userName string, userID []byte) (*RegistrationCredential, error) {
	release, err := a.begin(ctx, fmt.Sprintf("Create a passkey for %s on %s", userName, rpID))
	if err != nil {
		return nil, err
	}
	defer release()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: generate device key: %v", ErrCeremonyFailed, err)
	}

	credentialID := uuid.New()

	cose, err := coseKey(&priv.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: encode public key: %v", ErrCeremonyFailed, err)
	}

	// Authenticator data: rpIdHash | flags | signCount | attestedCredentialData.
	flags := byte(protocol.FlagUserPresent | protocol.FlagUserVerified | protocol.FlagAttestedCredentialData)
	authData := make([]byte, 0, 37+16+2+len(credentialID)+len(cose))
	authData = append(authData, rpIDHash(rpID)...)
	authData = append(authData, flags)
	authData = binary.BigEndian.AppendUint32(authData, 0)
	authData = append(authData, make([]byte, 16)...) // zero AAGUID
	authData = binary.BigEndian.AppendUint16(authData, uint16(len(credentialID)))
	authData = append(authData, credentialID[:]...)
	authData = append(authData, cose...)

	attObj, err := cbor.Marshal(attestationObject{
		AuthData: authData,
		Fmt:      "none",
		AttStmt:  map[string]any{},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode attestation object: %v", ErrCeremonyFailed, err)
	}

	cdJSON, err := clientData(protocol.CreateCeremony, challenge, rpID)
	if err != nil {
		return nil, fmt.Errorf("%w: encode client data: %v", ErrCeremonyFailed, err)
	}

	if err := a.saveKey(rpID, priv, credentialID[:], userID); err != nil {
		return nil, fmt.Errorf("%w: persist device key: %v", ErrCeremonyFailed, err)
	}

	return &RegistrationCredential{
		CredentialID:      credentialID[:],
		ClientDataJSON:    cdJSON,
		AttestationObject: attObj,
	}, nil
}

// CreateAssertionCredential signs the server challenge with the stored device
// key for rpID. It fails with ErrNotAvailable when no key was ever
// registered for that relying party.
func (a *SoftwareAuthenticator) CreateAssertionCredential(ctx context.Context, challenge []byte, rpID string) (*AssertionCredential, error) {
	release, err := a.begin(ctx, fmt.Sprintf("Unlock your passkey for %s", rpID))
	if err != nil {
		return nil, err
	}
	defer release()

	dk, priv, err := a.loadKey(rpID)
	if err != nil {
		return nil, err
	}

	dk.SignCount++

	flags := byte(protocol.FlagUserPresent | protocol.FlagUserVerified)
	authData := make([]byte, 0, 37)
	authData = append(authData, rpIDHash(rpID)...)
	authData = append(authData, flags)
	authData = binary.BigEndian.AppendUint32(authData, dk.SignCount)

	cdJSON, err := clientData(protocol.AssertCeremony, challenge, rpID)
	if err != nil {
		return nil, fmt.Errorf("%w: encode client data: %v", ErrCeremonyFailed, err)
	}

	cdHash := sha256.Sum256(cdJSON)
	signed := append(append([]byte{}, authData...), cdHash[:]...)
	digest := sha256.Sum256(signed)

	sig, err := ecdsa.SignASN1(rand.Reader, priv, digest[:])
	if err != nil {
		return nil, fmt.Errorf("%w: sign assertion: %v", ErrCeremonyFailed, err)
	}

	credentialID, err := base64.RawURLEncoding.DecodeString(dk.CredentialID)
	if err != nil {
		return nil, fmt.Errorf("%w: stored credential id: %v", ErrCeremonyFailed, err)
	}
	userHandle, err := base64.RawURLEncoding.DecodeString(dk.UserHandle)
	if err != nil {
		return nil, fmt.Errorf("%w: stored user handle: %v", ErrCeremonyFailed, err)
	}

	if err := a.writeKey(dk); err != nil {
		return nil, fmt.Errorf("%w: persist sign count: %v", ErrCeremonyFailed, err)
	}

	return &AssertionCredential{
		CredentialID:      credentialID,
		ClientDataJSON:    cdJSON,
		AuthenticatorData: authData,
		Signature:         sig,
		UserHandle:        userHandle,
	}, nil
}

func (a *SoftwareAuthenticator) saveKey(rpID string, priv *ecdsa.PrivateKey, credentialID, userHandle []byte) error {
	der, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return err
	}
	return a.writeKey(&deviceKey{
		CredentialID: base64.RawURLEncoding.EncodeToString(credentialID),
		RPID:         rpID,
		UserHandle:   base64.RawURLEncoding.EncodeToString(userHandle),
		SignCount:    0,
		PrivateKey:   base64.StdEncoding.EncodeToString(der),
	})
}

func (a *SoftwareAuthenticator) writeKey(dk *deviceKey) error {
	if err := os.MkdirAll(a.dir, 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(dk)
	if err != nil {
		return err
	}
	return os.WriteFile(a.keyPath(dk.RPID), data, 0o600)
}

func (a *SoftwareAuthenticator) loadKey(rpID string) (*deviceKey, *ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(a.keyPath(rpID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, ErrNotAvailable
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read device key: %v", ErrCeremonyFailed, err)
	}

	dk := &deviceKey{}
	if err := json.Unmarshal(data, dk); err != nil {
		return nil, nil, fmt.Errorf("%w: decode device key: %v", ErrCeremonyFailed, err)
	}

	der, err := base64.StdEncoding.DecodeString(dk.PrivateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: decode private key: %v", ErrCeremonyFailed, err)
	}
	priv, err := x509.ParseECPrivateKey(der)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: parse private key: %v", ErrCeremonyFailed, err)
	}
	return dk, priv, nil
}
