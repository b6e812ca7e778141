// Package secrets implements the durable credential store of the Zuno
// client: a small encrypted key/value vault holding the session token pair
// and identity markers. Opening the vault requires the device PIN, which
// stands in for the platform biometric gate, so possession of the file alone
// never yields the stored credentials.
package secrets

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/zuno-wallet/zuno-go/internal/common"
	"github.com/zuno-wallet/zuno-go/internal/cryptox"
)

var (
	// ErrLocked is returned when the vault has not been unlocked yet.
	ErrLocked = errors.New("vault is locked")

	// ErrBadPIN is returned when the supplied PIN does not open the vault.
	ErrBadPIN = errors.New("wrong PIN")

	// ErrAlreadyExists is returned by Create when a vault file is present.
	ErrAlreadyExists = errors.New("vault already exists")

	// ErrNotInitialized is returned by Unlock when no vault file exists.
	ErrNotInitialized = errors.New("vault not initialized")
)

// Store is the key/value contract the session layer depends on.
type Store interface {
	Save(key string, value []byte) error
	Exists(key string) (bool, error)
	Retrieve(key string) ([]byte, error)
	Delete(key string) error

	// DeleteAll removes every listed key in one write, so a partial
	// removal is never observable.
	DeleteAll(keys ...string) error
}

// FileVault is a Store backed by a single AES-GCM-encrypted file. Every
// mutation rewrites the whole file via rename, so concurrent writers resolve
// last-one-wins with no mixed state.
type FileVault struct {
	path string

	mu  sync.Mutex
	key []byte // nil while locked
}

// vaultFile is the on-disk representation.
type vaultFile struct {
	Salt       []byte `json:"salt"`
	Verifier   []byte `json:"verifier"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

func NewFileVault(path string) *FileVault {
	return &FileVault{path: path}
}

// Initialized reports whether a vault file exists on disk.
func (v *FileVault) Initialized() bool {
	_, err := os.Stat(v.path)
	return err == nil
}

// Create writes a fresh, empty vault protected by pin and leaves it
// unlocked.
func (v *FileVault) Create(pin []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.Initialized() {
		return ErrAlreadyExists
	}

	salt := common.GenerateRandByteArray(16)
	key := cryptox.DeriveVaultKey(pin, salt)
	v.key = key
	return v.write(salt, map[string][]byte{})
}

// Unlock derives the vault key from pin and verifies it against the stored
// fingerprint. On success subsequent Store operations are permitted.
func (v *FileVault) Unlock(pin []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	vf, err := v.read()
	if err != nil {
		return err
	}

	key := cryptox.DeriveVaultKey(pin, vf.Salt)
	if subtle.ConstantTimeCompare(vf.Verifier, cryptox.MakeVerifier(key)) == 0 {
		return ErrBadPIN
	}
	v.key = key
	return nil
}

// Lock wipes the in-memory key; the vault must be unlocked again before use.
func (v *FileVault) Lock() {
	v.mu.Lock()
	defer v.mu.Unlock()
	common.WipeByteArray(v.key)
	v.key = nil
}

func (v *FileVault) Save(key string, value []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	entries, salt, err := v.load()
	if err != nil {
		return err
	}
	entries[key] = value
	return v.write(salt, entries)
}

func (v *FileVault) Exists(key string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	entries, _, err := v.load()
	if err != nil {
		return false, err
	}
	_, ok := entries[key]
	return ok, nil
}

func (v *FileVault) Retrieve(key string) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	entries, _, err := v.load()
	if err != nil {
		return nil, err
	}
	value, ok := entries[key]
	if !ok {
		return nil, common.ErrNotFound
	}
	return value, nil
}

func (v *FileVault) Delete(key string) error {
	return v.DeleteAll(key)
}

func (v *FileVault) DeleteAll(keys ...string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	entries, salt, err := v.load()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(entries, k)
	}
	return v.write(salt, entries)
}

// load decrypts the current entry map. The caller must hold v.mu.
func (v *FileVault) load() (map[string][]byte, []byte, error) {
	if v.key == nil {
		return nil, nil, ErrLocked
	}

	vf, err := v.read()
	if err != nil {
		return nil, nil, err
	}

	plaintext, err := cryptox.Open(vf.Ciphertext, vf.Nonce, v.key)
	if err != nil {
		return nil, nil, fmt.Errorf("decrypt vault: %w", err)
	}

	entries := map[string][]byte{}
	if err := json.Unmarshal(plaintext, &entries); err != nil {
		return nil, nil, fmt.Errorf("decode vault: %w", err)
	}
	return entries, vf.Salt, nil
}

func (v *FileVault) read() (*vaultFile, error) {
	data, err := os.ReadFile(v.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("read vault: %w", err)
	}

	vf := &vaultFile{}
	if err := json.Unmarshal(data, vf); err != nil {
		return nil, fmt.Errorf("decode vault file: %w", err)
	}
	return vf, nil
}

// write encrypts entries and atomically replaces the vault file. The caller
// must hold v.mu and the vault must be unlocked.
func (v *FileVault) write(salt []byte, entries map[string][]byte) error {
	if v.key == nil {
		return ErrLocked
	}

	plaintext, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode vault: %w", err)
	}

	ciphertext, nonce, err := cryptox.Seal(plaintext, v.key)
	if err != nil {
		return fmt.Errorf("encrypt vault: %w", err)
	}

	data, err := json.Marshal(&vaultFile{
		Salt:       salt,
		Verifier:   cryptox.MakeVerifier(v.key),
		Nonce:      nonce,
		Ciphertext: ciphertext,
	})
	if err != nil {
		return fmt.Errorf("encode vault file: %w", err)
	}

	tmp := v.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write vault: %w", err)
	}
	if err := os.Rename(tmp, v.path); err != nil {
		return fmt.Errorf("replace vault: %w", err)
	}
	return nil
}
