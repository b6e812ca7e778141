// Package webauthnx implements the client side of the WebAuthn wire format
// used by the Zuno relying party: base64url byte encoding, the typed
// creation/assertion options schema (both the nested publicKey envelope and
// the legacy flat variant), and the completion payloads sent back to the
// server after a platform ceremony.
package webauthnx

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Base64URLEncode encodes b as unpadded base64url, the form required for the
// id/rawId and response fields of a WebAuthn completion payload.
func Base64URLEncode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// Base64URLDecode decodes a base64url string as issued by the relying party.
// It accepts both padded and unpadded input: '-' and '_' are mapped to the
// standard alphabet and the string is re-padded to a multiple of four before
// decoding.
func Base64URLDecode(s string) ([]byte, error) {
	std := strings.NewReplacer("-", "+", "_", "/").Replace(s)
	if m := len(std) % 4; m != 0 {
		std += strings.Repeat("=", 4-m)
	}
	b, err := base64.StdEncoding.DecodeString(std)
	if err != nil {
		return nil, fmt.Errorf("decode base64url: %w", err)
	}
	return b, nil
}
