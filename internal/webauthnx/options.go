package webauthnx

import (
	"encoding/json"
	"fmt"

	"github.com/zuno-wallet/zuno-go/internal/common"
)

type rpEntity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type userEntity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

type credParam struct {
	Type string `json:"type"`
	Alg  int    `json:"alg"`
}

// creationBody carries the fields of PublicKeyCredentialCreationOptions the
// client acts on. Unknown fields (timeout, attestation,
// authenticatorSelection) are deliberately ignored.
type creationBody struct {
	Challenge string      `json:"challenge"`
	RP        rpEntity    `json:"rp"`
	User      userEntity  `json:"user"`
	Params    []credParam `json:"pubKeyCredParams"`
}

type creationEnvelope struct {
	PublicKey *creationBody `json:"publicKey"`
	Challenge string        `json:"challenge"`
	RP        rpEntity      `json:"rp"`
	User      userEntity    `json:"user"`
	Params    []credParam   `json:"pubKeyCredParams"`
}

// algES256 is the only COSE algorithm the device authenticator produces.
const algES256 = -7

// CreationOptions is the decoded, validated form of the server's registration
// options payload.
type CreationOptions struct {
	Challenge []byte
	UserID    []byte
	RPID      string
}

// ParseCreationOptions resolves the two observed shapes of the registration
// options payload: the WebAuthn-standard nested publicKey envelope, or a
// legacy flat object with the same fields at top level. Failing both lookups
// yields common.ErrInvalidChallenge.
func ParseCreationOptions(raw json.RawMessage) (*CreationOptions, error) {
	var env creationEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidChallenge, err)
	}

	body := env.PublicKey
	if body == nil || body.Challenge == "" {
		body = &creationBody{Challenge: env.Challenge, RP: env.RP, User: env.User, Params: env.Params}
	}
	if body.Challenge == "" || body.User.ID == "" {
		return nil, fmt.Errorf("%w: missing challenge or user id", common.ErrInvalidChallenge)
	}

	// An absent parameter list means "anything goes"; a present one must
	// offer at least ES256 or the ceremony cannot succeed.
	if len(body.Params) > 0 && !supportsES256(body.Params) {
		return nil, fmt.Errorf("%w: no ES256 in pubKeyCredParams", common.ErrUnsupportedCredentialType)
	}

	challenge, err := Base64URLDecode(body.Challenge)
	if err != nil {
		return nil, fmt.Errorf("%w: challenge: %v", common.ErrInvalidChallenge, err)
	}
	userID, err := Base64URLDecode(body.User.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: user id: %v", common.ErrInvalidChallenge, err)
	}

	return &CreationOptions{Challenge: challenge, UserID: userID, RPID: body.RP.ID}, nil
}

func supportsES256(params []credParam) bool {
	for _, p := range params {
		if p.Type == "public-key" && p.Alg == algES256 {
			return true
		}
	}
	return false
}

type requestBody struct {
	Challenge string `json:"challenge"`
	RPID      string `json:"rpId"`
}

type requestEnvelope struct {
	PublicKey *requestBody `json:"publicKey"`
	Challenge string       `json:"challenge"`
	RPID      string       `json:"rpId"`
}

// RequestOptions is the decoded form of the server's authentication options.
type RequestOptions struct {
	Challenge []byte
	RPID      string
}

// ParseRequestOptions resolves assertion options with the same
// nested-or-flat tolerance as ParseCreationOptions.
func ParseRequestOptions(raw json.RawMessage) (*RequestOptions, error) {
	var env requestEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidChallenge, err)
	}

	body := env.PublicKey
	if body == nil || body.Challenge == "" {
		body = &requestBody{Challenge: env.Challenge, RPID: env.RPID}
	}
	if body.Challenge == "" {
		return nil, fmt.Errorf("%w: missing challenge", common.ErrInvalidChallenge)
	}

	challenge, err := Base64URLDecode(body.Challenge)
	if err != nil {
		return nil, fmt.Errorf("%w: challenge: %v", common.ErrInvalidChallenge, err)
	}
	return &RequestOptions{Challenge: challenge, RPID: body.RPID}, nil
}
