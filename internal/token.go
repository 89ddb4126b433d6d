package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

// MailTokenID is the opaque identifier of one outstanding verification or
// password-reset challenge. The ID is safe to store server-side; the paired
// secret travels only inside the emailed link.
type MailTokenID [16]byte

const (
	mailTokenRawSize = 48
	mailSecretSize   = 32
)

func NewMailTokenID() (MailTokenID, error) {
	var id MailTokenID
	_, err := rand.Read(id[:])
	return id, err
}

func (t MailTokenID) Bytes() []byte {
	return t[:]
}

func (t MailTokenID) String() string {
	// base64url, no padding, compact
	return base64.RawURLEncoding.EncodeToString(t[:])
}

func ParseMailTokenID(tokenID string) (MailTokenID, error) {
	var id MailTokenID

	raw, err := base64.RawURLEncoding.DecodeString(tokenID)
	if err != nil {
		return id, err
	}
	if len(raw) != len(id) {
		return id, errors.New("invalid mail token id size")
	}

	copy(id[:], raw)
	return id, nil
}

func NewMailSecret() ([mailSecretSize]byte, error) {
	var secret [mailSecretSize]byte
	_, err := rand.Read(secret[:])
	return secret, err
}

func HashMailSecret(secret [mailSecretSize]byte) [32]byte {
	return sha256.Sum256(secret[:])
}

// EncodeMailToken packs the token ID and secret into the single opaque string
// embedded in the emailed link.
func EncodeMailToken(tokenID string, secret [mailSecretSize]byte) (string, error) {
	id, err := ParseMailTokenID(tokenID)
	if err != nil {
		return "", err
	}

	var raw [mailTokenRawSize]byte
	copy(raw[:len(id)], id[:])
	copy(raw[len(id):], secret[:])

	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}

func DecodeMailToken(token string) (string, [mailSecretSize]byte, error) {
	var secret [mailSecretSize]byte

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", secret, err
	}
	if len(raw) != mailTokenRawSize {
		return "", secret, errors.New("invalid mail token size")
	}

	var id MailTokenID
	copy(id[:], raw[:len(id)])
	copy(secret[:], raw[len(id):])

	return id.String(), secret, nil
}
