// Package envelope seals secret text with a fresh AES-256-GCM key.
//
// An envelope is the standard base64 encoding of iv || ciphertext || tag,
// where iv is 12 random bytes generated for every call to Encrypt. The key is
// returned separately as the standard base64 encoding of its 32 raw bytes and
// is never part of the envelope.
package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

const (
	// KeySize is the size of an AES-256 key in bytes.
	KeySize = 32
	// IVSize is the size of an AES-GCM nonce in bytes.
	IVSize = 12
	// TagSize is the size of an AES-GCM authentication tag in bytes.
	TagSize = 16
)

// random is the entropy source for keys and IVs.
var random io.Reader = rand.Reader

// Encrypt generates a new key and IV, seals plaintext and returns the
// base64 envelope together with the base64 raw key.
func Encrypt(plaintext string) (envelope string, key string, err error) {
	rawKey := make([]byte, KeySize)
	if _, err := io.ReadFull(random, rawKey); err != nil {
		return "", "", fmt.Errorf("%w: generate key: %v", ErrCryptoUnavailable, err)
	}

	aead, err := newAEAD(rawKey)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrCryptoUnavailable, err)
	}

	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(random, iv); err != nil {
		return "", "", fmt.Errorf("%w: generate iv: %v", ErrCryptoUnavailable, err)
	}

	// result = iv || ciphertext || tag
	sealed := aead.Seal(iv, iv, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(sealed), base64.StdEncoding.EncodeToString(rawKey), nil
}

// Decrypt opens an envelope produced by Encrypt. Every failure is reported as
// ErrDecryptionFailed so callers cannot tell a wrong key from tampering.
func Decrypt(envelope, key string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil || len(sealed) < IVSize+TagSize {
		return "", ErrDecryptionFailed
	}

	rawKey, err := base64.StdEncoding.DecodeString(key)
	if err != nil || len(rawKey) != KeySize {
		return "", ErrDecryptionFailed
	}

	aead, err := newAEAD(rawKey)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	plain, err := aead.Open(nil, sealed[:IVSize], sealed[IVSize:], nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plain), nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create AEAD: %w", err)
	}
	return aead, nil
}
