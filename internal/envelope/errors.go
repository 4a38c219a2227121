package envelope

import "errors"

var (
	// ErrCryptoUnavailable is returned when the secure random source or the
	// AES-GCM primitive cannot be used. No secret can be created until it is fixed.
	ErrCryptoUnavailable = errors.New("secure cryptography is unavailable")

	// ErrDecryptionFailed is returned for a wrong key, a truncated or corrupted
	// envelope and a failed authentication tag alike.
	ErrDecryptionFailed = errors.New("decryption failed")
)
