package escrow

import "errors"

var (
	// ErrUnavailable means no server secret is configured; escrow
	// operations cannot run until one is provided out-of-band.
	ErrUnavailable = errors.New("escrow: server encryption secret not configured")

	ErrEncryptionFailed    = errors.New("escrow: encryption failed")
	ErrDecryptionFailed    = errors.New("escrow: decryption failed")
	ErrKeyGenerationFailed = errors.New("escrow: key generation failed")
)
