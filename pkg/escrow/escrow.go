package escrow

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the size of a user master key in bytes (256 bits for AES-256).
	KeySize = 32

	// saltInfo provides domain separation for HKDF key derivation.
	saltInfo = "quitplan-escrow-v1"
)

// Config holds key-escrow configuration. Secret is intentionally optional:
// an empty secret degrades escrow to unavailable instead of preventing the
// process from starting.
type Config struct {
	Secret string `env:"ESCROW_SECRET"`
}

// Service performs authenticated symmetric encryption of user master keys
// under a server-wide secret.
type Service struct {
	secret []byte
}

// New creates an escrow service. The secret may be absent; callers must
// check errors from Encrypt/Decrypt rather than assuming escrow works.
func New(cfg Config) *Service {
	var secret []byte
	if cfg.Secret != "" {
		secret = []byte(cfg.Secret)
	}
	return &Service{secret: secret}
}

// Available reports whether a server secret is configured.
func (s *Service) Available() bool {
	return len(s.secret) > 0
}

// GenerateKey returns a fresh random 256-bit key, hex-encoded. Generation
// does not depend on the server secret.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", errors.Join(ErrKeyGenerationFailed, err)
	}
	return hex.EncodeToString(key), nil
}

// Encrypt seals the plaintext master key under the server secret using
// AES-256-GCM. The nonce is prepended to the ciphertext so the result is
// self-contained; the whole blob is base64-encoded for document storage.
func (s *Service) Encrypt(masterKey string) (string, error) {
	if !s.Available() {
		return "", ErrUnavailable
	}

	aesGCM, err := s.cipher()
	if err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	ciphertext := aesGCM.Seal(nonce, nonce, []byte(masterKey), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt is the inverse of Encrypt. It fails with ErrDecryptionFailed when
// the ciphertext is malformed, was tampered with, or was sealed under a
// different secret (e.g. after secret rotation).
func (s *Service) Decrypt(ciphertext string) (string, error) {
	if !s.Available() {
		return "", ErrUnavailable
	}

	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}

	aesGCM, err := s.cipher()
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}

	nonceSize := aesGCM.NonceSize()
	if len(blob) < nonceSize {
		return "", ErrDecryptionFailed
	}

	nonce, sealed := blob[:nonceSize], blob[nonceSize:]
	plaintext, err := aesGCM.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}

	return string(plaintext), nil
}

// cipher derives the AES key from the server secret via HKDF-SHA256 and
// returns a GCM instance. Derivation normalizes secrets of any length to
// the 32 bytes AES-256 requires.
func (s *Service) cipher() (cipher.AEAD, error) {
	hkdfReader := hkdf.New(sha256.New, s.secret, nil, []byte(saltInfo))

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdfReader, key); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}
