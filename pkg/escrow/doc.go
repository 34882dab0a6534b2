// Package escrow generates per-user master encryption keys and holds them in
// server-side escrow.
//
// Each account receives a random 256-bit master key at registration. The key
// is returned to the user in plaintext exactly once and stored only as
// AES-256-GCM ciphertext sealed under a server-wide secret. At login the
// server unseals the key and hands it back so the client can decrypt its
// data, without the plaintext ever being persisted.
//
// The AES key is derived from the configured secret with HKDF-SHA-256 and a
// fixed domain-separation string, so secrets of any length are accepted. On
// successful encryption the nonce is prepended to the ciphertext and the
// whole blob is base64-encoded.
//
// A missing secret is a supported state: New never fails, Available reports
// false, and Encrypt/Decrypt return ErrUnavailable. Callers decide how to
// degrade — registration refuses to proceed, login falls back to returning
// no master key.
//
// # Error Handling
//
// All failures wrap sentinel errors (ErrUnavailable, ErrDecryptionFailed,
// ErrEncryptionFailed) matchable with errors.Is. Tampered ciphertext, wrong
// secrets, and malformed encodings are indistinguishable by design: all
// surface as ErrDecryptionFailed.
package escrow
