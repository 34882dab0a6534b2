package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// JWT header constants required by RFC 7519
const (
	HeaderType      = "JWT"
	HeaderAlgorithm = "HS256" // HMAC-SHA256 chosen for security/performance balance
)

// Header represents the JWT header as defined in RFC 7515
type Header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

// Purpose restricts which operation may consume a token. A token issued for
// one purpose is rejected by verifiers expecting another, even when the
// signature and expiry are otherwise valid.
type Purpose string

const (
	PurposeAuth          Purpose = "auth"
	PurposeVerifyEmail   Purpose = "verify_email"
	PurposePasswordReset Purpose = "password_reset"
)

// Valid reports whether the purpose is one of the known values.
func (p Purpose) Valid() bool {
	switch p {
	case PurposeAuth, PurposeVerifyEmail, PurposePasswordReset:
		return true
	}
	return false
}

// Claims is the signed claim set embedded in every token.
type Claims struct {
	Subject   string  `json:"sub"`
	Purpose   Purpose `json:"purpose"`
	ExpiresAt int64   `json:"exp"`
	IssuedAt  int64   `json:"iat,omitempty"`
}

// Config holds token service configuration. TTL defaults follow the product
// contract: long-lived sessions, day-long verification links, short-lived
// reset links.
type Config struct {
	SigningKey       string        `env:"TOKEN_SIGNING_KEY,required"`
	AuthTTL          time.Duration `env:"TOKEN_AUTH_TTL" envDefault:"168h"`
	VerifyEmailTTL   time.Duration `env:"TOKEN_VERIFY_EMAIL_TTL" envDefault:"24h"`
	PasswordResetTTL time.Duration `env:"TOKEN_PASSWORD_RESET_TTL" envDefault:"1h"`
}

// Service issues and verifies purpose-typed HS256 tokens.
// The signing key is kept in memory only and should be cryptographically secure.
type Service struct {
	signingKey []byte
	ttls       map[Purpose]time.Duration
}

// New creates a token service from config. The signing key should be at
// least 32 bytes for adequate security with HMAC-SHA256.
func New(cfg Config) (*Service, error) {
	if cfg.SigningKey == "" {
		return nil, ErrMissingSigningKey
	}

	ttls := map[Purpose]time.Duration{
		PurposeAuth:          cfg.AuthTTL,
		PurposeVerifyEmail:   cfg.VerifyEmailTTL,
		PurposePasswordReset: cfg.PasswordResetTTL,
	}
	for purpose, ttl := range ttls {
		if ttl <= 0 {
			ttls[purpose] = defaultTTL(purpose)
		}
	}

	return &Service{
		signingKey: []byte(cfg.SigningKey),
		ttls:       ttls,
	}, nil
}

func defaultTTL(p Purpose) time.Duration {
	switch p {
	case PurposeVerifyEmail:
		return 24 * time.Hour
	case PurposePasswordReset:
		return time.Hour
	default:
		return 168 * time.Hour
	}
}

// Issue creates a signed token for the subject using the purpose's
// configured TTL.
func (s *Service) Issue(subject string, purpose Purpose) (string, error) {
	if !purpose.Valid() {
		return "", ErrInvalidPurpose
	}
	return s.IssueWithTTL(subject, purpose, s.ttls[purpose])
}

// IssueWithTTL creates a signed token with an explicit lifetime, overriding
// the configured per-purpose default.
func (s *Service) IssueWithTTL(subject string, purpose Purpose, ttl time.Duration) (string, error) {
	if !purpose.Valid() {
		return "", ErrInvalidPurpose
	}

	now := time.Now()
	claims := Claims{
		Subject:   subject,
		Purpose:   purpose,
		ExpiresAt: now.Add(ttl).Unix(),
		IssuedAt:  now.Unix(),
	}

	headerJSON, err := json.Marshal(Header{Type: HeaderType, Algorithm: HeaderAlgorithm})
	if err != nil {
		return "", err
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	// Build JWT payload: base64url(header).base64url(claims)
	payload := base64URLEncode(headerJSON) + "." + base64URLEncode(claimsJSON)
	return payload + "." + s.sign(payload), nil
}

// Verify checks the token's signature, structure, expiry, and purpose.
// It is a pure function of the token, current time, and signing key; no
// server-side state is consulted, so issued tokens cannot be revoked before
// expiry.
func (s *Service) Verify(tokenString string, expected Purpose) (Claims, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return Claims{}, ErrTokenMalformed
	}

	// Verify signature using constant-time comparison to prevent timing attacks
	payload := parts[0] + "." + parts[1]
	expectedSig := s.sign(payload)
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(expectedSig)) != 1 {
		return Claims{}, ErrTokenMalformed
	}

	headerJSON, err := base64URLDecode(parts[0])
	if err != nil {
		return Claims{}, ErrTokenMalformed
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return Claims{}, ErrTokenMalformed
	}
	// Reject tokens using unexpected algorithms to prevent algorithm confusion attacks
	if header.Algorithm != HeaderAlgorithm {
		return Claims{}, ErrTokenMalformed
	}

	claimsJSON, err := base64URLDecode(parts[1])
	if err != nil {
		return Claims{}, ErrTokenMalformed
	}
	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return Claims{}, ErrTokenMalformed
	}

	if claims.ExpiresAt > 0 && time.Now().Unix() > claims.ExpiresAt {
		return Claims{}, ErrTokenExpired
	}

	if claims.Purpose != expected {
		return Claims{}, ErrPurposeMismatch
	}

	return claims, nil
}

// sign creates an HMAC-SHA256 signature for the given payload.
// Returns base64url-encoded signature as required by RFC 7515.
func (s *Service) sign(payload string) string {
	h := hmac.New(sha256.New, s.signingKey)
	h.Write([]byte(payload))
	return base64URLEncode(h.Sum(nil))
}

func base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

func base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
