// Package token issues and verifies purpose-typed, time-bounded signed
// tokens for the account subsystem.
//
// Tokens are compact HS256 JWTs (HMAC-SHA256). Each token embeds a subject
// (the account email), a Purpose, and an absolute expiry. Purpose is a closed
// enumeration — auth sessions, email-verification links, and password-reset
// links — and verification rejects any token presented for an operation other
// than the one it was issued for. This prevents cross-use such as replaying a
// verification link as a login session.
//
// Verification is a pure function of (token, current time, signing key).
// There is no server-side revocation state: a token becomes unusable only by
// expiry or purpose mismatch.
//
// # Usage
//
//	svc, err := token.New(token.Config{SigningKey: "super-secret"})
//	if err != nil {
//	    // handle error
//	}
//
//	t, err := svc.Issue("user@example.com", token.PurposeVerifyEmail)
//
//	claims, err := svc.Verify(t, token.PurposeVerifyEmail)
//	if errors.Is(err, token.ErrTokenExpired) {
//	    // ask the user to request a fresh link
//	}
//
// # Error Handling
//
// ErrTokenExpired, ErrTokenMalformed, and ErrPurposeMismatch are sentinel
// variables and can be compared using errors.Is. Signature failures,
// structural damage, and algorithm confusion all surface as
// ErrTokenMalformed without further detail.
package token
