// Package account is the authentication and account management core of the
// retirement planner. It covers registration with per-user master key
// escrow, email verification, login, password reset, engagement analytics,
// and the admin surface, all behind a transport-agnostic Service.
//
// Secrets never cross the package boundary: password hashes and escrowed
// keys stay inside Storage, and the plaintext master key is returned exactly
// once at registration and again on each successful login.
package account
