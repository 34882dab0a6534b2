// Package email sends transactional emails through Postmark, behind an
// EmailSender interface so callers never depend on the transport.
//
// NewPostmarkClient is the production implementation; NewDevSender logs
// messages instead of sending them for local development. Delivery is
// best-effort by contract — callers dispatch through the background queue
// and treat failures as log-and-forget.
package email
