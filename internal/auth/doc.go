// Package auth owns the user registry, the single active session and the
// per-user activity log.
//
// A Manager is constructed once per process with NewManager and passed to
// whatever needs it. Passwords are stored as salted argon2id hashes; the
// session carries an HS256 token so a tampered session blob is rejected on
// load. Session expiry is checked when the session is loaded (NewManager,
// Reload), not continuously.
package auth
