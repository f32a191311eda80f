// Package session owns the append-only message log and drives one chat
// session: toggling recordings, submitting the active input to the webhook,
// and hydrating remote history through the normalizer.
package session
