// Package capture abstracts the platform recording device. A Device hands
// out an exclusive Stream that emits binary audio chunks until closed; the
// recorder owns the stream for the lifetime of one recording session.
package capture
