// Package input enforces mutual exclusivity between the three input modes:
// typed text, a finished recording, and a selected audio file. It owns the
// active artifact's preview file and releases it on every superseding
// transition.
package input
