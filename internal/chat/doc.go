// Package chat defines the chat domain model: display messages, audio
// artifacts, the error taxonomy, and normalization of webhook responses and
// hydrated message history into display-ready records.
package chat
