// Package audio handles chunk buffering, PCM decoding, and WAV encoding.
// It accumulates the binary chunks emitted by a recording device, decodes
// them into floating-point PCM, and serializes PCM into the canonical
// 44-byte-header 16-bit WAV container used for webhook submission.
package audio
