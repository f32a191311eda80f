package chat

import "errors"

// Failure taxonomy for the client. Every failure is recoverable by a
// subsequent user action; callers surface exactly one of these per attempt.
var (
	// ErrDeviceAccessDenied indicates the platform refused microphone access.
	ErrDeviceAccessDenied = errors.New("microphone access denied")

	// ErrEncodingFailed indicates PCM decoding or WAV encoding of a finished
	// recording failed; the partial artifact is discarded.
	ErrEncodingFailed = errors.New("audio encoding failed")

	// ErrValidation indicates invalid user input: wrong upload type, or a
	// submission with both or neither of text and audio.
	ErrValidation = errors.New("validation failed")

	// ErrNotConfigured indicates the webhook base URL is absent or blank.
	// It pre-empts any network activity.
	ErrNotConfigured = errors.New("webhook URL is not configured")

	// ErrSubmissionFailed indicates a transport or server failure during
	// submission. The user's input is preserved for retry.
	ErrSubmissionFailed = errors.New("submission failed")
)
