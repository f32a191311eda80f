package capture

import (
	"context"
	"errors"
)

// Encoding identifies how a device serializes its chunks.
type Encoding string

const (
	// EncodingPCM16 is raw interleaved little-endian 16-bit PCM.
	EncodingPCM16 Encoding = "pcm16"

	// EncodingWAV is a complete canonical WAV container.
	EncodingWAV Encoding = "wav"
)

// Format describes the audio a device produces.
type Format struct {
	SampleRate int
	Channels   int
	Encoding   Encoding
}

// ErrAccessDenied is returned by Open when the platform refuses access to
// the recording device. It is reported to the user, not retried.
var ErrAccessDenied = errors.New("capture device access denied")

// Device is a recording source. Implementations must support one exclusive
// stream at a time.
type Device interface {
	// Open acquires the device and starts emitting chunks. Returns
	// ErrAccessDenied when the platform refuses permission.
	Open(ctx context.Context) (Stream, error)

	// Format reports the encoding of the chunks the device emits.
	Format() Format
}

// Stream is one live recording. The chunk channel is closed when the device
// stops producing data; Close releases the device and must be safe to call
// on every exit path.
type Stream interface {
	Chunks() <-chan []byte
	Close() error
}
