package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/devshisir/aichat/internal/audio"
	"github.com/devshisir/aichat/internal/capture"
	"github.com/devshisir/aichat/internal/chat"
	"github.com/devshisir/aichat/internal/metrics"
)

// State identifies the recording session state
type State int

const (
	StateIdle State = iota
	StateRecording
	StateFinalizing
)

// String returns a human-readable state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// Recorder coordinates one recording session at a time: device acquisition,
// chunk buffering, elapsed-time ticking, and finalization into a WAV
// artifact.
type Recorder struct {
	device  capture.Device
	logger  *slog.Logger
	metrics *metrics.Metrics

	// tickInterval drives the elapsed counter; one second in production.
	tickInterval time.Duration

	elapsed atomic.Int64

	mu     sync.Mutex
	state  State
	chunks *audio.ChunkBuffer
	stream capture.Stream
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an idle recorder for the given device. The metrics argument
// may be nil.
func New(device capture.Device, logger *slog.Logger, m *metrics.Metrics) *Recorder {
	return &Recorder{
		device:       device,
		logger:       logger,
		metrics:      m,
		tickInterval: time.Second,
		chunks:       audio.NewChunkBuffer(),
	}
}

// State returns the current session state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Recording reports whether a session is active.
func (r *Recorder) Recording() bool {
	return r.State() == StateRecording
}

// Elapsed returns the whole seconds since the session started.
func (r *Recorder) Elapsed() int {
	return int(r.elapsed.Load())
}

// Start acquires the device stream and begins buffering chunks. A start
// while a session is already active is an invalid transition; callers must
// stop first. A refused device permission surfaces as
// chat.ErrDeviceAccessDenied.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateIdle {
		return fmt.Errorf("cannot start recording while %s", r.state)
	}
	if r.device == nil {
		return fmt.Errorf("%w: no capture device available", chat.ErrDeviceAccessDenied)
	}

	stream, err := r.device.Open(ctx)
	if err != nil {
		if errors.Is(err, capture.ErrAccessDenied) {
			return fmt.Errorf("%w: %v", chat.ErrDeviceAccessDenied, err)
		}
		return fmt.Errorf("failed to open capture device: %w", err)
	}

	pumpCtx, cancel := context.WithCancel(ctx)
	r.stream = stream
	r.cancel = cancel
	r.done = make(chan struct{})
	r.chunks.Reset()
	r.elapsed.Store(0)
	r.state = StateRecording

	go r.pump(pumpCtx, stream, r.done)

	if r.metrics != nil {
		r.metrics.RecordRecordingStarted()
	}
	r.logger.Info("recording started",
		slog.Int("sample_rate", r.device.Format().SampleRate),
		slog.Int("channels", r.device.Format().Channels),
	)
	return nil
}

// pump appends incoming chunks and ticks the elapsed counter until the
// session is torn down or the device stops producing data.
func (r *Recorder) pump(ctx context.Context, stream capture.Stream, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	chunks := stream.Chunks()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.elapsed.Add(1)
		case chunk, ok := <-chunks:
			if !ok {
				// Device ended the stream; keep ticking until stopped.
				chunks = nil
				continue
			}
			r.chunks.Append(chunk)
		}
	}
}

// Stop finalizes the session: the timer stops, buffered chunks are
// concatenated and encoded into a WAV artifact, and the device stream is
// released unconditionally, including on the encode failure path. On failure
// the session returns to idle with no artifact and chat.ErrEncodingFailed.
func (r *Recorder) Stop() (*chat.Artifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateRecording {
		return nil, fmt.Errorf("cannot stop recording while %s", r.state)
	}
	r.state = StateFinalizing

	elapsed := int(r.elapsed.Load())
	closeErr := r.teardownLocked()

	data := r.chunks.Bytes()
	r.state = StateIdle

	artifact, err := r.finalize(data)
	if err != nil {
		if r.metrics != nil {
			r.metrics.RecordRecordingFailed()
		}
		r.logger.Error("recording finalization failed",
			slog.Int("buffered_bytes", len(data)),
			slog.String("error", err.Error()),
		)
		if closeErr != nil {
			err = multierror.Append(err, closeErr)
		}
		return nil, fmt.Errorf("%w: %v", chat.ErrEncodingFailed, err)
	}

	if closeErr != nil {
		r.logger.Warn("capture stream close reported error", slog.String("error", closeErr.Error()))
	}
	if r.metrics != nil {
		r.metrics.RecordRecordingCompleted(float64(elapsed), len(artifact.Data))
	}
	r.logger.Info("recording finalized",
		slog.Int("elapsed_seconds", elapsed),
		slog.Int("wav_bytes", len(artifact.Data)),
	)
	return artifact, nil
}

// Close tears down any active session without producing an artifact. Used on
// page teardown so no timer or stream outlives its owner.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateIdle {
		return nil
	}
	err := r.teardownLocked()
	r.state = StateIdle
	return err
}

// teardownLocked is the single teardown path: cancel the pump, wait for it,
// release the stream, and drain any chunks still in flight. Callers hold
// r.mu.
func (r *Recorder) teardownLocked() error {
	var result *multierror.Error

	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	if r.done != nil {
		<-r.done
		r.done = nil
	}
	if r.stream != nil {
		if err := r.stream.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to close capture stream: %w", err))
		}
		// The stream closes its channel after Close; collect what the
		// pump had not consumed yet.
		for chunk := range r.stream.Chunks() {
			r.chunks.Append(chunk)
		}
		r.stream = nil
	}

	return result.ErrorOrNil()
}

// finalize decodes the concatenated chunk payload per the device encoding
// and re-encodes it as canonical WAV.
func (r *Recorder) finalize(data []byte) (*chat.Artifact, error) {
	format := r.device.Format()

	var (
		pcm *audio.PCMBuffer
		err error
	)
	switch format.Encoding {
	case capture.EncodingWAV:
		pcm, err = audio.DecodeWAV(data)
	case capture.EncodingPCM16:
		pcm, err = audio.DecodePCM16(data, format.SampleRate, format.Channels)
	default:
		return nil, fmt.Errorf("unsupported capture encoding %q", format.Encoding)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode recorded audio: %w", err)
	}

	wav, err := audio.EncodeWAV(pcm)
	if err != nil {
		return nil, fmt.Errorf("failed to encode WAV: %w", err)
	}

	return &chat.Artifact{
		Data:     wav,
		MIME:     "audio/wav",
		Recorded: true,
	}, nil
}
