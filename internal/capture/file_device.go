package capture

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/devshisir/aichat/internal/audio"
)

// FileDevice replays an audio file as a live recording source, emitting its
// payload in paced chunks. A WAV file contributes its header's sample rate
// and channel count; the 44-byte header is stripped and the data chunk is
// emitted as raw PCM.
type FileDevice struct {
	path   string
	format Format
	data   []byte

	// ChunkInterval paces chunk emission; zero means 100ms.
	ChunkInterval time.Duration

	mu     sync.Mutex
	active bool
}

// NewFileDevice opens an audio file as a capture source. Raw PCM files need
// the rate and channel count supplied; WAV files are probed.
func NewFileDevice(path string, sampleRate, channels int) (*FileDevice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrAccessDenied, path)
		}
		return nil, fmt.Errorf("failed to read capture source %s: %w", path, err)
	}

	format := Format{SampleRate: sampleRate, Channels: channels, Encoding: EncodingPCM16}
	if audio.ValidateWAV(data) == nil {
		info, err := audio.GetWAVInfo(data)
		if err != nil {
			return nil, fmt.Errorf("failed to probe WAV source %s: %w", path, err)
		}
		format.SampleRate = int(info.SampleRate)
		format.Channels = int(info.Channels)
		data = data[44 : 44+int(info.DataSize)]
	}

	if format.SampleRate <= 0 || format.Channels < 1 {
		return nil, fmt.Errorf("capture source %s: sample rate and channels must be set for raw PCM", path)
	}

	return &FileDevice{path: path, format: format, data: data}, nil
}

// Format implements Device.
func (d *FileDevice) Format() Format {
	return d.format
}

// Open implements Device. Only one stream may be active at a time.
func (d *FileDevice) Open(ctx context.Context) (Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active {
		return nil, fmt.Errorf("capture source %s is already streaming", d.path)
	}
	d.active = true

	interval := d.ChunkInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	// One interval's worth of frames per chunk.
	chunkSize := int(float64(d.format.SampleRate)*interval.Seconds()) * d.format.Channels * 2
	if chunkSize <= 0 {
		chunkSize = 3200
	}

	s := &fileStream{
		chunks: make(chan []byte),
		done:   make(chan struct{}),
		release: func() {
			d.mu.Lock()
			d.active = false
			d.mu.Unlock()
		},
	}
	go s.run(ctx, d.data, chunkSize, interval)
	return s, nil
}

type fileStream struct {
	chunks  chan []byte
	done    chan struct{}
	once    sync.Once
	release func()
}

func (s *fileStream) Chunks() <-chan []byte {
	return s.chunks
}

func (s *fileStream) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.release()
	})
	return nil
}

func (s *fileStream) run(ctx context.Context, data []byte, chunkSize int, interval time.Duration) {
	defer close(s.chunks)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for offset := 0; offset < len(data); {
		end := offset + chunkSize
		if end > len(data) {
			end = len(data)
		}

		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
		}

		select {
		case s.chunks <- data[offset:end]:
			offset = end
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}
