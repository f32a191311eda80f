package audio

import (
	"fmt"
	"time"
)

// PCMBuffer holds decoded multi-channel PCM audio as per-channel sample
// slices with values in [-1, 1]. All channels carry the same number of
// frames.
type PCMBuffer struct {
	SampleRate int
	Channels   [][]float32
}

// NewPCMBuffer allocates a buffer for the given channel count and frame
// count.
func NewPCMBuffer(sampleRate, channels, frames int) *PCMBuffer {
	data := make([][]float32, channels)
	for i := range data {
		data[i] = make([]float32, frames)
	}
	return &PCMBuffer{SampleRate: sampleRate, Channels: data}
}

// NumChannels returns the channel count.
func (p *PCMBuffer) NumChannels() int {
	return len(p.Channels)
}

// Frames returns the per-channel sample count.
func (p *PCMBuffer) Frames() int {
	if len(p.Channels) == 0 {
		return 0
	}
	return len(p.Channels[0])
}

// Duration returns the buffer's play time.
func (p *PCMBuffer) Duration() time.Duration {
	if p.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(p.Frames()) / float64(p.SampleRate) * float64(time.Second))
}

// validate checks the buffer invariants shared by the encoder.
func (p *PCMBuffer) validate() error {
	if p.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", p.SampleRate)
	}
	if len(p.Channels) == 0 {
		return fmt.Errorf("buffer has no channels")
	}
	frames := len(p.Channels[0])
	for i, ch := range p.Channels {
		if len(ch) != frames {
			return fmt.Errorf("channel %d has %d frames, channel 0 has %d", i, len(ch), frames)
		}
	}
	if frames == 0 {
		return fmt.Errorf("buffer has no audio frames")
	}
	return nil
}

// DecodePCM16 decodes raw interleaved little-endian 16-bit PCM bytes into a
// PCMBuffer. The byte length must cover whole frames for the declared
// channel count.
func DecodePCM16(data []byte, sampleRate, channels int) (*PCMBuffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if channels < 1 {
		return nil, fmt.Errorf("channel count must be at least 1, got %d", channels)
	}
	frameBytes := channels * 2
	if len(data) == 0 || len(data)%frameBytes != 0 {
		return nil, fmt.Errorf("PCM data length %d is not a multiple of frame size %d", len(data), frameBytes)
	}

	frames := len(data) / frameBytes
	buf := NewPCMBuffer(sampleRate, channels, frames)
	for frame := 0; frame < frames; frame++ {
		for ch := 0; ch < channels; ch++ {
			offset := frame*frameBytes + ch*2
			sample := int16(data[offset]) | int16(data[offset+1])<<8
			buf.Channels[ch][frame] = sampleToFloat(sample)
		}
	}
	return buf, nil
}

// floatToSample converts a float sample to signed 16-bit PCM: clamp to
// [-1, 1], negatives scaled by 32768, non-negatives by 32767.
func floatToSample(s float32) int16 {
	if s < -1 {
		s = -1
	} else if s > 1 {
		s = 1
	}
	if s < 0 {
		return int16(s * 32768)
	}
	return int16(s * 32767)
}

// sampleToFloat is the inverse scaling; round trips land within one
// quantization step (1/32768) of the original.
func sampleToFloat(s int16) float32 {
	if s < 0 {
		return float32(s) / 32768
	}
	return float32(s) / 32767
}
