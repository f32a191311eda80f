package audio

import (
	"math"
	"testing"
)

// sineBuffer generates a 440Hz test tone across the given channel count.
func sineBuffer(sampleRate, channels int, seconds float64) *PCMBuffer {
	frames := int(float64(sampleRate) * seconds)
	buf := NewPCMBuffer(sampleRate, channels, frames)
	for ch := 0; ch < channels; ch++ {
		for i := 0; i < frames; i++ {
			t := float64(i) / float64(sampleRate)
			buf.Channels[ch][i] = float32(0.5 * math.Sin(2*math.Pi*440*t))
		}
	}
	return buf
}

func TestEncodeWAVSize(t *testing.T) {
	tests := []struct {
		name     string
		channels int
		frames   int
	}{
		{"mono", 1, 800},
		{"stereo", 2, 800},
		{"single frame", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := NewPCMBuffer(8000, tt.channels, tt.frames)
			wavData, err := EncodeWAV(buf)
			if err != nil {
				t.Fatalf("EncodeWAV failed: %v", err)
			}

			expectedSize := 44 + tt.frames*tt.channels*2
			if len(wavData) != expectedSize {
				t.Errorf("expected WAV size %d, got %d", expectedSize, len(wavData))
			}

			if err := ValidateWAV(wavData); err != nil {
				t.Errorf("generated WAV is invalid: %v", err)
			}
		})
	}
}

func TestEncodeWAVHeader(t *testing.T) {
	buf := sineBuffer(16000, 2, 0.05)
	wavData, err := EncodeWAV(buf)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	info, err := GetWAVInfo(wavData)
	if err != nil {
		t.Fatalf("GetWAVInfo failed: %v", err)
	}

	if info.SampleRate != 16000 {
		t.Errorf("expected sample rate 16000, got %d", info.SampleRate)
	}
	if info.Channels != 2 {
		t.Errorf("expected 2 channels, got %d", info.Channels)
	}
	if info.BitsPerSample != 16 {
		t.Errorf("expected 16 bits per sample, got %d", info.BitsPerSample)
	}
	if info.NumFrames != uint32(buf.Frames()) {
		t.Errorf("expected %d frames, got %d", buf.Frames(), info.NumFrames)
	}

	expectedDuration := float64(buf.Frames()) / 16000
	if math.Abs(info.Duration-expectedDuration) > 0.001 {
		t.Errorf("expected duration %.3f, got %.3f", expectedDuration, info.Duration)
	}
}

func TestWAVRoundTrip(t *testing.T) {
	original := sineBuffer(8000, 2, 0.1)

	wavData, err := EncodeWAV(original)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	decoded, err := DecodeWAV(wavData)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}

	if decoded.SampleRate != original.SampleRate {
		t.Errorf("expected sample rate %d, got %d", original.SampleRate, decoded.SampleRate)
	}
	if decoded.NumChannels() != original.NumChannels() {
		t.Fatalf("expected %d channels, got %d", original.NumChannels(), decoded.NumChannels())
	}
	if decoded.Frames() != original.Frames() {
		t.Fatalf("expected %d frames, got %d", original.Frames(), decoded.Frames())
	}

	// Round trips stay within one quantization step of the original
	// (with a little slack for float32 rounding).
	const step = 1.01 / 32768
	for ch := range original.Channels {
		for i := range original.Channels[ch] {
			diff := math.Abs(float64(original.Channels[ch][i] - decoded.Channels[ch][i]))
			if diff > step {
				t.Fatalf("channel %d sample %d: diff %.6f exceeds quantization step", ch, i, diff)
			}
		}
	}
}

func TestEncodeWAVClamping(t *testing.T) {
	buf := NewPCMBuffer(8000, 1, 4)
	buf.Channels[0] = []float32{-2.0, -1.0, 1.0, 2.0}

	wavData, err := EncodeWAV(buf)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	decoded, err := DecodeWAV(wavData)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}

	expected := []float32{-1.0, -1.0, 1.0, 1.0}
	for i, want := range expected {
		got := decoded.Channels[0][i]
		if math.Abs(float64(got-want)) > 1.0/32768 {
			t.Errorf("sample %d: expected %.4f after clamping, got %.4f", i, want, got)
		}
	}
}

func TestEncodeWAVInvalid(t *testing.T) {
	tests := []struct {
		name string
		buf  *PCMBuffer
	}{
		{"nil buffer", nil},
		{"no channels", &PCMBuffer{SampleRate: 8000}},
		{"no frames", NewPCMBuffer(8000, 1, 0)},
		{"zero sample rate", NewPCMBuffer(0, 1, 10)},
		{"ragged channels", &PCMBuffer{SampleRate: 8000, Channels: [][]float32{make([]float32, 10), make([]float32, 5)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := EncodeWAV(tt.buf); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestDecodeWAVInvalid(t *testing.T) {
	valid, err := EncodeWAV(sineBuffer(8000, 1, 0.01))
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	truncated := make([]byte, 20)
	copy(truncated, valid)

	corrupted := make([]byte, len(valid))
	copy(corrupted, valid)
	copy(corrupted[0:4], "JUNK")

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"truncated header", truncated},
		{"corrupted magic", corrupted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeWAV(tt.data); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestDecodePCM16(t *testing.T) {
	// Two frames of stereo: L=100, R=-200, L=300, R=-400.
	data := []byte{100, 0, 56, 255, 44, 1, 112, 254}

	buf, err := DecodePCM16(data, 8000, 2)
	if err != nil {
		t.Fatalf("DecodePCM16 failed: %v", err)
	}

	if buf.Frames() != 2 {
		t.Fatalf("expected 2 frames, got %d", buf.Frames())
	}

	expected := [][]int16{{100, 300}, {-200, -400}}
	for ch := range expected {
		for i, want := range expected[ch] {
			got := buf.Channels[ch][i]
			if math.Abs(float64(got)-float64(sampleToFloat(want))) > 1e-6 {
				t.Errorf("channel %d frame %d: expected sample %d, got %.6f", ch, i, want, got)
			}
		}
	}
}

func TestDecodePCM16OddLength(t *testing.T) {
	if _, err := DecodePCM16([]byte{1, 2, 3}, 8000, 1); err == nil {
		t.Error("expected error for odd byte length")
	}
	if _, err := DecodePCM16([]byte{1, 2}, 8000, 2); err == nil {
		t.Error("expected error for partial stereo frame")
	}
	if _, err := DecodePCM16(nil, 8000, 1); err == nil {
		t.Error("expected error for empty data")
	}
}

func TestGetWAVInfoOverstatedDataSize(t *testing.T) {
	valid, err := EncodeWAV(sineBuffer(8000, 1, 0.01))
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	// Declare ten times the payload that is actually on disk.
	overstated := make([]byte, len(valid))
	copy(overstated, valid)
	declared := uint32(len(valid)-44) * 10
	overstated[40] = byte(declared)
	overstated[41] = byte(declared >> 8)
	overstated[42] = byte(declared >> 16)
	overstated[43] = byte(declared >> 24)

	if _, err := GetWAVInfo(overstated); err == nil {
		t.Error("expected error for data chunk size beyond the file, got nil")
	}
	if _, err := GetWAVDuration(overstated); err == nil {
		t.Error("expected error from GetWAVDuration, got nil")
	}

	if _, err := GetWAVInfo(valid); err != nil {
		t.Errorf("valid file should still probe: %v", err)
	}
}
