package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// WAVHeader represents the canonical 44-byte header of a PCM WAV file
type WAVHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // File size - 8 bytes
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16  // Number of channels
	SampleRate    uint32  // Sample rate
	ByteRate      uint32  // SampleRate * NumChannels * BitsPerSample / 8
	BlockAlign    uint16  // NumChannels * BitsPerSample / 8
	BitsPerSample uint16  // Bits per sample
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // Number of bytes in the data
}

const wavHeaderSize = 44

// EncodeWAV serializes a decoded PCM buffer into a 16-bit linear-PCM WAV
// file. Samples are clamped to [-1, 1], scaled to int16, and interleaved
// channel-by-channel per frame in little-endian order. The output is exactly
// 44 + frames*channels*2 bytes; on any error no partial output is produced.
func EncodeWAV(pcm *PCMBuffer) ([]byte, error) {
	if pcm == nil {
		return nil, fmt.Errorf("cannot encode nil PCM buffer")
	}
	if err := pcm.validate(); err != nil {
		return nil, fmt.Errorf("invalid PCM buffer: %w", err)
	}

	numChannels := uint16(pcm.NumChannels())
	frames := pcm.Frames()
	bitsPerSample := uint16(16)
	dataSize := uint32(frames) * uint32(numChannels) * 2
	fileSize := 36 + dataSize // data starts at offset 44

	header := WAVHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     fileSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1, // PCM
		NumChannels:   numChannels,
		SampleRate:    uint32(pcm.SampleRate),
		ByteRate:      uint32(pcm.SampleRate) * uint32(numChannels) * uint32(bitsPerSample) / 8,
		BlockAlign:    numChannels * bitsPerSample / 8,
		BitsPerSample: bitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+int(dataSize)))
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("failed to write WAV header: %w", err)
	}

	samples := make([]int16, frames*int(numChannels))
	for frame := 0; frame < frames; frame++ {
		for ch := 0; ch < int(numChannels); ch++ {
			samples[frame*int(numChannels)+ch] = floatToSample(pcm.Channels[ch][frame])
		}
	}
	if err := binary.Write(buf, binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("failed to write audio data: %w", err)
	}

	return buf.Bytes(), nil
}

// DecodeWAV decodes canonical WAV data back into a PCM buffer
func DecodeWAV(data []byte) (*PCMBuffer, error) {
	header, err := readHeader(data)
	if err != nil {
		return nil, err
	}

	if header.AudioFormat != 1 {
		return nil, fmt.Errorf("unsupported audio format: %d (only PCM is supported)", header.AudioFormat)
	}
	if header.BitsPerSample != 16 {
		return nil, fmt.Errorf("unsupported bit depth: %d (only 16-bit is supported)", header.BitsPerSample)
	}
	if header.NumChannels < 1 {
		return nil, fmt.Errorf("invalid channel count: %d", header.NumChannels)
	}

	dataSize := int(header.Subchunk2Size)
	if dataSize <= 0 || wavHeaderSize+dataSize > len(data) {
		return nil, fmt.Errorf("WAV data chunk size %d exceeds available %d bytes", dataSize, len(data)-wavHeaderSize)
	}

	return DecodePCM16(data[wavHeaderSize:wavHeaderSize+dataSize], int(header.SampleRate), int(header.NumChannels))
}

// readHeader parses and validates the fixed 44-byte header.
func readHeader(data []byte) (*WAVHeader, error) {
	if len(data) < wavHeaderSize {
		return nil, fmt.Errorf("WAV data too short: need at least %d bytes, got %d", wavHeaderSize, len(data))
	}

	var header WAVHeader
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read WAV header: %w", err)
	}

	if string(header.ChunkID[:]) != "RIFF" {
		return nil, fmt.Errorf("invalid WAV file: missing RIFF header")
	}
	if string(header.Format[:]) != "WAVE" {
		return nil, fmt.Errorf("invalid WAV file: missing WAVE format")
	}
	if string(header.Subchunk1ID[:]) != "fmt " {
		return nil, fmt.Errorf("invalid WAV file: missing fmt chunk")
	}
	if string(header.Subchunk2ID[:]) != "data" {
		return nil, fmt.Errorf("invalid WAV file: missing data chunk")
	}

	return &header, nil
}

// ValidateWAV validates the WAV container layout without decoding audio data
func ValidateWAV(data []byte) error {
	_, err := readHeader(data)
	return err
}

// GetWAVDuration calculates the duration of a WAV file in seconds
func GetWAVDuration(data []byte) (float64, error) {
	info, err := GetWAVInfo(data)
	if err != nil {
		return 0, err
	}
	return info.Duration, nil
}

// WAVInfo describes a WAV file's format and size
type WAVInfo struct {
	SampleRate    uint32  `json:"sample_rate"`
	Channels      uint16  `json:"channels"`
	BitsPerSample uint16  `json:"bits_per_sample"`
	Duration      float64 `json:"duration_seconds"`
	DataSize      uint32  `json:"data_size_bytes"`
	NumFrames     uint32  `json:"num_frames"`
}

// GetWAVInfo extracts metadata from a WAV file
func GetWAVInfo(data []byte) (*WAVInfo, error) {
	header, err := readHeader(data)
	if err != nil {
		return nil, err
	}

	if header.SampleRate == 0 {
		return nil, fmt.Errorf("invalid sample rate: 0")
	}
	if int(header.Subchunk2Size) > len(data)-wavHeaderSize {
		return nil, fmt.Errorf("WAV data chunk size %d exceeds available %d bytes",
			header.Subchunk2Size, len(data)-wavHeaderSize)
	}
	bytesPerFrame := uint32(header.NumChannels) * uint32(header.BitsPerSample) / 8
	if bytesPerFrame == 0 {
		return nil, fmt.Errorf("invalid frame size: %d channels at %d bits", header.NumChannels, header.BitsPerSample)
	}

	frames := header.Subchunk2Size / bytesPerFrame
	return &WAVInfo{
		SampleRate:    header.SampleRate,
		Channels:      header.NumChannels,
		BitsPerSample: header.BitsPerSample,
		Duration:      float64(frames) / float64(header.SampleRate),
		DataSize:      header.Subchunk2Size,
		NumFrames:     frames,
	}, nil
}
