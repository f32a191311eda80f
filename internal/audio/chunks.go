package audio

import (
	"sync"
	"time"
)

// ChunkBuffer accumulates the binary chunks a recording device emits before
// finalization. Chunks are kept in arrival order; the buffer is append-only
// until Reset.
type ChunkBuffer struct {
	chunks     [][]byte
	totalBytes int
	lastUpdate time.Time

	mu sync.RWMutex
}

// ChunkStats describes the buffer contents for monitoring.
type ChunkStats struct {
	Chunks     int       `json:"chunks"`
	TotalBytes int       `json:"total_bytes"`
	LastUpdate time.Time `json:"last_update"`
}

// NewChunkBuffer creates an empty chunk buffer.
func NewChunkBuffer() *ChunkBuffer {
	return &ChunkBuffer{lastUpdate: time.Now()}
}

// Append stores a copy of the chunk. Empty chunks are ignored, matching
// recorder devices that emit zero-length data events.
func (b *ChunkBuffer) Append(chunk []byte) {
	if len(chunk) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	c := make([]byte, len(chunk))
	copy(c, chunk)
	b.chunks = append(b.chunks, c)
	b.totalBytes += len(c)
	b.lastUpdate = time.Now()
}

// Bytes concatenates all chunks into a single payload in arrival order.
func (b *ChunkBuffer) Bytes() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]byte, 0, b.totalBytes)
	for _, c := range b.chunks {
		out = append(out, c...)
	}
	return out
}

// Len returns the total buffered byte count.
func (b *ChunkBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.totalBytes
}

// Count returns the number of buffered chunks.
func (b *ChunkBuffer) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.chunks)
}

// Stats returns a snapshot of the buffer state.
func (b *ChunkBuffer) Stats() ChunkStats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return ChunkStats{
		Chunks:     len(b.chunks),
		TotalBytes: b.totalBytes,
		LastUpdate: b.lastUpdate,
	}
}

// Reset drops all buffered chunks.
func (b *ChunkBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chunks = nil
	b.totalBytes = 0
	b.lastUpdate = time.Now()
}
