package input

import (
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/devshisir/aichat/internal/chat"
)

// Coordinator holds the active input state. Invariant: at most one of
// {non-empty text, audio artifact} exists at any time.
type Coordinator struct {
	logger *slog.Logger

	// previewDir is where artifact previews are materialized for local
	// playback; defaults to the system temp directory.
	previewDir string

	// permissive accepts any audio content type for uploads instead of
	// WAV only.
	permissive bool

	mu       sync.Mutex
	text     string
	artifact *chat.Artifact

	// selectedPath mirrors the file-input control's selection; cleared on
	// removal so the identical file can be re-selected later.
	selectedPath string
}

// NewCoordinator creates an empty coordinator.
func NewCoordinator(logger *slog.Logger, previewDir string, permissive bool) *Coordinator {
	if previewDir == "" {
		previewDir = os.TempDir()
	}
	return &Coordinator{logger: logger, previewDir: previewDir, permissive: permissive}
}

// Text returns the typed text.
func (c *Coordinator) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Artifact returns the active audio artifact, or nil.
func (c *Coordinator) Artifact() *chat.Artifact {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.artifact
}

// SelectedPath returns the current file selection, or empty.
func (c *Coordinator) SelectedPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedPath
}

// SetText updates the typed text. Non-empty text discards any active
// artifact along with its preview and file selection.
func (c *Coordinator) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.text = text
	if strings.TrimSpace(text) != "" {
		c.discardArtifactLocked()
	}
}

// BeginRecording clears every prior input mode before a new recording
// session starts.
func (c *Coordinator) BeginRecording() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.text = ""
	c.discardArtifactLocked()
}

// SetRecording installs a finalized recording as the active artifact,
// clearing typed text and any file selection.
func (c *Coordinator) SetRecording(artifact *chat.Artifact) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.discardArtifactLocked()
	c.text = ""
	c.artifact = artifact
	c.materializePreviewLocked()
}

// SelectFile validates and installs an uploaded audio file as the active
// artifact. Rejected selections surface chat.ErrValidation and change no
// state.
func (c *Coordinator) SelectFile(path string) error {
	if err := c.validateUpload(path); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: cannot read %s: %v", chat.ErrValidation, path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		if ext == ".wav" {
			mimeType = "audio/wav"
		} else {
			mimeType = "application/octet-stream"
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.discardArtifactLocked()
	c.text = ""
	c.selectedPath = path
	c.artifact = &chat.Artifact{
		Data: data,
		MIME: mimeType,
		Name: filepath.Base(path),
	}
	c.materializePreviewLocked()
	return nil
}

// Remove discards the active artifact, releases its preview, and resets the
// file selection so the identical file could be re-selected.
func (c *Coordinator) Remove() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.discardArtifactLocked()
}

// Clear resets all input state after a successful submission.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = ""
	c.discardArtifactLocked()
}

// Close releases any outstanding preview.
func (c *Coordinator) Close() error {
	c.Clear()
	return nil
}

// discardArtifactLocked releases the preview and clears artifact and
// selection state. Callers hold c.mu.
func (c *Coordinator) discardArtifactLocked() {
	if c.artifact != nil {
		if err := c.artifact.ReleasePreview(); err != nil {
			c.logger.Warn("failed to release audio preview", slog.String("error", err.Error()))
		}
		c.artifact = nil
	}
	c.selectedPath = ""
}

// materializePreviewLocked writes the artifact to the preview directory for
// native playback. Preview creation is best effort; a failure leaves the
// artifact usable without a preview.
func (c *Coordinator) materializePreviewLocked() {
	if c.artifact == nil || len(c.artifact.Data) == 0 {
		return
	}

	path := filepath.Join(c.previewDir, "aichat-preview-"+uuid.NewString()+".wav")
	if err := os.WriteFile(path, c.artifact.Data, 0o600); err != nil {
		c.logger.Warn("failed to materialize audio preview", slog.String("error", err.Error()))
		return
	}
	c.artifact.PreviewPath = path
}

// audioExtensions lists the container kinds accepted in permissive mode.
var audioExtensions = map[string]bool{
	".wav": true, ".mp3": true, ".ogg": true, ".oga": true,
	".m4a": true, ".flac": true, ".webm": true, ".aac": true, ".opus": true,
}

// validateUpload checks the selection against the accepted container kinds:
// WAV by content type or extension, or any audio type in permissive mode.
func (c *Coordinator) validateUpload(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	mimeType := mime.TypeByExtension(ext)

	if ext == ".wav" || isWAVMime(mimeType) {
		return nil
	}
	if c.permissive {
		if audioExtensions[ext] || strings.HasPrefix(mimeType, "audio/") {
			return nil
		}
		return fmt.Errorf("%w: please select an audio file", chat.ErrValidation)
	}
	return fmt.Errorf("%w: please select a .wav format audio file", chat.ErrValidation)
}

func isWAVMime(mimeType string) bool {
	switch strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])) {
	case "audio/wav", "audio/wave", "audio/x-wav":
		return true
	}
	return false
}
