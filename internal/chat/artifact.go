package chat

import (
	"errors"
	"io/fs"
	"os"
)

// DefaultRecordingName is the filename used for live recordings when
// submitting audio to the webhook.
const DefaultRecordingName = "recording.wav"

// Artifact is a finalized audio payload ready for submission: either a
// finished recording or a user-selected file. At most one artifact is active
// at a time (enforced by the input coordinator).
type Artifact struct {
	Data []byte
	MIME string

	// Name is the original filename for uploads; empty for recordings.
	Name string

	// PreviewPath points at a temporary copy materialized for local
	// playback. Empty when no preview exists.
	PreviewPath string

	// Recorded is true when the artifact came from a live recording rather
	// than a file selection.
	Recorded bool
}

// FileName returns the name under which the audio is submitted:
// recording.wav for live recordings, the original name for uploads.
func (a *Artifact) FileName() string {
	if a.Recorded || a.Name == "" {
		return DefaultRecordingName
	}
	return a.Name
}

// ReleasePreview removes the preview file, if any. Safe to call repeatedly;
// a preview that is already gone is not an error.
func (a *Artifact) ReleasePreview() error {
	if a.PreviewPath == "" {
		return nil
	}
	path := a.PreviewPath
	a.PreviewPath = ""
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
