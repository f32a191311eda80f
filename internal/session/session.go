package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/devshisir/aichat/internal/chat"
	"github.com/devshisir/aichat/internal/input"
	"github.com/devshisir/aichat/internal/metrics"
	"github.com/devshisir/aichat/internal/recorder"
	"github.com/devshisir/aichat/internal/webhook"
)

// Session coordinates the input modes, the recorder, and the webhook client
// for one chat conversation. The message log is append-only; hydration
// replaces it wholesale with a chronologically sorted batch.
type Session struct {
	logger      *slog.Logger
	metrics     *metrics.Metrics
	coordinator *input.Coordinator
	recorder    *recorder.Recorder
	client      *webhook.Client

	mu       sync.RWMutex
	messages []chat.Message
}

// New creates a session over the given collaborators. The metrics argument
// may be nil.
func New(coordinator *input.Coordinator, rec *recorder.Recorder, client *webhook.Client,
	logger *slog.Logger, m *metrics.Metrics) *Session {
	return &Session{
		logger:      logger,
		metrics:     m,
		coordinator: coordinator,
		recorder:    rec,
		client:      client,
	}
}

// Coordinator exposes the input state for the rendering layer.
func (s *Session) Coordinator() *input.Coordinator {
	return s.coordinator
}

// Recorder exposes the recording state for the rendering layer.
func (s *Session) Recorder() *recorder.Recorder {
	return s.recorder
}

// Configured reports whether submissions are possible at all.
func (s *Session) Configured() bool {
	return s.client.Configured()
}

// Messages returns a snapshot of the message log.
func (s *Session) Messages() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]chat.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) append(msg chat.Message) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.RecordMessageAppended(msg.IsRight)
	}
}

// ToggleRecording starts a recording session when idle and finalizes it when
// recording, installing the resulting artifact as the active input. The
// returned flag is true when a recording is now in progress.
func (s *Session) ToggleRecording(ctx context.Context) (bool, error) {
	if s.recorder.Recording() {
		artifact, err := s.recorder.Stop()
		if err != nil {
			return false, err
		}
		s.coordinator.SetRecording(artifact)
		return false, nil
	}

	s.coordinator.BeginRecording()
	if err := s.recorder.Start(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Submit sends the active input to the webhook. On success the user message
// (and the normalized assistant reply, when one is extracted) is appended
// and the input is cleared. On failure nothing is appended and the input is
// preserved for retry.
func (s *Session) Submit(ctx context.Context) error {
	text := strings.TrimSpace(s.coordinator.Text())
	artifact := s.coordinator.Artifact()

	if err := validateInputs(text, artifact); err != nil {
		return err
	}

	body, err := s.client.Submit(ctx, webhook.Submission{Text: text, Audio: artifact})
	if err != nil {
		return err
	}

	display := text
	if display == "" {
		display = chat.AudioPlaceholder
	}
	s.append(chat.NewUserMessage(display))

	if aiText, ok := chat.ExtractResponseText(body); ok {
		s.append(chat.NewAssistantMessage(aiText))
	} else {
		s.logger.Info("webhook response produced no assistant message",
			slog.Int("response_bytes", len(body)),
		)
	}

	s.coordinator.Clear()
	return nil
}

// Hydrate replaces the message log with the remote history, sorted by
// creation time.
func (s *Session) Hydrate(ctx context.Context) error {
	entries, err := s.client.History(ctx)
	if err != nil {
		return err
	}

	messages := chat.FormatMessages(entries)
	s.mu.Lock()
	s.messages = messages
	s.mu.Unlock()

	s.logger.Info("history hydrated", slog.Int("messages", len(messages)))
	return nil
}

// Close tears down the recorder and releases any preview resources.
func (s *Session) Close() error {
	var result *multierror.Error
	if err := s.recorder.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := s.coordinator.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// validateInputs enforces the exactly-one-input precondition before any
// network activity.
func validateInputs(text string, artifact *chat.Artifact) error {
	if text == "" && artifact == nil {
		return fmt.Errorf("%w: nothing to send", chat.ErrValidation)
	}
	if text != "" && artifact != nil {
		return fmt.Errorf("%w: text and audio cannot be sent together", chat.ErrValidation)
	}
	return nil
}
