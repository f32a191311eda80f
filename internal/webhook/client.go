package webhook

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/devshisir/aichat/internal/chat"
	"github.com/devshisir/aichat/internal/metrics"
)

// Encoding selects the request shape used for submissions.
type Encoding string

const (
	// EncodingMultipart POSTs a payload JSON field plus the raw audio file
	// to {base}/voice/chat.
	EncodingMultipart Encoding = "multipart"

	// EncodingQuery POSTs everything percent- and base64-encoded into the
	// URL query string with no body.
	EncodingQuery Encoding = "query"
)

// Config contains webhook client configuration
type Config struct {
	BaseURL   string
	Encoding  Encoding
	Timeout   time.Duration
	UserID    string
	SessionID string
	Role      string
}

// Client performs submissions and history fetches against the webhook
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// Submission is one outbound message: trimmed text, audio, never both.
type Submission struct {
	Text  string
	Audio *chat.Artifact
}

// NewClient creates a webhook client. A blank base URL is valid: the client
// reports unconfigured and refuses submissions before any network activity.
// The metrics argument may be nil.
func NewClient(config Config, logger *slog.Logger, m *metrics.Metrics) *Client {
	if config.Encoding == "" {
		config.Encoding = EncodingMultipart
	}
	if config.UserID == "" {
		config.UserID = "123"
	}
	if config.SessionID == "" {
		config.SessionID = "abc"
	}
	if config.Role == "" {
		config.Role = chat.RoleUser
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger:  logger,
		metrics: m,
	}
}

// Configured reports whether a webhook base URL is set.
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.config.BaseURL) != ""
}

// Encoding returns the active request encoding.
func (c *Client) Encoding() Encoding {
	return c.config.Encoding
}

// Submit sends one message to the webhook and returns the raw response body
// for normalization. Failures surface chat.ErrSubmissionFailed carrying the
// most specific available message; a missing base URL surfaces
// chat.ErrNotConfigured before any network activity.
func (c *Client) Submit(ctx context.Context, sub Submission) ([]byte, error) {
	if !c.Configured() {
		return nil, chat.ErrNotConfigured
	}

	var (
		req *http.Request
		err error
	)
	switch c.config.Encoding {
	case EncodingQuery:
		req, err = c.newQueryRequest(ctx, sub)
	default:
		req, err = c.newMultipartRequest(ctx, sub)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chat.ErrSubmissionFailed, err)
	}

	start := time.Now()
	body, err := c.do(req)
	if c.metrics != nil {
		c.metrics.RecordSubmission(string(c.config.Encoding), err == nil, time.Since(start).Seconds())
	}
	if err != nil {
		c.logger.Error("webhook submission failed",
			slog.String("encoding", string(c.config.Encoding)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("webhook submission succeeded",
		slog.String("encoding", string(c.config.Encoding)),
		slog.Int("response_bytes", len(body)),
		slog.Duration("duration", time.Since(start)),
	)
	return body, nil
}

// History fetches the session's message history for hydration.
func (c *Client) History(ctx context.Context) ([]chat.HistoryEntry, error) {
	if !c.Configured() {
		return nil, chat.ErrNotConfigured
	}

	u, err := url.Parse(strings.TrimRight(c.config.BaseURL, "/") + "/messages")
	if err != nil {
		return nil, fmt.Errorf("invalid webhook URL: %w", err)
	}
	q := u.Query()
	q.Set("user_id", c.config.UserID)
	q.Set("session_id", c.config.SessionID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create history request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var entries []chat.HistoryEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse history response: %w", err)
	}

	if c.metrics != nil {
		c.metrics.RecordHistoryFetch(len(entries))
	}
	return entries, nil
}

// do performs the request and maps transport and HTTP-status failures onto
// chat.ErrSubmissionFailed, preferring a structured server message.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chat.ErrSubmissionFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", chat.ErrSubmissionFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if msg := serverMessage(body); msg != "" {
			return nil, fmt.Errorf("%w: %s", chat.ErrSubmissionFailed, msg)
		}
		return nil, fmt.Errorf("%w: HTTP %d", chat.ErrSubmissionFailed, resp.StatusCode)
	}

	return body, nil
}

// newMultipartRequest builds the multipart form: a payload JSON field plus
// the raw audio bytes under the audio field.
func (c *Client) newMultipartRequest(ctx context.Context, sub Submission) (*http.Request, error) {
	payload, err := json.Marshal(map[string]string{
		"user_id":    c.config.UserID,
		"session_id": c.config.SessionID,
		"role":       c.config.Role,
		"text":       sub.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("payload", string(payload)); err != nil {
		return nil, fmt.Errorf("failed to write payload field: %w", err)
	}
	if sub.Audio != nil && len(sub.Audio.Data) > 0 {
		fw, err := writer.CreateFormFile("audio", sub.Audio.FileName())
		if err != nil {
			return nil, fmt.Errorf("failed to create audio form file: %w", err)
		}
		if _, err := fw.Write(sub.Audio.Data); err != nil {
			return nil, fmt.Errorf("failed to write audio data: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/voice/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// newQueryRequest builds the bodyless POST with everything in the query
// string: percent-encoded text, base64 audio, identity fields. Empty fields
// are omitted.
func (c *Client) newQueryRequest(ctx context.Context, sub Submission) (*http.Request, error) {
	u, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook URL: %w", err)
	}

	q := u.Query()
	if sub.Text != "" {
		q.Set("text", sub.Text)
	}
	if sub.Audio != nil && len(sub.Audio.Data) > 0 {
		q.Set("audio", base64.StdEncoding.EncodeToString(sub.Audio.Data))
	}
	if c.config.UserID != "" {
		q.Set("user_id", c.config.UserID)
	}
	if c.config.SessionID != "" {
		q.Set("session_id", c.config.SessionID)
	}
	if c.config.Role != "" {
		q.Set("role", c.config.Role)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// serverMessage extracts a structured error message from a response body,
// preferring message over error.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
