package webhook

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/devshisir/aichat/internal/chat"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubmitMultipart(t *testing.T) {
	var (
		gotPath    string
		gotPayload map[string]string
		gotName    string
		gotAudio   []byte
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("failed to parse multipart form: %v", err)
		}
		if err := json.Unmarshal([]byte(r.FormValue("payload")), &gotPayload); err != nil {
			t.Fatalf("failed to parse payload field: %v", err)
		}
		file, header, err := r.FormFile("audio")
		if err != nil {
			t.Fatalf("failed to read audio field: %v", err)
		}
		defer file.Close()
		gotName = header.Filename
		gotAudio, _ = io.ReadAll(file)

		w.Write([]byte(`{"text": "hello back"}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Encoding: EncodingMultipart}, testLogger(), nil)

	body, err := client.Submit(context.Background(), Submission{
		Audio: &chat.Artifact{Data: []byte("wav-bytes"), MIME: "audio/wav", Recorded: true},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if gotPath != "/voice/chat" {
		t.Errorf("expected /voice/chat path, got %q", gotPath)
	}
	if gotPayload["user_id"] != "123" || gotPayload["session_id"] != "abc" || gotPayload["role"] != "user" {
		t.Errorf("unexpected identity defaults in payload: %v", gotPayload)
	}
	if gotName != "recording.wav" {
		t.Errorf("live recordings should be named recording.wav, got %q", gotName)
	}
	if string(gotAudio) != "wav-bytes" {
		t.Errorf("unexpected audio bytes: %q", gotAudio)
	}

	if text, ok := chat.ExtractResponseText(body); !ok || text != "hello back" {
		t.Errorf("expected extractable response, got %q (ok=%v)", text, ok)
	}
}

func TestSubmitMultipartUploadKeepsName(t *testing.T) {
	var gotName string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("failed to parse multipart form: %v", err)
		}
		_, header, err := r.FormFile("audio")
		if err != nil {
			t.Fatalf("failed to read audio field: %v", err)
		}
		gotName = header.Filename
		w.Write([]byte(`"ok"`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, testLogger(), nil)
	_, err := client.Submit(context.Background(), Submission{
		Audio: &chat.Artifact{Data: []byte("x"), Name: "meeting.wav"},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if gotName != "meeting.wav" {
		t.Errorf("uploads should keep their original name, got %q", gotName)
	}
}

func TestSubmitQuery(t *testing.T) {
	var gotQuery map[string][]string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		gotQuery = r.URL.Query()
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"message": "reply"}`))
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:   server.URL,
		Encoding:  EncodingQuery,
		UserID:    "u1",
		SessionID: "s1",
	}, testLogger(), nil)

	audio := []byte{0x01, 0x02, 0x03}
	_, err := client.Submit(context.Background(), Submission{
		Text:  "hi there",
		Audio: &chat.Artifact{Data: audio},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if len(gotBody) != 0 {
		t.Errorf("query-parameter form must be bodyless, got %d bytes", len(gotBody))
	}
	if got := gotQuery["text"]; len(got) != 1 || got[0] != "hi there" {
		t.Errorf("unexpected text param: %v", got)
	}
	if got := gotQuery["audio"]; len(got) != 1 || got[0] != base64.StdEncoding.EncodeToString(audio) {
		t.Errorf("unexpected audio param: %v", got)
	}
	if got := gotQuery["user_id"]; len(got) != 1 || got[0] != "u1" {
		t.Errorf("unexpected user_id param: %v", got)
	}
	if got := gotQuery["role"]; len(got) != 1 || got[0] != "user" {
		t.Errorf("unexpected role param: %v", got)
	}
}

func TestSubmitQueryOmitsEmptyFields(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`"ok"`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Encoding: EncodingQuery}, testLogger(), nil)
	if _, err := client.Submit(context.Background(), Submission{Text: "just text"}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if _, present := gotQuery["audio"]; present {
		t.Error("audio param should be omitted when no audio is present")
	}
}

func TestSubmitNotConfigured(t *testing.T) {
	client := NewClient(Config{}, testLogger(), nil)

	_, err := client.Submit(context.Background(), Submission{Text: "hi"})
	if !errors.Is(err, chat.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	blank := NewClient(Config{BaseURL: "   "}, testLogger(), nil)
	if _, err := blank.Submit(context.Background(), Submission{Text: "hi"}); !errors.Is(err, chat.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured for blank URL, got %v", err)
	}
}

func TestSubmitServerError(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"structured message", `{"message": "quota exceeded"}`, "quota exceeded"},
		{"structured error", `{"error": "bad payload"}`, "bad payload"},
		{"unstructured body", `boom`, "HTTP 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(Config{BaseURL: server.URL}, testLogger(), nil)
			_, err := client.Submit(context.Background(), Submission{Text: "hi"})
			if !errors.Is(err, chat.ErrSubmissionFailed) {
				t.Fatalf("expected ErrSubmissionFailed, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.expected) {
				t.Errorf("expected error to carry %q, got %q", tt.expected, err.Error())
			}
		})
	}
}

func TestSubmitTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(Config{BaseURL: server.URL}, testLogger(), nil)
	_, err := client.Submit(context.Background(), Submission{Text: "hi"})
	if !errors.Is(err, chat.ErrSubmissionFailed) {
		t.Fatalf("expected ErrSubmissionFailed, got %v", err)
	}
}

func TestHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("expected /messages path, got %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("session_id"); got != "s1" {
			t.Errorf("expected session_id s1, got %q", got)
		}
		w.Write([]byte(`[
			{"id": "m2", "role": "assistant", "content": "reply", "created_at": "2024-01-02T10:00:00Z"},
			{"id": "m1", "role": "user", "content": "question", "created_at": "2024-01-01T10:00:00Z"}
		]`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, SessionID: "s1"}, testLogger(), nil)
	entries, err := client.History(context.Background())
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	messages := chat.FormatMessages(entries)
	if messages[0].ID != "m1" || messages[1].ID != "m2" {
		t.Errorf("expected chronological order m1, m2; got %s, %s", messages[0].ID, messages[1].ID)
	}
}
