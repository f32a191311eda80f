// Command mockwebhook is a local stand-in for the chat webhook backend.
// It accepts both submission encodings, stores messages in memory, and
// serves them back as history.
package main

import (
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"
)

type storedMessage struct {
	ID        int    `json:"id"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type store struct {
	mu       sync.Mutex
	nextID   int
	messages []storedMessage
}

func (s *store) add(userID, sessionID, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.messages = append(s.messages, storedMessage{
		ID:        s.nextID,
		UserID:    userID,
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *store) list(userID, sessionID string) []storedMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]storedMessage, 0, len(s.messages))
	for _, m := range s.messages {
		if (userID == "" || m.UserID == userID) && (sessionID == "" || m.SessionID == sessionID) {
			out = append(out, m)
		}
	}
	return out
}

var messages = &store{}

// chatHandler accepts query-encoded submissions: a bodyless POST with text
// or base64 audio in the URL parameters.
func chatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	text := query.Get("text")
	userID := query.Get("user_id")
	sessionID := query.Get("session_id")

	var audioSize int
	if encoded := query.Get("audio"); encoded != "" {
		audio, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid base64 audio")
			return
		}
		audioSize = len(audio)
	}

	log.Printf("QUERY SUBMISSION: user=%s session=%s text=%q audio=%d bytes",
		userID, sessionID, text, audioSize)

	respond(w, userID, sessionID, text, audioSize)
}

// voiceChatHandler accepts multipart submissions: a payload JSON field plus
// the WAV file under the audio field.
func voiceChatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "error parsing form")
		return
	}

	var payload struct {
		UserID    string `json:"user_id"`
		SessionID string `json:"session_id"`
		Role      string `json:"role"`
		Text      string `json:"text"`
	}
	if raw := r.FormValue("payload"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload JSON")
			return
		}
	}

	var audioSize int
	var filename string
	if file, header, err := r.FormFile("audio"); err == nil {
		defer file.Close()
		audio, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "error reading audio file")
			return
		}
		audioSize = len(audio)
		filename = header.Filename
	}

	log.Printf("MULTIPART SUBMISSION: user=%s session=%s text=%q file=%s audio=%d bytes",
		payload.UserID, payload.SessionID, payload.Text, filename, audioSize)

	respond(w, payload.UserID, payload.SessionID, payload.Text, audioSize)
}

// messagesHandler serves stored history for the given identity.
func messagesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	history := messages.list(query.Get("user_id"), query.Get("session_id"))

	log.Printf("HISTORY REQUEST: user=%s session=%s -> %d messages",
		query.Get("user_id"), query.Get("session_id"), len(history))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(history)
}

func respond(w http.ResponseWriter, userID, sessionID, text string, audioSize int) {
	userContent := text
	if userContent == "" {
		userContent = "[Audio message]"
	}
	messages.add(userID, sessionID, "user", userContent)

	reply := fmt.Sprintf("You said: %s", userContent)
	if text == "" && audioSize > 0 {
		reply = fmt.Sprintf("Received your audio message (%d bytes).", audioSize)
	}
	messages.add(userID, sessionID, "assistant", reply)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"text": reply})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func main() {
	addr := flag.String("addr", ":9000", "Listen address")
	flag.Parse()

	http.HandleFunc("/", chatHandler)
	http.HandleFunc("/voice/chat", voiceChatHandler)
	http.HandleFunc("/messages", messagesHandler)

	log.Printf("Mock webhook server starting on %s", *addr)
	log.Printf("Point the client at: http://localhost%s", *addr)

	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
