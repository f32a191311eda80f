package chat

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// FormatMessages converts a hydrated history batch into display-ready
// messages, ordered by creation time (oldest first). Entries without a
// created_at sort as epoch zero, i.e. first; ties keep their arrival order.
func FormatMessages(entries []HistoryEntry) []Message {
	if len(entries) == 0 {
		return nil
	}

	sorted := make([]HistoryEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return createdAtOrZero(sorted[i]).Before(createdAtOrZero(sorted[j]))
	})

	messages := make([]Message, 0, len(sorted))
	for _, e := range sorted {
		messages = append(messages, Message{
			ID:        e.id(),
			Text:      e.text(),
			IsRight:   e.Role == RoleUser,
			Timestamp: FormatTimestamp(e.CreatedAt),
		})
	}
	return messages
}

func createdAtOrZero(e HistoryEntry) time.Time {
	t, ok := parseCreatedAt(e.CreatedAt)
	if !ok {
		return time.Time{}
	}
	return t
}

// responseTextFields are the object fields tried, in priority order, when
// extracting a display string from a webhook response. The webhook's actual
// response schema is undocumented; this list is deliberately not extended.
var responseTextFields = []string{"text", "message", "result", "response", "content"}

// ExtractResponseText extracts a display string from an arbitrary webhook
// response body. A JSON string is used directly; for objects the known
// fields are tried in priority order, then the first string-valued property
// in declaration order. Non-JSON bodies are used verbatim. The second return
// is false when no text could be extracted, which is not an error: the
// response simply produces no assistant message.
func ExtractResponseText(body []byte) (string, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", false
	}

	var value any
	if err := json.Unmarshal(trimmed, &value); err != nil {
		// Plain-text response.
		s := strings.TrimSpace(string(trimmed))
		return s, s != ""
	}

	switch v := value.(type) {
	case string:
		return v, strings.TrimSpace(v) != ""
	case map[string]any:
		for _, field := range responseTextFields {
			if s, ok := v[field].(string); ok && s != "" {
				return s, true
			}
		}
		// Fall back to the first string-valued property. Map iteration
		// order is random, so re-walk the raw object in declaration order.
		if s, ok := firstStringProperty(trimmed); ok {
			return s, true
		}
	}
	return "", false
}

// firstStringProperty scans a JSON object's top-level properties in
// declaration order and returns the first non-blank string value.
func firstStringProperty(raw []byte) (string, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	// Opening brace.
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return "", false
	}
	for dec.More() {
		// Property name.
		if _, err := dec.Token(); err != nil {
			return "", false
		}
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return "", false
		}
		var s string
		if err := json.Unmarshal(val, &s); err == nil && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}
