package chat

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// FormatTime renders an elapsed-seconds counter as zero-padded MM:SS.
// Minutes are not capped: 3665 renders as "61:05".
func FormatTime(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

var (
	tzSuffixRe     = regexp.MustCompile(`[+-]\d{2}:\d{2}$`)
	fractionalRe   = regexp.MustCompile(`\.\d+$`)
	createdLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02Z07:00",
	}
)

// FormatTimestamp renders a server-provided created_at value as local HH:MM.
// An empty or unparseable value falls back to the current local time. Values
// without a timezone indicator are treated as UTC, never as local time.
func FormatTimestamp(created string) string {
	t, ok := parseCreatedAt(created)
	if !ok {
		t = time.Now()
	}
	return t.Local().Format("15:04")
}

// parseCreatedAt parses a created_at value. Naive timestamps (no trailing Z
// or numeric offset) get their fractional seconds stripped and a UTC
// designator appended before parsing, matching how the webhook stores them.
func parseCreatedAt(created string) (time.Time, bool) {
	s := strings.TrimSpace(created)
	if s == "" {
		return time.Time{}, false
	}
	if !strings.Contains(s, "Z") && !tzSuffixRe.MatchString(s) {
		s = fractionalRe.ReplaceAllString(s, "") + "Z"
	}
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
