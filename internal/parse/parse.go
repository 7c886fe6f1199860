// Package parse converts raw Cowrie log text into structured events.
// Malformed lines are data, not failures: they are dropped and the batch
// continues.
package parse

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/OskariKosonen/hunajapannu/internal/model"
)

// Line decodes a single JSON log line. The second return value is false
// when the line is not a JSON object; such lines never become events.
// Missing optional fields stay zero-valued; a missing or unparseable
// timestamp yields a zero time, which the analytics engine treats as
// "unknown" rather than defaulting it.
func Line(line string) (model.Event, bool) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil || fields == nil {
		return model.Event{}, false
	}

	ev := model.Event{
		EventID:  str(fields, "eventid"),
		SrcIP:    str(fields, "src_ip"),
		Session:  str(fields, "session"),
		Username: str(fields, "username"),
		Password: str(fields, "password"),
		Input:    str(fields, "input"),
		URL:      str(fields, "url"),
		Fields:   fields,
	}
	if raw := str(fields, "timestamp"); raw != "" {
		if ts, err := parseTimestamp(raw); err == nil {
			ev.Timestamp = ts
		}
	}
	return ev, true
}

// All splits text on newlines, skips blank lines, and returns every line
// that decodes as a JSON object. The result may be shorter than the
// non-blank line count; callers that need the discrepancy count lines
// themselves.
func All(text string) []model.Event {
	if text == "" {
		return nil
	}
	var events []model.Event
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if ev, ok := Line(line); ok {
			events = append(events, ev)
		}
	}
	return events
}

// CountLines returns the number of non-blank lines in text.
func CountLines(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// parseTimestamp accepts RFC 3339 with or without fractional seconds;
// Cowrie emits microsecond precision ("2026-08-30T12:00:00.123456Z").
func parseTimestamp(s string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return ts, nil
}

// str extracts a string field from a decoded object, returning "" for
// missing or non-string values.
func str(fields map[string]any, key string) string {
	if v, ok := fields[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
