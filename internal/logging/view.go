package logging

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"
)

// Entry is one parsed JSON log line.
type Entry struct {
	Time  time.Time
	Level string
	Msg   string
	Attrs map[string]any
	Raw   string
	// Valid is false when the line is not slog JSON.
	Valid bool
}

// ParseLine parses a slog JSON line. Invalid lines keep their raw text.
func ParseLine(line string) Entry {
	entry := Entry{Raw: line}

	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return entry
	}

	entry.Valid = true
	if s, ok := raw["time"].(string); ok {
		entry.Time, _ = time.Parse(time.RFC3339Nano, s)
	}
	entry.Level, _ = raw["level"].(string)
	entry.Msg, _ = raw["msg"].(string)
	delete(raw, "time")
	delete(raw, "level")
	delete(raw, "msg")
	entry.Attrs = raw
	return entry
}

// Tail returns the last n entries of the file at path at or above minLevel.
func Tail(path string, n int, minLevel string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	threshold := ParseLevel(minLevel)
	if minLevel == "" {
		threshold = slog.LevelDebug
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var entries []Entry
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		e := ParseLine(line)
		if e.Valid && ParseLevel(e.Level) < threshold {
			continue
		}
		entries = append(entries, e)
		if n > 0 && len(entries) > n {
			entries = entries[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}
	return entries, nil
}

// Format renders e as a single human-readable line.
func Format(e Entry) string {
	if !e.Valid {
		return e.Raw
	}

	var b strings.Builder
	b.WriteString(e.Time.Local().Format("15:04:05.000"))
	fmt.Fprintf(&b, " %-5s %s", strings.ToUpper(e.Level), e.Msg)

	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Attrs[k])
	}
	return b.String()
}

// Print writes entries to w, one per line.
func Print(w io.Writer, entries []Entry) {
	for _, e := range entries {
		_, _ = fmt.Fprintln(w, Format(e))
	}
}
