// Package eventlog writes structured run events as JSON lines, one object per
// line, plus a plain-text console transcript. The event shape carries a
// location tag, message, structured payload, and correlation identifiers so
// runs can be reconstructed from the state directory after the fact.
package eventlog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

type event struct {
	ID        string         `json:"id"`
	Timestamp int64          `json:"timestamp"`
	Location  string         `json:"location"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	SessionID string         `json:"sessionId"`
	RunID     string         `json:"runId"`
}

// sink implements logr.LogSink by appending JSON lines to w.
type sink struct {
	mu        *sync.Mutex
	w         io.Writer
	sessionID string
	runID     string
	values    []any
}

var nowMillis = func() int64 { return time.Now().UnixMilli() }

// New returns a logger that appends events to w. sessionID and runID are
// stamped onto every event.
func New(w io.Writer, sessionID, runID string) logr.Logger {
	return logr.New(&sink{mu: &sync.Mutex{}, w: w, sessionID: sessionID, runID: runID})
}

// Open creates or appends to the event log at path, creating parent
// directories as needed, and returns the logger plus a close function.
func Open(path, sessionID, runID string) (logr.Logger, func() error, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return logr.Discard(), nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return logr.Discard(), nil, err
	}
	return New(f, sessionID, runID), f.Close, nil
}

// Tee returns a writer that copies console output to both console and a
// transcript file at path, plus a close function for the transcript.
func Tee(console io.Writer, path string) (io.Writer, func() error, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return console, nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return console, nil, err
	}
	return io.MultiWriter(console, f), f.Close, nil
}

func (s *sink) Init(logr.RuntimeInfo) {}

func (s *sink) Enabled(int) bool { return true }

func (s *sink) Info(_ int, msg string, kvs ...any) {
	s.emit(msg, nil, kvs)
}

func (s *sink) Error(err error, msg string, kvs ...any) {
	s.emit(msg, err, kvs)
}

func (s *sink) WithValues(kvs ...any) logr.LogSink {
	clone := *s
	clone.values = append(append([]any{}, s.values...), kvs...)
	return &clone
}

func (s *sink) WithName(string) logr.LogSink { return s }

// emit serializes one event. The "location" key is promoted out of the
// payload into the event's location tag; everything else lands in data.
func (s *sink) emit(msg string, err error, kvs []any) {
	data := map[string]any{}
	location := ""
	all := append(append([]any{}, s.values...), kvs...)
	for i := 0; i+1 < len(all); i += 2 {
		key, ok := all[i].(string)
		if !ok {
			continue
		}
		if key == "location" {
			if loc, ok := all[i+1].(string); ok {
				location = loc
				continue
			}
		}
		data[key] = all[i+1]
	}
	if err != nil {
		data["error"] = err.Error()
	}

	ts := nowMillis()
	ev := event{
		ID:        fmt.Sprintf("log_%d_%d", ts, os.Getpid()),
		Timestamp: ts,
		Location:  location,
		Message:   msg,
		Data:      data,
		SessionID: s.sessionID,
		RunID:     s.runID,
	}
	line, marshalErr := json.Marshal(ev)
	if marshalErr != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.w.Write(append(line, '\n'))
}
