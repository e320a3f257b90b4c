package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/jonathan/factory-onboarding/internal/onboarding"
)

// SSE event names emitted by /onboard/stream
const (
	eventStep     = "step"
	eventResult   = "result"
	eventError    = "error"
	eventComplete = "complete"
)

var errStreamClosed = errors.New("event stream closed")

// SSEWriter frames Server-Sent Events with a monotonically increasing id.
// Progress arrives from several pass goroutines, so writes are serialized.
// After the first failed write the stream is considered gone and every
// later write returns errStreamClosed without touching the connection.
type SSEWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
	err     error
}

// NewSSEWriter sets the event-stream headers on w
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	return &SSEWriter{w: w, flusher: flusher, nextID: 1}, nil
}

// WriteEvent sends one event with data encoded as JSON
func (s *SSEWriter) WriteEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, payload); err != nil {
		s.err = fmt.Errorf("%w: %v", errStreamClosed, err)
		return s.err
	}
	s.nextID++
	s.flusher.Flush()
	return nil
}

// WriteProgress sends a pipeline stage transition
func (s *SSEWriter) WriteProgress(event onboarding.ProgressEvent) error {
	return s.WriteEvent(eventStep, event)
}

// WriteError sends an error event; delivery is best effort
func (s *SSEWriter) WriteError(message string) {
	_ = s.WriteEvent(eventError, map[string]string{"error": message})
}

// WriteComplete sends the terminal event of a run
func (s *SSEWriter) WriteComplete(runID, outcome string) {
	_ = s.WriteEvent(eventComplete, map[string]string{
		"run_id":  runID,
		"outcome": outcome,
	})
}

// Sent reports how many events reached the client
func (s *SSEWriter) Sent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextID - 1
}
