package memory

import (
	"strings"
	"sync"
)

// Sink implements ports.OutputSink in memory and publishes every change of
// the accumulated text to its subscribers.
// Safe for concurrent use.
type Sink struct {
	mu          sync.RWMutex
	text        strings.Builder
	subscribers map[chan string]struct{}
}

// NewSink creates an empty sink.
func NewSink() *Sink {
	return &Sink{subscribers: make(map[chan string]struct{})}
}

// Append adds text to the end of the output.
func (s *Sink) Append(text string) {
	if text == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text.WriteString(text)
	s.publish()
}

// Text returns the accumulated output.
func (s *Sink) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text.String()
}

// Clear empties the output.
func (s *Sink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text.Reset()
	s.publish()
}

// Subscribe returns a channel receiving the full text after each change, and
// a function to cancel the subscription.
func (s *Sink) Subscribe() (<-chan string, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan string, 10)
	s.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, ch)
			close(ch)
		})
	}
}

// publish must be called with s.mu held.
func (s *Sink) publish() {
	text := s.text.String()
	for ch := range s.subscribers {
		select {
		case ch <- text:
		default:
			// Slow subscriber; it will catch up on the next change.
		}
	}
}
