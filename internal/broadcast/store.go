// Package broadcast holds the latest raw score payload per court for the
// overlay push server. The engine stores upstream bytes verbatim so the
// overlay renderer applies its own formatting.
package broadcast

import "sync"

// Store is a mutex-guarded courtID -> latest payload map. Written by the
// engine loop, read by overlay request handlers.
type Store struct {
	mu       sync.Mutex
	payloads map[int][]byte
}

// NewStore creates an empty broadcast store.
func NewStore() *Store {
	return &Store{payloads: make(map[int][]byte)}
}

// Set replaces the latest payload for a court. Last value wins.
func (s *Store) Set(courtID int, payload []byte) {
	data := make([]byte, len(payload))
	copy(data, payload)

	s.mu.Lock()
	s.payloads[courtID] = data
	s.mu.Unlock()
}

// Get returns a copy of the latest payload for a court, or nil if none was
// published.
func (s *Store) Get(courtID int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.payloads[courtID]
	if !ok {
		return nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out
}

// Clear drops the payload for a court, e.g. after its queue is replaced.
func (s *Store) Clear(courtID int) {
	s.mu.Lock()
	delete(s.payloads, courtID)
	s.mu.Unlock()
}
