package outbox

import (
	"context"
	"sync"
	"time"
)

// InMemory keeps outbox rows in process memory for tests and development.
type InMemory struct {
	mu       sync.Mutex
	messages []Message
	clock    func() time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{clock: time.Now}
}

func (s *InMemory) Append(_ context.Context, msgs ...Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msgs...)
	return nil
}

func (s *InMemory) ProcessBatch(ctx context.Context, limit int, publish PublishFunc) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var idx []int
	var batch []Message
	for i, m := range s.messages {
		if m.PublishedAt != nil {
			continue
		}
		idx = append(idx, i)
		batch = append(batch, m)
		if limit > 0 && len(batch) == limit {
			break
		}
	}
	if len(batch) == 0 {
		return 0, nil
	}
	if err := publish(ctx, batch); err != nil {
		return 0, err
	}
	now := s.clock()
	for _, i := range idx {
		s.messages[i].PublishedAt = &now
	}
	return len(batch), nil
}

// All returns a copy of every stored message.
func (s *InMemory) All() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Pending counts unpublished messages.
func (s *InMemory) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.messages {
		if m.PublishedAt == nil {
			n++
		}
	}
	return n
}
