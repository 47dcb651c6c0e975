package memory

import (
	"context"
	"sync"

	"rewardkit/core"
	"rewardkit/user"
)

// Store is an in-memory persistence backend for tests and demos.
type Store struct {
	mu   sync.RWMutex
	docs map[core.UserID]user.Document
}

func New() *Store {
	return &Store{docs: make(map[core.UserID]user.Document)}
}

// Load returns a detached copy of the stored document, or an empty document
// for a user never saved.
func (s *Store) Load(_ context.Context, id core.UserID) (user.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return user.Document{}, nil
	}
	return clone(doc), nil
}

func (s *Store) Save(_ context.Context, id core.UserID, doc user.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = clone(doc)
	return nil
}

// Delete removes a stored document. Only explicit reset tooling calls this.
func (s *Store) Delete(_ context.Context, id core.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

func clone(doc user.Document) user.Document {
	cp := make(user.Document, len(doc))
	for k, v := range doc {
		if list, ok := v.([]string); ok {
			cp[k] = append([]string(nil), list...)
			continue
		}
		cp[k] = v
	}
	return cp
}
