package store

import (
	"context"
	"log/slog"
	"sync"

	"rewardkit/core"
	"rewardkit/user"
)

// Backend is the persistence port. Load returns the stored document for a
// user, or an empty document for one never seen; Save replaces it.
type Backend interface {
	Load(ctx context.Context, id core.UserID) (user.Document, error)
	Save(ctx context.Context, id core.UserID, doc user.Document) error
}

// UnloadVeto can keep a record in memory, e.g. while a session is active.
type UnloadVeto func(*user.Record) bool

// Option configures a UserStore.
type Option func(*UserStore)

// WithDateSource overrides the calendar-date source used when defaulting
// fresh module data.
func WithDateSource(today func() core.Date) Option {
	return func(s *UserStore) { s.today = today }
}

// WithLoadHook runs f after a record is inserted into the in-memory map.
func WithLoadHook(f func(*user.Record)) Option {
	return func(s *UserStore) { s.onLoad = f }
}

// WithUnloadHook runs f after a record is removed from the in-memory map.
func WithUnloadHook(f func(*user.Record)) Option {
	return func(s *UserStore) { s.onUnload = f }
}

// WithSaveHook runs f after a queued save completes without error.
func WithSaveHook(f func(*user.Record)) Option {
	return func(s *UserStore) { s.onSave = f }
}

// UserStore is the in-memory cache of loaded user records, backed by the
// persistence port. It owns record lifetime: loads are single-flight per
// user, saves are fire-and-forget snapshots of the current state.
type UserStore struct {
	backend  Backend
	modules  *user.Registry
	today    func() core.Date
	onLoad   func(*user.Record)
	onUnload func(*user.Record)
	onSave   func(*user.Record)

	mu       sync.Mutex
	records  map[core.UserID]*user.Record
	inflight map[core.UserID]*loadCall

	vetoMu sync.RWMutex
	vetoes []UnloadVeto
}

type loadCall struct {
	done chan struct{}
	rec  *user.Record
	err  error
}

func New(backend Backend, modules *user.Registry, opts ...Option) *UserStore {
	s := &UserStore{
		backend:  backend,
		modules:  modules,
		today:    core.Today,
		records:  make(map[core.UserID]*user.Record),
		inflight: make(map[core.UserID]*loadCall),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GetIfLoaded returns the in-memory record, or nil. No side effects.
func (s *UserStore) GetIfLoaded(id core.UserID) *user.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id]
}

// IsLoaded reports whether the record is currently in memory.
func (s *UserStore) IsLoaded(id core.UserID) bool {
	return s.GetIfLoaded(id) != nil
}

// LoadOrGet returns the loaded record or loads it through the backend.
// Concurrent calls for the same unseen id collapse into one backend read;
// every caller observes the same record instance. A failed load leaves the
// user unloaded so the next access can retry.
func (s *UserStore) LoadOrGet(ctx context.Context, id core.UserID) (*user.Record, error) {
	s.mu.Lock()
	if rec, ok := s.records[id]; ok {
		s.mu.Unlock()
		return rec, nil
	}
	if call, ok := s.inflight[id]; ok {
		s.mu.Unlock()
		return s.await(ctx, call)
	}
	call := &loadCall{done: make(chan struct{})}
	s.inflight[id] = call
	s.mu.Unlock()

	go s.load(ctx, id, call)
	return s.await(ctx, call)
}

func (s *UserStore) load(ctx context.Context, id core.UserID, call *loadCall) {
	doc, err := s.backend.Load(ctx, id)

	s.mu.Lock()
	delete(s.inflight, id)
	if err != nil {
		s.mu.Unlock()
		call.err = err
		close(call.done)
		return
	}
	rec := user.UnmarshalDocument(id, doc, s.modules, s.today())
	s.records[id] = rec
	s.mu.Unlock()

	call.rec = rec
	close(call.done)
	if s.onLoad != nil {
		s.onLoad(rec)
	}
}

func (s *UserStore) await(ctx context.Context, call *loadCall) (*user.Record, error) {
	select {
	case <-call.done:
		return call.rec, call.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// RegisterUnloadVeto adds a collaborator that can block unloads.
func (s *UserStore) RegisterUnloadVeto(v UnloadVeto) {
	s.vetoMu.Lock()
	defer s.vetoMu.Unlock()
	s.vetoes = append(s.vetoes, v)
}

// Unload removes the record from memory unless a collaborator vetoes it.
// It reports whether the record was removed. Unload does not save.
func (s *UserStore) Unload(id core.UserID) bool {
	s.mu.Lock()
	rec, ok := s.records[id]
	s.mu.Unlock()
	if !ok {
		return false
	}

	s.vetoMu.RLock()
	vetoes := s.vetoes
	s.vetoMu.RUnlock()
	for _, veto := range vetoes {
		if veto(rec) {
			return false
		}
	}

	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
	if s.onUnload != nil {
		s.onUnload(rec)
	}
	return true
}

// Save queues an async write of the record's current snapshot and returns
// immediately. The channel completes with the write's result; callers may
// drop it (fire-and-forget) or receive to surface failures. A later save of
// the same record supersedes this one's data, whichever write lands last.
func (s *UserStore) Save(rec *user.Record) <-chan error {
	doc := rec.MarshalDocument() // snapshot at enqueue time
	done := make(chan error, 1)
	go func() {
		err := s.backend.Save(context.Background(), rec.ID(), doc)
		if err == nil && s.onSave != nil {
			s.onSave(rec)
		}
		done <- err
	}()
	return done
}

// SaveAll queues a save for every loaded record. Failures are logged, not
// retried.
func (s *UserStore) SaveAll() {
	for _, rec := range s.Loaded() {
		rec := rec
		result := s.Save(rec)
		go func() {
			if err := <-result; err != nil {
				slog.Error("failed to save reward user", "user", rec.ID(), "error", err)
			}
		}()
	}
}

// Loaded returns the records currently in memory.
func (s *UserStore) Loaded() []*user.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := make([]*user.Record, 0, len(s.records))
	for _, rec := range s.records {
		recs = append(recs, rec)
	}
	return recs
}
