package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rewardkit/core"
	"rewardkit/user"
)

// countingBackend counts Load calls and can be made slow or faulty.
type countingBackend struct {
	mu      sync.Mutex
	loads   int32
	saves   map[core.UserID]user.Document
	delay   time.Duration
	loadErr error
	saveErr error
}

func newCountingBackend() *countingBackend {
	return &countingBackend{saves: make(map[core.UserID]user.Document)}
}

func (b *countingBackend) Load(_ context.Context, id core.UserID) (user.Document, error) {
	atomic.AddInt32(&b.loads, 1)
	if b.delay > 0 {
		time.Sleep(b.delay)
	}
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if doc, ok := b.saves[id]; ok {
		return doc, nil
	}
	return user.Document{}, nil
}

func (b *countingBackend) Save(_ context.Context, id core.UserID, doc user.Document) error {
	if b.saveErr != nil {
		return b.saveErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saves[id] = doc
	return nil
}

func TestLoadOrGetSingleFlight(t *testing.T) {
	backend := newCountingBackend()
	backend.delay = 20 * time.Millisecond
	s := New(backend, user.DefaultRegistry())

	const callers = 16
	records := make([]*user.Record, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := s.LoadOrGet(context.Background(), "u1")
			if err != nil {
				t.Error(err)
				return
			}
			records[i] = rec
		}(i)
	}
	wg.Wait()

	if got := atomic.LoadInt32(&backend.loads); got != 1 {
		t.Fatalf("expected exactly one backend read, got %d", got)
	}
	for i := 1; i < callers; i++ {
		if records[i] != records[0] {
			t.Fatal("all callers must observe the same record instance")
		}
	}
}

func TestLoadOrGetReturnsCachedRecord(t *testing.T) {
	backend := newCountingBackend()
	s := New(backend, user.DefaultRegistry())

	first, err := s.LoadOrGet(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.LoadOrGet(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatal("cached record expected")
	}
	if atomic.LoadInt32(&backend.loads) != 1 {
		t.Fatal("cached access must not hit the backend")
	}
	if s.GetIfLoaded("u1") != first {
		t.Fatal("GetIfLoaded should see the cached record")
	}
	if s.GetIfLoaded("u2") != nil {
		t.Fatal("GetIfLoaded must not load")
	}
}

func TestFailedLoadLeavesUserUnloaded(t *testing.T) {
	backend := newCountingBackend()
	backend.loadErr = errors.New("disk on fire")
	s := New(backend, user.DefaultRegistry())

	if _, err := s.LoadOrGet(context.Background(), "u1"); err == nil {
		t.Fatal("expected load error")
	}
	if s.IsLoaded("u1") {
		t.Fatal("failed load must leave the user unloaded")
	}

	// Retry succeeds once the backend recovers.
	backend.loadErr = nil
	if _, err := s.LoadOrGet(context.Background(), "u1"); err != nil {
		t.Fatal(err)
	}
	if !s.IsLoaded("u1") {
		t.Fatal("retry should load the user")
	}
}

func TestUnloadVeto(t *testing.T) {
	s := New(newCountingBackend(), user.DefaultRegistry())
	if _, err := s.LoadOrGet(context.Background(), "u1"); err != nil {
		t.Fatal(err)
	}

	sessionActive := true
	s.RegisterUnloadVeto(func(rec *user.Record) bool { return sessionActive })

	if s.Unload("u1") {
		t.Fatal("veto must keep the record loaded")
	}
	if !s.IsLoaded("u1") {
		t.Fatal("record should still be in memory")
	}

	sessionActive = false
	if !s.Unload("u1") {
		t.Fatal("unload should succeed without a veto")
	}
	if s.IsLoaded("u1") {
		t.Fatal("record should be gone")
	}
	if s.Unload("u1") {
		t.Fatal("unloading an absent record reports false")
	}
}

func TestSaveSnapshotsAtEnqueueTime(t *testing.T) {
	backend := newCountingBackend()
	s := New(backend, user.DefaultRegistry())
	rec, err := s.LoadOrGet(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}

	rec.SetMinutesPlayed(45)
	result := s.Save(rec)
	rec.SetMinutesPlayed(999) // after enqueue; must not leak into the write

	if err := <-result; err != nil {
		t.Fatal(err)
	}
	backend.mu.Lock()
	saved := backend.saves["u1"]
	backend.mu.Unlock()
	if got := saved[user.KeyMinutesPlayed]; got != 45 {
		t.Fatalf("save must serialize the snapshot at enqueue time, got %v", got)
	}
}

func TestSaveFailureSurfaced(t *testing.T) {
	backend := newCountingBackend()
	backend.saveErr = errors.New("write refused")
	s := New(backend, user.DefaultRegistry())
	rec, err := s.LoadOrGet(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if err := <-s.Save(rec); err == nil {
		t.Fatal("save failure must reach the caller")
	}
}

func TestLoadAndUnloadHooks(t *testing.T) {
	var loaded, unloaded []core.UserID
	s := New(newCountingBackend(), user.DefaultRegistry(),
		WithLoadHook(func(rec *user.Record) { loaded = append(loaded, rec.ID()) }),
		WithUnloadHook(func(rec *user.Record) { unloaded = append(unloaded, rec.ID()) }),
	)

	if _, err := s.LoadOrGet(context.Background(), "u1"); err != nil {
		t.Fatal(err)
	}
	s.Unload("u1")

	if len(loaded) != 1 || loaded[0] != "u1" {
		t.Fatalf("load hook: %v", loaded)
	}
	if len(unloaded) != 1 || unloaded[0] != "u1" {
		t.Fatalf("unload hook: %v", unloaded)
	}
}

func TestSaveHook(t *testing.T) {
	var mu sync.Mutex
	var saved []core.UserID
	backend := newCountingBackend()
	s := New(backend, user.DefaultRegistry(),
		WithSaveHook(func(rec *user.Record) {
			mu.Lock()
			saved = append(saved, rec.ID())
			mu.Unlock()
		}),
	)

	rec, err := s.LoadOrGet(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if err := <-s.Save(rec); err != nil {
		t.Fatal(err)
	}
	mu.Lock()
	n := len(saved)
	mu.Unlock()
	if n != 1 || saved[0] != "u1" {
		t.Fatalf("save hook: %v", saved)
	}

	// a failed save must not fire the hook
	backend.saveErr = errors.New("write refused")
	<-s.Save(rec)
	mu.Lock()
	n = len(saved)
	mu.Unlock()
	if n != 1 {
		t.Fatalf("save hook fired on failure: %v", saved)
	}
}
