package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Load(ctx, "missing"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("missing session: %v", err)
	}

	st := NewSessionState("sess-1", time.Now())
	st.MobileNumber = "9876543210"
	if err := store.Save(ctx, st); err != nil {
		t.Fatalf("save: %v", err)
	}
	if st.Version != 1 {
		t.Fatalf("version after save = %d", st.Version)
	}

	loaded, err := store.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.MobileNumber != "9876543210" || loaded.Version != 1 {
		t.Fatalf("loaded = %+v", loaded)
	}

	if err := store.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx, "sess-1"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("after delete: %v", err)
	}
}

func TestMemoryStoreDetectsStaleWriter(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	st := NewSessionState("sess-1", time.Now())
	if err := store.Save(ctx, st); err != nil {
		t.Fatalf("seed: %v", err)
	}

	a, _ := store.Load(ctx, "sess-1")
	b, _ := store.Load(ctx, "sess-1")

	if err := store.Save(ctx, a); err != nil {
		t.Fatalf("first writer: %v", err)
	}
	if err := store.Save(ctx, b); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("stale writer: %v", err)
	}
}

func TestMemoryStoreRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Save(ctx, nil); !errors.Is(err, ErrNilSessionState) {
		t.Fatalf("nil state: %v", err)
	}
	if err := store.Save(ctx, &SessionState{}); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("empty session id: %v", err)
	}
	if _, err := store.Load(ctx, "  "); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("blank load id: %v", err)
	}
}

func TestLocksSerializePerSession(t *testing.T) {
	t.Parallel()

	locks := NewLocks()
	var counter int

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := locks.Acquire("sess-1")
			defer release()
			counter++
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Fatalf("counter = %d, want %d", counter, workers)
	}
}

func TestLocksAreIndependentAcrossSessions(t *testing.T) {
	t.Parallel()

	locks := NewLocks()
	releaseA := locks.Acquire("sess-a")
	defer releaseA()

	done := make(chan struct{})
	go func() {
		release := locks.Acquire("sess-b")
		release()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("different sessions must not contend")
	}
}
