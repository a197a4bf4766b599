package internal

import (
	"context"
	"errors"
	"testing"
)

func TestSessionManager_CachesFirstSuccess(t *testing.T) {
	sm := NewSessionManager()
	if sm.IsInitialized() {
		t.Fatal("new manager should be empty")
	}

	calls := 0
	create := func(ctx context.Context) (*Session, error) {
		calls++
		return &Session{}, nil
	}

	first, err := sm.Get(context.Background(), create)
	if err != nil {
		t.Fatal(err)
	}
	second, err := sm.Get(context.Background(), create)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("expected the cached session to be reused")
	}
	if calls != 1 {
		t.Errorf("expected create to run once, ran %d times", calls)
	}
	if !sm.IsInitialized() {
		t.Error("expected manager to be initialized")
	}
}

func TestSessionManager_DoesNotCacheFailure(t *testing.T) {
	sm := NewSessionManager()
	boom := errors.New("boom")

	calls := 0
	create := func(ctx context.Context) (*Session, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return &Session{}, nil
	}

	if _, err := sm.Get(context.Background(), create); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if sm.IsInitialized() {
		t.Error("failure must not be stored")
	}
	if _, err := sm.Get(context.Background(), create); err != nil {
		t.Fatalf("second attempt failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected two create calls, got %d", calls)
	}
}

func TestSessionManager_ContextCanceledWhileWaiting(t *testing.T) {
	sm := NewSessionManager()
	started := make(chan struct{})
	release := make(chan struct{})
	go sm.Get(context.Background(), func(ctx context.Context) (*Session, error) {
		close(started)
		<-release
		return &Session{}, nil
	})
	<-started
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sm.Get(ctx, func(ctx context.Context) (*Session, error) {
		t.Error("create must not run while another caller holds the lock")
		return nil, nil
	}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
