package internal

import (
	"context"
	"sync/atomic"
)

// SessionManager holds the one session shared by every request. Creation
// is serialised: the first caller to succeed stores its session and every
// later caller reuses it. A failed creation stores nothing, so the next
// caller tries again.
type SessionManager struct {
	lock    chan struct{}
	session atomic.Pointer[Session]
}

// NewSessionManager creates a new SessionManager instance ready for use.
func NewSessionManager() *SessionManager {
	return &SessionManager{lock: make(chan struct{}, 1)}
}

// Get returns the cached session, running create if there is none yet.
// Callers that arrive while create is running wait for it and then re-check.
func (sm *SessionManager) Get(ctx context.Context, create func(context.Context) (*Session, error)) (*Session, error) {
	if s := sm.session.Load(); s != nil {
		return s, nil
	}

	select {
	case sm.lock <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-sm.lock }()

	if s := sm.session.Load(); s != nil {
		return s, nil
	}

	s, err := create(ctx)
	if err != nil {
		return nil, err
	}
	sm.session.Store(s)
	return s, nil
}

// IsInitialized reports whether a session has been stored.
func (sm *SessionManager) IsInitialized() bool {
	return sm.session.Load() != nil
}
