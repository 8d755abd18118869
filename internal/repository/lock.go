package repository

import (
	"context"
	"sync"
)

// Locker serialises the read-modify-write cycle of the file store.
type Locker interface {
	Lock(ctx context.Context) error
	Unlock(ctx context.Context) error
}

// MutexLocker guards a store used by a single process.
type MutexLocker struct {
	mu sync.Mutex
}

func NewMutexLocker() *MutexLocker {
	return &MutexLocker{}
}

func (l *MutexLocker) Lock(ctx context.Context) error {
	l.mu.Lock()
	return nil
}

func (l *MutexLocker) Unlock(ctx context.Context) error {
	l.mu.Unlock()
	return nil
}

// NoopLocker leaves mutations unguarded: concurrent writers race and the last
// one wins.
type NoopLocker struct{}

func (NoopLocker) Lock(context.Context) error   { return nil }
func (NoopLocker) Unlock(context.Context) error { return nil }
