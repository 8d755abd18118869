package repository

import (
	"context"
	"fmt"
	"sync"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/concurrency"
)

// EtcdLocker is a distributed Locker for file stores shared by several
// instances over a common volume. The lock lives as long as the session lease.
type EtcdLocker struct {
	session *concurrency.Session
	mutex   *concurrency.Mutex
	// an etcd Mutex holds one key per session, so local callers queue first
	local sync.Mutex
}

func NewEtcdLocker(client *clientv3.Client, key string, ttlSeconds int) (*EtcdLocker, error) {
	if ttlSeconds <= 0 {
		ttlSeconds = 10
	}
	session, err := concurrency.NewSession(client, concurrency.WithTTL(ttlSeconds))
	if err != nil {
		return nil, fmt.Errorf("create etcd session: %w", err)
	}
	return &EtcdLocker{
		session: session,
		mutex:   concurrency.NewMutex(session, key),
	}, nil
}

func (l *EtcdLocker) Lock(ctx context.Context) error {
	l.local.Lock()
	if err := l.mutex.Lock(ctx); err != nil {
		l.local.Unlock()
		return fmt.Errorf("acquire etcd lock: %w", err)
	}
	return nil
}

func (l *EtcdLocker) Unlock(ctx context.Context) error {
	defer l.local.Unlock()
	// release even if the request context is already cancelled
	if err := l.mutex.Unlock(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("release etcd lock: %w", err)
	}
	return nil
}

// Done is closed when the session lease expires and the lock is lost.
func (l *EtcdLocker) Done() <-chan struct{} {
	return l.session.Done()
}

func (l *EtcdLocker) Close() error {
	return l.session.Close()
}
