package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/control-stock/internal/application/inventory"
	"github.com/jhoicas/control-stock/internal/domain"
)

var (
	_ inventory.Locker = (*RedisLocker)(nil)
	_ inventory.Locker = (*LocalLocker)(nil)
)

// RedisLocker bloqueo distribuido con expiración sobre redislock.
type RedisLocker struct {
	client *redislock.Client
}

// NewRedisLocker construye el bloqueo sobre el cliente Redis.
func NewRedisLocker(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: redislock.New(client)}
}

// Obtain intenta tomar la clave sin reintentos; domain.ErrLockNotObtained si otro la tiene.
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (inventory.Unlock, error) {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, domain.ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("obtener bloqueo %s: %w", key, err)
	}
	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}, nil
}

// LocalLocker bloqueo dentro del proceso, para una sola instancia sin Redis. Ignora ttl.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocalLocker construye el bloqueo local.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]bool)}
}

func (l *LocalLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (inventory.Unlock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, domain.ErrLockNotObtained
	}
	l.held[key] = true

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
		return nil
	}, nil
}
