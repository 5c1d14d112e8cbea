// Package session хранит состояние формы консоли между командами.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"promotion-console/internal/models"
	"promotion-console/internal/redis"
)

// Store загружает и сохраняет состояние формы одной сессии.
type Store interface {
	Load(ctx context.Context) (models.ViewState, error)
	Save(ctx context.Context, state models.ViewState) error
}

// MemoryStore держит состояние в памяти процесса.
type MemoryStore struct {
	mu    sync.Mutex
	state models.ViewState
}

// NewMemoryStore создаёт пустое хранилище в памяти.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(context.Context) (models.ViewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, state models.ViewState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.Clone()
	return nil
}

// RedisStore хранит состояние под ключом promoctl:session:<name>.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore создаёт хранилище сессии name; ttl 0 - без срока жизни.
func NewRedisStore(client *redis.Client, name string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		key:    redis.GenerateKey(redis.KeyPrefixSession, name),
		ttl:    ttl,
	}
}

// Load возвращает пустое состояние, если сессия ещё не сохранялась или истекла.
func (s *RedisStore) Load(ctx context.Context) (models.ViewState, error) {
	var state models.ViewState
	if err := s.client.Get(ctx, s.key, &state); err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return models.ViewState{}, nil
		}
		return models.ViewState{}, fmt.Errorf("failed to load session: %w", err)
	}
	return state, nil
}

func (s *RedisStore) Save(ctx context.Context, state models.ViewState) error {
	if err := s.client.Set(ctx, s.key, state, s.ttl); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Key возвращает ключ Redis сессии.
func (s *RedisStore) Key() string {
	return s.key
}
