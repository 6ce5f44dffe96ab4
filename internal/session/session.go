// Package session хранит состояние сессии дашборда: проверенный ключ доступа,
// флаг обновления данных и время создания. Запись живёт в redis до истечения TTL.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound возвращается, когда записи сессии нет (истёк TTL или токен чужой).
var ErrNotFound = errors.New("session not found")

// Session представляет одну сессию пользователя дашборда.
// Secret — ключ доступа, подтверждённый эндпоинтом верификации; он же
// используется для запросов к коммерческому API. Refresh — флаг, заставляющий
// следующий проход отчёта перечитать данные из апстримов.
type Session struct {
	ID        string    `json:"id"`
	Secret    string    `json:"secret"`
	Refresh   bool      `json:"refresh"`
	CreatedAt time.Time `json:"created_at"`
}

// Cache описывает методы кеша, нужные хранилищу сессий.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Store управляет записями сессий в кеше.
type Store struct {
	cache Cache
	ttl   time.Duration
}

// NewStore создаёт Store с заданным временем жизни сессии.
func NewStore(cache Cache, ttl time.Duration) *Store {
	return &Store{cache: cache, ttl: ttl}
}

func sessionKey(id string) string {
	return "session:" + id
}

// Create заводит новую сессию для подтверждённого секрета. Флаг обновления
// инициализируется false.
func (s *Store) Create(ctx context.Context, secret string) (*Session, error) {
	const op = "session.Create"

	sess := &Session{
		ID:        uuid.NewString(),
		Secret:    secret,
		Refresh:   false,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.cache.Set(ctx, sessionKey(sess.ID), sess, s.ttl); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sess, nil
}

// Get возвращает сессию по идентификатору или ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	const op = "session.Get"

	var sess Session
	found, err := s.cache.Get(ctx, sessionKey(id), &sess)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return &sess, nil
}

// SetRefresh выставляет флаг обновления. Флаг общий для всех датасетов сессии.
func (s *Store) SetRefresh(ctx context.Context, id string, refresh bool) error {
	const op = "session.SetRefresh"

	sess, err := s.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	sess.Refresh = refresh
	if err := s.cache.Set(ctx, sessionKey(id), sess, s.ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
