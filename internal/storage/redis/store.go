package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/julianstephens/rizq/internal/constants"
	"github.com/julianstephens/rizq/internal/storage"
)

// Store keeps blobs as plain Redis strings under an app prefix.
type Store struct {
	url    string
	prefix string
	client *goredis.Client
}

func New(url string) *Store {
	return &Store{
		url:    url,
		prefix: constants.AppName + ":",
	}
}

// NewWithClient wraps an existing client, mainly for tests.
func NewWithClient(client *goredis.Client) *Store {
	return &Store{
		prefix: constants.AppName + ":",
		client: client,
	}
}

func IsURL(s string) bool {
	_, err := goredis.ParseURL(s)
	return err == nil
}

func (s *Store) Open() error {
	if s.client == nil {
		opts, err := goredis.ParseURL(s.url)
		if err != nil {
			return fmt.Errorf("invalid redis url: %w", err)
		}
		s.client = goredis.NewClient(opts)
	}

	if err := s.client.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	if s.client == nil {
		return storage.ErrNotInitialized
	}
	return s.client.Ping(ctx).Err()
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	if s.client == nil {
		return nil, storage.ErrNotInitialized
	}

	value, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	if s.client == nil {
		return storage.ErrNotInitialized
	}

	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if s.client == nil {
		return storage.ErrNotInitialized
	}

	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) Location() string {
	return "redis"
}
