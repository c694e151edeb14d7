// Package rediskv keeps the token store in Redis, for front ends that run
// as several processes behind one origin.
package rediskv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-sales-client/token"
	"github.com/redis/go-redis/v9"
)

const defaultTimeout = 2 * time.Second

var _ token.KV = (*Store)(nil)

type Store struct {
	client  redis.UniversalClient
	prefix  string
	timeout time.Duration
}

// New creates a Redis-backed KV. Every key is stored under prefix.
func New(client redis.UniversalClient, prefix string) *Store {
	return &Store{
		client:  client,
		prefix:  prefix,
		timeout: defaultTimeout,
	}
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

func (s *Store) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	val, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("[rediskv Get] %s: %w", key, err)
	}
	return val, true, nil
}

func (s *Store) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("[rediskv Set] %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("[rediskv Delete] %s: %w", key, err)
	}
	return nil
}

// Ping checks connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
