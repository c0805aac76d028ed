package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/asyncfetch/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Journal implements ports.Journal using one Redis list per stream.
type Journal struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	maxLen int64
}

type Option func(*Journal)

// WithTTL sets the expiration of a stream, refreshed on every append.
func WithTTL(ttl time.Duration) Option {
	return func(j *Journal) {
		j.ttl = ttl
	}
}

// WithPrefix sets the key prefix for streams.
func WithPrefix(prefix string) Option {
	return func(j *Journal) {
		j.prefix = prefix
	}
}

// WithMaxLen caps a stream to its most recent n entries.
func WithMaxLen(n int64) Option {
	return func(j *Journal) {
		j.maxLen = n
	}
}

// New creates a new Redis journal with options.
func New(address, password string, db int, opts ...Option) *Journal {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis journal from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Journal {
	j := &Journal{
		client: client,
		prefix: "asyncfetch:journal:",
	}

	for _, opt := range opts {
		opt(j)
	}

	return j
}

func (j *Journal) key(stream string) string {
	return j.prefix + stream
}

// Append pushes the JSON-encoded action onto the stream.
func (j *Journal) Append(ctx context.Context, stream string, action domain.Action) error {
	data, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("failed to marshal action: %w", err)
	}

	pipe := j.client.TxPipeline()
	pipe.RPush(ctx, j.key(stream), data)
	if j.maxLen > 0 {
		pipe.LTrim(ctx, j.key(stream), -j.maxLen, -1)
	}
	if j.ttl > 0 {
		pipe.Expire(ctx, j.key(stream), j.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append to redis: %w", err)
	}
	return nil
}

// Entries decodes the whole stream in append order.
func (j *Journal) Entries(ctx context.Context, stream string) ([]domain.Action, error) {
	vals, err := j.client.LRange(ctx, j.key(stream), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read from redis: %w", err)
	}

	entries := make([]domain.Action, 0, len(vals))
	for _, val := range vals {
		var action domain.Action
		if err := json.Unmarshal([]byte(val), &action); err != nil {
			return nil, fmt.Errorf("failed to unmarshal action: %w", err)
		}
		entries = append(entries, action)
	}
	return entries, nil
}

// Clear deletes the stream.
func (j *Journal) Clear(ctx context.Context, stream string) error {
	return j.client.Del(ctx, j.key(stream)).Err()
}

// Close closes the redis client.
func (j *Journal) Close() error {
	return j.client.Close()
}
