// Package redis publishes lint completion events to a Redis pub/sub
// channel, optionally appending them to a capped list for late consumers.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/adapter"
)

// DefaultChannel is the default pub/sub channel name.
const DefaultChannel = "lintstream:lint_completed"

// DefaultTimeout is the default per-publish timeout.
const DefaultTimeout = 5 * time.Second

// DefaultRetries is the default number of retry attempts.
const DefaultRetries = 3

// Config configures the Redis adapter.
type Config struct {
	// URL is the Redis connection URL (required).
	// Format: redis://[:password@]host:port[/db]
	URL string
	// Channel is the pub/sub channel name.
	Channel string
	// HistoryKey, when set, also receives each event via LPUSH.
	HistoryKey string
	// HistoryLimit caps the history list. Zero keeps everything.
	HistoryLimit int64
	// Timeout is the per-publish timeout (default 5s).
	Timeout time.Duration
	// Retries is the number of retry attempts on failure.
	Retries int
	// Backoff is the first retry delay (default adapter.DefaultBackoff).
	Backoff time.Duration
}

// Adapter publishes lint completion events via Redis PUBLISH.
type Adapter struct {
	config Config
	client *goredis.Client
}

// New creates a Redis adapter. Returns an error if the URL is empty or invalid.
func New(cfg Config) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis adapter requires a URL")
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis adapter: invalid URL: %w", err)
	}

	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}
	if cfg.HistoryLimit < 0 {
		return nil, fmt.Errorf("history limit must be >= 0, got %d", cfg.HistoryLimit)
	}

	return &Adapter{
		config: cfg,
		client: goredis.NewClient(opts),
	}, nil
}

// Publish sends the event as JSON to the configured channel.
func (a *Adapter) Publish(ctx context.Context, event *adapter.LintCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis: marshal event: %w", err)
	}

	return adapter.Retry(ctx, "redis", a.config.Retries, a.config.Backoff, func(ctx context.Context) error {
		publishCtx, cancel := context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
		return a.send(publishCtx, body)
	})
}

func (a *Adapter) send(ctx context.Context, body []byte) error {
	if a.config.HistoryKey == "" {
		return a.client.Publish(ctx, a.config.Channel, body).Err()
	}

	_, err := a.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.LPush(ctx, a.config.HistoryKey, body)
		if a.config.HistoryLimit > 0 {
			pipe.LTrim(ctx, a.config.HistoryKey, 0, a.config.HistoryLimit-1)
		}
		pipe.Publish(ctx, a.config.Channel, body)
		return nil
	})
	return err
}

// Close releases the connection pool.
func (a *Adapter) Close() error {
	return a.client.Close()
}

var _ adapter.Adapter = (*Adapter)(nil)
