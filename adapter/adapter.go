// Package adapter publishes lint completion notifications to downstream
// systems. The CLI owns adapter lifecycle; users provide configuration only.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// EventType is the event_type of every LintCompletedEvent.
const EventType = "lint_completed"

// DefaultBackoff is the delay before the first retry. It doubles per attempt.
const DefaultBackoff = 500 * time.Millisecond

// LintCompletedEvent is the payload published when a tool invocation finishes.
type LintCompletedEvent struct {
	SchemaVersion string `json:"schema_version"`
	EventType     string `json:"event_type"`
	RunID         string `json:"run_id"`
	ParentRunID   string `json:"parent_run_id,omitempty"`
	Tool          string `json:"tool"`
	Day           string `json:"day"`
	Batch         int    `json:"batch"`
	Batches       int    `json:"batches"`
	Status        string `json:"status"`
	Message       string `json:"message,omitempty"`
	ExitCode      int    `json:"exit_code"`
	// StoragePath locates the run's records. Empty when nothing was stored.
	StoragePath    string `json:"storage_path,omitempty"`
	Timestamp      string `json:"timestamp"` // RFC 3339
	FilesRequested int    `json:"files_requested"`
	FilesObserved  int    `json:"files_observed"`
	FilesMissing   int    `json:"files_missing"`
	Messages       int64  `json:"messages"`
	Groups         int64  `json:"groups"`
	DurationMs     int64  `json:"duration_ms"`
}

// NewLintCompletedEvent builds the event for a finished run.
func NewLintCompletedEvent(s *types.RunSummary, storagePath string, now time.Time) *LintCompletedEvent {
	ev := &LintCompletedEvent{
		SchemaVersion:  types.RecordSchemaVersion,
		EventType:      EventType,
		RunID:          s.RunID,
		Tool:           s.Tool,
		Day:            s.StartedAt.UTC().Format("2006-01-02"),
		Batch:          s.Batch,
		Batches:        s.Batches,
		Status:         string(s.Status),
		Message:        s.Message,
		ExitCode:       s.ExitCode,
		StoragePath:    storagePath,
		Timestamp:      now.UTC().Format(time.RFC3339),
		FilesRequested: s.FilesRequested,
		FilesObserved:  s.FilesObserved,
		FilesMissing:   len(s.FilesMissing),
		Messages:       s.Messages,
		Groups:         s.Groups,
		DurationMs:     int64(s.Duration * 1000),
	}
	if s.ParentRunID != nil {
		ev.ParentRunID = *s.ParentRunID
	}
	return ev
}

// Adapter publishes lint completion events to a downstream system.
type Adapter interface {
	// Publish sends a completion event. Must respect context cancellation.
	Publish(ctx context.Context, event *LintCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}

// permanentError marks a failure that retrying cannot fix.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so Retry stops immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retry calls fn up to 1+retries times with exponential backoff starting
// at base. It stops on success, on a Permanent error, or when ctx ends.
// name prefixes returned errors.
func Retry(ctx context.Context, name string, retries int, base time.Duration, fn func(ctx context.Context) error) error {
	if base <= 0 {
		base = DefaultBackoff
	}
	attempts := 1 + retries

	var lastErr error
	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: context canceled: %w", name, err)
		}

		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * base
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: context canceled during backoff: %w", name, ctx.Err())
			case <-time.After(backoff):
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return fmt.Errorf("%s: non-retriable error: %w", name, perm.err)
		}
	}

	return fmt.Errorf("%s: failed after %d attempts: %w", name, attempts, lastErr)
}

// Multi publishes to every adapter and joins the errors.
type Multi []Adapter

// Publish sends event to each adapter in order.
func (m Multi) Publish(ctx context.Context, event *LintCompletedEvent) error {
	var errs []error
	for _, a := range m {
		if err := a.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every adapter.
func (m Multi) Close() error {
	var errs []error
	for _, a := range m {
		if err := a.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Adapter = Multi(nil)
