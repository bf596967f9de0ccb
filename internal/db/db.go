package db

import (
	"context"
	"time"
)

// Store is the database facade used by the record repository and health checks.
type Store interface {
	Pinger
	ListStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ListStore provides ordered list operations.
// A missing list reads as empty.
type ListStore interface {
	ListRange(ctx context.Context, key string) ([]string, error)
	// ListReplace atomically swaps the list at key for values.
	ListReplace(ctx context.Context, key string, values []string) error
}
