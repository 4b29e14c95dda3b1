package storage

import "context"

// Storage is a flat string-keyed store for the per-chat state the bot keeps
// between conversations. Values are opaque to the backend.
type Storage interface {
	// Get returns found=false for a missing key; that is not an error.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
