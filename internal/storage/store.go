// Package storage provides the key-value persistence port used by every
// helper. Each feature persists its full record list as one JSON document
// under a well-known key.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when the key has never been saved.
var ErrNotFound = errors.New("storage: key not found")

// Store persists JSON-serializable values under string keys.
// This abstraction allows swapping storage backends (SQLite, in-memory, etc.)
// without changing the service layer. Implementations must round-trip all
// entity fields, including decimal amounts, without precision loss.
type Store interface {
	// Save serializes value as JSON and writes it under key, replacing any
	// previous value.
	Save(ctx context.Context, key string, value any) error

	// Load reads the value stored under key into dest.
	// Returns ErrNotFound if the key is absent.
	Load(ctx context.Context, key string, dest any) error

	// Close releases any resources held by the store.
	Close() error
}

// Well-known keys, one per helper.
const (
	KeyProjects   = "costsplit/projects"
	KeyTodoItems  = "todo/items"
	KeyCountdowns = "countdown/events"
	KeyPresets    = "fitness/presets"
	KeyRates      = "converter/rates"
)
