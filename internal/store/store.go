// Package store defines the item repository contract shared by the view-model
// and its backing implementations.
package store

import (
	"context"
	"errors"

	"github.com/idilsaglam/shopping/internal/model"
)

// Sentinel errors. Use errors.Is() to check these.
var (
	// ErrItemNotFound indicates no entry has the given identity key.
	ErrItemNotFound = errors.New("item not found")

	// ErrAlreadyCompleted indicates the entry was completed before.
	ErrAlreadyCompleted = errors.New("item already completed")

	// ErrClosed indicates the repository no longer accepts observers or mutations.
	ErrClosed = errors.New("store closed")
)

// Repository owns the shopping list and publishes every change to it.
type Repository interface {
	// Observe yields the current snapshot at once, then every later one,
	// until ctx is done.
	Observe(ctx context.Context) (<-chan []model.Item, error)
	Add(ctx context.Context, text string) (model.Item, error)
	Complete(ctx context.Context, item model.Item) (model.Item, error)
}
