package model

import "time"

// Item is one shopping-list entry.
// CreatedAt doubles as its identity; there is no separate id.
type Item struct {
	Text        string     `json:"text"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"` // nil while pending
}

func (i Item) IsCompleted() bool { return i.CompletedAt != nil }

// Key renders the identity key, e.g. for list keys and log fields.
func (i Item) Key() string { return i.CreatedAt.Format(time.RFC3339Nano) }

// Complete returns a copy of i completed at the given instant.
func (i Item) Complete(at time.Time) Item {
	i.CompletedAt = &at
	return i
}

// SameAs reports whether both values refer to the same entry.
func (i Item) SameAs(o Item) bool { return i.CreatedAt.Equal(o.CreatedAt) }
