package memstore

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/idilsaglam/shopping/internal/model"
	"github.com/idilsaglam/shopping/internal/pubsub"
	"github.com/idilsaglam/shopping/internal/store"
)

// Volatile, process-local item store. Every mutation is one atomic
// read-modify-write over the whole list, published as a fresh snapshot.
// Published slices are never written to again.

// Store implements store.Repository in memory.
type Store struct {
	items *pubsub.Latest[[]model.Item]
	now   func() time.Time
	rng   *rand.Rand
	seed  int
	last  time.Time // latest instant handed out; guarded by the items lock
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRand sets the source used for seeded data.
func WithRand(r *rand.Rand) Option {
	return func(s *Store) { s.rng = r }
}

// WithSeed fills the store with n placeholder items at construction.
func WithSeed(n int) Option {
	return func(s *Store) { s.seed = n }
}

var _ store.Repository = (*Store)(nil)

func New(opts ...Option) *Store {
	s := &Store{
		now: time.Now,
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, o := range opts {
		o(s)
	}

	seeded := fakeItems(s.now(), s.seed, s.rng)
	for _, it := range seeded {
		if it.CreatedAt.After(s.last) {
			s.last = it.CreatedAt
		}
	}
	s.items = pubsub.NewLatestWith(seeded)
	return s
}

// fakeItems builds n items named "Item i", created at distinct whole-hour
// offsets in the past. Every third one is already completed.
func fakeItems(now time.Time, n int, rng *rand.Rand) []model.Item {
	if n <= 0 {
		return []model.Item{}
	}
	offsets := rng.Perm(max(n, 99))
	items := make([]model.Item, 0, n)
	for i := range n {
		it := model.Item{
			Text:      fmt.Sprintf("Item %d", i),
			CreatedAt: now.Add(-time.Duration(offsets[i]+1) * time.Hour),
		}
		if i%3 == 0 {
			span := now.Sub(it.CreatedAt)
			it = it.Complete(it.CreatedAt.Add(time.Duration(rng.Int64N(int64(span)))))
		}
		items = append(items, it)
	}
	return items
}

// tick returns the current time, nudged forward so identity keys never repeat.
// Callers hold the items lock.
func (s *Store) tick() time.Time {
	t := s.now()
	if !t.After(s.last) {
		t = s.last.Add(time.Nanosecond)
	}
	s.last = t
	return t
}

func (s *Store) Observe(ctx context.Context) (<-chan []model.Item, error) {
	ch, err := s.items.Subscribe(ctx)
	if err != nil {
		return nil, fmt.Errorf("observe: %w", s.mapErr(err))
	}
	return ch, nil
}

// Add appends a pending item. text is stored as given.
func (s *Store) Add(ctx context.Context, text string) (model.Item, error) {
	if err := ctx.Err(); err != nil {
		return model.Item{}, err
	}
	var added model.Item
	err := s.items.Update(func(cur []model.Item) ([]model.Item, error) {
		added = model.Item{Text: text, CreatedAt: s.tick()}
		next := make([]model.Item, len(cur), len(cur)+1)
		copy(next, cur)
		return append(next, added), nil
	})
	if err != nil {
		return model.Item{}, fmt.Errorf("add: %w", s.mapErr(err))
	}
	return added, nil
}

// Complete marks the entry sharing item's identity key as completed now.
func (s *Store) Complete(ctx context.Context, item model.Item) (model.Item, error) {
	if err := ctx.Err(); err != nil {
		return model.Item{}, err
	}
	var done model.Item
	err := s.items.Update(func(cur []model.Item) ([]model.Item, error) {
		idx := slices.IndexFunc(cur, item.SameAs)
		if idx < 0 {
			return nil, store.ErrItemNotFound
		}
		if cur[idx].IsCompleted() {
			return nil, store.ErrAlreadyCompleted
		}
		done = cur[idx].Complete(s.tick())
		next := slices.Clone(cur)
		next[idx] = done
		return next, nil
	})
	if err != nil {
		return model.Item{}, fmt.Errorf("complete %s: %w", item.Key(), s.mapErr(err))
	}
	return done, nil
}

// Snapshot returns a copy of the current list in insertion order.
func (s *Store) Snapshot() []model.Item {
	cur, _ := s.items.Value()
	return slices.Clone(cur)
}

// Close ends every observation; later calls fail with store.ErrClosed.
func (s *Store) Close() error {
	s.items.Close()
	return nil
}

func (s *Store) mapErr(err error) error {
	if errors.Is(err, pubsub.ErrClosed) {
		return store.ErrClosed
	}
	return err
}
