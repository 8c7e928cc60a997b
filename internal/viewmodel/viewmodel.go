// Package viewmodel projects the item store into display state for the
// presentation layer and carries the user's intents back to the store.
package viewmodel

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/idilsaglam/shopping/internal/model"
	"github.com/idilsaglam/shopping/internal/pubsub"
	"github.com/idilsaglam/shopping/internal/store"
)

// State is one of Loading, Success or Error.
type State interface{ isState() }

// Loading is the state before the first snapshot arrives.
type Loading struct{}

// Success carries the display-ordered list.
type Success struct{ Items []model.Item }

// Error is reported when the store cannot be observed.
type Error struct{ Reason string }

func (Loading) isState() {}
func (Success) isState() {}
func (Error) isState()   {}

type ViewModel struct {
	repo   store.Repository
	log    *slog.Logger
	states *pubsub.Latest[State]
	once   sync.Once
	done   chan struct{}
}

func New(repo store.Repository, log *slog.Logger) *ViewModel {
	return &ViewModel{
		repo:   repo,
		log:    log.With("component", "viewmodel"),
		states: pubsub.NewLatestWith[State](Loading{}),
		done:   make(chan struct{}),
	}
}

// Start begins projecting store snapshots until ctx is done. Calling it more
// than once has no effect.
func (vm *ViewModel) Start(ctx context.Context) {
	vm.once.Do(func() {
		snaps, err := vm.repo.Observe(ctx)
		if err != nil {
			vm.log.ErrorContext(ctx, "observe failed", "error", err)
			vm.states.Publish(Error{Reason: err.Error()})
			close(vm.done)
			return
		}
		go vm.project(ctx, snaps)
	})
}

func (vm *ViewModel) project(ctx context.Context, snaps <-chan []model.Item) {
	defer close(vm.done)
	for items := range snaps {
		vm.states.Publish(Success{Items: Sort(items)})
	}
	vm.log.DebugContext(ctx, "projection stopped")
}

// Done is closed once projection has stopped.
func (vm *ViewModel) Done() <-chan struct{} { return vm.done }

// States yields the current state at once, then every later one.
func (vm *ViewModel) States(ctx context.Context) (<-chan State, error) {
	return vm.states.Subscribe(ctx)
}

// State returns the current state.
func (vm *ViewModel) State() State {
	s, _ := vm.states.Value()
	return s
}

// AddNewItem appends text to the list. The outcome is logged and returned;
// on success it also shows up as the next Success state.
func (vm *ViewModel) AddNewItem(ctx context.Context, text string) error {
	it, err := vm.repo.Add(ctx, text)
	if err != nil {
		vm.log.WarnContext(ctx, "add item failed", "text", text, "error", err)
		return err
	}
	vm.log.InfoContext(ctx, "item added", "key", it.Key(), "text", it.Text)
	return nil
}

// CompleteItem marks item as bought.
func (vm *ViewModel) CompleteItem(ctx context.Context, item model.Item) error {
	it, err := vm.repo.Complete(ctx, item)
	if err != nil {
		vm.log.WarnContext(ctx, "complete item failed", "key", item.Key(), "error", err)
		return err
	}
	vm.log.InfoContext(ctx, "item completed", "key", it.Key(), "text", it.Text)
	return nil
}

// Close stops publishing states to subscribers.
func (vm *ViewModel) Close() { vm.states.Close() }

// Sort returns a display-ordered copy of items: pending first, newest first;
// then completed, earliest completion first.
func Sort(items []model.Item) []model.Item {
	out := slices.Clone(items)
	slices.SortStableFunc(out, compare)
	return out
}

func compare(a, b model.Item) int {
	switch {
	case a.IsCompleted() != b.IsCompleted():
		if a.IsCompleted() {
			return 1
		}
		return -1
	case a.IsCompleted():
		if c := a.CompletedAt.Compare(*b.CompletedAt); c != 0 {
			return c
		}
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}
