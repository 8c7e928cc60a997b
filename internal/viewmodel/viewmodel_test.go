package viewmodel_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/idilsaglam/shopping/internal/model"
	"github.com/idilsaglam/shopping/internal/pubsub"
	"github.com/idilsaglam/shopping/internal/store"
	"github.com/idilsaglam/shopping/internal/store/memstore"
	"github.com/idilsaglam/shopping/internal/viewmodel"
)

var (
	discard = slog.New(slog.NewTextHandler(io.Discard, nil))
	epoch   = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

func at(h int) time.Time { return epoch.Add(time.Duration(h) * time.Hour) }

func completedAt(text string, created, completed int) model.Item {
	return model.Item{Text: text, CreatedAt: at(created)}.Complete(at(completed))
}

func texts(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// waitSuccess returns the first Success state satisfying ok.
func waitSuccess(t *testing.T, ch <-chan viewmodel.State, ok func([]model.Item) bool) []model.Item {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-ch:
			if s, isSuccess := st.(viewmodel.Success); isSuccess && ok(s.Items) {
				return s.Items
			}
		case <-deadline:
			t.Fatal("timed out waiting for state")
			return nil
		}
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		name string
		in   []model.Item
		want []string
	}{
		{
			name: "pending newest first",
			in: []model.Item{
				{Text: "A", CreatedAt: at(1)},
				{Text: "B", CreatedAt: at(2)},
				{Text: "C", CreatedAt: at(3)},
			},
			want: []string{"C", "B", "A"},
		},
		{
			name: "completed pushed to the end",
			in: []model.Item{
				completedAt("done", 5, 6),
				{Text: "old", CreatedAt: at(1)},
				{Text: "new", CreatedAt: at(4)},
			},
			want: []string{"new", "old", "done"},
		},
		{
			name: "completed by completion time ascending",
			in: []model.Item{
				completedAt("late", 1, 9),
				completedAt("early", 2, 3),
				{Text: "todo", CreatedAt: at(0)},
			},
			want: []string{"todo", "early", "late"},
		},
		{
			name: "empty",
			in:   nil,
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := texts(viewmodel.Sort(tt.in)); !equal(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSort_DoesNotModifyInput(t *testing.T) {
	in := []model.Item{{Text: "A", CreatedAt: at(1)}, {Text: "B", CreatedAt: at(2)}}
	viewmodel.Sort(in)
	if in[0].Text != "A" {
		t.Fatal("input slice was reordered")
	}
}

func TestViewModel_InitialStateIsLoading(t *testing.T) {
	vm := viewmodel.New(memstore.New(), discard)
	if _, ok := vm.State().(viewmodel.Loading); !ok {
		t.Fatalf("expected Loading, got %#v", vm.State())
	}
}

func TestViewModel_AddOrdersNewestFirst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	vm := viewmodel.New(memstore.New(), discard)
	vm.Start(ctx)
	states, err := vm.States(ctx)
	if err != nil {
		t.Fatalf("states: %v", err)
	}

	if err := vm.AddNewItem(ctx, "A"); err != nil {
		t.Fatalf("add A: %v", err)
	}
	if err := vm.AddNewItem(ctx, "B"); err != nil {
		t.Fatalf("add B: %v", err)
	}

	items := waitSuccess(t, states, func(items []model.Item) bool { return len(items) == 2 })
	if got := texts(items); !equal(got, []string{"B", "A"}) {
		t.Fatalf("got order %v, want [B A]", got)
	}
}

func TestViewModel_CompleteMovesItemToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	vm := viewmodel.New(memstore.New(), discard)
	vm.Start(ctx)
	states, _ := vm.States(ctx)

	_ = vm.AddNewItem(ctx, "Milk")
	_ = vm.AddNewItem(ctx, "Bread")
	items := waitSuccess(t, states, func(items []model.Item) bool { return len(items) == 2 })

	bread := items[0]
	if err := vm.CompleteItem(ctx, bread); err != nil {
		t.Fatalf("complete: %v", err)
	}
	items = waitSuccess(t, states, func(items []model.Item) bool {
		return len(items) == 2 && items[1].IsCompleted()
	})
	if got := texts(items); !equal(got, []string{"Milk", "Bread"}) {
		t.Fatalf("got order %v, want [Milk Bread]", got)
	}

	err := vm.CompleteItem(ctx, bread)
	if !errors.Is(err, store.ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
	if _, ok := vm.State().(viewmodel.Success); !ok {
		t.Fatalf("a failed intent must not leave Success, got %#v", vm.State())
	}
}

func TestViewModel_CompleteUnknownItem(t *testing.T) {
	ctx := context.Background()
	vm := viewmodel.New(memstore.New(), discard)
	err := vm.CompleteItem(ctx, model.Item{Text: "ghost", CreatedAt: epoch})
	if !errors.Is(err, store.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

type brokenRepo struct{ store.Repository }

func (brokenRepo) Observe(context.Context) (<-chan []model.Item, error) {
	return nil, errors.New("backing store unavailable")
}

func TestViewModel_ObserveFailureIsErrorState(t *testing.T) {
	vm := viewmodel.New(brokenRepo{}, discard)
	vm.Start(context.Background())

	select {
	case <-vm.Done():
	case <-time.After(time.Second):
		t.Fatal("projection did not stop")
	}
	st, ok := vm.State().(viewmodel.Error)
	if !ok {
		t.Fatalf("expected Error state, got %#v", vm.State())
	}
	if st.Reason != "backing store unavailable" {
		t.Fatalf("unexpected reason %q", st.Reason)
	}
}

func TestViewModel_StopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	vm := viewmodel.New(memstore.New(), discard)
	vm.Start(ctx)
	cancel()

	select {
	case <-vm.Done():
	case <-time.After(time.Second):
		t.Fatal("projection did not stop after cancel")
	}
}

func TestViewModel_LateSubscriberSeesLatestState(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := memstore.New()
	vm := viewmodel.New(repo, discard)
	vm.Start(ctx)
	for _, s := range []string{"x", "y", "z"} {
		_ = vm.AddNewItem(ctx, s)
	}

	states, _ := vm.States(ctx)
	items := waitSuccess(t, states, func(items []model.Item) bool { return len(items) == 3 })
	if items[0].Text != "z" {
		t.Fatalf("expected newest first, got %v", texts(items))
	}
}

func TestViewModel_CloseEndsSubscriptions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	vm := viewmodel.New(memstore.New(), discard)
	vm.Start(ctx)
	states, err := vm.States(ctx)
	if err != nil {
		t.Fatalf("states: %v", err)
	}
	waitSuccess(t, states, func(items []model.Item) bool { return len(items) == 0 })

	vm.Close()
	deadline := time.After(2 * time.Second)
	for closed := false; !closed; {
		select {
		case _, ok := <-states:
			closed = !ok
		case <-deadline:
			t.Fatal("states channel not closed after Close")
		}
	}
	if _, err := vm.States(ctx); !errors.Is(err, pubsub.ErrClosed) {
		t.Fatalf("expected ErrClosed after Close, got %v", err)
	}
	if _, ok := vm.State().(viewmodel.Success); !ok {
		t.Fatalf("last state must stay readable, got %#v", vm.State())
	}
}
