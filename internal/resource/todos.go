package resource

import (
	"context"
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/dreamware/todokit/internal/model"
)

// Todos is the client for the "todos" collection.
type Todos struct {
	*Client[model.Todo]
}

// NewTodos creates a Todos client at baseURL.
func NewTodos(baseURL string, opts ...Option) *Todos {
	return &Todos{Client: New[model.Todo](baseURL, "todos", opts...)}
}

// ToggleDone flips the done flag of a mirrored todo before the store has
// confirmed it, then sends the flipped record as an update.
//
// While the call is in flight the mirror is ahead of the server. On
// success the mirror holds the server echo. On failure the flip is undone
// unless another call has replaced the entry in the meantime.
func (t *Todos) ToggleDone(ctx context.Context, id string) (model.Todo, error) {
	t.mu.Lock()
	i := slices.IndexFunc(t.mirror, func(td model.Todo) bool { return td.ID == id })
	if i < 0 {
		t.mu.Unlock()
		return model.Todo{}, fmt.Errorf("toggle %s: %w", id, ErrNotInMirror)
	}
	prev := t.mirror[i]
	next := prev
	next.Done = !prev.Done
	t.mirror[i] = next
	t.mu.Unlock()

	saved, err := t.Update(ctx, id, next)
	if err != nil {
		t.mu.Lock()
		if j := slices.IndexFunc(t.mirror, func(td model.Todo) bool { return td.ID == id }); j >= 0 && t.mirror[j] == next {
			t.mirror[j] = prev
		}
		t.mu.Unlock()
		return model.Todo{}, err
	}
	return saved, nil
}
