package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dreamware/todokit/internal/guard"
	"github.com/dreamware/todokit/internal/model"
	"github.com/dreamware/todokit/internal/notify"
	"github.com/dreamware/todokit/internal/resource"
)

// ErrEmptyLabel is returned for a blank todo label. No request is sent.
var ErrEmptyLabel = errors.New("label must not be empty")

// Todos is the todo list as the user sees it: resource calls plus the
// notifications the user gets about them.
type Todos struct {
	client *resource.Todos
	guard  *guard.Guard
	notes  *notify.Container
}

// Client returns the underlying resource client and its mirror.
func (t *Todos) Client() *resource.Todos { return t.client }

// List refreshes the mirror from the store.
func (t *Todos) List(ctx context.Context) ([]model.Todo, error) {
	list, err := t.client.ListAll(ctx)
	if err != nil {
		t.notes.Error(fmt.Sprintf("Error fetching todos: %v", err))
		return nil, err
	}
	return list, nil
}

// Get fetches one todo.
func (t *Todos) Get(ctx context.Context, id string) (model.Todo, error) {
	td, err := t.client.GetByID(ctx, id)
	if err != nil {
		t.notes.Error(fmt.Sprintf("Error fetching todo: %v", err))
		return model.Todo{}, err
	}
	return td, nil
}

// Add creates a todo with a fresh id. Only a logged in user may add; an
// anonymous caller gets a *guard.RedirectError.
func (t *Todos) Add(ctx context.Context, label string) (model.Todo, error) {
	var created model.Todo
	err := t.guard.Require(func() error {
		if strings.TrimSpace(label) == "" {
			return ErrEmptyLabel
		}
		td, err := t.client.Create(ctx, model.NewTodo(label))
		if err != nil {
			t.notes.Error("Error creating todo")
			return err
		}
		created = td
		t.notes.Success("New todo created")
		return nil
	})
	return created, err
}

// Rename fetches the todo and replaces its label, keeping the done flag
// the store has.
func (t *Todos) Rename(ctx context.Context, id, label string) (model.Todo, error) {
	td, err := t.Get(ctx, id)
	if err != nil {
		return model.Todo{}, err
	}
	td.Label = label

	updated, err := t.client.Update(ctx, id, td)
	if err != nil {
		t.notes.Error(fmt.Sprintf("Error updating todo: %v", err))
		return model.Todo{}, err
	}
	t.notes.Success("Todo updated successfully")
	return updated, nil
}

// ToggleDone flips the done flag, loading the mirror first when it does
// not hold id yet.
func (t *Todos) ToggleDone(ctx context.Context, id string) (model.Todo, error) {
	if _, ok := t.client.Lookup(id); !ok {
		if _, err := t.List(ctx); err != nil {
			return model.Todo{}, err
		}
	}
	return t.client.ToggleDone(ctx, id)
}

// Remove deletes a todo.
func (t *Todos) Remove(ctx context.Context, id string) error {
	return t.client.Delete(ctx, id)
}
