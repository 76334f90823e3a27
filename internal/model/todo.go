package model

import "github.com/google/uuid"

// Todo is a single entry of the remote "todos" collection.
type Todo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Done  bool   `json:"done"`
}

// RecordID returns the immutable identifier of the todo.
func (t Todo) RecordID() string { return t.ID }

// NewTodo builds a pending todo with a freshly generated id.
// The id is assigned client-side before the record is sent to the store.
func NewTodo(label string) Todo {
	return Todo{
		ID:    uuid.NewString(),
		Label: label,
	}
}
