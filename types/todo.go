package types

import "time"

// Todo represents a single todo item owned by a user.
type Todo struct {
	// ID is the unique identifier of the todo, assigned by the datastore.
	ID int `json:"todo_id" db:"id"`

	// Name is the todo's title, normalized to lowercase at creation.
	// Names are unique per author.
	Name string `json:"todo_name" db:"todo_name"`

	// IsComplete indicates whether the todo has been completed.
	IsComplete bool `json:"is_complete" db:"is_complete"`

	// Author is the username of the user who created the todo.
	// A todo is only ever visible to its author.
	Author string `json:"author" db:"author"`

	// CreatedAt is the timestamp when the todo was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the todo.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
