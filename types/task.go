package types

import "time"

// Task represents a to-do item owned by a user.
type Task struct {
	// ID is the unique identifier of the task.
	ID int `json:"id" db:"id"`

	// Title is the short human-readable name of the task.
	Title string `json:"title" db:"title"`

	// Description holds the free-form body of the task. The column is
	// nullable; an empty string is stored as NULL.
	Description string `json:"description" db:"description"`

	// Status is a free-form state label (e.g. "open", "done").
	Status string `json:"status" db:"status"`

	// UserID references the owning user.
	UserID int `json:"user_id" db:"user_id"`

	// CreatedAt is the timestamp at which the task was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the task.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
