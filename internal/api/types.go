package api

import (
	"encoding/json"
	"time"
)

// Task is a task as the backend returns it. The server owns every field:
// local state is only ever replaced wholesale with a returned Task.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// User is the profile of the authenticated user.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskCreate is the body of a task creation request.
type TaskCreate struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// TaskPatch is a partial update. Nil fields are omitted from the request
// and left untouched by the server. Description is nullable: a pointer to
// the empty string clears it to null on the wire.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// MarshalJSON sends an explicit null for a cleared description; omitempty
// alone would drop the field and leave the old value in place.
func (p TaskPatch) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, 3)
	if p.Title != nil {
		body["title"] = *p.Title
	}
	if p.Description != nil {
		if *p.Description == "" {
			body["description"] = nil
		} else {
			body["description"] = *p.Description
		}
	}
	if p.Completed != nil {
		body["completed"] = *p.Completed
	}
	return json.Marshal(body)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
