package models

import "time"

// User lifecycle event types.
const (
	EventUserCreated     = "user.created"
	EventUserUpdated     = "user.updated"
	EventUserDeleted     = "user.deleted"
	EventUserForceDelete = "user.force_deleted"
)

// UserEvent is published after a successful lifecycle change.
type UserEvent struct {
	Type       string    `json:"type"`
	UserID     uint      `json:"userId"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurredAt"`
}
