package domain

import "time"

type AssistantEventKind string

const (
	EventSearch      AssistantEventKind = "search"
	EventCartCreated AssistantEventKind = "cart_created"
	EventCartUpdated AssistantEventKind = "cart_updated"
)

// AssistantEvent is published to the analytics topic after a successful
// dispatch. Best effort, never blocks the user-facing response.
type AssistantEvent struct {
	ID     string
	Kind   AssistantEventKind
	Query  string
	CartID int64
	NItems int
	At     time.Time
}
