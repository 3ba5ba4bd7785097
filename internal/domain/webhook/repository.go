package webhook

import "errors"

var ErrNotFound = errors.New("webhook event not found")

type Repository interface {
	// SaveIfNotExist persists the event unless one with the same external
	// event id already exists. It reports whether the event was inserted.
	// Concurrent calls for the same id must admit exactly one writer.
	SaveIfNotExist(*Event) (bool, error)
	FindByID(eventID string) (*Event, error)
	Update(*Event) error
	ListRecent(tenantID string, eventType EventType, limit int) ([]*Event, error)
	FindFailed(limit int) ([]*Event, error)
}
