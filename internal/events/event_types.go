package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/device-cost-service/internal/domain"
	"github.com/spec-kit/device-cost-service/internal/valuation"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventProductAdded     EventType = "product_added"
	EventProductUpdated   EventType = "product_updated"
	EventProductDeleted   EventType = "product_deleted"
	EventLifespanAdvisory EventType = "lifespan_advisory"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	ProductID string      `json:"product_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, userID, productID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		ProductID: productID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// ProductAddedPayload payload.
type ProductAddedPayload struct {
	Name     string          `json:"name"`
	Category domain.Category `json:"category"`
	Price    float64         `json:"price"`
	Currency domain.Currency `json:"currency"`
}

// ProductUpdatedPayload lists the fields touched by a patch.
type ProductUpdatedPayload struct {
	Fields []string `json:"fields"`
}

// ProductDeletedPayload payload.
type ProductDeletedPayload struct {
	Name string `json:"name"`
}

// LifespanAdvisoryPayload is emitted by the daily sweep for products past the upgrade threshold.
type LifespanAdvisoryPayload struct {
	Name     string                    `json:"name"`
	Progress int                       `json:"usage_progress"`
	Message  valuation.ProgressMessage `json:"progress_message"`
}
