package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the base interface for transient drafts held by the service
type Entity interface {
	GetID() uuid.UUID
	GetOpenedAt() time.Time
	GetTouchedAt() time.Time
}

// BaseEntity provides identity and activity timestamps for drafts
type BaseEntity struct {
	ID        uuid.UUID
	OpenedAt  time.Time
	TouchedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// GetOpenedAt returns when the draft was opened
func (e *BaseEntity) GetOpenedAt() time.Time {
	return e.OpenedAt
}

// GetTouchedAt returns the last time the draft was edited
func (e *BaseEntity) GetTouchedAt() time.Time {
	return e.TouchedAt
}

// Touch records an edit
func (e *BaseEntity) Touch() {
	e.TouchedAt = time.Now()
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		OpenedAt:  now,
		TouchedAt: now,
	}
}
