package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the surrogate id and timestamps shared by all rows.
// Ids are generated application-side so aggregates can reference children
// before the first insert.
type BaseEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// NewBaseEntity returns a BaseEntity with a fresh id and timestamps.
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
