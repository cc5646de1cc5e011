package shared

import "github.com/google/uuid"

// BaseAggregateRoot carries the optimistic-lock version and the domain
// events an aggregate raised during the current unit of work. Events are
// collected in memory and published by the application layer after the
// owning transaction commits.
type BaseAggregateRoot struct {
	BaseEntity
	Version      int           `gorm:"not null;default:1"`
	domainEvents []DomainEvent `gorm:"-"`
}

func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// IncrementVersion bumps the optimistic-lock version. Aggregates call it
// once per state-changing operation.
func (a *BaseAggregateRoot) IncrementVersion() { a.Version++ }

// AddDomainEvent queues an event for publication after commit.
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns the queued events in the order they were raised.
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.domainEvents }

// ClearDomainEvents drops the queue once the events have been published.
func (a *BaseAggregateRoot) ClearDomainEvents() { a.domainEvents = nil }

// TenantAggregateRoot scopes an aggregate to a tenant and stamps the acting
// user. CreatedBy/UpdatedBy carry ids issued by the external master-data
// layer and are nil for system-initiated changes.
type TenantAggregateRoot struct {
	BaseAggregateRoot
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
	UpdatedBy *uuid.UUID `gorm:"type:uuid"`
}

func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	return TenantAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		TenantID:          tenantID,
	}
}

// NewTenantAggregateRootWithActor stamps both audit columns with the actor.
func NewTenantAggregateRootWithActor(tenantID, actorID uuid.UUID) TenantAggregateRoot {
	root := NewTenantAggregateRoot(tenantID)
	if actorID != uuid.Nil {
		root.CreatedBy = &actorID
		root.UpdatedBy = &actorID
	}
	return root
}

// StampUpdatedBy records the actor of the latest mutation.
func (t *TenantAggregateRoot) StampUpdatedBy(actorID uuid.UUID) {
	if actorID != uuid.Nil {
		t.UpdatedBy = &actorID
	}
}
