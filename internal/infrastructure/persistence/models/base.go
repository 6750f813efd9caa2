package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/shared"
)

// TenantAggregateModel holds the columns shared by tenant-owned aggregate
// tables. Version backs the optimistic lock on update.
type TenantAggregateModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Version   int       `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func aggregateColumns(a shared.TenantAggregate) TenantAggregateModel {
	return TenantAggregateModel{
		ID:        a.ID,
		TenantID:  a.TenantID,
		Version:   a.Version,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// aggregate rebuilds the root without pending events
func (m TenantAggregateModel) aggregate() shared.TenantAggregate {
	return shared.TenantAggregate{
		Entity:   shared.Entity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		TenantID: m.TenantID,
		Version:  m.Version,
	}
}
