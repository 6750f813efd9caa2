package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/invoice"
)

// JobModel maps the jobs table owned by the intake workflow
type JobModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index"`
	CustomerName  string    `gorm:"type:varchar(255);not null"`
	CustomerPhone string    `gorm:"type:varchar(20)"`
	VehicleNumber string    `gorm:"type:varchar(20)"`
	VehicleModel  string    `gorm:"type:varchar(100)"`
	Status        string    `gorm:"type:varchar(30);not null"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (JobModel) TableName() string {
	return "jobs"
}

// ToDomain converts the model to the invoice context's Job view
func (m *JobModel) ToDomain() *invoice.Job {
	return &invoice.Job{
		ID:            m.ID,
		TenantID:      m.TenantID,
		CustomerName:  m.CustomerName,
		CustomerPhone: m.CustomerPhone,
		VehicleNumber: m.VehicleNumber,
		VehicleModel:  m.VehicleModel,
		Status:        m.Status,
	}
}
