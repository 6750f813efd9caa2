package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/messaging"
)

// MessagingSettingsModel stores a tenant's provider selection and credentials
type MessagingSettingsModel struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Provider  string    `gorm:"type:varchar(30);not null"`
	Config    JSONMap   `gorm:"type:jsonb;not null"`
	ShopName  string    `gorm:"type:varchar(255)"`
	Enabled   bool      `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MessagingSettingsModel) TableName() string {
	return "messaging_settings"
}

// ToDomain decodes the stored JSON config into a domain Settings value
func (m *MessagingSettingsModel) ToDomain() (*messaging.Settings, error) {
	raw, err := json.Marshal(m.Config)
	if err != nil {
		return nil, fmt.Errorf("encode messaging config: %w", err)
	}
	var cfg messaging.ProviderConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode messaging config: %w", err)
	}
	return &messaging.Settings{
		TenantID: m.TenantID,
		Provider: messaging.ProviderType(m.Provider),
		Config:   cfg,
		ShopName: m.ShopName,
		Enabled:  m.Enabled,
	}, nil
}

// MessagingSettingsModelFromDomain encodes domain settings for storage
func MessagingSettingsModelFromDomain(s *messaging.Settings) (*MessagingSettingsModel, error) {
	raw, err := json.Marshal(s.Config)
	if err != nil {
		return nil, fmt.Errorf("encode messaging config: %w", err)
	}
	cfg := JSONMap{}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode messaging config: %w", err)
	}
	return &MessagingSettingsModel{
		TenantID:  s.TenantID,
		Provider:  string(s.Provider),
		Config:    cfg,
		ShopName:  s.ShopName,
		Enabled:   s.Enabled,
		UpdatedAt: time.Now(),
	}, nil
}
