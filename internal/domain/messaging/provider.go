package messaging

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/shared"
)

// ProviderType identifies a messaging provider implementation
type ProviderType string

const (
	// ProviderAutoSender is an HTTP auto-sender API authenticated by an API
	// key header, with Basic auth as a one-shot fallback.
	ProviderAutoSender ProviderType = "autosender"
	// ProviderBusinessAPI is an SMS/WhatsApp business API using a bearer token.
	ProviderBusinessAPI ProviderType = "business_api"
	// ProviderCloudAPI is a Graph-style cloud messaging API.
	ProviderCloudAPI ProviderType = "cloud_api"
	// ProviderWebhook posts the message to a fully custom endpoint.
	ProviderWebhook ProviderType = "webhook"
)

// IsValid reports whether p is a supported provider
func (p ProviderType) IsValid() bool {
	switch p {
	case ProviderAutoSender, ProviderBusinessAPI, ProviderCloudAPI, ProviderWebhook:
		return true
	}
	return false
}

// ParseProviderType validates a provider tag
func ParseProviderType(s string) (ProviderType, error) {
	p := ProviderType(s)
	if !p.IsValid() {
		return "", shared.NewValidationError(fmt.Sprintf("unsupported messaging provider %q", s))
	}
	return p, nil
}

// Attachment is a binary file delivered alongside a text message
type Attachment struct {
	Data     []byte
	MimeType string
	Filename string
}

// SendRequest is one outbound message
type SendRequest struct {
	To         string
	Message    string
	Attachment *Attachment
}

// Validate checks the request has a destination and a body
func (r SendRequest) Validate() error {
	if NormalizePhone(r.To) == "" {
		return shared.NewValidationError("destination phone number is required")
	}
	if r.Message == "" {
		return shared.NewValidationError("message is required")
	}
	if r.Attachment != nil && len(r.Attachment.Data) > 0 && r.Attachment.MimeType == "" {
		return shared.NewValidationError("attachment mime type is required")
	}
	return nil
}

// SendResult is the outcome of a send. Provider-specific failures are folded
// into Error; StatusCode carries the upstream HTTP status when one was seen.
type SendResult struct {
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	StatusCode int    `json:"-"`
}

// Succeeded builds a successful result
func Succeeded() SendResult {
	return SendResult{Success: true}
}

// Failed builds a failed result
func Failed(statusCode int, format string, args ...any) SendResult {
	return SendResult{Success: false, StatusCode: statusCode, Error: fmt.Sprintf(format, args...)}
}

// Provider delivers messages through one third-party API
type Provider interface {
	Type() ProviderType
	SendText(ctx context.Context, to, message string) SendResult
	SendAttachment(ctx context.Context, to string, attachment Attachment, caption string) SendResult
}

// Gateway is the single entry point used by the rest of the system
type Gateway interface {
	Send(ctx context.Context, provider ProviderType, config ProviderConfig, req SendRequest) SendResult
}

// Settings is a tenant's chosen provider and its credentials
type Settings struct {
	TenantID uuid.UUID
	Provider ProviderType
	Config   ProviderConfig
	ShopName string
	Enabled  bool
}

// SettingsRepository loads tenant messaging settings
type SettingsRepository interface {
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*Settings, error)
	Save(ctx context.Context, settings *Settings) error
}
