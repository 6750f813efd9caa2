package messaging

import (
	"github.com/motorshop/backend/internal/domain/shared"
)

// DefaultAPIKeyHeader is used by the auto-sender when no header is configured
const DefaultAPIKeyHeader = "X-API-Key"

// ProviderConfig is the union of settings used by the providers. Which fields
// are required depends on the provider.
type ProviderConfig struct {
	APIURL        string            `json:"api_url,omitempty"`
	APIKey        string            `json:"api_key,omitempty"`
	APIKeyHeader  string            `json:"api_key_header,omitempty"`
	Username      string            `json:"username,omitempty"`
	Password      string            `json:"password,omitempty"`
	InstanceID    string            `json:"instance_id,omitempty"`
	AccessToken   string            `json:"access_token,omitempty"`
	PhoneNumberID string            `json:"phone_number_id,omitempty"`
	SenderID      string            `json:"sender_id,omitempty"`
	WebhookURL    string            `json:"webhook_url,omitempty"`
	Headers       map[string]string `json:"headers,omitempty"`
}

// HasBasicAuth reports whether a username/password pair is present
func (c ProviderConfig) HasBasicAuth() bool {
	return c.Username != "" && c.Password != ""
}

// KeyHeader returns the header name carrying the API key
func (c ProviderConfig) KeyHeader() string {
	if c.APIKeyHeader != "" {
		return c.APIKeyHeader
	}
	return DefaultAPIKeyHeader
}

// Validate checks the fields required by provider are set. The returned
// error carries CodeProviderConfiguration so callers fail without retrying.
func (c ProviderConfig) Validate(provider ProviderType) error {
	missing := func(field string) error {
		return shared.NewProviderConfigurationError(string(provider) + ": " + field + " is required")
	}
	switch provider {
	case ProviderAutoSender:
		if c.APIURL == "" {
			return missing("api_url")
		}
		if c.APIKey == "" && !c.HasBasicAuth() {
			return missing("api_key or username/password")
		}
	case ProviderBusinessAPI:
		if c.APIURL == "" {
			return missing("api_url")
		}
		if c.AccessToken == "" {
			return missing("access_token")
		}
	case ProviderCloudAPI:
		if c.PhoneNumberID == "" {
			return missing("phone_number_id")
		}
		if c.AccessToken == "" {
			return missing("access_token")
		}
	case ProviderWebhook:
		if c.WebhookURL == "" {
			return missing("webhook_url")
		}
	default:
		return shared.NewProviderConfigurationError("unsupported messaging provider: " + string(provider))
	}
	return nil
}
