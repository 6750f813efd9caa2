package messaging

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/motorshop/backend/internal/domain/messaging"
)

// WebhookProvider posts messages to a fully custom endpoint with the
// configured headers.
type WebhookProvider struct {
	config messaging.ProviderConfig
	client *http.Client
}

// NewWebhookProvider creates a webhook provider
func NewWebhookProvider(config messaging.ProviderConfig, client *http.Client) *WebhookProvider {
	return &WebhookProvider{config: config, client: client}
}

// Type returns the provider type
func (p *WebhookProvider) Type() messaging.ProviderType {
	return messaging.ProviderWebhook
}

type webhookPayload struct {
	To         string             `json:"to"`
	Message    string             `json:"message"`
	Attachment *webhookAttachment `json:"attachment,omitempty"`
}

type webhookAttachment struct {
	Data     string `json:"data"`
	MimeType string `json:"mime_type"`
	Filename string `json:"filename,omitempty"`
}

// SendText posts a text message
func (p *WebhookProvider) SendText(ctx context.Context, to, message string) messaging.SendResult {
	return postJSON(ctx, p.client, p.config.WebhookURL, webhookPayload{To: to, Message: message}, p.auth())
}

// SendAttachment posts a file; the caption travels as the message
func (p *WebhookProvider) SendAttachment(ctx context.Context, to string, attachment messaging.Attachment, caption string) messaging.SendResult {
	return postJSON(ctx, p.client, p.config.WebhookURL, webhookPayload{
		To:      to,
		Message: caption,
		Attachment: &webhookAttachment{
			Data:     base64.StdEncoding.EncodeToString(attachment.Data),
			MimeType: attachment.MimeType,
			Filename: attachment.Filename,
		},
	}, p.auth())
}

func (p *WebhookProvider) auth() authFunc {
	var next authFunc
	if p.config.AccessToken != "" {
		next = bearer(p.config.AccessToken)
	}
	return withHeaders(p.config.Headers, next)
}

var _ messaging.Provider = (*WebhookProvider)(nil)
