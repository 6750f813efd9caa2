package messaging

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/motorshop/backend/internal/domain/messaging"
)

// AutoSenderProvider talks to an HTTP auto-sender API. It authenticates with
// the API key header first and falls back to Basic auth exactly once when the
// key is rejected with 401 or 403.
type AutoSenderProvider struct {
	config messaging.ProviderConfig
	client *http.Client
}

// NewAutoSenderProvider creates an auto-sender provider
func NewAutoSenderProvider(config messaging.ProviderConfig, client *http.Client) *AutoSenderProvider {
	return &AutoSenderProvider{config: config, client: client}
}

// Type returns the provider type
func (p *AutoSenderProvider) Type() messaging.ProviderType {
	return messaging.ProviderAutoSender
}

type autoSenderText struct {
	To         string `json:"to"`
	Message    string `json:"message"`
	InstanceID string `json:"instance_id,omitempty"`
}

type autoSenderMedia struct {
	To         string `json:"to"`
	Caption    string `json:"caption,omitempty"`
	InstanceID string `json:"instance_id,omitempty"`
	Media      string `json:"media"`
	MimeType   string `json:"mime_type"`
	Filename   string `json:"filename,omitempty"`
}

// SendText sends a text message
func (p *AutoSenderProvider) SendText(ctx context.Context, to, message string) messaging.SendResult {
	return p.send(ctx, autoSenderText{To: to, Message: message, InstanceID: p.config.InstanceID})
}

// SendAttachment sends a file with an optional caption
func (p *AutoSenderProvider) SendAttachment(ctx context.Context, to string, attachment messaging.Attachment, caption string) messaging.SendResult {
	return p.send(ctx, autoSenderMedia{
		To:         to,
		Caption:    caption,
		InstanceID: p.config.InstanceID,
		Media:      base64.StdEncoding.EncodeToString(attachment.Data),
		MimeType:   attachment.MimeType,
		Filename:   attachment.Filename,
	})
}

// send makes at most two attempts: key header, then Basic auth on 401/403
func (p *AutoSenderProvider) send(ctx context.Context, body any) messaging.SendResult {
	basic := func(req *http.Request) {
		req.SetBasicAuth(p.config.Username, p.config.Password)
	}

	if p.config.APIKey == "" {
		return postJSON(ctx, p.client, p.config.APIURL, body, withHeaders(p.config.Headers, basic))
	}

	keyHeader := func(req *http.Request) {
		req.Header.Set(p.config.KeyHeader(), p.config.APIKey)
	}
	result := postJSON(ctx, p.client, p.config.APIURL, body, withHeaders(p.config.Headers, keyHeader))
	if result.Success || !isAuthRejection(result.StatusCode) || !p.config.HasBasicAuth() {
		return result
	}
	return postJSON(ctx, p.client, p.config.APIURL, body, withHeaders(p.config.Headers, basic))
}

func isAuthRejection(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

var _ messaging.Provider = (*AutoSenderProvider)(nil)
