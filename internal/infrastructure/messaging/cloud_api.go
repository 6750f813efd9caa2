package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/motorshop/backend/internal/domain/messaging"
)

// DefaultCloudAPIBaseURL is used when the config has no api_url
const DefaultCloudAPIBaseURL = "https://graph.facebook.com/v19.0"

// CloudAPIProvider sends through a Graph-style cloud messaging API:
// POST {base}/{phone_number_id}/messages. Attachments are uploaded to
// {base}/{phone_number_id}/media first and then referenced by id.
type CloudAPIProvider struct {
	config messaging.ProviderConfig
	client *http.Client
}

// NewCloudAPIProvider creates a cloud API provider
func NewCloudAPIProvider(config messaging.ProviderConfig, client *http.Client) *CloudAPIProvider {
	return &CloudAPIProvider{config: config, client: client}
}

// Type returns the provider type
func (p *CloudAPIProvider) Type() messaging.ProviderType {
	return messaging.ProviderCloudAPI
}

type cloudMessage struct {
	MessagingProduct string         `json:"messaging_product"`
	To               string         `json:"to"`
	Type             string         `json:"type"`
	Text             *cloudText     `json:"text,omitempty"`
	Document         *cloudMediaRef `json:"document,omitempty"`
	Image            *cloudMediaRef `json:"image,omitempty"`
}

type cloudText struct {
	Body string `json:"body"`
}

type cloudMediaRef struct {
	ID       string `json:"id"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// SendText sends a text message
func (p *CloudAPIProvider) SendText(ctx context.Context, to, message string) messaging.SendResult {
	return postJSON(ctx, p.client, p.endpoint("messages"), cloudMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             &cloudText{Body: message},
	}, p.auth())
}

// SendAttachment uploads the file and sends it as a document or image
func (p *CloudAPIProvider) SendAttachment(ctx context.Context, to string, attachment messaging.Attachment, caption string) messaging.SendResult {
	mediaID, result := p.upload(ctx, attachment)
	if !result.Success {
		return result
	}

	msg := cloudMessage{MessagingProduct: "whatsapp", To: to, Type: mediaKind(attachment.MimeType)}
	ref := &cloudMediaRef{ID: mediaID, Caption: caption}
	if msg.Type == "image" {
		msg.Image = ref
	} else {
		ref.Filename = attachment.Filename
		msg.Document = ref
	}
	return postJSON(ctx, p.client, p.endpoint("messages"), msg, p.auth())
}

func (p *CloudAPIProvider) upload(ctx context.Context, attachment messaging.Attachment) (string, messaging.SendResult) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for _, f := range [][2]string{{"messaging_product", "whatsapp"}, {"type", attachment.MimeType}} {
		if err := form.WriteField(f[0], f[1]); err != nil {
			return "", messaging.Failed(http.StatusBadRequest, "build upload: %v", err)
		}
	}
	filename := attachment.Filename
	if filename == "" {
		filename = "attachment"
	}
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return "", messaging.Failed(http.StatusBadRequest, "build upload: %v", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(attachment.Data)); err != nil {
		return "", messaging.Failed(http.StatusBadRequest, "build upload: %v", err)
	}
	if err := form.Close(); err != nil {
		return "", messaging.Failed(http.StatusBadRequest, "build upload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint("media"), &buf)
	if err != nil {
		return "", messaging.Failed(http.StatusBadRequest, "build upload: %v", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	p.auth()(req)

	resp, err := p.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", messaging.Failed(0, errTimeout)
		}
		return "", messaging.Failed(0, "upload failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", messaging.Failed(resp.StatusCode, "upload HTTP %d: %s", resp.StatusCode, truncate(body))
	}

	var uploaded struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &uploaded); err != nil || uploaded.ID == "" {
		return "", messaging.Failed(resp.StatusCode, "upload response has no media id")
	}
	return uploaded.ID, messaging.Succeeded()
}

func (p *CloudAPIProvider) endpoint(resource string) string {
	base := strings.TrimRight(p.config.APIURL, "/")
	if base == "" {
		base = DefaultCloudAPIBaseURL
	}
	return fmt.Sprintf("%s/%s/%s", base, p.config.PhoneNumberID, resource)
}

func (p *CloudAPIProvider) auth() authFunc {
	return withHeaders(p.config.Headers, bearer(p.config.AccessToken))
}

// mediaKind maps a MIME type onto the message type most APIs expect
func mediaKind(mimeType string) string {
	if strings.HasPrefix(mimeType, "image/") {
		return "image"
	}
	return "document"
}

var _ messaging.Provider = (*CloudAPIProvider)(nil)
