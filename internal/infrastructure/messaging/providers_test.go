package messaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/motorshop/backend/internal/domain/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedRequest is a captured inbound request
type recordedRequest struct {
	Method  string
	Path    string
	Header  http.Header
	Body    []byte
	BasicOK bool
	User    string
	Pass    string
}

// fakeProvider is an httptest server that records requests and answers with
// the responder's status and body.
type fakeProvider struct {
	*httptest.Server

	mu        sync.Mutex
	requests  []recordedRequest
	responder func(n int, r *http.Request) (int, string)
}

func newFakeProvider(t *testing.T, responder func(n int, r *http.Request) (int, string)) *fakeProvider {
	t.Helper()
	f := &fakeProvider{responder: responder}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		user, pass, ok := r.BasicAuth()

		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone(), Body: body,
			BasicOK: ok, User: user, Pass: pass,
		})
		n := len(f.requests)
		f.mu.Unlock()

		status, resp := f.responder(n, r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeProvider) Requests() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func ok(int, *http.Request) (int, string) { return http.StatusOK, `{"success":true}` }

func decodeBody(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(body, &m))
	return m
}

var pdf = messaging.Attachment{Data: []byte("%PDF-1.4"), MimeType: "application/pdf", Filename: "INV-2026-00001.pdf"}

func TestAutoSender_SendsWithKeyHeader(t *testing.T) {
	srv := newFakeProvider(t, ok)
	p := NewAutoSenderProvider(messaging.ProviderConfig{
		APIURL: srv.URL + "/send", APIKey: "k-1", InstanceID: "inst-9",
	}, srv.Client())

	result := p.SendText(context.Background(), "919876543210", "hello")

	require.True(t, result.Success, result.Error)
	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/send", reqs[0].Path)
	assert.Equal(t, "k-1", reqs[0].Header.Get("X-API-Key"))
	assert.False(t, reqs[0].BasicOK)
	assert.Equal(t, map[string]any{"to": "919876543210", "message": "hello", "instance_id": "inst-9"}, decodeBody(t, reqs[0].Body))
}

func TestAutoSender_CustomKeyHeader(t *testing.T) {
	srv := newFakeProvider(t, ok)
	p := NewAutoSenderProvider(messaging.ProviderConfig{
		APIURL: srv.URL, APIKey: "k-1", APIKeyHeader: "apikey",
	}, srv.Client())

	require.True(t, p.SendText(context.Background(), "919876543210", "hi").Success)
	assert.Equal(t, "k-1", srv.Requests()[0].Header.Get("apikey"))
}

func TestAutoSender_FallsBackToBasicAuthOnce(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		srv := newFakeProvider(t, func(n int, r *http.Request) (int, string) {
			if _, _, basic := r.BasicAuth(); basic {
				return http.StatusOK, `{"success":true}`
			}
			return status, `{"error":"bad key"}`
		})
		p := NewAutoSenderProvider(messaging.ProviderConfig{
			APIURL: srv.URL, APIKey: "stale", Username: "shop", Password: "secret",
		}, srv.Client())

		result := p.SendText(context.Background(), "919876543210", "hello")

		require.True(t, result.Success, result.Error)
		reqs := srv.Requests()
		require.Len(t, reqs, 2)
		assert.Equal(t, "stale", reqs[0].Header.Get("X-API-Key"))
		assert.True(t, reqs[1].BasicOK)
		assert.Equal(t, "shop", reqs[1].User)
		assert.Equal(t, "secret", reqs[1].Pass)
		assert.Empty(t, reqs[1].Header.Get("X-API-Key"))
	}
}

func TestAutoSender_BasicAuthRejectedStops(t *testing.T) {
	srv := newFakeProvider(t, func(int, *http.Request) (int, string) {
		return http.StatusUnauthorized, `{"error":"nope"}`
	})
	p := NewAutoSenderProvider(messaging.ProviderConfig{
		APIURL: srv.URL, APIKey: "stale", Username: "shop", Password: "secret",
	}, srv.Client())

	result := p.SendText(context.Background(), "919876543210", "hello")

	assert.False(t, result.Success)
	assert.Equal(t, http.StatusUnauthorized, result.StatusCode)
	assert.Len(t, srv.Requests(), 2)
}

func TestAutoSender_NoFallbackWithoutCredentials(t *testing.T) {
	srv := newFakeProvider(t, func(int, *http.Request) (int, string) {
		return http.StatusUnauthorized, `{}`
	})
	p := NewAutoSenderProvider(messaging.ProviderConfig{APIURL: srv.URL, APIKey: "stale"}, srv.Client())

	result := p.SendText(context.Background(), "919876543210", "hello")

	assert.False(t, result.Success)
	assert.Len(t, srv.Requests(), 1)
}

func TestAutoSender_ServerErrorIsNotRetried(t *testing.T) {
	srv := newFakeProvider(t, func(int, *http.Request) (int, string) {
		return http.StatusInternalServerError, `upstream exploded`
	})
	p := NewAutoSenderProvider(messaging.ProviderConfig{
		APIURL: srv.URL, APIKey: "k", Username: "shop", Password: "secret",
	}, srv.Client())

	result := p.SendText(context.Background(), "919876543210", "hello")

	assert.False(t, result.Success)
	assert.Equal(t, http.StatusInternalServerError, result.StatusCode)
	assert.Equal(t, "HTTP 500: upstream exploded", result.Error)
	assert.Len(t, srv.Requests(), 1)
}

func TestAutoSender_BasicOnly(t *testing.T) {
	srv := newFakeProvider(t, ok)
	p := NewAutoSenderProvider(messaging.ProviderConfig{
		APIURL: srv.URL, Username: "shop", Password: "secret",
	}, srv.Client())

	require.True(t, p.SendText(context.Background(), "919876543210", "hello").Success)
	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.True(t, reqs[0].BasicOK)
}

func TestAutoSender_Attachment(t *testing.T) {
	srv := newFakeProvider(t, ok)
	p := NewAutoSenderProvider(messaging.ProviderConfig{APIURL: srv.URL, APIKey: "k"}, srv.Client())

	require.True(t, p.SendAttachment(context.Background(), "919876543210", pdf, "Your invoice").Success)

	body := decodeBody(t, srv.Requests()[0].Body)
	assert.Equal(t, base64.StdEncoding.EncodeToString(pdf.Data), body["media"])
	assert.Equal(t, "application/pdf", body["mime_type"])
	assert.Equal(t, "INV-2026-00001.pdf", body["filename"])
	assert.Equal(t, "Your invoice", body["caption"])
}

func TestExplicitFailureBodyOn200(t *testing.T) {
	srv := newFakeProvider(t, func(int, *http.Request) (int, string) {
		return http.StatusOK, `{"success":false,"error":"instance offline"}`
	})
	p := NewAutoSenderProvider(messaging.ProviderConfig{APIURL: srv.URL, APIKey: "k"}, srv.Client())

	result := p.SendText(context.Background(), "919876543210", "hello")

	assert.False(t, result.Success)
	assert.Equal(t, "instance offline", result.Error)
}

func TestNonJSONSuccessBody(t *testing.T) {
	srv := newFakeProvider(t, func(int, *http.Request) (int, string) { return http.StatusOK, `queued` })
	p := NewWebhookProvider(messaging.ProviderConfig{WebhookURL: srv.URL}, srv.Client())

	result := p.SendText(context.Background(), "919876543210", "hello")

	assert.True(t, result.Success)
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestTimeoutIsReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	p := NewWebhookProvider(messaging.ProviderConfig{WebhookURL: srv.URL}, NewHTTPClient(50*time.Millisecond))

	result := p.SendText(context.Background(), "919876543210", "hello")

	assert.False(t, result.Success)
	assert.Equal(t, "timeout", result.Error)
}

func TestBusinessAPI_WireFormat(t *testing.T) {
	srv := newFakeProvider(t, ok)
	p := NewBusinessAPIProvider(messaging.ProviderConfig{
		APIURL: srv.URL + "/v1/messages", AccessToken: "tok", SenderID: "MOTORS",
	}, srv.Client())

	require.True(t, p.SendText(context.Background(), "919876543210", "hello").Success)
	require.True(t, p.SendAttachment(context.Background(), "919876543210",
		messaging.Attachment{Data: []byte{0x89, 'P', 'N', 'G'}, MimeType: "image/png", Filename: "car.png"}, "").Success)

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "Bearer tok", reqs[0].Header.Get("Authorization"))
	assert.Equal(t, map[string]any{
		"to": "919876543210", "sender_id": "MOTORS", "type": "text", "message": "hello",
	}, decodeBody(t, reqs[0].Body))

	media := decodeBody(t, reqs[1].Body)
	assert.Equal(t, "image", media["type"])
	assert.Equal(t, "image/png", media["media"].(map[string]any)["mime_type"])
}

func TestCloudAPI_TextAndDocument(t *testing.T) {
	srv := newFakeProvider(t, func(n int, r *http.Request) (int, string) {
		if r.URL.Path == "/v19.0/12345/media" {
			return http.StatusOK, `{"id":"media-77"}`
		}
		return http.StatusOK, `{"messages":[{"id":"wamid.1"}]}`
	})
	p := NewCloudAPIProvider(messaging.ProviderConfig{
		APIURL: srv.URL + "/v19.0/", PhoneNumberID: "12345", AccessToken: "tok",
	}, srv.Client())

	require.True(t, p.SendText(context.Background(), "919876543210", "hello").Success)
	require.True(t, p.SendAttachment(context.Background(), "919876543210", pdf, "Invoice").Success)

	reqs := srv.Requests()
	require.Len(t, reqs, 3)

	assert.Equal(t, "/v19.0/12345/messages", reqs[0].Path)
	assert.Equal(t, "Bearer tok", reqs[0].Header.Get("Authorization"))
	assert.Equal(t, map[string]any{
		"messaging_product": "whatsapp", "to": "919876543210", "type": "text",
		"text": map[string]any{"body": "hello"},
	}, decodeBody(t, reqs[0].Body))

	assert.Equal(t, "/v19.0/12345/media", reqs[1].Path)
	assert.Contains(t, reqs[1].Header.Get("Content-Type"), "multipart/form-data")
	assert.Equal(t, map[string]string{
		"messaging_product": "whatsapp",
		"type":              "application/pdf",
		"file":              "%PDF-1.4",
	}, formParts(t, reqs[1]))

	doc := decodeBody(t, reqs[2].Body)
	assert.Equal(t, "document", doc["type"])
	assert.Equal(t, map[string]any{"id": "media-77", "caption": "Invoice", "filename": "INV-2026-00001.pdf"}, doc["document"])
}

// formParts reads a multipart body into field name to content
func formParts(t *testing.T, r recordedRequest) map[string]string {
	t.Helper()
	_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	require.NoError(t, err)
	out := map[string]string{}
	mr := multipart.NewReader(bytes.NewReader(r.Body), params["boundary"])
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		b, err := io.ReadAll(part)
		require.NoError(t, err)
		out[part.FormName()] = string(b)
	}
}

func TestCloudAPI_UploadFailure(t *testing.T) {
	srv := newFakeProvider(t, func(int, *http.Request) (int, string) {
		return http.StatusBadRequest, `{"error":{"message":"bad file"}}`
	})
	p := NewCloudAPIProvider(messaging.ProviderConfig{
		APIURL: srv.URL, PhoneNumberID: "12345", AccessToken: "tok",
	}, srv.Client())

	result := p.SendAttachment(context.Background(), "919876543210", pdf, "")

	assert.False(t, result.Success)
	assert.Equal(t, http.StatusBadRequest, result.StatusCode)
	assert.Len(t, srv.Requests(), 1)
}

func TestCloudAPI_DefaultBaseURL(t *testing.T) {
	p := NewCloudAPIProvider(messaging.ProviderConfig{PhoneNumberID: "42"}, nil)
	assert.Equal(t, "https://graph.facebook.com/v19.0/42/messages", p.endpoint("messages"))
}

func TestWebhook_HeadersAndAttachment(t *testing.T) {
	srv := newFakeProvider(t, ok)
	p := NewWebhookProvider(messaging.ProviderConfig{
		WebhookURL:  srv.URL + "/hook",
		Headers:     map[string]string{"X-Shop": "north"},
		AccessToken: "tok",
	}, srv.Client())

	require.True(t, p.SendAttachment(context.Background(), "919876543210", pdf, "Invoice").Success)

	req := srv.Requests()[0]
	assert.Equal(t, "/hook", req.Path)
	assert.Equal(t, "north", req.Header.Get("X-Shop"))
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))

	body := decodeBody(t, req.Body)
	assert.Equal(t, "Invoice", body["message"])
	assert.Equal(t, base64.StdEncoding.EncodeToString(pdf.Data), body["attachment"].(map[string]any)["data"])
}

func TestMediaKind(t *testing.T) {
	assert.Equal(t, "image", mediaKind("image/jpeg"))
	assert.Equal(t, "document", mediaKind("application/pdf"))
	assert.Equal(t, "document", mediaKind(""))
}

func TestTruncate(t *testing.T) {
	long := make([]byte, maxErrorBody+10)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, truncate(long), maxErrorBody+3)
	assert.Equal(t, "short", truncate([]byte("  short \n")))
}
