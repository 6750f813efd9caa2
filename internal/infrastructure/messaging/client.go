// Package messaging implements the outbound WhatsApp/SMS providers behind
// the domain messaging.Gateway.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/motorshop/backend/internal/domain/messaging"
)

// DefaultTimeout bounds every outbound provider call
const DefaultTimeout = 5 * time.Second

// maxErrorBody caps how much of an error response is copied into a result
const maxErrorBody = 256

// errTimeout is the error text reported for a call that hit the deadline
const errTimeout = "timeout"

// NewHTTPClient returns the client shared by all providers
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// authFunc decorates a request with credentials
type authFunc func(req *http.Request)

// providerResponse is the optional body shape many providers return even on
// HTTP 200. An explicit success=false is treated as a failure.
type providerResponse struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// postJSON sends body as JSON and folds every failure into a SendResult
func postJSON(ctx context.Context, client *http.Client, url string, body any, auth authFunc) messaging.SendResult {
	payload, err := json.Marshal(body)
	if err != nil {
		return messaging.Failed(http.StatusBadRequest, "encode request: %v", err)
	}
	return do(ctx, client, http.MethodPost, url, "application/json", payload, auth)
}

// do executes one request. It never returns a Go error: transport errors,
// timeouts and non-2xx responses all become failed results.
func do(ctx context.Context, client *http.Client, method, url, contentType string, payload []byte, auth authFunc) messaging.SendResult {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return messaging.Failed(http.StatusBadRequest, "build request: %v", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if auth != nil {
		auth(req)
	}

	resp, err := client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return messaging.Failed(0, errTimeout)
		}
		return messaging.Failed(0, "request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		if isTimeout(err) {
			return messaging.Failed(resp.StatusCode, errTimeout)
		}
		return messaging.Failed(resp.StatusCode, "read response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return messaging.Failed(resp.StatusCode, "HTTP %d: %s", resp.StatusCode, truncate(respBody))
	}

	var parsed providerResponse
	if len(respBody) > 0 && json.Unmarshal(respBody, &parsed) == nil && parsed.Success != nil && !*parsed.Success {
		msg := parsed.Error
		if msg == "" {
			msg = parsed.Message
		}
		if msg == "" {
			msg = "provider reported failure"
		}
		return messaging.Failed(resp.StatusCode, "%s", msg)
	}

	result := messaging.Succeeded()
	result.StatusCode = resp.StatusCode
	return result
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}

func bearer(token string) authFunc {
	return func(req *http.Request) {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
}

func withHeaders(headers map[string]string, next authFunc) authFunc {
	return func(req *http.Request) {
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		if next != nil {
			next(req)
		}
	}
}
