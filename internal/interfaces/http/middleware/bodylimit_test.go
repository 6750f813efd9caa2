package middleware

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func bodyLimitRouter(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BodyLimit(limit))
	r.Any("/upload", func(c *gin.Context) {
		data, err := io.ReadAll(c.Request.Body)
		if IsBodyTooLarge(err) {
			AbortTooLarge(c)
			return
		}
		c.String(http.StatusOK, "%d", len(data))
	})
	return r
}

func TestBodyLimit(t *testing.T) {
	tests := []struct {
		name          string
		method        string
		body          string
		contentLength int64
		wantStatus    int
		wantBody      string
	}{
		{"within limit", http.MethodPost, "small body", 10, http.StatusOK, "10"},
		{"exactly at limit", http.MethodPost, strings.Repeat("x", 64), 64, http.StatusOK, "64"},
		{"declared length over limit", http.MethodPost, strings.Repeat("x", 200), 200, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE"},
		{"chunked body over limit", http.MethodPost, strings.Repeat("x", 100), -1, http.StatusRequestEntityTooLarge, `"success":false`},
		{"chunked body within limit", http.MethodPost, "tiny", -1, http.StatusOK, "4"},
		{"no body", http.MethodGet, "", 0, http.StatusOK, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, "/upload", body)
			req.ContentLength = tt.contentLength
			w := httptest.NewRecorder()
			bodyLimitRouter(64).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestIsBodyTooLarge(t *testing.T) {
	assert.False(t, IsBodyTooLarge(nil))
	assert.False(t, IsBodyTooLarge(io.ErrUnexpectedEOF))
	assert.True(t, IsBodyTooLarge(fmt.Errorf("decode: %w", &http.MaxBytesError{Limit: 10})))
}
