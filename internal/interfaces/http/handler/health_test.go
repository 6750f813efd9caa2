package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantStatus int
		wantBody   HealthResponse
	}{
		{"no database", nil, http.StatusOK, HealthResponse{Status: "healthy", Service: "motorshop"}},
		{"database up", pingFunc(func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			if !ok {
				return errors.New("no deadline")
			}
			return nil
		}), http.StatusOK, HealthResponse{Status: "healthy", Service: "motorshop", Database: "ok"}},
		{"database down", pingFunc(func(context.Context) error { return errors.New("dial tcp: refused") }), http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Service: "motorshop", Database: "error"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := withClaims(nil)
			r.GET("/health", NewHealthHandler("motorshop", "", tt.db).Health)

			w := doJSON(t, r, http.MethodGet, "/health", nil)

			require.Equal(t, tt.wantStatus, w.Code)
			var got HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			got.Uptime = ""
			assert.Equal(t, tt.wantBody, got)
		})
	}
}
