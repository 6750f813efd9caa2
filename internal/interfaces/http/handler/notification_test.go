package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	notificationapp "github.com/motorshop/backend/internal/application/notification"
	"github.com/motorshop/backend/internal/domain/notification"
	"github.com/motorshop/backend/internal/domain/shared"
	"github.com/motorshop/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func notificationRouter(claims *auth.Claims, worker *MockWorkerRunner, queue *MockQueueAdmin) *gin.Engine {
	h := NewNotificationHandler(worker, queue)
	r := withClaims(claims)
	r.GET("/process", h.Process)
	r.POST("/notifications", h.Enqueue)
	r.GET("/notifications/stats", h.Stats)
	r.GET("/notifications/:id", h.Get)
	r.POST("/notifications/:id/retry", h.Retry)
	return r
}

func TestNotificationHandler_Process(t *testing.T) {
	t.Run("batch run returns the summary", func(t *testing.T) {
		worker := new(MockWorkerRunner)
		worker.On("Run", mock.Anything, notificationapp.RunOptions{}).
			Return(notificationapp.Summary{Processed: 3, Sent: 2, Failed: 1, Errors: []string{"boom"}})

		w := doJSON(t, notificationRouter(nil, worker, nil), http.MethodGet, "/process", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var summary notificationapp.Summary
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
		assert.Equal(t, 3, summary.Processed)
		assert.Equal(t, 2, summary.Sent)
		assert.Equal(t, 1, summary.Failed)
		assert.Equal(t, []string{"boom"}, summary.Errors)
		worker.AssertExpectations(t)
	})

	t.Run("immediate and id are forwarded", func(t *testing.T) {
		id := uuid.New()
		worker := new(MockWorkerRunner)
		worker.On("Run", mock.Anything, mock.MatchedBy(func(o notificationapp.RunOptions) bool {
			return o.Immediate && o.EntryID != nil && *o.EntryID == id
		})).Return(notificationapp.Summary{Processed: 1, Sent: 1})

		w := doJSON(t, notificationRouter(nil, worker, nil), http.MethodGet, "/process?immediate=true&id="+id.String(), nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"processed":1,"sent":1,"failed":0,"errors":[]}`, w.Body.String())
		worker.AssertExpectations(t)
	})

	t.Run("malformed id is rejected", func(t *testing.T) {
		worker := new(MockWorkerRunner)

		w := doJSON(t, notificationRouter(nil, worker, nil), http.MethodGet, "/process?id=nope", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		worker.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	})

	t.Run("infrastructure failure is a 500 summary", func(t *testing.T) {
		worker := new(MockWorkerRunner)
		worker.On("Run", mock.Anything, mock.Anything).
			Return(notificationapp.Summary{Errors: []string{}, Error: "connection refused"})

		w := doJSON(t, notificationRouter(nil, worker, nil), http.MethodGet, "/process", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"processed":0,"sent":0,"failed":0,"errors":[],"error":"connection refused"}`, w.Body.String())
	})
}

func TestNotificationHandler_Enqueue(t *testing.T) {
	tenantID := uuid.New()

	t.Run("enqueues for the caller's tenant", func(t *testing.T) {
		queue := new(MockQueueAdmin)
		entry := &notificationapp.EntryDTO{ID: uuid.New(), TenantID: tenantID, EventType: "vehicle_ready", Status: "pending"}
		queue.On("Enqueue", mock.Anything, tenantID, notification.EventVehicleReady, mock.MatchedBy(func(p notification.Payload) bool {
			return p["customer_phone"] == "9876543210"
		})).Return(entry, nil)

		w := doJSON(t, notificationRouter(tenantClaims(tenantID), nil, queue), http.MethodPost, "/notifications", map[string]any{
			"event_type": "vehicle_ready",
			"payload":    map[string]any{"customer_phone": "9876543210"},
		})

		require.Equal(t, http.StatusCreated, w.Code)
		env := decode(t, w)
		assert.True(t, env.Success)
		queue.AssertExpectations(t)
	})

	t.Run("tenant override ignored for tenant users", func(t *testing.T) {
		queue := new(MockQueueAdmin)
		other := uuid.New()
		queue.On("Enqueue", mock.Anything, tenantID, notification.EventVehicleReady, mock.Anything).
			Return(&notificationapp.EntryDTO{ID: uuid.New()}, nil)

		w := doJSON(t, notificationRouter(tenantClaims(tenantID), nil, queue), http.MethodPost, "/notifications", map[string]any{
			"event_type": "vehicle_ready",
			"payload":    map[string]any{},
			"tenant_id":  other,
		})

		require.Equal(t, http.StatusCreated, w.Code)
		queue.AssertExpectations(t)
	})

	t.Run("admin without tenant must name one", func(t *testing.T) {
		queue := new(MockQueueAdmin)
		admin := &auth.Claims{UserID: uuid.New().String(), Roles: []string{auth.RoleAdmin}}

		w := doJSON(t, notificationRouter(admin, nil, queue), http.MethodPost, "/notifications", map[string]any{
			"event_type": "vehicle_ready",
			"payload":    map[string]any{},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown event type", func(t *testing.T) {
		queue := new(MockQueueAdmin)

		w := doJSON(t, notificationRouter(tenantClaims(tenantID), nil, queue), http.MethodPost, "/notifications", map[string]any{
			"event_type": "birthday_wishes",
			"payload":    map[string]any{},
		})

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, shared.CodeValidation, decode(t, w).Error.Code)
	})

	t.Run("anonymous caller", func(t *testing.T) {
		w := doJSON(t, notificationRouter(nil, nil, new(MockQueueAdmin)), http.MethodPost, "/notifications", map[string]any{
			"event_type": "vehicle_ready",
			"payload":    map[string]any{},
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestNotificationHandler_StatsAndRetry(t *testing.T) {
	tenantID := uuid.New()
	claims := tenantClaims(tenantID)
	tc := claims.TenantContext()

	t.Run("stats", func(t *testing.T) {
		queue := new(MockQueueAdmin)
		queue.On("Stats", mock.Anything, tc).Return(&notificationapp.QueueStatsDTO{Pending: 2, Failed: 1, Total: 3}, nil)

		w := doJSON(t, notificationRouter(claims, nil, queue), http.MethodGet, "/notifications/stats", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var stats notificationapp.QueueStatsDTO
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &stats))
		assert.Equal(t, int64(3), stats.Total)
	})

	t.Run("retry of a non-failed entry", func(t *testing.T) {
		queue := new(MockQueueAdmin)
		id := uuid.New()
		queue.On("Retry", mock.Anything, tc, id).Return(nil, shared.NewInvalidStateError("only failed entries can be retried"))

		w := doJSON(t, notificationRouter(claims, nil, queue), http.MethodPost, "/notifications/"+id.String()+"/retry", nil)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := decode(t, w)
		assert.False(t, env.Success)
		assert.Equal(t, shared.CodeInvalidState, env.Error.Code)
	})

	t.Run("get of another tenant's entry", func(t *testing.T) {
		queue := new(MockQueueAdmin)
		id := uuid.New()
		queue.On("Get", mock.Anything, tc, id).Return(nil, shared.ErrNotFound)

		w := doJSON(t, notificationRouter(claims, nil, queue), http.MethodGet, "/notifications/"+id.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := doJSON(t, notificationRouter(claims, nil, new(MockQueueAdmin)), http.MethodPost, "/notifications/abc/retry", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
