package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	notificationapp "github.com/motorshop/backend/internal/application/notification"
	"github.com/motorshop/backend/internal/domain/notification"
	"github.com/motorshop/backend/internal/domain/shared"
	"github.com/motorshop/backend/internal/interfaces/http/dto"
)

// WorkerRunner runs one delivery batch
type WorkerRunner interface {
	Run(ctx context.Context, opts notificationapp.RunOptions) notificationapp.Summary
}

// QueueAdmin exposes queue operations to API callers
type QueueAdmin interface {
	Enqueue(ctx context.Context, tenantID uuid.UUID, eventType notification.EventType, payload notification.Payload) (*notificationapp.EntryDTO, error)
	Get(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*notificationapp.EntryDTO, error)
	Stats(ctx context.Context, tc shared.TenantContext) (*notificationapp.QueueStatsDTO, error)
	Retry(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*notificationapp.EntryDTO, error)
}

// NotificationHandler serves the worker trigger and queue administration
type NotificationHandler struct {
	BaseHandler
	worker WorkerRunner
	queue  QueueAdmin
}

// NewNotificationHandler creates a notification handler
func NewNotificationHandler(worker WorkerRunner, queue QueueAdmin) *NotificationHandler {
	return &NotificationHandler{worker: worker, queue: queue}
}

// EnqueueNotificationRequest queues a message for the caller's tenant
type EnqueueNotificationRequest struct {
	EventType string               `json:"event_type" binding:"required"`
	Payload   notification.Payload `json:"payload" binding:"required"`
	// TenantID is honoured only for admins acting without a tenant
	TenantID *uuid.UUID `json:"tenant_id"`
}

// Process godoc
//
//	@Summary		Run the delivery worker
//	@Description	Processes one batch of pending notifications. Requires the trigger secret unless immediate=true.
//	@Tags			notifications
//	@Produce		json
//	@Param			immediate	query		bool	false	"Manual run"
//	@Param			id			query		string	false	"Force a single entry"	format(uuid)
//	@Success		200			{object}	notificationapp.Summary
//	@Failure		400			{object}	notificationapp.Summary
//	@Failure		401			{object}	dto.Response
//	@Router			/api/v1/notifications/process [get]
func (h *NotificationHandler) Process(c *gin.Context) {
	opts := notificationapp.RunOptions{}
	opts.Immediate, _ = strconv.ParseBool(c.Query("immediate"))

	if raw := c.Query("id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, notificationapp.Summary{
				Errors: []string{},
				Error:  "invalid entry id",
			})
			return
		}
		opts.EntryID = &id
	}

	summary := h.worker.Run(c.Request.Context(), opts)
	if summary.Errors == nil {
		summary.Errors = []string{}
	}
	status := http.StatusOK
	if summary.Error != "" {
		status = http.StatusInternalServerError
	}
	c.JSON(status, summary)
}

// Enqueue godoc
//
//	@Summary	Enqueue a notification
//	@Tags		notifications
//	@Accept		json
//	@Produce	json
//	@Param		request	body		EnqueueNotificationRequest	true	"Notification"
//	@Success	201		{object}	dto.Response{data=notificationapp.EntryDTO}
//	@Failure	400		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/api/v1/notifications [post]
func (h *NotificationHandler) Enqueue(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	var req EnqueueNotificationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	eventType, err := notification.ParseEventType(req.EventType)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	tenantID := tc.TenantID
	if tc.IsSuperAdmin && tenantID == uuid.Nil && req.TenantID != nil {
		tenantID = *req.TenantID
	}
	if tenantID == uuid.Nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "tenant_id is required")
		return
	}

	entry, err := h.queue.Enqueue(c.Request.Context(), tenantID, eventType, req.Payload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// Get godoc
//
//	@Summary	Get a queue entry
//	@Tags		notifications
//	@Produce	json
//	@Param		id	path		string	true	"Entry ID"	format(uuid)
//	@Success	200	{object}	dto.Response{data=notificationapp.EntryDTO}
//	@Failure	404	{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/api/v1/notifications/{id} [get]
func (h *NotificationHandler) Get(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	entry, err := h.queue.Get(c.Request.Context(), tc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Stats godoc
//
//	@Summary	Queue counts by status
//	@Tags		notifications
//	@Produce	json
//	@Success	200	{object}	dto.Response{data=notificationapp.QueueStatsDTO}
//	@Security	BearerAuth
//	@Router		/api/v1/notifications/stats [get]
func (h *NotificationHandler) Stats(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	stats, err := h.queue.Stats(c.Request.Context(), tc)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Retry godoc
//
//	@Summary	Reset a failed entry to pending
//	@Tags		notifications
//	@Produce	json
//	@Param		id	path		string	true	"Entry ID"	format(uuid)
//	@Success	200	{object}	dto.Response{data=notificationapp.EntryDTO}
//	@Failure	422	{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/api/v1/notifications/{id}/retry [post]
func (h *NotificationHandler) Retry(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	entry, err := h.queue.Retry(c.Request.Context(), tc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}
