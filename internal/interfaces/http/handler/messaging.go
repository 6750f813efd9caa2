package handler

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/motorshop/backend/internal/domain/messaging"
	"github.com/motorshop/backend/internal/interfaces/http/middleware"
)

// MessageSender is the messaging gateway as seen by the send endpoint
type MessageSender interface {
	Send(ctx context.Context, provider messaging.ProviderType, config messaging.ProviderConfig, req messaging.SendRequest) messaging.SendResult
}

// MessagingHandler sends ad-hoc messages through a caller-supplied provider
type MessagingHandler struct {
	BaseHandler
	gateway MessageSender
}

// NewMessagingHandler creates a messaging handler
func NewMessagingHandler(gateway MessageSender) *MessagingHandler {
	return &MessagingHandler{gateway: gateway}
}

// SendMessageRequest is the body of the send endpoint
type SendMessageRequest struct {
	Provider   string                   `json:"provider" binding:"required"`
	Config     messaging.ProviderConfig `json:"config"`
	To         string                   `json:"to" binding:"required,phone"`
	Message    string                   `json:"message" binding:"required"`
	Attachment *AttachmentRequest       `json:"attachment"`
}

// AttachmentRequest is a base64-encoded file
type AttachmentRequest struct {
	Data     string `json:"data" binding:"required,base64"`
	MimeType string `json:"mime_type" binding:"required"`
	Filename string `json:"filename"`
}

// Send godoc
//
//	@Summary		Send a message
//	@Description	Delivers a text message, with an optional attachment, through the named provider.
//	@Tags			messaging
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SendMessageRequest	true	"Message"
//	@Success		200		{object}	messaging.SendResult
//	@Failure		400		{object}	messaging.SendResult
//	@Failure		401		{object}	messaging.SendResult
//	@Failure		403		{object}	messaging.SendResult
//	@Failure		500		{object}	messaging.SendResult
//	@Security		BearerAuth
//	@Router			/api/v1/messaging/send [post]
func (h *MessagingHandler) Send(c *gin.Context) {
	if _, ok := h.tenantContext(c); !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if middleware.IsBodyTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, messaging.SendResult{Error: "Request body exceeds maximum allowed size"})
			return
		}
		c.JSON(http.StatusBadRequest, messaging.SendResult{Error: firstValidationMessage(err)})
		return
	}
	provider, err := messaging.ParseProviderType(req.Provider)
	if err != nil {
		c.JSON(http.StatusBadRequest, messaging.SendResult{Error: err.Error()})
		return
	}

	sendReq := messaging.SendRequest{To: req.To, Message: req.Message}
	if req.Attachment != nil {
		data, err := base64.StdEncoding.DecodeString(req.Attachment.Data)
		if err != nil {
			c.JSON(http.StatusBadRequest, messaging.SendResult{Error: "attachment data is not valid base64"})
			return
		}
		sendReq.Attachment = &messaging.Attachment{
			Data:     data,
			MimeType: req.Attachment.MimeType,
			Filename: req.Attachment.Filename,
		}
	}

	result := h.gateway.Send(c.Request.Context(), provider, req.Config, sendReq)
	c.JSON(sendStatus(result), result)
}

// sendStatus mirrors the upstream failure class. Malformed input and auth
// rejections keep their status; everything else is a 500.
func sendStatus(result messaging.SendResult) int {
	if result.Success {
		return http.StatusOK
	}
	switch result.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return result.StatusCode
	}
	return http.StatusInternalServerError
}

func firstValidationMessage(err error) string {
	resp := middleware.FormatValidationErrors(err, "")
	if resp.Error == nil {
		return err.Error()
	}
	if len(resp.Error.Details) > 0 {
		d := resp.Error.Details[0]
		return d.Field + ": " + d.Message
	}
	return resp.Error.Message
}
