package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	invoiceapp "github.com/motorshop/backend/internal/application/invoice"
	"github.com/motorshop/backend/internal/domain/invoice"
	"github.com/motorshop/backend/internal/domain/messaging"
	"github.com/motorshop/backend/internal/domain/shared"
	"github.com/motorshop/backend/internal/infrastructure/logger"
	"github.com/motorshop/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// InvoiceLifecycle is the invoice service as used by the API
type InvoiceLifecycle interface {
	CreateDraft(ctx context.Context, tc shared.TenantContext, req invoiceapp.CreateInvoiceRequest) (*invoiceapp.InvoiceResponse, error)
	CreateAndIssue(ctx context.Context, tc shared.TenantContext, req invoiceapp.CreateInvoiceRequest) (*invoiceapp.InvoiceResponse, error)
	Issue(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*invoiceapp.InvoiceResponse, error)
	RecordPayment(ctx context.Context, tc shared.TenantContext, id uuid.UUID, req invoiceapp.RecordPaymentRequest) (*invoiceapp.PaymentResultResponse, error)
	Cancel(ctx context.Context, tc shared.TenantContext, id uuid.UUID, reason string) (*invoiceapp.InvoiceResponse, error)
	MarkOverdue(ctx context.Context, now time.Time) (int, error)
	Get(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*invoiceapp.InvoiceResponse, error)
	Find(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*invoice.Invoice, *invoice.Job, error)
	List(ctx context.Context, tc shared.TenantContext, filter invoiceapp.InvoiceListFilter) (*shared.Paginated[invoiceapp.InvoiceListItemResponse], error)
}

// DocumentLinker renders an invoice PDF and returns a temporary link to it
type DocumentLinker interface {
	DownloadURL(ctx context.Context, inv *invoice.Invoice, job *invoice.Job, shopName string, expiresIn time.Duration) (string, error)
}

// defaultLinkExpiry bounds the lifetime of a PDF download link
const defaultLinkExpiry = 24 * time.Hour

// InvoiceHandler serves the invoice lifecycle endpoints
type InvoiceHandler struct {
	BaseHandler
	service   InvoiceLifecycle
	documents DocumentLinker
	settings  messaging.SettingsRepository
	now       func() time.Time
}

// NewInvoiceHandler creates an invoice handler
func NewInvoiceHandler(service InvoiceLifecycle) *InvoiceHandler {
	return &InvoiceHandler{service: service, now: time.Now}
}

// WithDocuments enables the PDF link endpoint. settings supplies the shop
// name printed on the document and may be nil.
func (h *InvoiceHandler) WithDocuments(documents DocumentLinker, settings messaging.SettingsRepository) *InvoiceHandler {
	h.documents = documents
	h.settings = settings
	return h
}

// DocumentLinkResponse is a temporary PDF link
type DocumentLinkResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Create godoc
//
//	@Summary		Create an invoice
//	@Description	Drafts an invoice for a job. With issue_immediately the invoice is also numbered and issued.
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			request	body		invoiceapp.CreateInvoiceRequest	true	"Invoice"
//	@Success		201		{object}	dto.Response{data=invoiceapp.InvoiceResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/api/v1/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	var req invoiceapp.CreateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	var (
		resp *invoiceapp.InvoiceResponse
		err  error
	)
	if req.IssueImmediately {
		resp, err = h.service.CreateAndIssue(c.Request.Context(), tc, req)
	} else {
		resp, err = h.service.CreateDraft(c.Request.Context(), tc, req)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
//
//	@Summary	List invoices
//	@Tags		invoices
//	@Produce	json
//	@Param		status		query		string	false	"Status filter"
//	@Param		job_id		query		string	false	"Job filter"	format(uuid)
//	@Param		page		query		int		false	"Page"			default(1)
//	@Param		page_size	query		int		false	"Page size"		default(20)
//	@Param		order_by	query		string	false	"Sort field"
//	@Param		order_dir	query		string	false	"asc or desc"
//	@Success	200			{object}	dto.Response{data=[]invoiceapp.InvoiceListItemResponse,meta=dto.Meta}
//	@Security	BearerAuth
//	@Router		/api/v1/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	var filter invoiceapp.InvoiceListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.service.List(c.Request.Context(), tc, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
//
//	@Summary	Get an invoice
//	@Tags		invoices
//	@Produce	json
//	@Param		id	path		string	true	"Invoice ID"	format(uuid)
//	@Success	200	{object}	dto.Response{data=invoiceapp.InvoiceResponse}
//	@Failure	404	{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/api/v1/invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.service.Get(c.Request.Context(), tc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Issue godoc
//
//	@Summary	Issue a draft invoice
//	@Tags		invoices
//	@Produce	json
//	@Param		id	path		string	true	"Invoice ID"	format(uuid)
//	@Success	200	{object}	dto.Response{data=invoiceapp.InvoiceResponse}
//	@Failure	422	{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/api/v1/invoices/{id}/issue [post]
func (h *InvoiceHandler) Issue(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.service.Issue(c.Request.Context(), tc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecordPayment godoc
//
//	@Summary	Record a payment
//	@Tags		invoices
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string							true	"Invoice ID"	format(uuid)
//	@Param		request	body		invoiceapp.RecordPaymentRequest	true	"Payment"
//	@Success	201		{object}	dto.Response{data=invoiceapp.PaymentResultResponse}
//	@Failure	400		{object}	dto.Response
//	@Failure	422		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/api/v1/invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req invoiceapp.RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.RecordPayment(c.Request.Context(), tc, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Cancel godoc
//
//	@Summary	Cancel an unpaid invoice
//	@Tags		invoices
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string							true	"Invoice ID"	format(uuid)
//	@Param		request	body		invoiceapp.CancelInvoiceRequest	true	"Reason"
//	@Success	200		{object}	dto.Response{data=invoiceapp.InvoiceResponse}
//	@Failure	422		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/api/v1/invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req invoiceapp.CancelInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.Cancel(c.Request.Context(), tc, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MarkOverdue godoc
//
//	@Summary		Mark past-due invoices overdue
//	@Description	Cron entry point. Protected by the trigger secret.
//	@Tags			invoices
//	@Produce		json
//	@Success		200	{object}	dto.Response{data=invoiceapp.MarkOverdueResponse}
//	@Failure		401	{object}	dto.Response
//	@Router			/api/v1/invoices/mark-overdue [post]
func (h *InvoiceHandler) MarkOverdue(c *gin.Context) {
	marked, err := h.service.MarkOverdue(c.Request.Context(), h.now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoiceapp.MarkOverdueResponse{Marked: marked})
}

// PDFLink godoc
//
//	@Summary	Get a download link for the invoice PDF
//	@Tags		invoices
//	@Produce	json
//	@Param		id	path		string	true	"Invoice ID"	format(uuid)
//	@Success	200	{object}	dto.Response{data=DocumentLinkResponse}
//	@Failure	404	{object}	dto.Response
//	@Failure	422	{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/api/v1/invoices/{id}/pdf [get]
func (h *InvoiceHandler) PDFLink(c *gin.Context) {
	if h.documents == nil {
		h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Invoice printing is disabled")
		return
	}
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	inv, job, err := h.service.Find(c.Request.Context(), tc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if inv.Status == invoice.StatusDraft {
		h.HandleError(c, shared.NewInvalidStateError("draft invoices have no document"))
		return
	}

	url, err := h.documents.DownloadURL(c.Request.Context(), inv, job, h.shopName(c.Request.Context(), inv.TenantID), defaultLinkExpiry)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, DocumentLinkResponse{URL: url, ExpiresAt: h.now().Add(defaultLinkExpiry)})
}

func (h *InvoiceHandler) shopName(ctx context.Context, tenantID uuid.UUID) string {
	if h.settings == nil {
		return ""
	}
	settings, err := h.settings.FindByTenant(ctx, tenantID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			logger.FromContext(ctx).Warn("Failed to load shop name", zap.Error(err))
		}
		return ""
	}
	return settings.ShopName
}
