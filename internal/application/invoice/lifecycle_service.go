package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	notificationapp "github.com/motorshop/backend/internal/application/notification"
	"github.com/motorshop/backend/internal/domain/invoice"
	"github.com/motorshop/backend/internal/domain/notification"
	"github.com/motorshop/backend/internal/domain/shared"
	"github.com/motorshop/backend/internal/infrastructure/logger"
	"github.com/motorshop/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// NotificationEnqueuer inserts outbound notifications
type NotificationEnqueuer interface {
	Enqueue(ctx context.Context, tenantID uuid.UUID, eventType notification.EventType, payload notification.Payload) (*notificationapp.EntryDTO, error)
}

// LifecycleService runs the invoice state machine:
//
//	draft -> issued -> partial -> paid
//	issued|partial -> overdue -> paid
//	any but paid -> cancelled
//
// Every transition that a customer should hear about enqueues a notification.
// A failed enqueue never rolls the transition back.
type LifecycleService struct {
	invoices invoice.Repository
	jobs     invoice.JobRepository
	numbers  invoice.NumberGenerator
	policy   invoice.OverpaymentPolicy
	notifier NotificationEnqueuer
	metrics  *telemetry.DeliveryMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewLifecycleService creates a LifecycleService
func NewLifecycleService(
	invoices invoice.Repository,
	jobs invoice.JobRepository,
	numbers invoice.NumberGenerator,
	policy invoice.OverpaymentPolicy,
	log *zap.Logger,
) *LifecycleService {
	if policy == "" {
		policy = invoice.DefaultOverpaymentPolicy
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LifecycleService{
		invoices: invoices,
		jobs:     jobs,
		numbers:  numbers,
		policy:   policy,
		logger:   log.Named("invoice_lifecycle"),
		now:      time.Now,
	}
}

// SetNotificationEnqueuer wires the notification queue
func (s *LifecycleService) SetNotificationEnqueuer(n NotificationEnqueuer) {
	s.notifier = n
}

// SetMetrics wires transition and payment metrics
func (s *LifecycleService) SetMetrics(m *telemetry.DeliveryMetrics) {
	s.metrics = m
}

// SetClock overrides the time source
func (s *LifecycleService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateDraft drafts an invoice, or drafts and issues it when
// req.IssueImmediately is set. Line items are persisted after the header; if
// that fails, or the immediate issue fails, the draft is deleted again.
func (s *LifecycleService) CreateDraft(ctx context.Context, tc shared.TenantContext, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceLifecycle", "Create",
		telemetry.WithAttribute("issue_immediately", req.IssueImmediately))
	defer span.End()

	if err := tc.Validate(); err != nil {
		return nil, err
	}
	job, err := s.loadJob(ctx, tc, req.JobID)
	if err != nil {
		return nil, err
	}

	params := invoice.NewInvoiceParams{
		TenantID:       job.TenantID,
		JobID:          job.ID,
		DiscountAmount: req.DiscountAmount,
		DiscountReason: req.DiscountReason,
		TaxAmount:      req.TaxAmount,
		TaxInclusive:   req.TaxInclusive,
		Notes:          req.Notes,
		LineItems:      make([]invoice.LineItemInput, 0, len(req.LineItems)),
	}
	if req.InvoiceDate != nil {
		params.InvoiceDate = *req.InvoiceDate
	}
	if req.DueDate != nil {
		params.DueDate = *req.DueDate
	}
	for _, item := range req.LineItems {
		params.LineItems = append(params.LineItems, invoice.LineItemInput{
			ProductName: item.ProductName,
			Brand:       item.Brand,
			Department:  item.Department,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	inv, err := invoice.NewInvoice(params)
	if err != nil {
		return nil, err
	}

	if err := s.invoices.Create(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	if err := s.invoices.CreateLineItems(ctx, inv.LineItems); err != nil {
		telemetry.RecordError(span, err)
		log := logger.L(ctx, s.logger).With(zap.String("invoice_id", inv.ID.String()))
		if delErr := s.invoices.Delete(ctx, inv.ID); delErr != nil {
			log.Error("Failed to delete invoice header after line item failure", zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to create invoice line items: %w", err)
	}
	s.metrics.RecordTransition(ctx, invoice.StatusDraft.String())

	if req.IssueImmediately {
		if err := s.issue(ctx, inv); err != nil {
			telemetry.RecordError(span, err)
			if delErr := s.invoices.Delete(ctx, inv.ID); delErr != nil {
				logger.L(ctx, s.logger).Error("Failed to delete draft after issue failure",
					zap.String("invoice_id", inv.ID.String()), zap.Error(delErr))
			}
			return nil, err
		}
		s.publishEvents(ctx, inv, job)
	}

	telemetry.SetOK(span)
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// CreateAndIssue drafts and issues in one call
func (s *LifecycleService) CreateAndIssue(ctx context.Context, tc shared.TenantContext, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	req.IssueImmediately = true
	return s.CreateDraft(ctx, tc, req)
}

// Issue moves a draft to issued and assigns its invoice number
func (s *LifecycleService) Issue(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceLifecycle", "Issue",
		telemetry.WithAttribute("invoice_id", id.String()))
	defer span.End()

	inv, err := s.load(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	if err := s.issue(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, inv, nil)

	telemetry.SetOK(span)
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

func (s *LifecycleService) issue(ctx context.Context, inv *invoice.Invoice) error {
	if inv.Status != invoice.StatusDraft {
		return shared.NewInvalidStateError("Only draft invoices can be issued")
	}
	now := s.now()
	number := inv.InvoiceNumber
	if number == "" {
		var err error
		if number, err = s.numbers.Next(ctx, inv.TenantID, inv.InvoiceDate); err != nil {
			return fmt.Errorf("failed to generate invoice number: %w", err)
		}
	}
	if err := inv.Issue(number, now); err != nil {
		return err
	}
	if err := s.invoices.Save(ctx, inv); err != nil {
		return err
	}
	s.metrics.RecordTransition(ctx, inv.Status.String())
	logger.L(ctx, s.logger).Info("Invoice issued",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("total_amount", inv.TotalAmount.StringFixed(2)))
	return nil
}

// RecordPayment applies a payment under the configured overpayment policy
func (s *LifecycleService) RecordPayment(ctx context.Context, tc shared.TenantContext, id uuid.UUID, req RecordPaymentRequest) (*PaymentResultResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceLifecycle", "RecordPayment",
		telemetry.WithAttribute("invoice_id", id.String()))
	defer span.End()

	inv, err := s.load(ctx, tc, id)
	if err != nil {
		return nil, err
	}

	in := invoice.PaymentInput{
		Amount:          req.Amount,
		PaymentMode:     invoice.PaymentMode(req.PaymentMode),
		ReferenceNumber: req.ReferenceNumber,
		PaidBy:          req.PaidBy,
		Notes:           req.Notes,
	}
	if req.PaymentDate != nil {
		in.PaymentDate = *req.PaymentDate
	}

	previous := inv.Status
	payment, err := inv.RecordPayment(in, s.policy, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.invoices.SavePayment(ctx, inv, payment); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordPayment(ctx, payment.Amount)
	if inv.Status != previous {
		s.metrics.RecordTransition(ctx, inv.Status.String())
	}
	logger.L(ctx, s.logger).Info("Payment recorded",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.String("balance_amount", inv.BalanceAmount.StringFixed(2)),
		zap.String("status", inv.Status.String()))
	s.publishEvents(ctx, inv, nil)

	telemetry.SetOK(span)
	return &PaymentResultResponse{
		Payment: ToPaymentResponse(payment),
		Invoice: ToInvoiceResponse(inv),
	}, nil
}

// Cancel terminates an unpaid invoice
func (s *LifecycleService) Cancel(ctx context.Context, tc shared.TenantContext, id uuid.UUID, reason string) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceLifecycle", "Cancel",
		telemetry.WithAttribute("invoice_id", id.String()))
	defer span.End()

	inv, err := s.load(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	if err := inv.Cancel(reason, s.now()); err != nil {
		return nil, err
	}
	if err := s.invoices.Save(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.metrics.RecordTransition(ctx, inv.Status.String())
	logger.L(ctx, s.logger).Info("Invoice cancelled",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("reason", reason))
	s.publishEvents(ctx, inv, nil)

	telemetry.SetOK(span)
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// MarkOverdue flags every issued or partial invoice whose due date has
// passed. Running it twice marks nothing the second time. A save failure on
// one invoice is logged and the rest continue.
func (s *LifecycleService) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceLifecycle", "MarkOverdue")
	defer span.End()
	log := logger.L(ctx, s.logger)

	candidates, err := s.invoices.FindPastDue(ctx, now)
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, fmt.Errorf("failed to load past-due invoices: %w", err)
	}

	marked := 0
	for i := range candidates {
		inv := &candidates[i]
		if !inv.MarkOverdue(now) {
			continue
		}
		if err := s.invoices.Save(ctx, inv); err != nil {
			log.Warn("Failed to mark invoice overdue",
				zap.String("invoice_id", inv.ID.String()),
				zap.Error(err))
			continue
		}
		marked++
		s.metrics.RecordTransition(ctx, inv.Status.String())
		s.publishEvents(ctx, inv, nil)
	}

	telemetry.SetAttributes(span, "candidates", len(candidates), "marked", marked)
	telemetry.SetOK(span)
	if marked > 0 {
		log.Info("Invoices marked overdue", zap.Int("marked", marked))
	}
	return marked, nil
}

// Get returns one invoice
func (s *LifecycleService) Get(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.load(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// Find returns the domain invoice and its job, for rendering
func (s *LifecycleService) Find(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*invoice.Invoice, *invoice.Job, error) {
	inv, err := s.load(ctx, tc, id)
	if err != nil {
		return nil, nil, err
	}
	job, err := s.jobs.FindByID(ctx, inv.JobID)
	if err != nil {
		logger.L(ctx, s.logger).Debug("Invoice job not found", zap.String("job_id", inv.JobID.String()), zap.Error(err))
		job = nil
	}
	return inv, job, nil
}

// List returns the caller's invoices
func (s *LifecycleService) List(ctx context.Context, tc shared.TenantContext, filter InvoiceListFilter) (*shared.Paginated[InvoiceListItemResponse], error) {
	if tc.TenantID == uuid.Nil {
		return nil, shared.NewValidationError("Tenant is required to list invoices")
	}
	lf := invoice.ListFilter{
		Filter: shared.DefaultFilter(),
		Status: invoice.Status(filter.Status),
		JobID:  filter.JobID,
	}
	if filter.Page > 0 {
		lf.Page = filter.Page
	}
	if filter.PageSize > 0 {
		lf.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		lf.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		lf.OrderDir = filter.OrderDir
	}

	invoices, total, err := s.invoices.FindForTenant(ctx, tc.TenantID, lf)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToInvoiceListItemResponses(invoices), total, lf.Page, lf.PageSize)
	return &page, nil
}

func (s *LifecycleService) load(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*invoice.Invoice, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Invoice not found")
		}
		return nil, err
	}
	if !tc.CanAccess(inv.TenantID) {
		return nil, shared.NewNotFoundError("Invoice not found")
	}
	return inv, nil
}

func (s *LifecycleService) loadJob(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*invoice.Job, error) {
	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Job not found")
		}
		return nil, err
	}
	if !tc.CanAccess(job.TenantID) {
		return nil, shared.NewNotFoundError("Job not found")
	}
	return job, nil
}
