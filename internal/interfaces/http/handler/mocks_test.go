package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	invoiceapp "github.com/motorshop/backend/internal/application/invoice"
	notificationapp "github.com/motorshop/backend/internal/application/notification"
	"github.com/motorshop/backend/internal/domain/invoice"
	"github.com/motorshop/backend/internal/domain/messaging"
	"github.com/motorshop/backend/internal/domain/notification"
	"github.com/motorshop/backend/internal/domain/shared"
	"github.com/motorshop/backend/internal/infrastructure/auth"
	"github.com/motorshop/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// withClaims returns an engine that authenticates every request as claims.
// A nil claims value leaves the request anonymous.
func withClaims(claims *auth.Claims) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(middleware.JWTClaimsKey, claims)
		}
		c.Next()
	})
	return r
}

func tenantClaims(tenantID uuid.UUID) *auth.Claims {
	return &auth.Claims{TenantID: tenantID.String(), UserID: uuid.New().String(), Roles: []string{"staff"}}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// envelope decodes the standard response with raw data
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Total    int64 `json:"total"`
		Page     int   `json:"page"`
		PageSize int   `json:"page_size"`
	} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

// MockWorkerRunner is a mock implementation of WorkerRunner
type MockWorkerRunner struct {
	mock.Mock
}

func (m *MockWorkerRunner) Run(ctx context.Context, opts notificationapp.RunOptions) notificationapp.Summary {
	args := m.Called(ctx, opts)
	return args.Get(0).(notificationapp.Summary)
}

// MockQueueAdmin is a mock implementation of QueueAdmin
type MockQueueAdmin struct {
	mock.Mock
}

func (m *MockQueueAdmin) Enqueue(ctx context.Context, tenantID uuid.UUID, eventType notification.EventType, payload notification.Payload) (*notificationapp.EntryDTO, error) {
	args := m.Called(ctx, tenantID, eventType, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notificationapp.EntryDTO), args.Error(1)
}

func (m *MockQueueAdmin) Get(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*notificationapp.EntryDTO, error) {
	args := m.Called(ctx, tc, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notificationapp.EntryDTO), args.Error(1)
}

func (m *MockQueueAdmin) Stats(ctx context.Context, tc shared.TenantContext) (*notificationapp.QueueStatsDTO, error) {
	args := m.Called(ctx, tc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notificationapp.QueueStatsDTO), args.Error(1)
}

func (m *MockQueueAdmin) Retry(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*notificationapp.EntryDTO, error) {
	args := m.Called(ctx, tc, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notificationapp.EntryDTO), args.Error(1)
}

// MockMessageSender is a mock implementation of MessageSender
type MockMessageSender struct {
	mock.Mock
}

func (m *MockMessageSender) Send(ctx context.Context, provider messaging.ProviderType, config messaging.ProviderConfig, req messaging.SendRequest) messaging.SendResult {
	args := m.Called(ctx, provider, config, req)
	return args.Get(0).(messaging.SendResult)
}

// MockInvoiceLifecycle is a mock implementation of InvoiceLifecycle
type MockInvoiceLifecycle struct {
	mock.Mock
}

func (m *MockInvoiceLifecycle) CreateDraft(ctx context.Context, tc shared.TenantContext, req invoiceapp.CreateInvoiceRequest) (*invoiceapp.InvoiceResponse, error) {
	args := m.Called(ctx, tc, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoiceapp.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceLifecycle) CreateAndIssue(ctx context.Context, tc shared.TenantContext, req invoiceapp.CreateInvoiceRequest) (*invoiceapp.InvoiceResponse, error) {
	args := m.Called(ctx, tc, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoiceapp.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceLifecycle) Issue(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*invoiceapp.InvoiceResponse, error) {
	args := m.Called(ctx, tc, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoiceapp.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceLifecycle) RecordPayment(ctx context.Context, tc shared.TenantContext, id uuid.UUID, req invoiceapp.RecordPaymentRequest) (*invoiceapp.PaymentResultResponse, error) {
	args := m.Called(ctx, tc, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoiceapp.PaymentResultResponse), args.Error(1)
}

func (m *MockInvoiceLifecycle) Cancel(ctx context.Context, tc shared.TenantContext, id uuid.UUID, reason string) (*invoiceapp.InvoiceResponse, error) {
	args := m.Called(ctx, tc, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoiceapp.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceLifecycle) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockInvoiceLifecycle) Get(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*invoiceapp.InvoiceResponse, error) {
	args := m.Called(ctx, tc, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoiceapp.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceLifecycle) Find(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*invoice.Invoice, *invoice.Job, error) {
	args := m.Called(ctx, tc, id)
	var inv *invoice.Invoice
	var job *invoice.Job
	if v := args.Get(0); v != nil {
		inv = v.(*invoice.Invoice)
	}
	if v := args.Get(1); v != nil {
		job = v.(*invoice.Job)
	}
	return inv, job, args.Error(2)
}

func (m *MockInvoiceLifecycle) List(ctx context.Context, tc shared.TenantContext, filter invoiceapp.InvoiceListFilter) (*shared.Paginated[invoiceapp.InvoiceListItemResponse], error) {
	args := m.Called(ctx, tc, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[invoiceapp.InvoiceListItemResponse]), args.Error(1)
}

// MockDocumentLinker is a mock implementation of DocumentLinker
type MockDocumentLinker struct {
	mock.Mock
}

func (m *MockDocumentLinker) DownloadURL(ctx context.Context, inv *invoice.Invoice, job *invoice.Job, shopName string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, inv, job, shopName, expiresIn)
	return args.String(0), args.Error(1)
}

// MockSettingsRepository is a mock implementation of messaging.SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*messaging.Settings, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*messaging.Settings), args.Error(1)
}

func (m *MockSettingsRepository) Save(ctx context.Context, settings *messaging.Settings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}
