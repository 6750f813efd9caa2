package printing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/domain/invoice"
	"github.com/motorshop/backend/internal/infrastructure/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRenderer echoes the HTML so tests can inspect what would be printed
type fakeRenderer struct {
	mu       sync.Mutex
	requests []*RenderRequest
	err      error
}

func (f *fakeRenderer) Render(_ context.Context, req *RenderRequest) (*RenderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &RenderResult{PDFData: []byte("%PDF-" + req.HTML), PageCount: 1}, nil
}

func (f *fakeRenderer) Close() error { return nil }

func (f *fakeRenderer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func issuedInvoice(t *testing.T) (*invoice.Invoice, *invoice.Job) {
	t.Helper()
	tenantID := uuid.New()
	job := &invoice.Job{
		ID:            uuid.New(),
		TenantID:      tenantID,
		CustomerName:  "ravi kumar",
		CustomerPhone: "9876543210",
		VehicleNumber: "ka01ab1234",
		VehicleModel:  "Honda City",
	}
	inv, err := invoice.NewInvoice(invoice.NewInvoiceParams{
		TenantID:    tenantID,
		JobID:       job.ID,
		InvoiceDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		TaxAmount:   decimal.NewFromInt(100),
		LineItems: []invoice.LineItemInput{
			{ProductName: "Seat cover", Brand: "Autoform", Department: "accessories", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(500)},
			{ProductName: "Ceramic coating", Department: "detailing", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(1080.5)},
		},
	})
	require.NoError(t, err)
	require.NoError(t, inv.Issue("INV-2026-00001", time.Now()))
	return inv, job
}

func TestInvoiceTemplate_Execute(t *testing.T) {
	tmpl, err := NewInvoiceTemplate()
	require.NoError(t, err)
	inv, job := issuedInvoice(t)

	html, err := tmpl.Execute(InvoiceView{ShopName: "Speed Motors", Invoice: inv, Job: job})
	require.NoError(t, err)

	assert.Contains(t, html, "Speed Motors")
	assert.Contains(t, html, "INV-2026-00001")
	assert.Contains(t, html, "02 Mar 2026")
	assert.Contains(t, html, "Ravi Kumar")
	assert.Contains(t, html, "KA01AB1234")
	assert.Contains(t, html, "Accessories")
	assert.Contains(t, html, "₹1,000.00")
	assert.Contains(t, html, "₹1,080.50")
	assert.Contains(t, html, "₹2,080.50")
	assert.Contains(t, html, "₹2,180.50")
	assert.NotContains(t, html, "(included)")
}

func TestInvoiceTemplate_EscapesContent(t *testing.T) {
	tmpl, err := NewInvoiceTemplate()
	require.NoError(t, err)
	inv, job := issuedInvoice(t)
	inv.Notes = "<script>alert(1)</script>"

	html, err := tmpl.Execute(InvoiceView{Invoice: inv, Job: job})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestInvoiceTemplate_RequiresInvoice(t *testing.T) {
	tmpl, err := NewInvoiceTemplate()
	require.NoError(t, err)

	_, err = tmpl.Execute(InvoiceView{})
	assert.Error(t, err)
}

func TestInvoiceDocuments_RendersOnceThenServesFromStorage(t *testing.T) {
	renderer := &fakeRenderer{}
	store := storage.NewMemoryObjectStorage()
	docs, err := NewInvoiceDocuments(renderer, store, nil)
	require.NoError(t, err)
	inv, job := issuedInvoice(t)
	ctx := context.Background()

	first, err := docs.InvoicePDF(ctx, inv, job, "Speed Motors")
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "INV-2026-00001.pdf", first.Filename)
	assert.Equal(t, PDFMimeType, first.MimeType)
	assert.Equal(t, "invoices/"+inv.TenantID.String()+"/INV-2026-00001.pdf", first.Key)
	assert.Equal(t, PDFMimeType, store.ContentType(first.Key))

	second, err := docs.InvoicePDF(ctx, inv, job, "Speed Motors")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, 1, renderer.calls())
}

func TestInvoiceDocuments_WithoutStorage(t *testing.T) {
	renderer := &fakeRenderer{}
	docs, err := NewInvoiceDocuments(renderer, nil, nil)
	require.NoError(t, err)
	inv, job := issuedInvoice(t)

	for i := 0; i < 2; i++ {
		doc, err := docs.InvoicePDF(context.Background(), inv, job, "")
		require.NoError(t, err)
		assert.False(t, doc.Cached)
	}
	assert.Equal(t, 2, renderer.calls())

	_, err = docs.DownloadURL(context.Background(), inv, job, "", time.Minute)
	assert.Error(t, err)
}

func TestInvoiceDocuments_RejectsDraft(t *testing.T) {
	docs, err := NewInvoiceDocuments(&fakeRenderer{}, nil, nil)
	require.NoError(t, err)
	inv, job := issuedInvoice(t)
	inv.InvoiceNumber = ""

	_, err = docs.InvoicePDF(context.Background(), inv, job, "")
	assert.Error(t, err)
}

func TestInvoiceDocuments_RenderFailure(t *testing.T) {
	renderer := &fakeRenderer{err: NewRenderError(ErrCodeRenderTimeout, "timed out", nil)}
	docs, err := NewInvoiceDocuments(renderer, storage.NewMemoryObjectStorage(), nil)
	require.NoError(t, err)
	inv, job := issuedInvoice(t)

	_, err = docs.InvoicePDF(context.Background(), inv, job, "")
	var re *RenderError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, ErrCodeRenderTimeout, re.Code)
}

func TestInvoiceDocuments_DownloadURL(t *testing.T) {
	store := storage.NewMemoryObjectStorage()
	docs, err := NewInvoiceDocuments(&fakeRenderer{}, store, nil)
	require.NoError(t, err)
	inv, job := issuedInvoice(t)

	url, err := docs.DownloadURL(context.Background(), inv, job, "", 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, store.BaseURL+"/"+ObjectKey(inv)))
}

func TestNewInvoiceDocuments_RequiresRenderer(t *testing.T) {
	_, err := NewInvoiceDocuments(nil, nil, nil)
	assert.Error(t, err)
}
