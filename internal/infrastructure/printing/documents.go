package printing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/motorshop/backend/internal/domain/invoice"
	"github.com/motorshop/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// PDFMimeType is the content type of rendered invoices
const PDFMimeType = "application/pdf"

// Document is a rendered invoice PDF
type Document struct {
	Data     []byte
	Filename string
	Key      string
	MimeType string
	// Cached is true when the PDF was read back from storage
	Cached bool
}

// InvoiceDocuments renders invoice PDFs and keeps them in object storage
// under invoices/{tenant}/{invoice_number}.pdf.
type InvoiceDocuments struct {
	renderer PDFRenderer
	template *InvoiceTemplate
	store    storage.ObjectStorage
	logger   *zap.Logger
}

// NewInvoiceDocuments creates the document service. store may be nil, in
// which case every request renders.
func NewInvoiceDocuments(renderer PDFRenderer, store storage.ObjectStorage, logger *zap.Logger) (*InvoiceDocuments, error) {
	if renderer == nil {
		return nil, errors.New("printing: renderer is required")
	}
	tmpl, err := NewInvoiceTemplate()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceDocuments{
		renderer: renderer,
		template: tmpl,
		store:    store,
		logger:   logger.Named("documents"),
	}, nil
}

// ObjectKey is the storage key of an issued invoice's PDF
func ObjectKey(inv *invoice.Invoice) string {
	return fmt.Sprintf("invoices/%s/%s.pdf", inv.TenantID, inv.InvoiceNumber)
}

// InvoicePDF returns the stored PDF of an issued invoice, rendering and
// storing it on first use. A storage failure is logged and the freshly
// rendered PDF is still returned.
func (d *InvoiceDocuments) InvoicePDF(ctx context.Context, inv *invoice.Invoice, job *invoice.Job, shopName string) (*Document, error) {
	if inv == nil || inv.InvoiceNumber == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "only numbered invoices can be rendered", nil)
	}
	key := ObjectKey(inv)
	doc := &Document{
		Filename: inv.InvoiceNumber + ".pdf",
		Key:      key,
		MimeType: PDFMimeType,
	}

	if d.store != nil {
		data, err := d.store.Get(ctx, key)
		switch {
		case err == nil:
			doc.Data = data
			doc.Cached = true
			return doc, nil
		case !errors.Is(err, storage.ErrObjectNotFound):
			d.logger.Warn("Failed to read stored invoice PDF", zap.String("key", key), zap.Error(err))
		}
	}

	data, err := d.Render(ctx, inv, job, shopName)
	if err != nil {
		return nil, err
	}
	doc.Data = data

	if d.store != nil {
		if err := d.store.Put(ctx, key, data, PDFMimeType); err != nil {
			d.logger.Warn("Failed to store invoice PDF", zap.String("key", key), zap.Error(err))
		}
	}
	return doc, nil
}

// Render produces the PDF without consulting storage
func (d *InvoiceDocuments) Render(ctx context.Context, inv *invoice.Invoice, job *invoice.Job, shopName string) ([]byte, error) {
	html, err := d.template.Execute(InvoiceView{ShopName: shopName, Invoice: inv, Job: job})
	if err != nil {
		return nil, err
	}
	result, err := d.renderer.Render(ctx, &RenderRequest{
		HTML:       html,
		Title:      "Invoice " + inv.InvoiceNumber,
		Margins:    DefaultMargins(),
		FooterHTML: `<div style="font-size:8px;width:100%;text-align:center;"><span class="pageNumber"></span> / <span class="totalPages"></span></div>`,
	})
	if err != nil {
		return nil, err
	}
	return result.PDFData, nil
}

// DownloadURL makes sure the PDF is stored and returns a time-limited link to it
func (d *InvoiceDocuments) DownloadURL(ctx context.Context, inv *invoice.Invoice, job *invoice.Job, shopName string, expiresIn time.Duration) (string, error) {
	if d.store == nil {
		return "", NewRenderError(ErrCodeStorageFailed, "object storage is not configured", nil)
	}
	doc, err := d.InvoicePDF(ctx, inv, job, shopName)
	if err != nil {
		return "", err
	}
	if !doc.Cached {
		exists, err := d.store.Exists(ctx, doc.Key)
		if err != nil || !exists {
			return "", NewRenderError(ErrCodeStorageFailed, "invoice PDF could not be stored", err)
		}
	}
	url, err := d.store.PresignGet(ctx, doc.Key, expiresIn)
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to sign invoice PDF link", err)
	}
	return url, nil
}

// Close releases the renderer
func (d *InvoiceDocuments) Close() error {
	return d.renderer.Close()
}
