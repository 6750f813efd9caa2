// Package printing renders invoices to PDF.
//
// An InvoiceTemplate turns an invoice and its job into HTML. A PDFRenderer
// (ChromedpRenderer in production) prints that HTML to an A4 PDF, and
// InvoiceDocuments caches the result in object storage:
//
//	renderer, _ := printing.NewChromedpRenderer(printing.ChromedpConfigFrom(&cfg.Printing, log))
//	docs, _ := printing.NewInvoiceDocuments(renderer, store, log)
//	doc, err := docs.InvoicePDF(ctx, inv, job, "Speed Motors")
package printing
