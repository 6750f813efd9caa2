// Package models contains GORM persistence models that map to database tables.
// Domain entities carry no ORM tags; repositories convert through the
// ToDomain / FromDomain mappers defined next to each model.
//
// Structure:
//   - base.go: shared id, timestamp, version and tenant columns
//   - notification.go: notification_queue rows
//   - invoice.go: invoices, invoice_line_items, invoice_payments
//   - job.go: jobs (read-only)
//   - messaging.go: per-tenant provider settings
//   - sequence.go: invoice number counters
package models
