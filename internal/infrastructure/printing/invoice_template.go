package printing

import (
	"bytes"
	"embed"
	"html/template"
	"strings"
	"time"

	"github.com/motorshop/backend/internal/domain/invoice"
	"github.com/motorshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/invoice.html
var templateFS embed.FS

// InvoiceView is the data handed to the invoice template
type InvoiceView struct {
	ShopName string
	Invoice  *invoice.Invoice
	Job      *invoice.Job
}

// InvoiceTemplate renders invoices to HTML
type InvoiceTemplate struct {
	tmpl *template.Template
}

// NewInvoiceTemplate parses the embedded invoice template
func NewInvoiceTemplate() (*InvoiceTemplate, error) {
	tmpl, err := template.New("invoice.html").Funcs(templateFuncs()).ParseFS(templateFS, "templates/invoice.html")
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateFailed, "failed to parse invoice template", err)
	}
	return &InvoiceTemplate{tmpl: tmpl}, nil
}

// Execute renders view to an HTML document
func (t *InvoiceTemplate) Execute(view InvoiceView) (string, error) {
	if view.Invoice == nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "invoice is required", nil)
	}
	if view.Job == nil {
		view.Job = &invoice.Job{}
	}
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, view); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to execute invoice template", err)
	}
	return buf.String(), nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"rupees": shared.FormatRupees,
		"qty":    formatQuantity,
		"date":   formatDate,
		"title":  titleCase,
		"upper":  strings.ToUpper,
		"inc":    func(i int) int { return i + 1 },
	}
}

// formatQuantity drops trailing zeros: 2.000 -> "2", 1.50 -> "1.5"
func formatQuantity(d decimal.Decimal) string {
	return d.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006")
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
