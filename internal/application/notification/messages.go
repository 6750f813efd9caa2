package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/motorshop/backend/internal/domain/notification"
	"github.com/motorshop/backend/internal/domain/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCase uses a fresh caser, Caser values are stateful
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// messageContext is what every template can use besides the payload
type messageContext struct {
	shopName string
}

func vehicleInwardMessage(p notification.Payload, mc messageContext) (string, error) {
	if err := p.Require(notification.KeyVehicleNumber); err != nil {
		return "", err
	}
	return fmt.Sprintf("Hello %s, your vehicle %s has been received at %s. We will keep you posted on its progress.",
		customerName(p), vehicleNumber(p), mc.shopName), nil
}

func statusUpdatedMessage(p notification.Payload, mc messageContext) (string, error) {
	if err := p.Require(notification.KeyVehicleNumber, notification.KeyJobStatus); err != nil {
		return "", err
	}
	status := titleCase(strings.ReplaceAll(p.String(notification.KeyJobStatus), "_", " "))
	return fmt.Sprintf("Hello %s, the status of your vehicle %s at %s is now: %s.",
		customerName(p), vehicleNumber(p), mc.shopName, status), nil
}

func vehicleReadyMessage(p notification.Payload, mc messageContext) (string, error) {
	if err := p.Require(notification.KeyVehicleNumber); err != nil {
		return "", err
	}
	return fmt.Sprintf("Hello %s, your vehicle %s is ready for pickup at %s. Thank you for choosing us!",
		customerName(p), vehicleNumber(p), mc.shopName), nil
}

func invoiceIssuedMessage(p notification.Payload, mc messageContext) (string, error) {
	if err := p.Require(notification.KeyInvoiceNumber); err != nil {
		return "", err
	}
	total, err := p.Decimal(notification.KeyTotalAmount)
	if err != nil {
		return "", err
	}
	msg := fmt.Sprintf("Hello %s, invoice %s for %s has been issued by %s.",
		customerName(p), p.String(notification.KeyInvoiceNumber), shared.FormatRupees(total), mc.shopName)
	if due := formatDueDate(p.String(notification.KeyDueDate)); due != "" {
		msg += " Due date: " + due + "."
	}
	return msg, nil
}

func paymentReceivedMessage(p notification.Payload, mc messageContext) (string, error) {
	if err := p.Require(notification.KeyInvoiceNumber); err != nil {
		return "", err
	}
	amount, err := p.Decimal(notification.KeyAmount)
	if err != nil {
		return "", err
	}
	balance, err := p.Decimal(notification.KeyBalanceAmount)
	if err != nil {
		return "", err
	}
	msg := fmt.Sprintf("Hello %s, %s has received your payment of %s for invoice %s.",
		customerName(p), mc.shopName, shared.FormatRupees(amount), p.String(notification.KeyInvoiceNumber))
	if balance.IsPositive() {
		msg += " Balance due: " + shared.FormatRupees(balance) + "."
	} else {
		msg += " The invoice is fully paid."
	}
	return msg, nil
}

func invoiceOverdueMessage(p notification.Payload, mc messageContext) (string, error) {
	if err := p.Require(notification.KeyInvoiceNumber); err != nil {
		return "", err
	}
	balance, err := p.Decimal(notification.KeyBalanceAmount)
	if err != nil {
		return "", err
	}
	msg := fmt.Sprintf("Hello %s, invoice %s from %s is overdue with %s outstanding.",
		customerName(p), p.String(notification.KeyInvoiceNumber), mc.shopName, shared.FormatRupees(balance))
	if due := formatDueDate(p.String(notification.KeyDueDate)); due != "" {
		msg += " It was due on " + due + "."
	}
	return msg, nil
}

func invoiceReminderMessage(p notification.Payload, mc messageContext) (string, error) {
	if err := p.Require(notification.KeyInvoiceNumber); err != nil {
		return "", err
	}
	balance, err := p.Decimal(notification.KeyBalanceAmount)
	if err != nil {
		return "", err
	}
	msg := fmt.Sprintf("Hello %s, a friendly reminder from %s: invoice %s has %s outstanding.",
		customerName(p), mc.shopName, p.String(notification.KeyInvoiceNumber), shared.FormatRupees(balance))
	if due := formatDueDate(p.String(notification.KeyDueDate)); due != "" {
		msg += " Due date: " + due + "."
	}
	return msg, nil
}

func invoiceCancelledMessage(p notification.Payload, mc messageContext) (string, error) {
	if err := p.Require(notification.KeyInvoiceNumber); err != nil {
		return "", err
	}
	msg := fmt.Sprintf("Hello %s, invoice %s from %s has been cancelled.",
		customerName(p), p.String(notification.KeyInvoiceNumber), mc.shopName)
	if reason := p.String(notification.KeyReason); reason != "" {
		msg += " Reason: " + reason + "."
	}
	return msg, nil
}

func customerName(p notification.Payload) string {
	name := strings.TrimSpace(p.String(notification.KeyCustomerName))
	if name == "" {
		return "Customer"
	}
	return titleCase(name)
}

func vehicleNumber(p notification.Payload) string {
	return strings.ToUpper(p.String(notification.KeyVehicleNumber))
}

// formatDueDate accepts a date or an RFC 3339 timestamp
func formatDueDate(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02 Jan 2006")
		}
	}
	return s
}
