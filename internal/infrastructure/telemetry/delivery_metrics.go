package telemetry

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// QueueDepthFunc reports the number of queue entries per status
type QueueDepthFunc func(ctx context.Context) (map[string]int64, error)

// DeliveryMetrics records notification delivery, messaging and invoice
// lifecycle metrics.
type DeliveryMetrics struct {
	logger *zap.Logger

	notificationsTotal *Counter
	transitionsTotal   *Counter
	paymentAmountTotal *Counter
	messagingDuration  *Histogram
	queueDepth         *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// NewDeliveryMetrics creates the instruments on meter
func NewDeliveryMetrics(meter metric.Meter, logger *zap.Logger) (*DeliveryMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dm := &DeliveryMetrics{logger: logger, stopChan: make(chan struct{})}

	var err error
	if dm.notificationsTotal, err = NewCounter(meter,
		"motorshop_notification_processed_total",
		"Notification queue entries processed by outcome",
		"{entries}"); err != nil {
		return nil, err
	}
	if dm.transitionsTotal, err = NewCounter(meter,
		"motorshop_invoice_transition_total",
		"Invoice status transitions",
		"{transitions}"); err != nil {
		return nil, err
	}
	if dm.paymentAmountTotal, err = NewCounter(meter,
		"motorshop_payment_amount_total",
		"Recorded payment amount in paise",
		"{paise}"); err != nil {
		return nil, err
	}
	if dm.messagingDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "motorshop_messaging_send_duration_seconds",
		Description: "Duration of outbound messaging provider calls",
		Unit:        "s",
		Boundaries:  HTTPDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if dm.queueDepth, err = NewGauge(meter,
		"motorshop_notification_queue_depth",
		"Notification queue entries per status",
		"{entries}"); err != nil {
		return nil, err
	}
	return dm, nil
}

// RecordNotification counts one processed entry. outcome is sent, retry or failed.
func (dm *DeliveryMetrics) RecordNotification(ctx context.Context, eventType, outcome string) {
	if dm == nil {
		return
	}
	dm.notificationsTotal.Inc(ctx, AttrEventType.String(eventType), AttrOutcome.String(outcome))
}

// RecordTransition counts an invoice moving into status
func (dm *DeliveryMetrics) RecordTransition(ctx context.Context, status string) {
	if dm == nil {
		return
	}
	dm.transitionsTotal.Inc(ctx, AttrInvoiceStatus.String(status))
}

// RecordPayment adds a payment amount, converted to paise
func (dm *DeliveryMetrics) RecordPayment(ctx context.Context, amount decimal.Decimal) {
	if dm == nil {
		return
	}
	dm.paymentAmountTotal.Add(ctx, amount.Shift(2).Round(0).IntPart())
}

// RecordSend observes a provider call
func (dm *DeliveryMetrics) RecordSend(ctx context.Context, provider string, success bool, d time.Duration) {
	if dm == nil {
		return
	}
	dm.messagingDuration.RecordDuration(ctx, d,
		AttrProvider.String(provider),
		AttrSuccess.String(strconv.FormatBool(success)))
}

// StartQueueCollection samples queue depth every interval until Stop or ctx
// is cancelled. Only the first call starts a collector.
func (dm *DeliveryMetrics) StartQueueCollection(ctx context.Context, depth QueueDepthFunc, interval time.Duration) {
	if dm == nil || depth == nil {
		return
	}
	dm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = time.Minute
		}
		go dm.runQueueCollection(ctx, depth, interval)
	})
}

func (dm *DeliveryMetrics) runQueueCollection(ctx context.Context, depth QueueDepthFunc, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	dm.CollectQueueDepth(ctx, depth)
	for {
		select {
		case <-dm.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			dm.CollectQueueDepth(ctx, depth)
		}
	}
}

// CollectQueueDepth takes one queue depth sample
func (dm *DeliveryMetrics) CollectQueueDepth(ctx context.Context, depth QueueDepthFunc) {
	counts, err := depth(ctx)
	if err != nil {
		dm.logger.Warn("Failed to collect notification queue depth", zap.Error(err))
		return
	}
	for status, n := range counts {
		dm.queueDepth.Record(ctx, n, AttrQueueStatus.String(status))
	}
}

// Stop stops the queue depth collector
func (dm *DeliveryMetrics) Stop() {
	if dm == nil {
		return
	}
	dm.stopOnce.Do(func() {
		close(dm.stopChan)
	})
}
