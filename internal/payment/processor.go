package payment

import (
	"context"
	"errors"
	"strings"
	"time"

	"fulfillment-be/internal/apperr"
	"fulfillment-be/internal/logger"
	"fulfillment-be/internal/metrics"
	"fulfillment-be/internal/order"

	"go.uber.org/zap"
)

// Processor ingests payment confirmations exactly once per transaction id.
type Processor struct {
	orders   order.Repository
	payments Repository
	trigger  AssignmentTrigger
	metrics  *metrics.Registry
	now      func() time.Time
}

// NewProcessor builds a processor. trigger and reg may be nil.
func NewProcessor(orders order.Repository, payments Repository, trigger AssignmentTrigger, reg *metrics.Registry) *Processor {
	return &Processor{
		orders:   orders,
		payments: payments,
		trigger:  trigger,
		metrics:  reg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (p *Processor) HandlePaymentConfirmed(ctx context.Context, c Confirmation) (*Result, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "HandlePaymentConfirmed"),
		zap.String("order_reference", c.OrderReference),
		zap.String("transaction_id", c.TransactionID),
		zap.Int64("amount", c.Amount),
	)

	if strings.TrimSpace(c.OrderReference) == "" || strings.TrimSpace(c.TransactionID) == "" {
		return nil, apperr.Validation("order reference and transaction id are required")
	}
	if c.Amount <= 0 {
		return nil, apperr.Validation("amount must be positive")
	}

	o, err := p.orders.GetByNumber(ctx, c.OrderReference)
	if errors.Is(err, order.ErrOrderNotFound) {
		log.Warn("payment for unknown order ignored")
		return &Result{Message: "order not found"}, nil
	}
	if err != nil {
		return nil, err
	}

	existing, err := p.payments.GetByTransactionID(ctx, c.TransactionID)
	if err != nil && !errors.Is(err, ErrPaymentNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status == PaymentStatusPaid {
		log.Info("duplicate payment confirmation ignored")
		p.metrics.Inc(metrics.PaymentsDuplicate)
		return &Result{OrderFound: true, OrderNumber: o.Number, Message: "already processed"}, nil
	}

	paidAt := c.PaidAt
	if paidAt.IsZero() {
		paidAt = p.now()
	}
	record := &Payment{
		OrderID:       o.ID,
		OrderNumber:   o.Number,
		TransactionID: c.TransactionID,
		Amount:        c.Amount,
		Method:        c.Method,
		PaidAt:        paidAt,
	}

	var confirmed bool
	recorded, err := p.payments.RecordConfirmation(ctx, record, func(locked *order.Order) error {
		if c.Amount < locked.TotalAmount {
			return apperr.Validation("amount mismatch: paid=%d expected=%d", c.Amount, locked.TotalAmount)
		}
		confirmed = confirmOrder(locked, paidAt)
		return nil
	})
	if err != nil {
		log.Error("failed to record payment", zap.Error(err))
		return nil, err
	}
	if !recorded {
		log.Info("concurrent duplicate payment confirmation ignored")
		p.metrics.Inc(metrics.PaymentsDuplicate)
		return &Result{OrderFound: true, OrderNumber: o.Number, Message: "already processed"}, nil
	}

	p.metrics.Inc(metrics.PaymentsProcessed)
	log.Info("payment recorded", zap.Bool("order_confirmed", confirmed))

	if confirmed && p.trigger != nil {
		p.trigger.TriggerAutoAssign(ctx, o.Number)
	}

	return &Result{Processed: true, OrderFound: true, OrderNumber: o.Number, Message: "payment confirmed"}, nil
}

// confirmOrder moves a DRAFT order to CONFIRMED and marks pending items paid.
// It reports whether the order status changed.
func confirmOrder(o *order.Order, at time.Time) bool {
	if o.Status != order.StatusDraft {
		return false
	}
	o.Status = order.StatusConfirmed

	system := "system:payment"
	for i := range o.Items {
		it := &o.Items[i]
		if it.Status != order.ItemPending {
			continue
		}
		ts := at
		it.Status = order.ItemPaid
		it.StatusNote = "payment confirmed"
		it.StatusUpdatedAt = &ts
		it.StatusUpdatedBy = &system
	}
	return true
}
