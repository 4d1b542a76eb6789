package payment

import (
	"context"

	"fulfillment-be/internal/apperr"
	"fulfillment-be/internal/logger"
	"fulfillment-be/internal/order"

	"go.uber.org/zap"
)

type Service interface {
	CreateInvoice(ctx context.Context, orderNumber string) (*Invoice, error)
	VerifyPayment(ctx context.Context, orderNumber string) (*Result, error)
}

type service struct {
	orders    order.Repository
	payments  Repository
	gateway   Gateway
	processor *Processor
}

func NewService(orders order.Repository, payments Repository, gateway Gateway, processor *Processor) Service {
	return &service{orders: orders, payments: payments, gateway: gateway, processor: processor}
}

func (s *service) CreateInvoice(ctx context.Context, orderNumber string) (*Invoice, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateInvoice"),
		zap.String("order_number", orderNumber),
	)

	o, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if o.Status != order.StatusDraft {
		return nil, apperr.InvalidState("order", "invoice", string(o.Status))
	}

	inv, err := s.gateway.CreateInvoice(ctx, o.TotalAmount, o.Number, Customer{
		Name:  o.CustomerName,
		Email: o.CustomerEmail,
	})
	if err != nil {
		log.Error("gateway invoice creation failed", zap.Error(err))
		return nil, err
	}

	if err := s.payments.SaveInvoice(ctx, o.ID, inv); err != nil {
		log.Error("failed to save invoice", zap.Error(err))
		return nil, err
	}

	log.Info("invoice issued", zap.String("transaction_id", inv.TransactionID))
	return inv, nil
}

// VerifyPayment pulls the invoice status from the gateway and feeds a paid
// invoice to the processor, for when a webhook never arrived.
func (s *service) VerifyPayment(ctx context.Context, orderNumber string) (*Result, error) {
	status, err := s.gateway.GetInvoiceStatus(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if status.PaymentStatus != PaymentStatusPaid {
		return nil, apperr.InvalidState("invoice", "confirm", string(status.PaymentStatus))
	}

	c := Confirmation{
		OrderReference: orderNumber,
		TransactionID:  status.TransactionID,
		Amount:         status.AmountPaid,
		Method:         status.Method,
	}
	if status.PaidAt != nil {
		c.PaidAt = *status.PaidAt
	}
	return s.processor.HandlePaymentConfirmed(ctx, c)
}
