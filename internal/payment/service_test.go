package payment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"fulfillment-be/internal/apperr"
	"fulfillment-be/internal/order"
	"fulfillment-be/internal/payment"
	"fulfillment-be/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateInvoice(ctx context.Context, amount int64, reference string, customer payment.Customer) (*payment.Invoice, error) {
	args := m.Called(ctx, amount, reference, customer)
	inv, _ := args.Get(0).(*payment.Invoice)
	return inv, args.Error(1)
}

func (m *MockGateway) GetInvoiceStatus(ctx context.Context, reference string) (*payment.InvoiceStatus, error) {
	args := m.Called(ctx, reference)
	st, _ := args.Get(0).(*payment.InvoiceStatus)
	return st, args.Error(1)
}

func (m *MockGateway) VerifySignature(body []byte, signature string) error {
	return m.Called(body, signature).Error(0)
}

func TestService_CreateInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("Draft order gets an invoice", func(t *testing.T) {
		st := memory.NewStore()
		gw := new(MockGateway)
		svc := payment.NewService(st, st, gw, payment.NewProcessor(st, st, nil, nil))
		o := draftOrder(t, st, order.StatusDraft)

		inv := &payment.Invoice{Reference: o.Number, TransactionID: "MNFY-1", Amount: 5000}
		gw.On("CreateInvoice", mock.Anything, int64(5000), o.Number, payment.Customer{Name: "Ada", Email: "ada@example.com"}).
			Return(inv, nil).Once()

		got, err := svc.CreateInvoice(ctx, o.Number)
		require.NoError(t, err)
		assert.Equal(t, "MNFY-1", got.TransactionID)
		require.NotNil(t, st.Invoice(o.Number))
		gw.AssertExpectations(t)
	})

	t.Run("Confirmed order cannot be invoiced", func(t *testing.T) {
		st := memory.NewStore()
		gw := new(MockGateway)
		svc := payment.NewService(st, st, gw, payment.NewProcessor(st, st, nil, nil))
		o := draftOrder(t, st, order.StatusConfirmed)

		_, err := svc.CreateInvoice(ctx, o.Number)
		assert.ErrorIs(t, err, apperr.ErrInvalidState)
		gw.AssertNotCalled(t, "CreateInvoice", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Gateway failure is surfaced", func(t *testing.T) {
		st := memory.NewStore()
		gw := new(MockGateway)
		svc := payment.NewService(st, st, gw, payment.NewProcessor(st, st, nil, nil))
		o := draftOrder(t, st, order.StatusDraft)

		gw.On("CreateInvoice", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("gateway down")).Once()

		_, err := svc.CreateInvoice(ctx, o.Number)
		assert.EqualError(t, err, "gateway down")
		assert.Nil(t, st.Invoice(o.Number))
	})

	t.Run("Unknown order", func(t *testing.T) {
		st := memory.NewStore()
		svc := payment.NewService(st, st, new(MockGateway), payment.NewProcessor(st, st, nil, nil))

		_, err := svc.CreateInvoice(ctx, "ORD-404")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestService_VerifyPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("Paid invoice confirms the order", func(t *testing.T) {
		st := memory.NewStore()
		gw := new(MockGateway)
		trigger := &recordingTrigger{}
		svc := payment.NewService(st, st, gw, payment.NewProcessor(st, st, trigger, nil))
		o := draftOrder(t, st, order.StatusDraft)

		paidAt := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
		gw.On("GetInvoiceStatus", mock.Anything, o.Number).Return(&payment.InvoiceStatus{
			Reference:     o.Number,
			PaymentStatus: payment.PaymentStatusPaid,
			TransactionID: "MNFY-1",
			AmountPaid:    5000,
			PaidAt:        &paidAt,
			Method:        "ACCOUNT_TRANSFER",
		}, nil)

		res, err := svc.VerifyPayment(ctx, o.Number)
		require.NoError(t, err)
		assert.True(t, res.Processed)

		res, err = svc.VerifyPayment(ctx, o.Number)
		require.NoError(t, err)
		assert.False(t, res.Processed)

		p, err := st.GetByTransactionID(ctx, "MNFY-1")
		require.NoError(t, err)
		assert.True(t, paidAt.Equal(p.PaidAt))
		assert.Equal(t, []string{o.Number}, trigger.triggered())
	})

	t.Run("Pending invoice is an invalid state", func(t *testing.T) {
		st := memory.NewStore()
		gw := new(MockGateway)
		svc := payment.NewService(st, st, gw, payment.NewProcessor(st, st, nil, nil))
		o := draftOrder(t, st, order.StatusDraft)

		gw.On("GetInvoiceStatus", mock.Anything, o.Number).
			Return(&payment.InvoiceStatus{Reference: o.Number, PaymentStatus: payment.PaymentStatusPending}, nil)

		_, err := svc.VerifyPayment(ctx, o.Number)
		var se *apperr.StateError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "PENDING", se.Current)
	})
}
