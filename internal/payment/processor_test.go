package payment_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"fulfillment-be/internal/apperr"
	"fulfillment-be/internal/metrics"
	"fulfillment-be/internal/order"
	"fulfillment-be/internal/payment"
	"fulfillment-be/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTrigger struct {
	mu     sync.Mutex
	orders []string
}

func (r *recordingTrigger) TriggerAutoAssign(_ context.Context, orderNumber string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, orderNumber)
}

func (r *recordingTrigger) triggered() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.orders...)
}

func draftOrder(t *testing.T, st *memory.Store, status order.OrderStatus) *order.Order {
	t.Helper()
	o := &order.Order{
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		TotalAmount:   5000,
		Status:        status,
		Items: []order.OrderItem{
			{VariantID: "v-1", VariantName: "Rice", Quantity: 1, Price: 2000},
			{VariantID: "v-2", VariantName: "Beans", Quantity: 1, Price: 3000},
		},
	}
	require.NoError(t, st.Create(context.Background(), o))
	return o
}

func TestProcessor_HandlePaymentConfirmed(t *testing.T) {
	ctx := context.Background()
	paidAt := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	t.Run("Confirms a draft order once", func(t *testing.T) {
		st := memory.NewStore()
		trigger := &recordingTrigger{}
		reg := metrics.NewRegistry()
		p := payment.NewProcessor(st, st, trigger, reg)
		o := draftOrder(t, st, order.StatusDraft)

		c := payment.Confirmation{OrderReference: o.Number, TransactionID: "MNFY-1", Amount: 5000, PaidAt: paidAt, Method: "CARD"}
		res, err := p.HandlePaymentConfirmed(ctx, c)
		require.NoError(t, err)
		assert.True(t, res.Processed)
		assert.True(t, res.OrderFound)

		got, err := st.GetByNumber(ctx, o.Number)
		require.NoError(t, err)
		assert.Equal(t, order.StatusConfirmed, got.Status)
		for _, it := range got.Items {
			assert.Equal(t, order.ItemPaid, it.Status)
			require.NotNil(t, it.StatusUpdatedAt)
			assert.True(t, paidAt.Equal(*it.StatusUpdatedAt))
		}

		for i := 0; i < 3; i++ {
			res, err = p.HandlePaymentConfirmed(ctx, c)
			require.NoError(t, err)
			assert.False(t, res.Processed)
			assert.Equal(t, "already processed", res.Message)
		}

		assert.Equal(t, 1, st.PaymentCount(o.ID))
		assert.Equal(t, []string{o.Number}, trigger.triggered())
		assert.Equal(t, uint64(1), reg.Value(metrics.PaymentsProcessed))
		assert.Equal(t, uint64(3), reg.Value(metrics.PaymentsDuplicate))
	})

	t.Run("Unknown order is acknowledged without recording", func(t *testing.T) {
		st := memory.NewStore()
		trigger := &recordingTrigger{}
		p := payment.NewProcessor(st, st, trigger, nil)

		res, err := p.HandlePaymentConfirmed(ctx, payment.Confirmation{OrderReference: "ORD-404", TransactionID: "MNFY-9", Amount: 100})
		require.NoError(t, err)
		assert.False(t, res.Processed)
		assert.False(t, res.OrderFound)
		assert.Empty(t, trigger.triggered())
	})

	t.Run("Underpayment leaves the order untouched", func(t *testing.T) {
		st := memory.NewStore()
		trigger := &recordingTrigger{}
		p := payment.NewProcessor(st, st, trigger, nil)
		o := draftOrder(t, st, order.StatusDraft)

		_, err := p.HandlePaymentConfirmed(ctx, payment.Confirmation{OrderReference: o.Number, TransactionID: "MNFY-2", Amount: 4999})
		assert.ErrorIs(t, err, apperr.ErrValidation)

		got, err := st.GetByNumber(ctx, o.Number)
		require.NoError(t, err)
		assert.Equal(t, order.StatusDraft, got.Status)
		assert.Zero(t, st.PaymentCount(o.ID))
		assert.Empty(t, trigger.triggered())
	})

	t.Run("Payment on a confirmed order is recorded without a transition", func(t *testing.T) {
		st := memory.NewStore()
		trigger := &recordingTrigger{}
		p := payment.NewProcessor(st, st, trigger, nil)
		o := draftOrder(t, st, order.StatusConfirmed)

		res, err := p.HandlePaymentConfirmed(ctx, payment.Confirmation{OrderReference: o.Number, TransactionID: "MNFY-3", Amount: 5000})
		require.NoError(t, err)
		assert.True(t, res.Processed)
		assert.Equal(t, 1, st.PaymentCount(o.ID))
		assert.Empty(t, trigger.triggered())

		got, err := st.GetByNumber(ctx, o.Number)
		require.NoError(t, err)
		assert.Equal(t, order.ItemPending, got.Items[0].Status)
	})

	t.Run("Missing fields are rejected", func(t *testing.T) {
		st := memory.NewStore()
		p := payment.NewProcessor(st, st, nil, nil)

		tests := []payment.Confirmation{
			{TransactionID: "MNFY-1", Amount: 100},
			{OrderReference: "ORD-1", Amount: 100},
			{OrderReference: "ORD-1", TransactionID: "MNFY-1"},
		}
		for _, c := range tests {
			_, err := p.HandlePaymentConfirmed(ctx, c)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		}
	})

	t.Run("Concurrent duplicates record once", func(t *testing.T) {
		st := memory.NewStore()
		trigger := &recordingTrigger{}
		p := payment.NewProcessor(st, st, trigger, nil)
		o := draftOrder(t, st, order.StatusDraft)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := p.HandlePaymentConfirmed(ctx, payment.Confirmation{OrderReference: o.Number, TransactionID: "MNFY-4", Amount: 5000})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, st.PaymentCount(o.ID))
		assert.Len(t, trigger.triggered(), 1)
	})
}
