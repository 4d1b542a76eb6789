package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fulfillment-be/internal/order"

	"github.com/google/uuid"
)

type Repository interface {
	// RecordConfirmation inserts p and, only if p is new, applies fn to the
	// locked order in the same transaction. recorded is false when a payment
	// with the same transaction id already exists. An error from fn rolls
	// back the payment insert.
	RecordConfirmation(ctx context.Context, p *Payment, fn func(o *order.Order) error) (recorded bool, err error)
	GetByTransactionID(ctx context.Context, transactionID string) (*Payment, error)
	HasCompletedPayment(ctx context.Context, orderID uint) (bool, error)
	SaveInvoice(ctx context.Context, orderID uint, inv *Invoice) error

	// SaveWebhook logs an inbound webhook. alreadyProcessed is true when the
	// same provider event was logged and processed before.
	SaveWebhook(
		ctx context.Context,
		provider string,
		eventID string,
		eventType string,
		reference string,
		payload json.RawMessage,
		signatureValid bool,
	) (webhookID int64, alreadyProcessed bool, err error)
	MarkWebhookProcessed(ctx context.Context, webhookID int64) error
	MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) RecordConfirmation(ctx context.Context, p *Payment, fn func(o *order.Order) error) (bool, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Status = PaymentStatusPaid
	p.CreatedAt = time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var id uuid.UUID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO payments (
			id, order_id, transaction_id, amount, method, status, paid_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (transaction_id) DO NOTHING
		RETURNING id
	`, p.ID, p.OrderID, p.TransactionID, p.Amount, p.Method, p.Status, p.PaidAt, p.CreatedAt,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert payment: %w", err)
	}

	current, err := order.LoadForUpdate(ctx, tx, p.OrderID)
	if err != nil {
		return false, err
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return false, err
	}
	if err := order.Save(ctx, tx, current, next); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *repository) GetByTransactionID(ctx context.Context, transactionID string) (*Payment, error) {
	var p Payment
	err := r.db.QueryRowContext(ctx, `
		SELECT p.id, p.order_id, o.order_number, p.transaction_id, p.amount,
		       p.method, p.status, p.paid_at, p.created_at
		FROM payments p
		JOIN orders o ON o.id = p.order_id
		WHERE p.transaction_id = $1
	`, transactionID).Scan(
		&p.ID, &p.OrderID, &p.OrderNumber, &p.TransactionID, &p.Amount,
		&p.Method, &p.Status, &p.PaidAt, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) HasCompletedPayment(ctx context.Context, orderID uint) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM payments WHERE order_id = $1 AND status = 'PAID')
	`, orderID).Scan(&exists)
	return exists, err
}

func (r *repository) SaveInvoice(ctx context.Context, orderID uint, inv *Invoice) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payment_invoices (
			order_id, reference, transaction_id, checkout_url,
			account_number, account_name, bank_name, amount, expires_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (reference) DO UPDATE SET
			transaction_id = EXCLUDED.transaction_id,
			checkout_url = EXCLUDED.checkout_url,
			expires_at = EXCLUDED.expires_at
	`, orderID, inv.Reference, inv.TransactionID, inv.CheckoutURL,
		inv.AccountNumber, inv.AccountName, inv.BankName, inv.Amount, inv.ExpiresAt,
	)
	return err
}

func (r *repository) SaveWebhook(
	ctx context.Context,
	provider string,
	eventID string,
	eventType string,
	reference string,
	payload json.RawMessage,
	signatureValid bool,
) (int64, bool, error) {
	const q = `
	INSERT INTO payment_webhooks (
		provider,
		event_id,
		event_type,
		reference,
		signature_valid,
		payload
	)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (provider, event_id)
	DO UPDATE SET attempts = payment_webhooks.attempts + 1
	RETURNING id, processed_at IS NOT NULL;
	`

	var (
		id        int64
		processed bool
	)
	err := r.db.QueryRowContext(ctx, q,
		provider, eventID, eventType, reference, signatureValid, []byte(payload),
	).Scan(&id, &processed)
	if err != nil {
		return 0, false, err
	}
	return id, processed, nil
}

func (r *repository) MarkWebhookProcessed(ctx context.Context, webhookID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payment_webhooks
		SET processed_at = now(), process_error = NULL
		WHERE id = $1
	`, webhookID)
	return err
}

func (r *repository) MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payment_webhooks
		SET process_error = $2
		WHERE id = $1
	`, webhookID, reason)
	return err
}
