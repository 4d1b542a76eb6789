package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fulfillment-be/internal/utils"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByNumber(ctx context.Context, number string) (*Order, error)
	GetByID(ctx context.Context, id uint) (*Order, error)

	// Update loads the order with its items under a row lock, applies fn and
	// persists the result in the same transaction. An error from fn aborts
	// the transaction and is returned unchanged.
	Update(ctx context.Context, id uint, fn func(o *Order) error) (*Order, error)

	ListNeedingManualIntervention(ctx context.Context) ([]*Order, error)
	ListAwaitingAssignment(ctx context.Context, limit int) ([]*Order, error)
	ActiveOrderCounts(ctx context.Context) (map[string]int, error)
}

// Queryer is satisfied by *sql.DB and *sql.Tx.
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const orderColumns = `
	id, order_number, customer_name, customer_email, total_amount, status,
	assignment_status, assigned_officer_id, assigned_by, assigned_at,
	assignment_responded_at, assignment_notes, rejection_reason, last_rejected_by,
	reassignment_attempts, needs_manual_intervention, created_at, updated_at`

const itemColumns = `
	id, order_id, variant_id, variant_name, quantity, price, status,
	status_note, status_updated_at, status_updated_by`

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.Number, &o.CustomerName, &o.CustomerEmail, &o.TotalAmount, &o.Status,
		&o.AssignmentStatus, &o.AssignedOfficerID, &o.AssignedBy, &o.AssignedAt,
		&o.AssignmentRespondedAt, &o.AssignmentNotes, &o.RejectionReason, &o.LastRejectedBy,
		&o.ReassignmentAttempts, &o.NeedsManualIntervention, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func loadItems(ctx context.Context, q Queryer, orderID uint) ([]OrderItem, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+itemColumns+` FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.VariantID, &it.VariantName, &it.Quantity, &it.Price, &it.Status,
			&it.StatusNote, &it.StatusUpdatedAt, &it.StatusUpdatedBy,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) Create(ctx context.Context, o *Order) error {
	if o.Number == "" {
		o.Number = utils.GenerateOrderNumber()
	}
	if o.Status == "" {
		o.Status = StatusDraft
	}
	if o.AssignmentStatus == "" {
		o.AssignmentStatus = AssignmentUnassigned
	}
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			order_number, customer_name, customer_email, total_amount,
			status, assignment_status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id
	`, o.Number, o.CustomerName, o.CustomerEmail, o.TotalAmount,
		o.Status, o.AssignmentStatus, o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		if it.Status == "" {
			it.Status = ItemPending
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (
				order_id, variant_id, variant_name, quantity, price, status
			) VALUES ($1,$2,$3,$4,$5,$6)
			RETURNING id
		`, o.ID, it.VariantID, it.VariantName, it.Quantity, it.Price, it.Status,
		).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *repository) GetByNumber(ctx context.Context, number string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, number))
	if err != nil {
		return nil, err
	}
	if o.Items, err = loadItems(ctx, r.db, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if o.Items, err = loadItems(ctx, r.db, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

// LoadForUpdate reads the order and its items, locking the order row until q
// (a transaction) ends.
func LoadForUpdate(ctx context.Context, q Queryer, id uint) (*Order, error) {
	o, err := scanOrder(q.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if o.Items, err = loadItems(ctx, q, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

// Save writes the header of after and every item whose status fields differ
// from before.
func Save(ctx context.Context, q Queryer, before, after *Order) error {
	after.UpdatedAt = time.Now().UTC()

	_, err := q.ExecContext(ctx, `
		UPDATE orders SET
			status = $2,
			assignment_status = $3,
			assigned_officer_id = $4,
			assigned_by = $5,
			assigned_at = $6,
			assignment_responded_at = $7,
			assignment_notes = $8,
			rejection_reason = $9,
			last_rejected_by = $10,
			reassignment_attempts = $11,
			needs_manual_intervention = $12,
			updated_at = $13
		WHERE id = $1
	`,
		after.ID, after.Status, after.AssignmentStatus, after.AssignedOfficerID, after.AssignedBy,
		after.AssignedAt, after.AssignmentRespondedAt, after.AssignmentNotes, after.RejectionReason,
		after.LastRejectedBy, after.ReassignmentAttempts, after.NeedsManualIntervention, after.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	for i := range after.Items {
		it := &after.Items[i]
		prev := before.Item(it.ID)
		if prev != nil && !itemChanged(prev, it) {
			continue
		}
		_, err := q.ExecContext(ctx, `
			UPDATE order_items SET
				status = $2,
				status_note = $3,
				status_updated_at = $4,
				status_updated_by = $5
			WHERE id = $1 AND order_id = $6
		`, it.ID, it.Status, it.StatusNote, it.StatusUpdatedAt, it.StatusUpdatedBy, after.ID)
		if err != nil {
			return fmt.Errorf("update order item %d: %w", it.ID, err)
		}
	}
	return nil
}

func itemChanged(a, b *OrderItem) bool {
	if a.Status != b.Status || a.StatusNote != b.StatusNote {
		return true
	}
	if (a.StatusUpdatedAt == nil) != (b.StatusUpdatedAt == nil) {
		return true
	}
	return a.StatusUpdatedAt != nil && !a.StatusUpdatedAt.Equal(*b.StatusUpdatedAt)
}

func (r *repository) Update(ctx context.Context, id uint, fn func(o *Order) error) (*Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	current, err := LoadForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}

	if err := Save(ctx, tx, current, next); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return next, nil
}

func (r *repository) listOrders(ctx context.Context, query string, args ...any) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *repository) ListNeedingManualIntervention(ctx context.Context) ([]*Order, error) {
	return r.listOrders(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE needs_manual_intervention = TRUE
		ORDER BY updated_at
	`)
}

func (r *repository) ListAwaitingAssignment(ctx context.Context, limit int) ([]*Order, error) {
	return r.listOrders(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE status = 'CONFIRMED'
		  AND assigned_officer_id IS NULL
		  AND needs_manual_intervention = FALSE
		  AND assignment_status IN ('UNASSIGNED', 'REJECTED')
		ORDER BY updated_at
		LIMIT $1
	`, limit)
}

func (r *repository) ActiveOrderCounts(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT assigned_officer_id, COUNT(*)
		FROM orders
		WHERE assigned_officer_id IS NOT NULL
		  AND assignment_status IN ('PENDING_ACCEPTANCE', 'ACCEPTED')
		  AND status IN ('ASSIGNED', 'IN_PROGRESS')
		GROUP BY assigned_officer_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var officerID string
		var n int
		if err := rows.Scan(&officerID, &n); err != nil {
			return nil, err
		}
		counts[officerID] = n
	}
	return counts, rows.Err()
}
