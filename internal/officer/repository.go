package officer

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Repository interface {
	Get(ctx context.Context, userID string) (*Officer, error)
	ListActive(ctx context.Context) ([]*Officer, error)
	// ListEligible returns active, AVAILABLE officers other than excludeID,
	// ordered by user id.
	ListEligible(ctx context.Context, excludeID string) ([]*Officer, error)
	UpdateAvailability(ctx context.Context, userID string, status AvailabilityStatus, maxActiveOrders *int) (*Officer, error)
}

const officerSelect = `
	SELECT u.id, u.name, u.email, u.is_active,
	       p.availability_status, p.max_active_orders, p.updated_at
	FROM procurement_officers p
	JOIN users u ON u.id = p.user_id`

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOfficer(row rowScanner) (*Officer, error) {
	var o Officer
	err := row.Scan(&o.UserID, &o.Name, &o.Email, &o.Active,
		&o.AvailabilityStatus, &o.MaxActiveOrders, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOfficerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) Get(ctx context.Context, userID string) (*Officer, error) {
	return scanOfficer(r.db.QueryRowContext(ctx, officerSelect+` WHERE p.user_id = $1`, userID))
}

func (r *repository) list(ctx context.Context, query string, args ...any) ([]*Officer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var officers []*Officer
	for rows.Next() {
		o, err := scanOfficer(rows)
		if err != nil {
			return nil, err
		}
		officers = append(officers, o)
	}
	return officers, rows.Err()
}

func (r *repository) ListActive(ctx context.Context) ([]*Officer, error) {
	return r.list(ctx, officerSelect+`
		WHERE u.is_active = TRUE
		ORDER BY u.id`)
}

func (r *repository) ListEligible(ctx context.Context, excludeID string) ([]*Officer, error) {
	return r.list(ctx, officerSelect+`
		WHERE u.is_active = TRUE
		  AND p.availability_status = 'AVAILABLE'
		  AND ($1 = '' OR p.user_id::text <> $1)
		ORDER BY u.id`, excludeID)
}

func (r *repository) UpdateAvailability(
	ctx context.Context,
	userID string,
	status AvailabilityStatus,
	maxActiveOrders *int,
) (*Officer, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE procurement_officers
		SET availability_status = $2,
		    max_active_orders = COALESCE($3, max_active_orders),
		    updated_at = $4
		WHERE user_id = $1
	`, userID, status, maxActiveOrders, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrOfficerNotFound
	}
	return r.Get(ctx, userID)
}
