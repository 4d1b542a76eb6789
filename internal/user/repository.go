package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"fulfillment-be/internal/logger"
	"fulfillment-be/internal/officer"
	"fulfillment-be/internal/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// Create inserts u and, for officers, their procurement profile in the
	// same transaction.
	Create(ctx context.Context, u *User, maxActiveOrders int) error
	FindByEmail(ctx context.Context, email string) (*User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const uniqueViolation = "23505"

func (r *repository) Create(ctx context.Context, u *User, maxActiveOrders int) error {
	log := logger.FromCtx(ctx)

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, is_active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Active, u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrEmailExists
		}
		log.Error("db: failed to insert user", zap.String("email", u.Email), zap.Error(err))
		return err
	}

	if u.Role == utils.RoleOfficer {
		if maxActiveOrders <= 0 {
			maxActiveOrders = officer.DefaultMaxActiveOrders
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO procurement_officers (user_id, max_active_orders)
			VALUES ($1,$2)
		`, u.ID, maxActiveOrders)
		if err != nil {
			log.Error("db: failed to insert officer profile", zap.String("user_id", u.ID), zap.Error(err))
			return err
		}
	}

	return tx.Commit()
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, role, is_active, created_at
		FROM users
		WHERE email = $1
	`, strings.ToLower(email)).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
