package officer

import (
	"context"

	"fulfillment-be/internal/apperr"
	"fulfillment-be/internal/logger"

	"go.uber.org/zap"
)

// AvailabilityHook runs after an officer becomes AVAILABLE.
type AvailabilityHook func(ctx context.Context, officerID string)

type Service interface {
	Get(ctx context.Context, userID string) (*Officer, error)
	UpdateAvailability(ctx context.Context, userID string, status AvailabilityStatus, maxActiveOrders *int) (*Officer, error)
	OnAvailable(hook AvailabilityHook)
}

type service struct {
	repo  Repository
	hooks []AvailabilityHook
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context, userID string) (*Officer, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) OnAvailable(hook AvailabilityHook) {
	s.hooks = append(s.hooks, hook)
}

func (s *service) UpdateAvailability(
	ctx context.Context,
	userID string,
	status AvailabilityStatus,
	maxActiveOrders *int,
) (*Officer, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateAvailability"),
		zap.String("officer_id", userID),
		zap.String("availability", string(status)),
	)

	if !status.Valid() {
		return nil, apperr.Validation("unknown availability status %q", status)
	}
	if maxActiveOrders != nil && *maxActiveOrders < 1 {
		return nil, apperr.Validation("maxActiveOrders must be at least 1")
	}

	before, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateAvailability(ctx, userID, status, maxActiveOrders)
	if err != nil {
		log.Error("failed to update availability", zap.Error(err))
		return nil, err
	}

	log.Info("officer availability updated", zap.Int("max_active_orders", updated.MaxActiveOrders))

	capacityGrew := maxActiveOrders != nil && *maxActiveOrders > before.MaxActiveOrders
	if updated.AvailabilityStatus == Available && (before.AvailabilityStatus != Available || capacityGrew) {
		for _, h := range s.hooks {
			h(ctx, userID)
		}
	}

	return updated, nil
}
