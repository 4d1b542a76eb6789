package order

import (
	"context"
	"errors"
	"time"

	"fulfillment-be/internal/apperr"
	"fulfillment-be/internal/logger"
	"fulfillment-be/internal/utils"

	"go.uber.org/zap"
)

type ItemUpdate struct {
	ItemID uint
	Status ItemStatus
	Note   string
}

type ItemResult struct {
	ItemID  uint
	Success bool
	Message string
	Item    *OrderItem
}

type BulkResult struct {
	Total     int
	Succeeded int
	Failed    int
	Results   []ItemResult
	// OrderStatus is the order status after the batch.
	OrderStatus OrderStatus
}

type ItemService interface {
	UpdateItemStatus(ctx context.Context, orderNumber string, itemID uint, status ItemStatus, note string, actor Actor) (*OrderItem, error)
	BulkUpdateItemStatuses(ctx context.Context, orderNumber string, updates []ItemUpdate, actor Actor) (*BulkResult, error)
	RecomputeOrderStatus(ctx context.Context, orderID uint) (OrderStatus, bool, error)
}

type itemService struct {
	repo Repository
	now  func() time.Time
}

func NewItemService(repo Repository) ItemService {
	return &itemService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *itemService) UpdateItemStatus(
	ctx context.Context,
	orderNumber string,
	itemID uint,
	status ItemStatus,
	note string,
	actor Actor,
) (*OrderItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateItemStatus"),
		zap.String("order_number", orderNumber),
		zap.Uint("item_id", itemID),
		zap.String("status", string(status)),
	)

	o, err := s.repo.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	item, err := s.applyItemUpdate(ctx, o.ID, ItemUpdate{ItemID: itemID, Status: status, Note: note}, actor)
	if err != nil {
		log.Warn("item status update rejected", zap.Error(err))
		return nil, err
	}

	if _, _, err := s.RecomputeOrderStatus(ctx, o.ID); err != nil {
		log.Error("recompute order status failed", zap.Error(err))
		return nil, err
	}

	log.Info("item status updated")
	return item, nil
}

func (s *itemService) BulkUpdateItemStatuses(
	ctx context.Context,
	orderNumber string,
	updates []ItemUpdate,
	actor Actor,
) (*BulkResult, error) {
	if len(updates) == 0 {
		return nil, ErrEmptyBatch
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "BulkUpdateItemStatuses"),
		zap.String("order_number", orderNumber),
		zap.Int("item_count", len(updates)),
	)

	o, err := s.repo.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	res := &BulkResult{Total: len(updates), Results: make([]ItemResult, 0, len(updates))}
	for _, u := range updates {
		item, err := s.applyItemUpdate(ctx, o.ID, u, actor)
		if err != nil {
			res.Failed++
			res.Results = append(res.Results, ItemResult{ItemID: u.ItemID, Message: err.Error()})
			continue
		}
		res.Succeeded++
		res.Results = append(res.Results, ItemResult{ItemID: u.ItemID, Success: true, Message: "updated", Item: item})
	}

	res.OrderStatus = o.Status
	if res.Failed == 0 {
		status, _, err := s.RecomputeOrderStatus(ctx, o.ID)
		if err != nil {
			log.Error("recompute order status failed", zap.Error(err))
			return nil, err
		}
		res.OrderStatus = status
	} else {
		log.Warn("partial batch failure, order status left unchanged",
			zap.Int("succeeded", res.Succeeded),
			zap.Int("failed", res.Failed),
		)
	}

	log.Info("bulk item update finished",
		zap.Int("succeeded", res.Succeeded),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

func (s *itemService) applyItemUpdate(ctx context.Context, orderID uint, u ItemUpdate, actor Actor) (*OrderItem, error) {
	if !u.Status.Valid() {
		return nil, apperr.Validation("unknown item status %q", u.Status)
	}

	var updated OrderItem
	_, err := s.repo.Update(ctx, orderID, func(o *Order) error {
		if o.Status == StatusDraft || o.Status == StatusCancelled {
			return apperr.InvalidState("order", "update items of", string(o.Status))
		}
		if err := authorizeItemUpdate(o, actor); err != nil {
			return err
		}

		item := o.Item(u.ItemID)
		if item == nil {
			return ErrItemNotFound
		}

		now := s.now()
		item.Status = u.Status
		item.StatusNote = u.Note
		item.StatusUpdatedAt = &now
		item.StatusUpdatedBy = utils.StrPtr(actor.UserID)
		updated = *item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// authorizeItemUpdate allows admins, the system, and the officer who accepted
// the order.
func authorizeItemUpdate(o *Order, actor Actor) error {
	switch actor.Role {
	case utils.RoleAdmin, utils.RoleSystem:
		return nil
	case utils.RoleOfficer:
		if o.OfficerID() == actor.UserID && o.AssignmentStatus == AssignmentAccepted {
			return nil
		}
	}
	return ErrNotAssignee
}

func (s *itemService) RecomputeOrderStatus(ctx context.Context, orderID uint) (OrderStatus, bool, error) {
	var (
		from, to OrderStatus
		changed  bool
	)

	_, err := s.repo.Update(ctx, orderID, func(o *Order) error {
		from = o.Status
		to, changed = DeriveStatus(o)
		if !changed {
			return errUnchanged
		}
		o.Status = to
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return from, false, nil
	}
	if err != nil {
		return "", false, err
	}

	logger.FromCtx(ctx).Info("order status promoted",
		zap.Uint("order_id", orderID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return to, true, nil
}

// errUnchanged aborts an Update that has nothing to write.
var errUnchanged = errors.New("order unchanged")

// DeriveStatus computes the order status implied by the item statuses.
// Work has started once any item leaves PENDING; the order completes when
// every item is DELIVERED.
func DeriveStatus(o *Order) (OrderStatus, bool) {
	status := o.Status

	if status == StatusConfirmed || status == StatusAssigned {
		for _, it := range o.Items {
			if it.Status != ItemPending {
				status = StatusInProgress
				break
			}
		}
	}

	if status == StatusInProgress && len(o.Items) > 0 {
		allDelivered := true
		for _, it := range o.Items {
			if it.Status != ItemDelivered {
				allDelivered = false
				break
			}
		}
		if allDelivered {
			status = StatusCompleted
		}
	}

	return status, status != o.Status
}
