package assignment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment-be/internal/apperr"
	"fulfillment-be/internal/config"
	"fulfillment-be/internal/logger"
	"fulfillment-be/internal/metrics"
	"fulfillment-be/internal/officer"
	"fulfillment-be/internal/order"
	"fulfillment-be/internal/utils"

	"go.uber.org/zap"
)

const systemActor = "system"

type PaymentChecker interface {
	HasCompletedPayment(ctx context.Context, orderID uint) (bool, error)
}

type Service interface {
	AssignOrder(ctx context.Context, orderNumber, officerID, notes, adminID string) (*order.Order, error)
	AutoAssignOrder(ctx context.Context, orderNumber string) (*Outcome, error)
	RespondToAssignment(ctx context.Context, orderNumber, officerID string, decision Decision, reason string) (*order.Order, error)
	ReassignAfterRejection(ctx context.Context, orderNumber, rejectedBy string) (*Outcome, error)
	GetAssignmentStatus(ctx context.Context, orderNumber string, actor order.Actor) (*Status, error)
	ListOfficerWorkloads(ctx context.Context) ([]Workload, error)
	ListOrdersNeedingManualIntervention(ctx context.Context) ([]*order.Order, error)

	// TriggerAutoAssign schedules AutoAssignOrder in the background.
	TriggerAutoAssign(ctx context.Context, orderNumber string)
	// RetryAwaiting re-runs assignment for confirmed orders still without
	// an officer and returns how many got one.
	RetryAwaiting(ctx context.Context, limit int) (int, error)
}

type service struct {
	orders   order.Repository
	officers OfficerDirectory
	payments PaymentChecker
	selector *Selector
	runner   Runner
	cfg      config.AssignmentConfig
	metrics  *metrics.Registry
	now      func() time.Time
}

func NewService(
	orders order.Repository,
	officers OfficerDirectory,
	payments PaymentChecker,
	runner Runner,
	cfg config.AssignmentConfig,
	reg *metrics.Registry,
) Service {
	return &service{
		orders:   orders,
		officers: officers,
		payments: payments,
		selector: NewSelector(officers, orders, cfg.FallbackAnyActive),
		runner:   runner,
		cfg:      cfg,
		metrics:  reg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// assign points o at officerID. reassign forces REASSIGNED even when no
// officer is currently set, as after a rejection.
func (s *service) assign(o *order.Order, officerID, notes, by string, reassign bool) {
	now := s.now()

	if o.AssignedOfficerID != nil || reassign {
		o.AssignmentStatus = order.AssignmentReassigned
	} else {
		o.AssignmentStatus = order.AssignmentPendingAcceptance
	}
	o.AssignedOfficerID = utils.StrPtr(officerID)
	o.AssignedBy = utils.StrPtr(by)
	o.AssignedAt = &now
	o.AssignmentRespondedAt = nil
	o.AssignmentNotes = notes
}

func assignable(s order.OrderStatus) bool {
	return s == order.StatusConfirmed || s == order.StatusAssigned || s == order.StatusInProgress
}

func (s *service) AssignOrder(ctx context.Context, orderNumber, officerID, notes, adminID string) (*order.Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AssignOrder"),
		zap.String("order_number", orderNumber),
		zap.String("officer_id", officerID),
		zap.String("admin_id", adminID),
	)

	if strings.TrimSpace(officerID) == "" {
		return nil, ErrOfficerRequired
	}

	off, err := s.officers.Get(ctx, officerID)
	if err != nil {
		return nil, err
	}
	if !off.Active {
		return nil, officer.ErrOfficerInactive
	}

	current, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	var previous string
	updated, err := s.orders.Update(ctx, current.ID, func(o *order.Order) error {
		if !assignable(o.Status) {
			return apperr.InvalidState("order", "assign", string(o.Status))
		}
		previous = o.OfficerID()
		s.assign(o, officerID, notes, adminID, false)
		o.NeedsManualIntervention = false
		o.ReassignmentAttempts = 0
		o.RejectionReason = ""
		return nil
	})
	if err != nil {
		log.Warn("manual assignment rejected", zap.Error(err))
		return nil, err
	}

	s.metrics.Inc(metrics.AssignmentsManual)
	log.Info("order assigned",
		zap.String("assignment_status", string(updated.AssignmentStatus)),
		zap.String("previous_officer_id", previous),
	)
	return updated, nil
}

func (s *service) AutoAssignOrder(ctx context.Context, orderNumber string) (*Outcome, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AutoAssignOrder"),
		zap.String("order_number", orderNumber),
	)

	if !s.cfg.AutoAssignEnabled {
		log.Debug(ReasonDisabled)
		return &Outcome{Reason: ReasonDisabled}, nil
	}

	o, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if o.Status != order.StatusConfirmed || o.AssignedOfficerID != nil {
		return &Outcome{Reason: ReasonNotAwaiting, Order: o}, nil
	}

	paid, err := s.payments.HasCompletedPayment(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if !paid {
		log.Warn("order has no completed payment, skipping auto-assignment")
		return &Outcome{Reason: ReasonUnpaid, Order: o}, nil
	}

	exclude := utils.PtrString(o.LastRejectedBy)
	cand, err := s.selector.Select(ctx, exclude)
	if err != nil {
		return nil, fmt.Errorf("select officer: %w", err)
	}
	if cand == nil {
		s.metrics.Inc(metrics.CapacityExhausted)
		log.Info("no officer with spare capacity, order left unassigned")
		return &Outcome{Reason: ReasonNoEligibleOfficer, Order: o}, nil
	}

	officerID := cand.Officer.UserID
	notes := fmt.Sprintf("auto-assigned to least busy officer (%d active orders)", cand.ActiveOrders)
	updated, err := s.orders.Update(ctx, o.ID, func(o *order.Order) error {
		if o.Status != order.StatusConfirmed || o.AssignedOfficerID != nil {
			return errSkip
		}
		s.assign(o, officerID, notes, systemActor, false)
		return nil
	})
	if errors.Is(err, errSkip) {
		log.Info("order resolved concurrently, auto-assignment skipped")
		return &Outcome{Reason: ReasonNotAwaiting}, nil
	}
	if err != nil {
		return nil, err
	}

	s.metrics.Inc(metrics.AssignmentsAuto)
	log.Info("order auto-assigned",
		zap.String("officer_id", officerID),
		zap.Int("officer_active_orders", cand.ActiveOrders),
	)
	return &Outcome{Assigned: true, OfficerID: officerID, Order: updated}, nil
}

func (s *service) RespondToAssignment(
	ctx context.Context,
	orderNumber string,
	officerID string,
	decision Decision,
	reason string,
) (*order.Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "RespondToAssignment"),
		zap.String("order_number", orderNumber),
		zap.String("officer_id", officerID),
		zap.String("decision", string(decision)),
	)

	if decision != DecisionAccept && decision != DecisionReject {
		return nil, ErrInvalidDecision
	}

	current, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	updated, err := s.orders.Update(ctx, current.ID, func(o *order.Order) error {
		if o.OfficerID() != officerID {
			if utils.PtrString(o.LastRejectedBy) == officerID {
				return apperr.InvalidState("assignment", "respond to", string(o.AssignmentStatus))
			}
			return order.ErrNotAssignee
		}
		if !o.AssignmentStatus.AwaitingResponse() {
			return apperr.InvalidState("assignment", "respond to", string(o.AssignmentStatus))
		}

		now := s.now()
		o.AssignmentRespondedAt = &now

		if decision == DecisionAccept {
			o.AssignmentStatus = order.AssignmentAccepted
			if o.Status.CanAdvanceTo(order.StatusAssigned) {
				o.Status = order.StatusAssigned
			}
			o.NeedsManualIntervention = false
			return nil
		}

		o.AssignmentStatus = order.AssignmentRejected
		o.AssignedOfficerID = nil
		o.RejectionReason = reason
		o.LastRejectedBy = utils.StrPtr(officerID)
		return nil
	})
	if err != nil {
		log.Warn("assignment response rejected", zap.Error(err))
		return nil, err
	}

	if decision == DecisionAccept {
		s.metrics.Inc(metrics.ResponsesAccepted)
		log.Info("assignment accepted")
		return updated, nil
	}

	s.metrics.Inc(metrics.ResponsesRejected)
	log.Info("assignment rejected", zap.String("reason", reason))

	if s.cfg.AutoAssignEnabled && s.cfg.AutoReassignAfterRejection {
		s.runner.Submit(ctx, "reassign:"+orderNumber, func(ctx context.Context) error {
			_, err := s.ReassignAfterRejection(ctx, orderNumber, officerID)
			return err
		})
	}
	return updated, nil
}

func (s *service) GetAssignmentStatus(ctx context.Context, orderNumber string, actor order.Actor) (*Status, error) {
	o, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if actor.Role != utils.RoleAdmin && o.OfficerID() != actor.UserID {
		return nil, order.ErrNotAssignee
	}
	return StatusOf(o), nil
}

func (s *service) ListOfficerWorkloads(ctx context.Context) ([]Workload, error) {
	officers, err := s.officers.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.orders.ActiveOrderCounts(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Workload, 0, len(officers))
	for _, o := range officers {
		active := counts[o.UserID]
		out = append(out, Workload{
			OfficerID:          o.UserID,
			Name:               o.Name,
			Email:              o.Email,
			AvailabilityStatus: o.AvailabilityStatus,
			MaxActiveOrders:    o.MaxActiveOrders,
			ActiveOrders:       active,
			HasCapacity:        o.Eligible() && active < o.MaxActiveOrders,
		})
	}
	return out, nil
}

func (s *service) ListOrdersNeedingManualIntervention(ctx context.Context) ([]*order.Order, error) {
	return s.orders.ListNeedingManualIntervention(ctx)
}

func (s *service) TriggerAutoAssign(ctx context.Context, orderNumber string) {
	if !s.cfg.AutoAssignEnabled {
		return
	}
	s.runner.Submit(ctx, "auto-assign:"+orderNumber, func(ctx context.Context) error {
		_, err := s.AutoAssignOrder(ctx, orderNumber)
		return err
	})
}
