package assignment

import (
	"context"
	"errors"
	"fmt"

	"fulfillment-be/internal/logger"
	"fulfillment-be/internal/metrics"
	"fulfillment-be/internal/order"
	"fulfillment-be/internal/utils"

	"go.uber.org/zap"
)

// stillRejected reports whether o is in the state the rejecting officer left
// it in. Anything else means another actor resolved the order meanwhile.
func stillRejected(o *order.Order, rejectedBy string) bool {
	return o.AssignmentStatus == order.AssignmentRejected &&
		o.AssignedOfficerID == nil &&
		o.Status == order.StatusConfirmed &&
		!o.NeedsManualIntervention &&
		utils.PtrString(o.LastRejectedBy) == rejectedBy
}

// ReassignAfterRejection runs one step of the reassignment loop. Every
// rejection counts against MaxReassignAttempts; once the ceiling is hit the
// order is flagged for manual intervention instead of being handed out
// again.
func (s *service) ReassignAfterRejection(ctx context.Context, orderNumber, rejectedBy string) (*Outcome, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ReassignAfterRejection"),
		zap.String("order_number", orderNumber),
		zap.String("rejected_by", rejectedBy),
	)

	if !s.cfg.AutoAssignEnabled || !s.cfg.AutoReassignAfterRejection {
		return &Outcome{Reason: ReasonDisabled}, nil
	}

	o, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if !stillRejected(o, rejectedBy) {
		log.Info("order resolved by another actor, reassignment skipped")
		return &Outcome{Reason: ReasonNotAwaiting, Order: o}, nil
	}

	paid, err := s.payments.HasCompletedPayment(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if !paid {
		log.Warn("payment no longer confirmed, reassignment skipped")
		return &Outcome{Reason: ReasonUnpaid, Order: o}, nil
	}

	if o.ReassignmentAttempts+1 >= s.cfg.MaxReassignAttempts {
		return s.flagForManualIntervention(ctx, o.ID, rejectedBy, log)
	}

	cand, err := s.selector.Select(ctx, rejectedBy)
	if err != nil {
		return nil, fmt.Errorf("select officer: %w", err)
	}
	if cand == nil {
		s.metrics.Inc(metrics.CapacityExhausted)
		log.Info("no officer with spare capacity, order left rejected")
		return &Outcome{Reason: ReasonNoEligibleOfficer, Order: o}, nil
	}

	officerID := cand.Officer.UserID
	var attempt int
	updated, err := s.orders.Update(ctx, o.ID, func(o *order.Order) error {
		if !stillRejected(o, rejectedBy) {
			return errSkip
		}
		o.ReassignmentAttempts++
		attempt = o.ReassignmentAttempts
		notes := fmt.Sprintf("auto-reassigned after rejection (attempt %d of %d)", attempt, s.cfg.MaxReassignAttempts-1)
		s.assign(o, officerID, notes, systemActor, true)
		return nil
	})
	if errors.Is(err, errSkip) {
		log.Info("order resolved concurrently, reassignment skipped")
		return &Outcome{Reason: ReasonNotAwaiting}, nil
	}
	if err != nil {
		return nil, err
	}

	s.metrics.Inc(metrics.ReassignmentsAuto)
	log.Info("order reassigned",
		zap.String("officer_id", officerID),
		zap.Int("attempt", attempt),
	)
	return &Outcome{Assigned: true, OfficerID: officerID, Order: updated}, nil
}

func (s *service) flagForManualIntervention(ctx context.Context, orderID uint, rejectedBy string, log *zap.Logger) (*Outcome, error) {
	updated, err := s.orders.Update(ctx, orderID, func(o *order.Order) error {
		if !stillRejected(o, rejectedBy) {
			return errSkip
		}
		o.NeedsManualIntervention = true
		return nil
	})
	if errors.Is(err, errSkip) {
		return &Outcome{Reason: ReasonNotAwaiting}, nil
	}
	if err != nil {
		return nil, err
	}

	s.metrics.Inc(metrics.ManualInterventions)
	log.Warn("reassignment attempts exhausted, order needs manual intervention",
		zap.Int("reassignment_attempts", updated.ReassignmentAttempts),
		zap.Int("max_attempts", s.cfg.MaxReassignAttempts),
	)
	return &Outcome{
		NeedsManualIntervention: true,
		Reason:                  ReasonAttemptsExhausted,
		Order:                   updated,
	}, nil
}

func (s *service) RetryAwaiting(ctx context.Context, limit int) (int, error) {
	if !s.cfg.AutoAssignEnabled {
		return 0, nil
	}

	pending, err := s.orders.ListAwaitingAssignment(ctx, limit)
	if err != nil {
		return 0, err
	}

	log := logger.FromCtx(ctx).With(zap.String("method", "RetryAwaiting"))
	assigned := 0
	for _, o := range pending {
		var (
			out *Outcome
			err error
		)
		if o.AssignmentStatus == order.AssignmentRejected {
			out, err = s.ReassignAfterRejection(ctx, o.Number, utils.PtrString(o.LastRejectedBy))
		} else {
			out, err = s.AutoAssignOrder(ctx, o.Number)
		}
		if err != nil {
			log.Error("retry failed", zap.String("order_number", o.Number), zap.Error(err))
			continue
		}
		if out.Assigned {
			assigned++
		}
	}
	if len(pending) > 0 {
		log.Info("retried orders awaiting assignment", zap.Int("candidates", len(pending)), zap.Int("assigned", assigned))
	}
	return assigned, nil
}
