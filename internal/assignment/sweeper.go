package assignment

import (
	"context"

	"fulfillment-be/internal/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepBatch = 50

type retrier interface {
	RetryAwaiting(ctx context.Context, limit int) (int, error)
}

// Sweeper periodically retries orders that are paid but still have no
// officer. It recovers from dropped queue tasks and from capacity freeing
// up without an availability change.
type Sweeper struct {
	svc      retrier
	schedule string
	cron     *cron.Cron
}

func NewSweeper(svc retrier, schedule string) *Sweeper {
	return &Sweeper{
		svc:      svc,
		schedule: schedule,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	logger.L().Info("assignment sweeper started", zap.String("schedule", s.schedule))
	return nil
}

func (s *Sweeper) sweep() {
	ctx := logger.WithRequestID(context.Background(), "sweeper")
	if _, err := s.svc.RetryAwaiting(ctx, sweepBatch); err != nil {
		logger.FromCtx(ctx).Error("assignment sweep failed", zap.Error(err))
	}
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Sweeper) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
	logger.L().Info("assignment sweeper stopped")
}
