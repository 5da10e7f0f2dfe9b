package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yungbote/careerladder-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/careerladder-backend/internal/domain/aggregates"
	"github.com/yungbote/careerladder-backend/internal/observability"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
)

type ThreadSweeperConfig struct {
	// Spec is a standard five-field cron expression.
	Spec      string
	IdleAfter time.Duration
	BatchSize int
	// RunTimeout bounds a single sweep.
	RunTimeout time.Duration
}

// ThreadSweeper closes pending threads that have waited on the student longer than IdleAfter.
type ThreadSweeper struct {
	cronEngine *cron.Cron
	log        *logger.Logger
	agg        domainagg.SkillThreadAggregate
	metrics    *observability.Metrics
	cfg        ThreadSweeperConfig
	now        func() time.Time
}

func NewThreadSweeper(log *logger.Logger, agg domainagg.SkillThreadAggregate, metrics *observability.Metrics, cfg ThreadSweeperConfig) *ThreadSweeper {
	if cfg.Spec == "" {
		cfg.Spec = "*/15 * * * *"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 2 * time.Minute
	}
	return &ThreadSweeper{
		cronEngine: cron.New(cron.WithLocation(time.UTC)),
		log:        log.With("service", "ThreadSweeper"),
		agg:        agg,
		metrics:    metrics,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *ThreadSweeper) Start() error {
	if s.cfg.IdleAfter <= 0 {
		s.log.Info("thread sweeper disabled", "idle_after", s.cfg.IdleAfter)
		return nil
	}
	if _, err := s.cronEngine.AddFunc(s.cfg.Spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			s.log.Warn("idle thread sweep failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule thread sweeper %q: %w", s.cfg.Spec, err)
	}
	s.cronEngine.Start()
	s.log.Info("thread sweeper started", "spec", s.cfg.Spec, "idle_after", s.cfg.IdleAfter.String())
	return nil
}

// RunOnce performs one sweep and returns how many threads were closed.
func (s *ThreadSweeper) RunOnce(ctx context.Context) (int, error) {
	if s.cfg.IdleAfter <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.cfg.IdleAfter)
	closed, err := s.agg.CloseIdle(ctx, cutoff, s.cfg.BatchSize)
	if closed > 0 {
		s.metrics.AddThreadsClosed(aggregates.CloseReasonIdle, closed)
		s.log.Info("idle threads closed", "count", closed, "cutoff", cutoff)
	}
	return closed, err
}

func (s *ThreadSweeper) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
}
