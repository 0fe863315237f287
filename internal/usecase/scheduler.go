package usecase

import (
	"context"
	"time"

	"IntelPull/internal/domain/models"
	applogger "IntelPull/pkg/logger"
)

// Scheduler drives the cadence: every tick it evaluates Decide against the
// configured market-time offset and dispatches the due tiers as detached
// background runs. The tick loop never waits on a run.
type Scheduler struct {
	analysis     *AnalysisUsecase
	tickInterval time.Duration
	location     *time.Location
	logger       *applogger.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler builds a scheduler whose decisions are taken in a fixed-offset
// zone utcOffset hours from UTC (-5 for EST).
func NewScheduler(analysis *AnalysisUsecase, tickInterval time.Duration, utcOffset int, logger *applogger.Logger) *Scheduler {
	return &Scheduler{
		analysis:     analysis,
		tickInterval: tickInterval,
		location:     time.FixedZone("market", utcOffset*3600),
		logger:       logger,
	}
}

// Start launches the tick loop.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.tickInterval)
		defer ticker.Stop()

		if s.logger != nil {
			s.logger.Info("scheduler started", applogger.Duration("tick_interval", s.tickInterval))
		}

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.tick(ctx, now)
			}
		}
	}()
}

// tick evaluates one instant and fires the due tiers without waiting.
func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	local := now.In(s.location)
	d := Decide(local.Hour(), local.Minute(), local.Weekday())
	if !d.Any() {
		return
	}

	if s.logger != nil {
		s.logger.Info("cadence tick",
			applogger.Int("hour", local.Hour()),
			applogger.Int("minute", local.Minute()),
			applogger.Bool("mini", d.RunMini),
			applogger.Bool("deep", d.RunDeep))
	}

	if d.RunMini {
		go s.dispatch(ctx, models.TierMini)
	}
	if d.RunDeep {
		go s.dispatch(ctx, models.TierDeep)
	}
}

func (s *Scheduler) dispatch(ctx context.Context, tier models.Tier) {
	var err error
	switch tier {
	case models.TierMini:
		_, err = s.analysis.RunMini(ctx)
	case models.TierDeep:
		_, err = s.analysis.RunDeep(ctx)
	}
	if err != nil && s.logger != nil {
		s.logger.Warn("scheduled run failed", applogger.String("tier", string(tier)), applogger.Error(err))
	}
}

// Stop cancels the tick loop and waits for it to exit. In-flight analysis
// runs are not interrupted beyond context cancellation.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.done != nil {
		<-s.done
	}
}
