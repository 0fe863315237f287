package repository

import (
	"context"

	"IntelPull/internal/domain/models"
)

// Source clients never return errors: every failure is folded into the
// report's own error field so one broken provider cannot abort a pass.

type NewsSource interface {
	Fetch(ctx context.Context) *models.NewsReport
}

type QuoteSource interface {
	Quote(ctx context.Context, symbol string) models.Quote
	Symbols() []string
}

type FlightSource interface {
	Fetch(ctx context.Context) *models.FlightReport
}

type VesselSource interface {
	Fetch(ctx context.Context) *models.VesselReport
}

type SocialSource interface {
	Fetch(ctx context.Context) *models.SocialReport
}

// StateStore owns the two single-slot analysis caches. Begin hands out a
// generation for the run about to start; Commit rejects writes whose
// generation is older than the slot's committed one, so a slow stale run
// cannot clobber a newer result.
type StateStore interface {
	Begin(tier models.Tier) uint64
	Commit(tier models.Tier, res *models.AnalysisResult, gen uint64) bool
	Read() models.IntelState
	Latest(tier models.Tier) *models.AnalysisResult
}

// Archive is an optional append-only history sink. It must never fail a run;
// callers log and continue on error.
type Archive interface {
	Store(ctx context.Context, res *models.AnalysisResult) error
	Close() error
}

// EventPublisher pushes completed results to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, res *models.AnalysisResult) error
	Close() error
}

type Metrics interface {
	RecordSourceFetch(source string, ok bool, seconds float64)
	RecordAnalysisRun(tier string, ok bool, seconds float64)
	RecordRunInFlight(tier string, delta int)
	RecordThreatScore(score float64)
	RecordLastPrice(symbol string, price float64)
}
