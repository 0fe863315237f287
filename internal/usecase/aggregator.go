package usecase

import (
	"context"
	"sync"
	"time"

	"IntelPull/internal/domain/models"
	"IntelPull/internal/domain/repository"
	applogger "IntelPull/pkg/logger"
)

// AggregatorUsecase fans out to the requested intelligence sources and joins
// their reports into one Snapshot. Collect never fails: each source's own
// error stays inside its report.
type AggregatorUsecase struct {
	news    repository.NewsSource
	quotes  repository.QuoteSource
	flights repository.FlightSource
	vessels repository.VesselSource
	social  repository.SocialSource
	logger  *applogger.Logger
}

func NewAggregatorUsecase(
	news repository.NewsSource,
	quotes repository.QuoteSource,
	flights repository.FlightSource,
	vessels repository.VesselSource,
	social repository.SocialSource,
	logger *applogger.Logger,
) *AggregatorUsecase {
	return &AggregatorUsecase{
		news:    news,
		quotes:  quotes,
		flights: flights,
		vessels: vessels,
		social:  social,
		logger:  logger,
	}
}

// Collect fetches the named sources concurrently. Sources not requested stay
// nil in the snapshot.
func (u *AggregatorUsecase) Collect(ctx context.Context, sources []models.Source) *models.Snapshot {
	snap := &models.Snapshot{}

	var wg sync.WaitGroup
	for _, src := range sources {
		switch src {
		case models.SourceNews:
			wg.Add(1)
			go func() {
				defer wg.Done()
				snap.News = u.news.Fetch(ctx)
			}()
		case models.SourceStocks:
			wg.Add(1)
			go func() {
				defer wg.Done()
				snap.Stocks = u.collectQuotes(ctx)
			}()
		case models.SourceFlights:
			wg.Add(1)
			go func() {
				defer wg.Done()
				snap.Flights = u.flights.Fetch(ctx)
			}()
		case models.SourceNavy:
			wg.Add(1)
			go func() {
				defer wg.Done()
				snap.Navy = u.vessels.Fetch(ctx)
			}()
		case models.SourceSocial:
			wg.Add(1)
			go func() {
				defer wg.Done()
				snap.Social = u.social.Fetch(ctx)
			}()
		default:
			if u.logger != nil {
				u.logger.Warn("unknown source requested", applogger.String("source", string(src)))
			}
		}
	}
	wg.Wait()

	snap.TakenAt = time.Now().UTC()
	return snap
}

// collectQuotes pulls every watch-list symbol in parallel, preserving the
// watch-list order in the result.
func (u *AggregatorUsecase) collectQuotes(ctx context.Context) []models.Quote {
	symbols := u.quotes.Symbols()
	quotes := make([]models.Quote, len(symbols))

	var wg sync.WaitGroup
	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			quotes[i] = u.quotes.Quote(ctx, sym)
		}(i, sym)
	}
	wg.Wait()

	return quotes
}
