package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"IntelPull/internal/domain/models"
	"IntelPull/internal/domain/repository"
	dservice "IntelPull/internal/domain/service"
	applogger "IntelPull/pkg/logger"
)

const (
	miniArticleCap = 20
	deepArticleCap = 30

	miniTemperature = 0.7
	deepTemperature = 0.5

	miniSystem = "You are an expert military intelligence analyst specializing in predicting US military interventions based on multi-source intelligence."
	deepSystem = "You are a senior military intelligence analyst with decades of experience predicting US military interventions. You combine geopolitical analysis, defense industry indicators, SIGINT, and open-source intelligence to provide accurate threat assessments."

	sinkTimeout = 10 * time.Second
)

// AnalysisUsecase runs one generative assessment per call: gather a snapshot,
// prompt the model, parse the structured reply and commit it to the matching
// state slot. A failed run leaves the slot untouched.
type AnalysisUsecase struct {
	aggregator *AggregatorUsecase
	analyst    dservice.Analyst
	store      repository.StateStore
	archive    repository.Archive
	publisher  repository.EventPublisher
	metrics    repository.Metrics
	logger     *applogger.Logger

	miniModel string
	deepModel string
}

func NewAnalysisUsecase(
	aggregator *AggregatorUsecase,
	analyst dservice.Analyst,
	store repository.StateStore,
	miniModel, deepModel string,
	logger *applogger.Logger,
) *AnalysisUsecase {
	return &AnalysisUsecase{
		aggregator: aggregator,
		analyst:    analyst,
		store:      store,
		miniModel:  miniModel,
		deepModel:  deepModel,
		logger:     logger,
	}
}

// WithArchive attaches an optional history sink.
func (u *AnalysisUsecase) WithArchive(a repository.Archive) *AnalysisUsecase {
	u.archive = a
	return u
}

// WithPublisher attaches an optional event sink.
func (u *AnalysisUsecase) WithPublisher(p repository.EventPublisher) *AnalysisUsecase {
	u.publisher = p
	return u
}

func (u *AnalysisUsecase) WithMetrics(m repository.Metrics) *AnalysisUsecase {
	u.metrics = m
	return u
}

// RunMini executes the fast tier over news, stocks and flights.
func (u *AnalysisUsecase) RunMini(ctx context.Context) (*models.AnalysisResult, error) {
	return u.run(ctx, models.TierMini)
}

// RunDeep executes the comprehensive tier over all five sources.
func (u *AnalysisUsecase) RunDeep(ctx context.Context) (*models.AnalysisResult, error) {
	return u.run(ctx, models.TierDeep)
}

// Latest returns the committed result for a tier, nil if none yet.
func (u *AnalysisUsecase) Latest(tier models.Tier) *models.AnalysisResult {
	return u.store.Latest(tier)
}

// State returns the full per-tier view.
func (u *AnalysisUsecase) State() models.IntelState {
	return u.store.Read()
}

func (u *AnalysisUsecase) run(ctx context.Context, tier models.Tier) (*models.AnalysisResult, error) {
	gen := u.store.Begin(tier)
	start := time.Now()
	if u.metrics != nil {
		u.metrics.RecordRunInFlight(string(tier), 1)
		defer u.metrics.RecordRunInFlight(string(tier), -1)
	}

	res, err := u.execute(ctx, tier)
	if u.metrics != nil {
		u.metrics.RecordAnalysisRun(string(tier), err == nil, time.Since(start).Seconds())
	}
	if err != nil {
		if u.logger != nil {
			u.logger.Error("analysis run failed", applogger.String("tier", string(tier)), applogger.Error(err))
		}
		return nil, err
	}

	if !u.store.Commit(tier, res, gen) {
		if u.logger != nil {
			u.logger.Warn("stale analysis discarded", applogger.String("tier", string(tier)))
		}
		return res, nil
	}

	u.sink(res)

	if u.logger != nil {
		u.logger.Info("analysis committed",
			applogger.String("tier", string(tier)),
			applogger.String("model", res.Model),
			applogger.Float64("threat_level", res.ThreatLevel),
			applogger.Duration("elapsed", time.Since(start)))
	}
	return res, nil
}

func (u *AnalysisUsecase) execute(ctx context.Context, tier models.Tier) (*models.AnalysisResult, error) {
	var sources []models.Source
	var model, system, prompt string
	var temperature float64

	switch tier {
	case models.TierMini:
		sources = models.MiniSources()
		model, system, temperature = u.miniModel, miniSystem, miniTemperature
	case models.TierDeep:
		sources = models.DeepSources()
		model, system, temperature = u.deepModel, deepSystem, deepTemperature
	default:
		return nil, fmt.Errorf("unknown tier %q", tier)
	}

	snap := u.aggregator.Collect(ctx, sources)
	var err error
	if tier == models.TierMini {
		prompt, err = buildMiniPrompt(snap)
	} else {
		prompt, err = buildDeepPrompt(snap)
	}
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	raw, err := u.analyst.Assess(ctx, dservice.AssessmentRequest{
		Model:       model,
		System:      system,
		Prompt:      prompt,
		Temperature: temperature,
	})
	if err != nil {
		return nil, err
	}

	var res models.AnalysisResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("parse assessment: %w", err)
	}
	res.Tier = tier
	res.Model = model
	res.ProducedAt = time.Now().UTC()
	return &res, nil
}

// sink forwards a committed result to the optional archive and event stream.
// Sink failures are logged and swallowed; they never fail the run.
func (u *AnalysisUsecase) sink(res *models.AnalysisResult) {
	if u.archive == nil && u.publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		defer cancel()

		if u.archive != nil {
			if err := u.archive.Store(ctx, res); err != nil && u.logger != nil {
				u.logger.Warn("archive store failed", applogger.Error(err))
			}
		}
		if u.publisher != nil {
			if err := u.publisher.Publish(ctx, res); err != nil && u.logger != nil {
				u.logger.Warn("event publish failed", applogger.Error(err))
			}
		}
	}()
}

func buildMiniPrompt(snap *models.Snapshot) (string, error) {
	articles := capArticles(snap.News, miniArticleCap)

	newsJSON, err := marshalSection(articles)
	if err != nil {
		return "", err
	}
	stocksJSON, err := marshalSection(snap.Stocks)
	if err != nil {
		return "", err
	}
	flightsJSON, err := marshalSection(snap.Flights)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`You are a military intelligence analyst. Analyze the following real-time data and provide a threat assessment:

NEWS HEADLINES:
%s

DEFENSE CONTRACTOR STOCKS:
%s

MILITARY FLIGHT ACTIVITY:
%s

Provide:
1. Overall threat level (0-100 scale)
2. Top 3 regions of concern (array of objects with name/score)
3. Probability of US military action in next 30 days (percentage)
4. Key indicators driving your assessment
5. Brief summary (2-3 sentences)

Format as JSON with keys: threatLevel, regions, probability, indicators, summary`,
		newsJSON, stocksJSON, flightsJSON), nil
}

func buildDeepPrompt(snap *models.Snapshot) (string, error) {
	articles := capArticles(snap.News, deepArticleCap)

	newsJSON, err := marshalSection(articles)
	if err != nil {
		return "", err
	}
	stocksJSON, err := marshalSection(snap.Stocks)
	if err != nil {
		return "", err
	}
	flightsJSON, err := marshalSection(snap.Flights)
	if err != nil {
		return "", err
	}
	navyJSON, err := marshalSection(snap.Navy)
	if err != nil {
		return "", err
	}
	socialJSON, err := marshalSection(snap.Social)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`You are a senior military intelligence analyst conducting a deep threat assessment. Analyze this comprehensive intelligence package:

NEWS & GEOPOLITICAL INTEL:
%s

DEFENSE INDUSTRY INDICATORS:
%s

MILITARY AIR ACTIVITY:
%s

NAVAL MOVEMENTS:
%s

SOCIAL INTELLIGENCE (REDDIT):
%s

Provide a COMPREHENSIVE assessment including:
1. Overall threat level (0-100 scale) with confidence interval
2. Detailed regional breakdown (Top 5 hotspots with individual scores)
3. Probability estimates for next 7, 30, and 90 days
4. Key indicators and their weight in your analysis
5. Historical context and pattern matching
6. Specific scenarios most likely to trigger intervention
7. Executive summary (3-4 paragraphs)
8. Recommended monitoring priorities

Format as JSON with keys: threatLevel, confidenceInterval, regions (array with name/score/reasoning), probabilities (7day/30day/90day), indicators, historicalContext, scenarios, executiveSummary, monitoringPriorities`,
		newsJSON, stocksJSON, flightsJSON, navyJSON, socialJSON), nil
}

func capArticles(news *models.NewsReport, limit int) []models.Article {
	if news == nil {
		return []models.Article{}
	}
	if len(news.Articles) > limit {
		return news.Articles[:limit]
	}
	return news.Articles
}

func marshalSection(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal prompt section: %w", err)
	}
	return string(b), nil
}
