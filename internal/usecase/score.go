package usecase

import (
	"context"
	"strings"
	"time"

	"IntelPull/internal/domain/models"
	"IntelPull/internal/domain/repository"
)

// escalationKeywords flag a headline as escalation-related.
var escalationKeywords = []string{"strike", "invasion", "troops", "deployment", "conflict", "war"}

// ScoreUsecase computes the cheap heuristic threat score from a fresh
// news+stocks snapshot. It involves no generative model.
type ScoreUsecase struct {
	aggregator *AggregatorUsecase
	metrics    repository.Metrics
}

func NewScoreUsecase(aggregator *AggregatorUsecase, metrics repository.Metrics) *ScoreUsecase {
	return &ScoreUsecase{aggregator: aggregator, metrics: metrics}
}

// Compute aggregates news and stocks and scores them.
func (u *ScoreUsecase) Compute(ctx context.Context) models.ThreatScore {
	snap := u.aggregator.Collect(ctx, []models.Source{models.SourceNews, models.SourceStocks})
	score := Score(snap.News, snap.Stocks)
	if u.metrics != nil {
		u.metrics.RecordThreatScore(score.Score)
	}
	return score
}

// scoreArticleCap bounds how many headlines feed the keyword count.
const scoreArticleCap = 20

// Score derives the heuristic from keyword hits in the first twenty headlines
// and the mean change percent of successfully quoted symbols. Baseline 50,
// clamped to [0, 100]. Errored quotes are excluded from the mean; all-errored
// stocks contribute zero.
func Score(news *models.NewsReport, quotes []models.Quote) models.ThreatScore {
	hits := 0
	if news != nil {
		articles := news.Articles
		if len(articles) > scoreArticleCap {
			articles = articles[:scoreArticleCap]
		}
		for _, a := range articles {
			title := strings.ToLower(a.Title)
			for _, kw := range escalationKeywords {
				if strings.Contains(title, kw) {
					hits++
					break
				}
			}
		}
	}

	var sum float64
	var n int
	for _, q := range quotes {
		if q.Error != "" {
			continue
		}
		sum += q.ChangePercent
		n++
	}
	var avgChange float64
	if n > 0 {
		avgChange = sum / float64(n)
	}

	score := 50 + float64(hits)*2 + avgChange*10
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return models.ThreatScore{
		Score: score,
		Factors: models.ScoreFactors{
			NewsActivity:  hits,
			DefenseStocks: avgChange,
		},
		ProducedAt: time.Now().UTC(),
	}
}
