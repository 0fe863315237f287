package models

import "time"

// Tier identifies one of the two analysis depths.
type Tier string

const (
	TierMini Tier = "mini"
	TierDeep Tier = "deep"
)

// Source names one intelligence feed inside a Snapshot.
type Source string

const (
	SourceNews    Source = "news"
	SourceStocks  Source = "stocks"
	SourceFlights Source = "flights"
	SourceNavy    Source = "navy"
	SourceSocial  Source = "social"
)

// MiniSources is the feed subset consumed by the mini tier.
func MiniSources() []Source {
	return []Source{SourceNews, SourceStocks, SourceFlights}
}

// DeepSources is the feed subset consumed by the deep tier.
func DeepSources() []Source {
	return []Source{SourceNews, SourceStocks, SourceFlights, SourceNavy, SourceSocial}
}

// Article is one normalized news item, newest first in a report.
type Article struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"publishedAt"`
	URL         string    `json:"url,omitempty"`
}

// NewsReport is the news feed payload. On fetch failure Error is set and
// Articles is empty; the report itself is always usable.
type NewsReport struct {
	Articles []Article `json:"articles"`
	Error    string    `json:"error,omitempty"`
}

// Quote is one normalized stock quote. A failed symbol carries Error and
// zero values for the price fields.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	ObservedAt    time.Time `json:"observedAt"`
	Error         string    `json:"error,omitempty"`
}

// FlightState is one filtered military state vector. Position fields are
// pointers because upstream may genuinely omit them.
type FlightState struct {
	ICAO24     string   `json:"icao"`
	Callsign   string   `json:"callsign,omitempty"`
	Country    string   `json:"country"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Altitude   *float64 `json:"altitude,omitempty"`
	Velocity   *float64 `json:"velocity,omitempty"`
	ObservedAt int64    `json:"observedAt"`
}

// FlightReport is the air-traffic payload, truncated to a bounded count.
type FlightReport struct {
	Count   int           `json:"count"`
	Flights []FlightState `json:"flights"`
	Error   string        `json:"error,omitempty"`
}

// VesselReport is the naval payload. There is no live integration; Note
// explains the capability gap.
type VesselReport struct {
	Note    string   `json:"message,omitempty"`
	Vessels []string `json:"vessels"`
}

// SocialPost is one normalized social item.
type SocialPost struct {
	Title     string `json:"title"`
	Score     int    `json:"score"`
	Comments  int    `json:"comments"`
	Subreddit string `json:"subreddit"`
	CreatedAt int64  `json:"created"`
	URL       string `json:"url,omitempty"`
}

// SocialReport is the social feed payload.
type SocialReport struct {
	Posts []SocialPost `json:"posts"`
	Error string       `json:"error,omitempty"`
}

// Snapshot joins the per-source payloads of one aggregation pass. A field is
// nil only when its source was not requested; a requested source always
// yields either data or a report carrying its own error.
type Snapshot struct {
	News    *NewsReport   `json:"news,omitempty"`
	Stocks  []Quote       `json:"stocks,omitempty"`
	Flights *FlightReport `json:"flights,omitempty"`
	Navy    *VesselReport `json:"navy,omitempty"`
	Social  *SocialReport `json:"social,omitempty"`

	TakenAt time.Time `json:"takenAt"`
}

// Region is one named hotspot with its sub-score. Reasoning is populated by
// the deep tier only.
type Region struct {
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning,omitempty"`
}

// HorizonProbabilities carries the deep tier's fixed-horizon estimates.
type HorizonProbabilities struct {
	Days7  float64 `json:"7day"`
	Days30 float64 `json:"30day"`
	Days90 float64 `json:"90day"`
}

// AnalysisResult is one tier-tagged assessment parsed from the model reply.
// The deep tier populates a strict superset of the mini tier's fields; both
// share threat level, regions and a summary.
type AnalysisResult struct {
	Tier       Tier      `json:"tier"`
	Model      string    `json:"model"`
	ProducedAt time.Time `json:"producedAt"`

	ThreatLevel float64  `json:"threatLevel"`
	Regions     []Region `json:"regions"`
	Indicators  []string `json:"indicators,omitempty"`

	// Mini tier
	Probability float64 `json:"probability,omitempty"`
	Summary     string  `json:"summary,omitempty"`

	// Deep tier
	ConfidenceInterval   string                `json:"confidenceInterval,omitempty"`
	Probabilities        *HorizonProbabilities `json:"probabilities,omitempty"`
	HistoricalContext    string                `json:"historicalContext,omitempty"`
	Scenarios            []string              `json:"scenarios,omitempty"`
	ExecutiveSummary     string                `json:"executiveSummary,omitempty"`
	MonitoringPriorities []string              `json:"monitoringPriorities,omitempty"`
}

// ScoreFactors breaks the heuristic score into its inputs.
type ScoreFactors struct {
	NewsActivity  int     `json:"newsActivity"`
	DefenseStocks float64 `json:"defenseStocks"`
}

// ThreatScore is the cheap keyword/market heuristic, clamped to [0, 100].
type ThreatScore struct {
	Score      float64      `json:"score"`
	Factors    ScoreFactors `json:"factors"`
	ProducedAt time.Time    `json:"timestamp"`
}

// ScheduleDecision says which tiers fire on the current tick.
type ScheduleDecision struct {
	RunMini bool
	RunDeep bool
}

// Any reports whether at least one tier fires.
func (d ScheduleDecision) Any() bool { return d.RunMini || d.RunDeep }

// IntelState is the process-owned view of the latest analysis per tier. It is
// never persisted; a restart resets it.
type IntelState struct {
	Mini        *AnalysisResult `json:"mini"`
	Deep        *AnalysisResult `json:"deep"`
	LastMiniRun *time.Time      `json:"lastMiniRun"`
	LastDeepRun *time.Time      `json:"lastDeepRun"`
}
