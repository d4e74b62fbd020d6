package models

import "time"

// Confidence bounds for a stored prediction
const (
	MinConfidence = 50
	MaxConfidence = 100
)

// PredictionMethod records which path produced a prediction
type PredictionMethod string

const (
	MethodReasoning PredictionMethod = "reasoning"
	MethodFallback  PredictionMethod = "fallback"
)

// Prediction is the model output for one game
type Prediction struct {
	GameID          string   `json:"gameId" db:"game_id"`
	PredictedWinner string   `json:"predictedWinner" db:"predicted_winner"`
	Confidence      int      `json:"confidence" db:"confidence"`
	WinProbability  *float64 `json:"winProbability,omitempty" db:"win_probability"`
	Analysis        string   `json:"analysis" db:"analysis"`
	RecommendedBet  string   `json:"recommendedBet" db:"recommended_bet"`
	KeyFactors      []string `json:"keyFactors" db:"key_factors"`

	// PredictedSpread is the home line in points, negative when home is favored
	PredictedSpread    *float64 `json:"predictedSpread,omitempty" db:"predicted_spread"`
	PredictedHomeScore *int     `json:"predictedHomeScore,omitempty" db:"predicted_home_score"`
	PredictedAwayScore *int     `json:"predictedAwayScore,omitempty" db:"predicted_away_score"`

	// SentimentScore is fan lean in [-1,1], positive toward the home team
	SentimentScore *float64 `json:"sentimentScore,omitempty" db:"sentiment_score"`

	Method PredictionMethod `json:"method" db:"method"`

	// Enriched fields
	RiskFactors       []string           `json:"riskFactors,omitempty" db:"risk_factors"`
	SentimentImpact   string             `json:"sentimentImpact,omitempty" db:"sentiment_impact"`
	WeatherImpact     string             `json:"weatherImpact,omitempty" db:"weather_impact"`
	CoachingEdge      string             `json:"coachingEdge,omitempty" db:"coaching_edge"`
	ValuePlay         string             `json:"valuePlay,omitempty" db:"value_play"`
	ConfidenceFactors *ConfidenceFactors `json:"confidenceFactors,omitempty" db:"confidence_factors"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ConfidenceFactors is the composite signal-quality score of an enriched prediction.
// Every field is in [0,1].
type ConfidenceFactors struct {
	DataQuality        float64 `json:"dataQuality"`
	ModelConsensus     float64 `json:"modelConsensus"`
	MarketAlignment    float64 `json:"marketAlignment"`
	HistoricalAccuracy float64 `json:"historicalAccuracy"`
}

// Clamp forces confidence into [50,100] and win probability into [0.5,1.0]
func (p *Prediction) Clamp() {
	p.Confidence = ClampConfidence(p.Confidence)
	if p.WinProbability != nil {
		wp := *p.WinProbability
		if wp < 0.5 {
			wp = 0.5
		}
		if wp > 1 {
			wp = 1
		}
		p.WinProbability = &wp
	}
}

// Clone returns a copy that shares no pointers or slices with p
func (p Prediction) Clone() Prediction {
	p.KeyFactors = append([]string(nil), p.KeyFactors...)
	p.RiskFactors = append([]string(nil), p.RiskFactors...)
	p.WinProbability = cloneFloat(p.WinProbability)
	p.PredictedSpread = cloneFloat(p.PredictedSpread)
	p.PredictedHomeScore = cloneInt(p.PredictedHomeScore)
	p.PredictedAwayScore = cloneInt(p.PredictedAwayScore)
	p.SentimentScore = cloneFloat(p.SentimentScore)
	if p.ConfidenceFactors != nil {
		cf := *p.ConfidenceFactors
		p.ConfidenceFactors = &cf
	}
	return p
}

// ClampConfidence bounds a confidence value to [50,100]
func ClampConfidence(c int) int {
	if c < MinConfidence {
		return MinConfidence
	}
	if c > MaxConfidence {
		return MaxConfidence
	}
	return c
}
