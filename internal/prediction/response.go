package prediction

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"nfl_dashboard/aggregator/internal/models"
	"nfl_dashboard/aggregator/internal/teams"
)

// Key factor count bounds
const (
	MinKeyFactors = 2
	MaxKeyFactors = 5
)

// MaxPredictedSpread bounds an optional predicted spread in either direction
const MaxPredictedSpread = 50.0

var errResponse = errors.New("unusable reasoning response")

type reasoningResponse struct {
	PredictedWinner *string  `json:"predictedWinner"`
	Confidence      *float64 `json:"confidence"`
	WinProbability  *float64 `json:"winProbability"`
	Analysis        *string  `json:"analysis"`
	RecommendedBet  *string  `json:"recommendedBet"`
	KeyFactors      []string `json:"keyFactors"`
	PredictedSpread *float64 `json:"predictedSpread"`

	RiskFactors     []string `json:"riskFactors"`
	SentimentImpact string   `json:"sentimentImpact"`
	WeatherImpact   string   `json:"weatherImpact"`
	CoachingEdge    string   `json:"coachingEdge"`
	ValuePlay       string   `json:"valuePlay"`
}

// DecodeResponse parses and validates the reasoning payload. Missing or
// mistyped fields, out of range numbers and a winner that is neither team
// are all rejected; nothing is default-filled.
func DecodeResponse(content string, in PredictInput, enriched bool) (models.Prediction, error) {
	var r reasoningResponse
	if err := json.Unmarshal([]byte(stripFences(content)), &r); err != nil {
		return models.Prediction{}, fmt.Errorf("%w: %w", errResponse, err)
	}

	if r.PredictedWinner == nil {
		return models.Prediction{}, fmt.Errorf("%w: missing predictedWinner", errResponse)
	}
	winner, err := resolveWinner(*r.PredictedWinner, in.HomeTeam, in.AwayTeam)
	if err != nil {
		return models.Prediction{}, err
	}

	if r.Confidence == nil {
		return models.Prediction{}, fmt.Errorf("%w: missing confidence", errResponse)
	}
	conf := *r.Confidence
	if math.IsNaN(conf) || conf < models.MinConfidence || conf > models.MaxConfidence {
		return models.Prediction{}, fmt.Errorf("%w: confidence %v out of range", errResponse, conf)
	}

	analysis, ok := nonEmpty(r.Analysis)
	if !ok {
		return models.Prediction{}, fmt.Errorf("%w: missing analysis", errResponse)
	}
	bet, ok := nonEmpty(r.RecommendedBet)
	if !ok {
		return models.Prediction{}, fmt.Errorf("%w: missing recommendedBet", errResponse)
	}

	factors, err := cleanList(r.KeyFactors)
	if err != nil {
		return models.Prediction{}, err
	}
	if len(factors) < MinKeyFactors || len(factors) > MaxKeyFactors {
		return models.Prediction{}, fmt.Errorf("%w: %d key factors", errResponse, len(factors))
	}

	if r.WinProbability != nil {
		wp := *r.WinProbability
		if math.IsNaN(wp) || wp < 0.5 || wp > 1 {
			return models.Prediction{}, fmt.Errorf("%w: winProbability %v out of range", errResponse, wp)
		}
	} else if enriched {
		return models.Prediction{}, fmt.Errorf("%w: missing winProbability", errResponse)
	}

	if r.PredictedSpread != nil {
		sp := *r.PredictedSpread
		if math.IsNaN(sp) || math.Abs(sp) > MaxPredictedSpread {
			return models.Prediction{}, fmt.Errorf("%w: predictedSpread %v out of range", errResponse, sp)
		}
	}

	pred := models.Prediction{
		GameID:          in.Game.ID,
		PredictedWinner: winner,
		Confidence:      int(math.Round(conf)),
		WinProbability:  r.WinProbability,
		Analysis:        analysis,
		RecommendedBet:  bet,
		KeyFactors:      factors,
		PredictedSpread: r.PredictedSpread,
		Method:          models.MethodReasoning,
	}
	if enriched {
		risks, _ := cleanList(r.RiskFactors)
		pred.RiskFactors = risks
		pred.SentimentImpact = strings.TrimSpace(r.SentimentImpact)
		pred.WeatherImpact = strings.TrimSpace(r.WeatherImpact)
		pred.CoachingEdge = strings.TrimSpace(r.CoachingEdge)
		pred.ValuePlay = strings.TrimSpace(r.ValuePlay)
	}
	return pred, nil
}

// resolveWinner maps the named winner onto one of the two team ids
func resolveWinner(name string, home, away models.Team) (string, error) {
	isHome := namesTeam(name, home)
	isAway := namesTeam(name, away)
	switch {
	case isHome && !isAway:
		return home.ID, nil
	case isAway && !isHome:
		return away.ID, nil
	case isHome && isAway:
		return "", fmt.Errorf("%w: winner %q is ambiguous", errResponse, name)
	default:
		return "", fmt.Errorf("%w: winner %q is neither team", errResponse, name)
	}
}

func namesTeam(name string, t models.Team) bool {
	n := teams.NormalizeName(name)
	if n == "" {
		return false
	}
	for _, candidate := range []string{t.ID, t.Abbreviation, t.Name, t.Nickname()} {
		if candidate != "" && teams.NormalizeName(candidate) == n {
			return true
		}
	}
	return false
}

func nonEmpty(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	v := strings.TrimSpace(*s)
	return v, v != ""
}

func cleanList(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, fmt.Errorf("%w: empty list entry", errResponse)
		}
		out = append(out, s)
	}
	return out, nil
}

// stripFences removes a surrounding ``` or ```json block
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
