package prediction

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"nfl_dashboard/aggregator/internal/client"
	"nfl_dashboard/aggregator/internal/models"

	"github.com/benbjohnson/clock"
)

// ErrNoSignal means a provider had nothing to work from
var ErrNoSignal = errors.New("no signal data")

// GameLister reads stored games of a season
type GameLister interface {
	ListSeasonGames(ctx context.Context, season int) ([]models.Game, error)
}

// PostFetcher reads hot posts of a subreddit
type PostFetcher interface {
	FetchHot(ctx context.Context, subreddit string, limit int) ([]client.RedditPost, error)
}

// DefaultProviders wires the standard signal collaborators. A nil posts
// fetcher leaves sentiment neutral.
func DefaultProviders(games GameLister, posts PostFetcher, subreddits []string, clk clock.Clock) []Provider {
	providers := []Provider{
		NewHeadToHeadProvider(games, 3),
		NeutralWeather(),
		MomentumProvider{},
		NeutralInjuries(),
		MarketProvider{},
		NeutralCoaching(),
	}
	if posts != nil && len(subreddits) > 0 {
		providers = append(providers, NewSentimentProvider(posts, subreddits, clk))
	}
	return providers
}

type neutralProvider struct {
	name   string
	signal Signal
}

func (p neutralProvider) Name() string { return p.name }

func (p neutralProvider) Gather(context.Context, PredictInput) (Signal, error) {
	return p.signal, nil
}

// NeutralWeather reports fair conditions for every game
func NeutralWeather() Provider {
	return neutralProvider{name: "weather", signal: NeutralSignals().Weather}
}

// NeutralInjuries reports no injury impact
func NeutralInjuries() Provider {
	return neutralProvider{name: "injuries", signal: Injuries{}}
}

// NeutralCoaching reports an even coaching matchup
func NeutralCoaching() Provider {
	return neutralProvider{name: "coaching", signal: NeutralSignals().Coaching}
}

// HeadToHeadProvider counts completed meetings in the stored games
type HeadToHeadProvider struct {
	games   GameLister
	seasons int
}

// NewHeadToHeadProvider looks back over the given number of seasons,
// the current one included
func NewHeadToHeadProvider(games GameLister, seasons int) *HeadToHeadProvider {
	if seasons <= 0 {
		seasons = 1
	}
	return &HeadToHeadProvider{games: games, seasons: seasons}
}

func (p *HeadToHeadProvider) Name() string { return "head_to_head" }

func (p *HeadToHeadProvider) Gather(ctx context.Context, in PredictInput) (Signal, error) {
	if p.games == nil {
		return nil, ErrNoSignal
	}

	home, away := in.HomeTeam.ID, in.AwayTeam.ID
	var h2h HeadToHead
	for season := in.Game.Season - p.seasons + 1; season <= in.Game.Season; season++ {
		games, err := p.games.ListSeasonGames(ctx, season)
		if err != nil {
			return nil, fmt.Errorf("failed to list season %d games: %w", season, err)
		}
		for _, g := range games {
			if g.ID == in.Game.ID || !g.IsCompleted {
				continue
			}
			if !(g.HomeTeamID == home && g.AwayTeamID == away) && !(g.HomeTeamID == away && g.AwayTeamID == home) {
				continue
			}
			h2h.Games++
			switch g.Winner() {
			case home:
				h2h.HomeWins++
			case away:
				h2h.AwayWins++
			}
		}
	}
	h2h.Available = h2h.Games > 0
	return h2h, nil
}

// MomentumProvider derives form from per-game point differential
type MomentumProvider struct{}

func (MomentumProvider) Name() string { return "momentum" }

func (MomentumProvider) Gather(_ context.Context, in PredictInput) (Signal, error) {
	if in.HomeStats == nil || in.AwayStats == nil ||
		in.HomeStats.GamesPlayed() == 0 || in.AwayStats.GamesPlayed() == 0 {
		return nil, ErrNoSignal
	}
	return Momentum{
		Home:      momentum(*in.HomeStats),
		Away:      momentum(*in.AwayStats),
		Available: true,
	}, nil
}

// momentum scales a two-touchdown per-game margin to 1
func momentum(s models.TeamStats) float64 {
	perGame := float64(s.PointDifferential()) / float64(s.GamesPlayed())
	return math.Round(math.Max(-1, math.Min(1, perGame/14))*100) / 100
}

// MarketProvider reads public lean from moneylines and sharp lean from
// spread movement since the previous real line
type MarketProvider struct{}

func (MarketProvider) Name() string { return "market" }

func (MarketProvider) Gather(_ context.Context, in PredictInput) (Signal, error) {
	if in.Odds == nil || !in.Odds.HasLines() || in.Odds.Synthetic {
		return nil, ErrNoSignal
	}

	m := MarketIntel{PublicHomePct: 50, SharpSide: "none", Available: true}
	if in.Odds.HomeMoneyline != nil && in.Odds.AwayMoneyline != nil {
		ph := ImpliedProbability(*in.Odds.HomeMoneyline)
		pa := ImpliedProbability(*in.Odds.AwayMoneyline)
		if ph+pa > 0 {
			m.PublicHomePct = math.Round(ph/(ph+pa)*1000) / 10
		}
	}

	prev := in.PreviousOdds
	if prev != nil && !prev.Synthetic && prev.HomeSpread != nil && in.Odds.HomeSpread != nil {
		m.LineMovement = *in.Odds.HomeSpread - *prev.HomeSpread
		switch {
		case m.LineMovement < 0:
			m.SharpSide = "home"
		case m.LineMovement > 0:
			m.SharpSide = "away"
		}
	}
	return m, nil
}

// ImpliedProbability converts an American price to its break-even probability
func ImpliedProbability(american int) float64 {
	switch {
	case american < 0:
		a := float64(-american)
		return a / (a + 100)
	case american > 0:
		return 100 / (float64(american) + 100)
	default:
		return 0
	}
}

var pickKeywords = []string{
	"pick", "bet", "prediction", "favor", "win", "lose", "losing",
	"upset", "lock", "confident", "sure thing", "easy money",
}

// SentimentProvider weighs team mentions in betting-related hot posts
type SentimentProvider struct {
	fetcher    PostFetcher
	subreddits []string
	limit      int
	ttl        time.Duration
	clock      clock.Clock

	mu        sync.Mutex
	posts     []client.RedditPost
	fetchedAt time.Time
}

// NewSentimentProvider creates a provider that caches the fetched posts for
// ten minutes so a batch of games shares one read
func NewSentimentProvider(fetcher PostFetcher, subreddits []string, clk clock.Clock) *SentimentProvider {
	if clk == nil {
		clk = clock.New()
	}
	return &SentimentProvider{
		fetcher:    fetcher,
		subreddits: subreddits,
		limit:      25,
		ttl:        10 * time.Minute,
		clock:      clk,
	}
}

func (p *SentimentProvider) Name() string { return "sentiment" }

func (p *SentimentProvider) Gather(ctx context.Context, in PredictInput) (Signal, error) {
	posts, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	return AnalyzeSentiment(posts, in.HomeTeam, in.AwayTeam), nil
}

func (p *SentimentProvider) load(ctx context.Context) ([]client.RedditPost, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	if p.posts != nil && now.Sub(p.fetchedAt) < p.ttl {
		return p.posts, nil
	}

	var (
		all     []client.RedditPost
		lastErr error
		ok      int
	)
	for _, sub := range p.subreddits {
		posts, err := p.fetcher.FetchHot(ctx, sub, p.limit)
		if err != nil {
			lastErr = err
			continue
		}
		ok++
		all = append(all, posts...)
	}
	if ok == 0 {
		return nil, fmt.Errorf("no subreddit could be read: %w", lastErr)
	}

	if all == nil {
		all = []client.RedditPost{}
	}
	p.posts = all
	p.fetchedAt = now
	return all, nil
}

// AnalyzeSentiment counts score-weighted mentions of each team's nickname in
// posts that talk about picks. The side with more weight is the favorite.
func AnalyzeSentiment(posts []client.RedditPost, home, away models.Team) Sentiment {
	homeKey, awayKey := mentionKey(home), mentionKey(away)

	var homeMentions, awayMentions, homeWeight, awayWeight int
	for _, post := range posts {
		text := strings.ToLower(post.Title + " " + post.Body)
		if !containsAny(text, pickKeywords) {
			continue
		}
		weight := max(post.Score, 1)
		if homeKey != "" && strings.Contains(text, homeKey) {
			homeMentions++
			homeWeight += weight
		}
		if awayKey != "" && strings.Contains(text, awayKey) {
			awayMentions++
			awayWeight += weight
		}
	}

	s := Sentiment{Confidence: 0.5, Mentions: homeMentions + awayMentions}
	s.Available = s.Mentions > 0
	total := float64(homeWeight + awayWeight)
	switch {
	case homeWeight > awayWeight:
		s.Favorite = home.ID
		s.Confidence = float64(homeWeight) / total
	case awayWeight > homeWeight:
		s.Favorite = away.ID
		s.Confidence = float64(awayWeight) / total
	}
	s.Confidence = math.Round(s.Confidence*100) / 100
	return s
}

func mentionKey(t models.Team) string {
	if t.Placeholder {
		return ""
	}
	return strings.ToLower(t.Nickname())
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
