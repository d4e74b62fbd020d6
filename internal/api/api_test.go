package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"nfl_dashboard/aggregator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	filters   models.Filters
	refreshed [2]int
	gamesErr  error
}

func (f *fakeService) Refresh(_ context.Context, week, season int) models.RefreshResult {
	f.refreshed = [2]int{season, week}
	return models.RefreshResult{Week: week, Season: season, GamesUpdated: 5, Synthetic: true}
}

func (f *fakeService) CurrentWeek(context.Context) (int, int) { return 2024, 6 }

func (f *fakeService) GetGamesWithDetails(_ context.Context, week, season int, filters models.Filters) ([]models.GameWithDetails, error) {
	f.filters = filters
	if f.gamesErr != nil {
		return nil, f.gamesErr
	}
	return []models.GameWithDetails{{Game: models.Game{ID: "401", Week: week, Season: season}, Advice: []models.Advice{}}}, nil
}

func (f *fakeService) GetWeekSummary(_ context.Context, week, season int) (models.WeekSummary, error) {
	return models.WeekSummary{Week: week, Season: season, TotalGames: 4, AnalyzedGames: 3, AvgConfidence: 71.67}, nil
}

func (f *fakeService) GetAllTeams(context.Context) ([]models.Team, error) {
	return []models.Team{{ID: "KC", Name: "Kansas City Chiefs"}}, nil
}

func (f *fakeService) GetAccuracy(_ context.Context, season int) (models.Accuracy, error) {
	return models.Accuracy{Season: season, CompletedGames: 3, Correct: 2, Accuracy: 0.67}, nil
}

func serve(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func TestGetGames_FiltersAndDefaults(t *testing.T) {
	svc := &fakeService{}
	router := NewRouter(NewHandler(svc, nil), RouterConfig{})

	rec, body := serve(t, router, http.MethodGet, "/api/games?highProbability=true&divisional=1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, float64(6), body["week"], "Week defaults to the current one")
	assert.Equal(t, float64(2024), body["season"])
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, models.Filters{HighProbability: true, Divisional: true}, svc.filters)
}

func TestGetGames_RejectsBadWeek(t *testing.T) {
	router := NewRouter(NewHandler(&fakeService{}, nil), RouterConfig{})

	for _, target := range []string{"/api/games?week=19", "/api/games?week=abc", "/api/games?season=-1&week=3"} {
		rec, body := serve(t, router, http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, float64(http.StatusBadRequest), body["code"])
	}
}

func TestGetGames_StoreError(t *testing.T) {
	router := NewRouter(NewHandler(&fakeService{gamesErr: errors.New("connection refused")}, nil), RouterConfig{})

	rec, body := serve(t, router, http.MethodGet, "/api/games?week=3&season=2024")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "failed to retrieve games", body["message"])
}

func TestRefresh(t *testing.T) {
	svc := &fakeService{}
	router := NewRouter(NewHandler(svc, nil), RouterConfig{})

	rec, body := serve(t, router, http.MethodPost, "/api/refresh?week=9&season=2023")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [2]int{2023, 9}, svc.refreshed)
	assert.Equal(t, float64(5), body["gamesUpdated"])
	assert.Equal(t, true, body["synthetic"])

	req := httptest.NewRequest(http.MethodGet, "/api/refresh", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	assert.Equal(t, http.StatusMethodNotAllowed, res.Code)
}

func TestSummaryTeamsAccuracy(t *testing.T) {
	router := NewRouter(NewHandler(&fakeService{}, nil), RouterConfig{})

	_, summary := serve(t, router, http.MethodGet, "/api/summary?week=5&season=2024")
	assert.Equal(t, float64(4), summary["totalGames"])
	assert.Equal(t, 71.67, summary["avgConfidence"])

	_, teams := serve(t, router, http.MethodGet, "/api/teams")
	assert.Equal(t, float64(1), teams["count"])

	_, acc := serve(t, router, http.MethodGet, "/api/accuracy")
	assert.Equal(t, float64(2024), acc["season"])
	assert.Equal(t, 0.67, acc["accuracy"])
}

func TestHealthCheck(t *testing.T) {
	healthy := NewRouter(NewHandler(&fakeService{}, nil), RouterConfig{})
	rec, body := serve(t, healthy, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])

	down := NewRouter(NewHandler(&fakeService{}, func(context.Context) error { return errors.New("pool closed") }), RouterConfig{})
	rec, _ = serve(t, down, http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := NewRouter(NewHandler(&fakeService{}, nil), RouterConfig{CORSOrigins: []string{"https://dashboard.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/games", nil)
	req.Header.Set("Origin", "https://dashboard.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://dashboard.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
