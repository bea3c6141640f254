package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/pitchside/prediction-api/internal/models"
)

func requestWithMatchID(req *http.Request, matchID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("matchId", matchID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetMatchForecast(t *testing.T) {
	tests := []struct {
		name       string
		matchID    string
		mock       *MockPredictionService
		wantStatus int
		wantBody   string
	}{
		{
			name:    "successful forecast",
			matchID: "match-42",
			mock: &MockPredictionService{
				ForecastMatchFunc: func(ctx context.Context, matchID string) (*models.MatchForecast, error) {
					return &models.MatchForecast{
						MatchID:       matchID,
						ConfigVersion: "1.0.0",
						Probabilities: models.MatchProbabilities{HomeWin: 0.55, Draw: 0.25, AwayWin: 0.20},
					}, nil
				},
			},
			wantStatus: http.StatusOK,
			wantBody:   `"match_id":"match-42"`,
		},
		{
			name:       "missing match id",
			matchID:    "",
			mock:       &MockPredictionService{},
			wantStatus: http.StatusBadRequest,
			wantBody:   "Match ID is required",
		},
		{
			name:    "unknown fixture",
			matchID: "match-404",
			mock: &MockPredictionService{
				ForecastMatchFunc: func(ctx context.Context, matchID string) (*models.MatchForecast, error) {
					return nil, errNotFound
				},
			},
			wantStatus: http.StatusNotFound,
			wantBody:   "Failed to forecast match",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, tt.mock, nil)

			req := httptest.NewRequest("GET", "/api/v1/predictions/match/"+tt.matchID, nil)
			req = requestWithMatchID(req, tt.matchID)
			w := httptest.NewRecorder()

			h.GetMatchForecast(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("GetMatchForecast() status = %d, want %d", w.Code, tt.wantStatus)
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("GetMatchForecast() body = %s, want it to contain %s", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestGetLikelyScoreline(t *testing.T) {
	mock := &MockPredictionService{
		ForecastMatchFunc: func(ctx context.Context, matchID string) (*models.MatchForecast, error) {
			return &models.MatchForecast{
				MatchID:       matchID,
				ExpectedGoals: models.ExpectedGoals{HomeXG: 2.1, AwayXG: 0.8},
			}, nil
		},
	}
	h := newTestHandler(t, mock, nil)

	req := httptest.NewRequest("GET", "/api/v1/predictions/match/match-7/scoreline?max_goals=6", nil)
	req = requestWithMatchID(req, "match-7")
	w := httptest.NewRecorder()

	h.GetLikelyScoreline(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GetLikelyScoreline() status = %d, want %d", w.Code, http.StatusOK)
	}

	var scoreline models.Scoreline
	if err := json.Unmarshal(w.Body.Bytes(), &scoreline); err != nil {
		t.Fatalf("failed to decode scoreline: %v", err)
	}
	if scoreline.HomeGoals != 2 || scoreline.AwayGoals != 0 {
		t.Errorf("GetLikelyScoreline() = %d-%d, want 2-0", scoreline.HomeGoals, scoreline.AwayGoals)
	}
	if scoreline.Probability <= 0 || scoreline.Probability >= 1 {
		t.Errorf("GetLikelyScoreline() probability = %f, want in (0, 1)", scoreline.Probability)
	}
}

func TestForecastFromStats(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "valid request",
			body:       `{"home_goals_for_avg":1.8,"home_goals_against_avg":1.0,"away_goals_for_avg":1.2,"away_goals_against_avg":1.5}`,
			wantStatus: http.StatusOK,
			wantBody:   `"probabilities"`,
		},
		{
			name:       "negative average",
			body:       `{"home_goals_for_avg":-1.8}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "Validation failed",
		},
		{
			name:       "malformed json",
			body:       `{"home_goals_for_avg":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "Invalid JSON",
		},
	}

	mock := &MockPredictionService{
		ForecastFromStatsFunc: func(ctx context.Context, req models.PredictFromStatsRequest) (*models.MatchForecast, error) {
			return &models.MatchForecast{
				ExpectedGoals: models.ExpectedGoals{HomeXG: 1.5, AwayXG: 1.0},
				Probabilities: models.MatchProbabilities{HomeWin: 0.45, Draw: 0.27, AwayWin: 0.28},
			}, nil
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, mock, nil)

			req := httptest.NewRequest("POST", "/api/v1/predictions/from-stats", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			h.ForecastFromStats(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("ForecastFromStats() status = %d, want %d", w.Code, tt.wantStatus)
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("ForecastFromStats() body = %s, want it to contain %s", w.Body.String(), tt.wantBody)
			}
		})
	}
}
