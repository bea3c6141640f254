package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pitchside/prediction-api/internal/models"
	"github.com/pitchside/prediction-api/internal/probability"
)

// GetMatchForecast returns the outcome probability forecast for a fixture
// @Summary Get Match Forecast
// @Tags Predictions
// @Produce json
// @Param matchId path string true "Match ID"
// @Success 200 {object} models.MatchForecast
// @Failure 404 {object} map[string]string "Not Found"
// @Router /predictions/match/{matchId} [get]
func (h *Handler) GetMatchForecast(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchId")
	if matchID == "" {
		h.errorResponse(w, http.StatusBadRequest, "Match ID is required")
		return
	}

	forecast, err := h.prediction.ForecastMatch(r.Context(), matchID)
	if err != nil {
		h.logger.Errorw("Failed to forecast match", "error", err, "matchID", matchID)
		h.errorResponse(w, http.StatusNotFound, "Failed to forecast match")
		return
	}

	h.jsonResponse(w, http.StatusOK, forecast)
}

// GetLikelyScoreline returns the most likely scoreline for a fixture
// @Summary Get Most Likely Scoreline
// @Tags Predictions
// @Produce json
// @Param matchId path string true "Match ID"
// @Param max_goals query int false "Goal cap per side" default(10)
// @Success 200 {object} models.Scoreline
// @Router /predictions/match/{matchId}/scoreline [get]
func (h *Handler) GetLikelyScoreline(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchId")
	if matchID == "" {
		h.errorResponse(w, http.StatusBadRequest, "Match ID is required")
		return
	}

	forecast, err := h.prediction.ForecastMatch(r.Context(), matchID)
	if err != nil {
		h.logger.Errorw("Failed to forecast match", "error", err, "matchID", matchID)
		h.errorResponse(w, http.StatusNotFound, "Failed to forecast match")
		return
	}

	maxGoals := probability.DefaultMaxGoals
	if v := r.URL.Query().Get("max_goals"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxGoals = n
		}
	}

	scoreline, err := probability.MostLikelyScoreline(forecast.ExpectedGoals.HomeXG, forecast.ExpectedGoals.AwayXG, maxGoals)
	if err != nil {
		h.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.jsonResponse(w, http.StatusOK, scoreline)
}

// ForecastFromStats evaluates the outcome model on caller-supplied averages
// @Summary Forecast From Raw Stats
// @Tags Predictions
// @Accept json
// @Produce json
// @Param body body models.PredictFromStatsRequest true "Team averages"
// @Success 200 {object} models.MatchForecast
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 422 {object} map[string]string "Invalid model input"
// @Router /predictions/from-stats [post]
func (h *Handler) ForecastFromStats(w http.ResponseWriter, r *http.Request) {
	var req models.PredictFromStatsRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	forecast, err := h.prediction.ForecastFromStats(r.Context(), req)
	if err != nil {
		if errors.Is(err, probability.ErrInvalidArgument) {
			h.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Errorw("Failed to forecast from stats", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to compute forecast")
		return
	}

	h.jsonResponse(w, http.StatusOK, forecast)
}
