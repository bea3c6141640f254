package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pitchside/prediction-api/internal/models"
)

// IngestResults handles POST /api/v1/ingest/results
// @Summary Ingest Match Results
// @Description Accepts a JSON array of finished match results for batching
// @Tags Ingestion
// @Accept json
// @Produce json
// @Param body body []models.MatchResult true "Results"
// @Success 202 {object} models.IngestResultsResponse "Accepted"
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /ingest/results [post]
func (h *Handler) IngestResults(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	defer r.Body.Close()

	var results []models.MatchResult
	if err := json.NewDecoder(r.Body).Decode(&results); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if len(results) == 0 {
		h.errorResponse(w, http.StatusBadRequest, "No results supplied")
		return
	}

	resp := models.IngestResultsResponse{}
	for i := range results {
		result := results[i]

		if err := h.validator.Struct(&result); err != nil {
			h.logger.Warnw("Rejecting malformed result", "error", err, "match_id", result.MatchID)
			resp.Rejected++
			continue
		}

		if h.pool.Enqueue(&result) {
			resp.Accepted++
		} else {
			resp.Rejected++
		}
	}

	if resp.Accepted == 0 {
		h.errorResponse(w, http.StatusBadRequest, "No valid results in batch")
		return
	}

	h.jsonResponse(w, http.StatusAccepted, resp)
}
