package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pitchside/prediction-api/internal/modelconfig"
	"github.com/pitchside/prediction-api/internal/models"
	"github.com/pitchside/prediction-api/internal/probability"
)

// ListModelConfigs returns every stored model configuration
// @Summary List Model Configurations
// @Tags Configuration
// @Produce json
// @Success 200 {array} models.ModelConfiguration
// @Router /config/models [get]
func (h *Handler) ListModelConfigs(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, h.configs.ListAll())
}

// GetActiveModelConfig returns the active model configuration
// @Summary Get Active Configuration
// @Tags Configuration
// @Produce json
// @Success 200 {object} models.ModelConfiguration
// @Router /config/models/active [get]
func (h *Handler) GetActiveModelConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.configs.GetActive()
	if cfg == nil {
		h.errorResponse(w, http.StatusNotFound, "No active configuration")
		return
	}
	h.jsonResponse(w, http.StatusOK, cfg)
}

// GetModelConfig returns one configuration by version
// @Summary Get Configuration By Version
// @Tags Configuration
// @Produce json
// @Param version path string true "Configuration version"
// @Success 200 {object} models.ModelConfiguration
// @Failure 404 {object} map[string]string "Not Found"
// @Router /config/models/{version} [get]
func (h *Handler) GetModelConfig(w http.ResponseWriter, r *http.Request) {
	version := chi.URLParam(r, "version")
	cfg := h.configs.GetByVersion(version)
	if cfg == nil {
		h.errorResponse(w, http.StatusNotFound, "Configuration not found")
		return
	}
	h.jsonResponse(w, http.StatusOK, cfg)
}

// CreateModelConfig stores a new configuration version
// @Summary Create Configuration
// @Tags Configuration
// @Accept json
// @Produce json
// @Param body body models.ModelConfigurationCreate true "Configuration"
// @Success 201 {object} models.ModelConfiguration
// @Failure 409 {object} map[string]string "Version exists"
// @Router /config/models [post]
func (h *Handler) CreateModelConfig(w http.ResponseWriter, r *http.Request) {
	var req models.ModelConfigurationCreate
	if !h.decodeJSON(w, r, &req) {
		return
	}

	cfg, err := h.configs.Create(req)
	if err != nil {
		h.writeConfigError(w, err, req.Version)
		return
	}

	h.jsonResponse(w, http.StatusCreated, cfg)
}

// UpdateModelConfig applies a partial patch to a configuration
// @Summary Update Configuration
// @Tags Configuration
// @Accept json
// @Produce json
// @Param version path string true "Configuration version"
// @Param body body models.ModelConfigurationPatch true "Patch; absent fields stay unchanged"
// @Success 200 {object} models.ModelConfiguration
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 409 {object} map[string]string "Target version exists"
// @Router /config/models/{version} [put]
func (h *Handler) UpdateModelConfig(w http.ResponseWriter, r *http.Request) {
	version := chi.URLParam(r, "version")

	var patch models.ModelConfigurationPatch
	if !h.decodeJSON(w, r, &patch) {
		return
	}

	cfg, err := h.configs.Update(version, patch)
	if err != nil {
		h.writeConfigError(w, err, version)
		return
	}

	h.jsonResponse(w, http.StatusOK, cfg)
}

// DeleteModelConfig removes a configuration version
// @Summary Delete Configuration
// @Tags Configuration
// @Produce json
// @Param version path string true "Configuration version"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 409 {object} map[string]string "Last configuration"
// @Router /config/models/{version} [delete]
func (h *Handler) DeleteModelConfig(w http.ResponseWriter, r *http.Request) {
	version := chi.URLParam(r, "version")

	deleted, err := h.configs.Delete(version)
	if err != nil {
		h.writeConfigError(w, err, version)
		return
	}
	if !deleted {
		h.errorResponse(w, http.StatusNotFound, "Configuration not found")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ActivateModelConfig makes a configuration the single active one
// @Summary Activate Configuration
// @Tags Configuration
// @Produce json
// @Param version path string true "Configuration version"
// @Success 200 {object} models.ModelConfiguration
// @Failure 404 {object} map[string]string "Not Found"
// @Router /config/models/{version}/activate [post]
func (h *Handler) ActivateModelConfig(w http.ResponseWriter, r *http.Request) {
	version := chi.URLParam(r, "version")

	cfg, err := h.configs.Activate(version)
	if err != nil {
		h.writeConfigError(w, err, version)
		return
	}

	h.logger.Infow("Model configuration activated via API", "version", version)
	h.jsonResponse(w, http.StatusOK, cfg)
}

// ValidateModelConfig reports every consistency problem in the posted
// configuration without storing anything
// @Summary Validate Configuration
// @Tags Configuration
// @Accept json
// @Produce json
// @Param body body models.ModelConfiguration true "Configuration to check"
// @Success 200 {object} map[string]interface{} "valid flag plus error list"
// @Router /config/models/validate [post]
func (h *Handler) ValidateModelConfig(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	defer r.Body.Close()

	// Decode without the struct validator: the whole point of this
	// endpoint is to report out-of-range values, not reject them.
	var cfg models.ModelConfiguration
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	errs := modelconfig.Validate(&cfg)
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"valid":  len(errs) == 0,
		"errors": errs,
	})
}

// writeConfigError maps store error kinds onto HTTP statuses.
func (h *Handler) writeConfigError(w http.ResponseWriter, err error, version string) {
	switch {
	case errors.Is(err, modelconfig.ErrNotFound):
		h.errorResponse(w, http.StatusNotFound, "Configuration not found")
	case errors.Is(err, modelconfig.ErrConflict):
		h.errorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, probability.ErrInvalidArgument):
		h.errorResponse(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Errorw("Configuration store failure", "error", err, "version", version)
		h.errorResponse(w, http.StatusInternalServerError, "Configuration store failure")
	}
}
