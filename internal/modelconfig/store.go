// Package modelconfig manages named, versioned parameter sets for the
// outcome model. The store keeps every configuration in memory, guards all
// access with a single RWMutex, and writes the whole collection through to a
// JSON document inside the same critical section, so a reader immediately
// after a completed mutation always sees durable state consistent with
// memory. Exactly one configuration is active at any time.
package modelconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/pitchside/prediction-api/internal/models"
	"github.com/pitchside/prediction-api/internal/probability"
)

// DefaultVersion is the version key of the bootstrap configuration created
// on first store access.
const DefaultVersion = "1.0.0"

var (
	configMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prediction_config_mutations_total",
		Help: "Model configuration mutations by operation",
	}, []string{"operation"})

	configsStored = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "prediction_configs_stored",
		Help: "Number of model configurations currently stored",
	})
)

// document is the persisted JSON layout: a metadata header plus the keyed
// configuration records. Kept human-editable; outside callers still go
// through the store during normal operation.
type document struct {
	Metadata struct {
		LastUpdated         time.Time `json:"last_updated"`
		TotalConfigurations int       `json:"total_configurations"`
	} `json:"metadata"`
	Configurations map[string]*models.ModelConfiguration `json:"configurations"`
}

// Store holds the versioned model configurations. Construct with New and
// inject; it is not a package singleton.
type Store struct {
	mu      sync.RWMutex
	path    string
	configs map[string]*models.ModelConfiguration
	logger  *zap.SugaredLogger
}

// New loads the store from the JSON document at path, creating the file and
// a default active configuration when it does not exist or holds no records.
func New(path string, logger *zap.Logger) (*Store, error) {
	s := &Store{
		path:    path,
		configs: make(map[string]*models.ModelConfiguration),
		logger:  logger.Sugar(),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	if len(s.configs) == 0 {
		now := time.Now().UTC()
		def := &models.ModelConfiguration{
			Version:      DefaultVersion,
			ModelWeights: models.DefaultModelWeights(),
			Thresholds:   models.DefaultThresholds(),
			FeatureFlags: models.DefaultFeatureFlags(),
			Description:  "Default outcome model configuration",
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		s.configs[def.Version] = def
		if err := s.persistLocked(); err != nil {
			return nil, err
		}
		s.logger.Infow("Created default model configuration", "version", def.Version)
	}

	configsStored.Set(float64(len(s.configs)))
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse config file %s: %w", s.path, err)
	}

	for version, cfg := range doc.Configurations {
		v := models.NormalizeVersion(version)
		if v == "" || cfg == nil {
			s.logger.Warnw("Skipping malformed configuration record", "version", version)
			continue
		}
		cfg.Version = v
		s.configs[v] = cfg
	}

	s.logger.Infow("Loaded model configurations", "count", len(s.configs), "path", s.path)
	return nil
}

// persistLocked writes the full collection to disk. Callers must hold the
// write lock. The write goes to a temp file first and renames into place so
// a crash mid-write cannot truncate the document.
func (s *Store) persistLocked() error {
	var doc document
	doc.Metadata.LastUpdated = time.Now().UTC()
	doc.Metadata.TotalConfigurations = len(s.configs)
	doc.Configurations = s.configs

	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal configurations: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	configsStored.Set(float64(len(s.configs)))
	return nil
}

// GetActive returns a copy of the active configuration. When no record is
// flagged active (a recoverable inconsistency after hand edits), it falls
// back to the greatest version string. Returns nil only for an empty store,
// which New prevents.
func (s *Store) GetActive() *models.ModelConfiguration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, cfg := range s.configs {
		if cfg.IsActive {
			return copyConfig(cfg)
		}
	}

	var latest *models.ModelConfiguration
	for _, cfg := range s.configs {
		if latest == nil || cfg.Version > latest.Version {
			latest = cfg
		}
	}
	if latest == nil {
		return nil
	}
	return copyConfig(latest)
}

// GetByVersion returns a copy of the configuration with the given version,
// or nil when absent.
func (s *Store) GetByVersion(version string) *models.ModelConfiguration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[models.NormalizeVersion(version)]
	if !ok {
		return nil
	}
	return copyConfig(cfg)
}

// ListAll returns copies of every stored configuration.
func (s *Store) ListAll() []*models.ModelConfiguration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.ModelConfiguration, 0, len(s.configs))
	for _, cfg := range s.configs {
		out = append(out, copyConfig(cfg))
	}
	return out
}

// Create stores a new configuration. Unset sub-objects take the documented
// defaults. Requesting is_active deactivates every other record in the same
// critical section. Duplicate versions fail with ErrConflict.
func (s *Store) Create(req models.ModelConfigurationCreate) (*models.ModelConfiguration, error) {
	version := models.NormalizeVersion(req.Version)
	if version == "" {
		return nil, fmt.Errorf("%w: version must be a non-empty string", probability.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.configs[version]; exists {
		return nil, fmt.Errorf("%w: version %q already exists", ErrConflict, version)
	}

	now := time.Now().UTC()
	cfg := &models.ModelConfiguration{
		Version:      version,
		ModelWeights: models.DefaultModelWeights(),
		Thresholds:   models.DefaultThresholds(),
		FeatureFlags: models.DefaultFeatureFlags(),
		Description:  req.Description,
		IsActive:     req.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.ModelWeights != nil {
		cfg.ModelWeights = *req.ModelWeights
	}
	if req.Thresholds != nil {
		cfg.Thresholds = *req.Thresholds
	}
	if req.FeatureFlags != nil {
		cfg.FeatureFlags = *req.FeatureFlags
	}

	if cfg.IsActive {
		for _, other := range s.configs {
			other.IsActive = false
		}
	}

	s.configs[version] = cfg
	if err := s.persistLocked(); err != nil {
		delete(s.configs, version)
		return nil, err
	}

	configMutations.WithLabelValues("create").Inc()
	s.logger.Infow("Created model configuration", "version", version, "active", cfg.IsActive)
	return copyConfig(cfg), nil
}

// Update applies a partial patch to an existing configuration. Nil patch
// fields leave the current value untouched; non-nil fields overwrite it
// wholesale. A version rename is a re-key under the new version and fails
// with ErrConflict when the target exists. Activating through the patch
// deactivates all other records. UpdatedAt always advances.
func (s *Store) Update(version string, patch models.ModelConfigurationPatch) (*models.ModelConfiguration, error) {
	version = models.NormalizeVersion(version)

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.configs[version]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, version)
	}

	if patch.Version != nil {
		newVersion := models.NormalizeVersion(*patch.Version)
		if newVersion == "" {
			return nil, fmt.Errorf("%w: version must be a non-empty string", probability.ErrInvalidArgument)
		}
		if newVersion != version {
			if _, exists := s.configs[newVersion]; exists {
				return nil, fmt.Errorf("%w: version %q already exists", ErrConflict, newVersion)
			}
			delete(s.configs, version)
			cfg.Version = newVersion
			s.configs[newVersion] = cfg
		}
	}

	if patch.ModelWeights != nil {
		cfg.ModelWeights = *patch.ModelWeights
	}
	if patch.Thresholds != nil {
		cfg.Thresholds = *patch.Thresholds
	}
	if patch.FeatureFlags != nil {
		cfg.FeatureFlags = *patch.FeatureFlags
	}
	if patch.Description != nil {
		cfg.Description = *patch.Description
	}
	if patch.IsActive != nil {
		if *patch.IsActive {
			for _, other := range s.configs {
				if other.Version != cfg.Version {
					other.IsActive = false
				}
			}
		}
		cfg.IsActive = *patch.IsActive
	}

	cfg.UpdatedAt = time.Now().UTC()
	if err := s.persistLocked(); err != nil {
		return nil, err
	}

	configMutations.WithLabelValues("update").Inc()
	s.logger.Infow("Updated model configuration", "version", cfg.Version)
	return copyConfig(cfg), nil
}

// Delete removes a configuration. Returns false when the version is absent.
// Deleting the last remaining configuration fails with ErrConflict: the
// store is never emptied.
func (s *Store) Delete(version string) (bool, error) {
	version = models.NormalizeVersion(version)

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.configs[version]
	if !ok {
		return false, nil
	}
	if len(s.configs) == 1 {
		return false, fmt.Errorf("%w: cannot delete the only configuration", ErrConflict)
	}

	delete(s.configs, version)
	if err := s.persistLocked(); err != nil {
		s.configs[version] = cfg
		return false, err
	}

	configMutations.WithLabelValues("delete").Inc()
	s.logger.Infow("Deleted model configuration", "version", version)
	return true, nil
}

// Activate flips the active flag to the given version, deactivating every
// other record in the same critical section so no reader can observe two
// active configurations or none.
func (s *Store) Activate(version string) (*models.ModelConfiguration, error) {
	version = models.NormalizeVersion(version)

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.configs[version]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, version)
	}

	for _, other := range s.configs {
		other.IsActive = false
	}
	cfg.IsActive = true
	cfg.UpdatedAt = time.Now().UTC()

	if err := s.persistLocked(); err != nil {
		return nil, err
	}

	configMutations.WithLabelValues("activate").Inc()
	s.logger.Infow("Activated model configuration", "version", version)
	return copyConfig(cfg), nil
}

// Validate checks a configuration's internal consistency and returns every
// problem found as a human-readable string, so an admin caller can show all
// of them at once. It never mutates anything and never fails.
func Validate(cfg *models.ModelConfiguration) []string {
	var errs []string

	totalWeight := cfg.ModelWeights.GoalsForWeight + cfg.ModelWeights.GoalsAgainstWeight
	if totalWeight > 1.0 {
		errs = append(errs, fmt.Sprintf("total weight exceeds 1.0: %v", totalWeight))
	}

	th := cfg.Thresholds
	if th.MinGoalsForAvg >= th.MaxGoalsForAvg {
		errs = append(errs, "min_goals_for_avg must be less than max_goals_for_avg")
	}
	if th.MinGoalsAgainstAvg >= th.MaxGoalsAgainstAvg {
		errs = append(errs, "min_goals_against_avg must be less than max_goals_against_avg")
	}
	if th.MinLeagueAvgGoals >= th.MaxLeagueAvgGoals {
		errs = append(errs, "min_league_avg_goals must be less than max_league_avg_goals")
	}
	if th.MinHomeAdvantage >= th.MaxHomeAdvantage {
		errs = append(errs, "min_home_advantage must be less than max_home_advantage")
	}

	return errs
}

// copyConfig returns a value copy so callers can never mutate store state
// through a returned pointer. All fields are value types.
func copyConfig(cfg *models.ModelConfiguration) *models.ModelConfiguration {
	c := *cfg
	return &c
}
