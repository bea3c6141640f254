package models

import (
	"strings"
	"time"
)

// ModelWeights are the tunable blend factors of the outcome model.
// Every weight lives in [0, 1].
type ModelWeights struct {
	HomeAdvantage        float64 `json:"home_advantage" validate:"gte=0,lte=1"`
	FormWeight           float64 `json:"form_weight" validate:"gte=0,lte=1"`
	HeadToHeadWeight     float64 `json:"head_to_head_weight" validate:"gte=0,lte=1"`
	LeaguePositionWeight float64 `json:"league_position_weight" validate:"gte=0,lte=1"`
	GoalsForWeight       float64 `json:"goals_for_weight" validate:"gte=0,lte=1"`
	GoalsAgainstWeight   float64 `json:"goals_against_weight" validate:"gte=0,lte=1"`
}

// Thresholds bound the statistics the model will accept and carry the
// confidence cutoff used to label a forecast.
type Thresholds struct {
	MinGoalsForAvg     float64 `json:"min_goals_for_avg" validate:"gte=0"`
	MaxGoalsForAvg     float64 `json:"max_goals_for_avg" validate:"gte=0"`
	MinGoalsAgainstAvg float64 `json:"min_goals_against_avg" validate:"gte=0"`
	MaxGoalsAgainstAvg float64 `json:"max_goals_against_avg" validate:"gte=0"`
	MinLeagueAvgGoals  float64 `json:"min_league_avg_goals" validate:"gte=0"`
	MaxLeagueAvgGoals  float64 `json:"max_league_avg_goals" validate:"gte=0"`
	MinHomeAdvantage   float64 `json:"min_home_advantage" validate:"gte=0"`
	MaxHomeAdvantage   float64 `json:"max_home_advantage" validate:"gte=0"`

	ConfidenceThreshold float64 `json:"probability_confidence_threshold" validate:"gte=0,lte=1"`
}

// FeatureFlags toggle optional model extensions without code changes.
type FeatureFlags struct {
	EnableFormFactor        bool `json:"enable_form_factor"`
	EnableHeadToHead        bool `json:"enable_head_to_head"`
	EnableLeaguePosition    bool `json:"enable_league_position"`
	EnableWeatherAdjustment bool `json:"enable_weather_adjustment"`
	EnableInjuryAdjustment  bool `json:"enable_injury_adjustment"`
	EnableMotivationFactor  bool `json:"enable_motivation_factor"`
	UseWeightedAverages     bool `json:"use_weighted_averages"`
	EnableAdvancedXG        bool `json:"enable_advanced_xg"`
}

// ModelConfiguration is a named, versioned parameter set for the outcome
// model. Version is the sole identity. At most one configuration is active
// at a time; the store enforces that.
type ModelConfiguration struct {
	Version      string       `json:"version" validate:"required"`
	ModelWeights ModelWeights `json:"model_weights"`
	Thresholds   Thresholds   `json:"thresholds"`
	FeatureFlags FeatureFlags `json:"feature_flags"`
	Description  string       `json:"description,omitempty"`
	IsActive     bool         `json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// DefaultModelWeights returns the stock weight set.
func DefaultModelWeights() ModelWeights {
	return ModelWeights{
		HomeAdvantage:        0.3,
		FormWeight:           0.2,
		HeadToHeadWeight:     0.1,
		LeaguePositionWeight: 0.1,
		GoalsForWeight:       0.3,
		GoalsAgainstWeight:   0.3,
	}
}

// DefaultThresholds returns the stock threshold set.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinGoalsForAvg:      0.0,
		MaxGoalsForAvg:      10.0,
		MinGoalsAgainstAvg:  0.0,
		MaxGoalsAgainstAvg:  10.0,
		MinLeagueAvgGoals:   0.5,
		MaxLeagueAvgGoals:   5.0,
		MinHomeAdvantage:    0.0,
		MaxHomeAdvantage:    1.0,
		ConfidenceThreshold: 0.6,
	}
}

// DefaultFeatureFlags returns the stock flag set (all extensions off).
func DefaultFeatureFlags() FeatureFlags {
	return FeatureFlags{}
}

// NormalizeVersion trims the version key. An empty result is invalid.
func NormalizeVersion(v string) string {
	return strings.TrimSpace(v)
}

// ModelConfigurationCreate carries the fields of a create request. Unset
// sub-objects are filled with the defaults above.
type ModelConfigurationCreate struct {
	Version      string        `json:"version" validate:"required"`
	ModelWeights *ModelWeights `json:"model_weights,omitempty"`
	Thresholds   *Thresholds   `json:"thresholds,omitempty"`
	FeatureFlags *FeatureFlags `json:"feature_flags,omitempty"`
	Description  string        `json:"description,omitempty"`
	IsActive     bool          `json:"is_active"`
}

// ModelConfigurationPatch is a partial update. Nil means "leave unchanged";
// a non-nil pointer overwrites the whole sub-object or field. This holds for
// IsActive too: *bool distinguishes "deactivate" (false) from "untouched"
// (nil), which a plain bool cannot express.
type ModelConfigurationPatch struct {
	Version      *string       `json:"version,omitempty"`
	ModelWeights *ModelWeights `json:"model_weights,omitempty"`
	Thresholds   *Thresholds   `json:"thresholds,omitempty"`
	FeatureFlags *FeatureFlags `json:"feature_flags,omitempty"`
	Description  *string       `json:"description,omitempty"`
	IsActive     *bool         `json:"is_active,omitempty"`
}
