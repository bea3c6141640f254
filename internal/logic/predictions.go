package logic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pitchside/prediction-api/internal/models"
	"github.com/pitchside/prediction-api/internal/probability"
)

var (
	forecastsComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prediction_forecasts_computed_total",
		Help: "Match forecasts computed, by source",
	}, []string{"source"})

	forecastCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prediction_forecast_cache_hits_total",
		Help: "Forecasts served from the Redis cache",
	})

	forecastDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "prediction_forecast_duration_seconds",
		Help:    "Time to compute one match forecast",
		Buckets: prometheus.DefBuckets,
	})
)

// ConfigSource supplies the active model configuration. Satisfied by
// *modelconfig.Store.
type ConfigSource interface {
	GetActive() *models.ModelConfiguration
}

// ForecastCache is the slice of the Redis API the prediction service uses.
// Satisfied by *redis.Client; nil disables caching.
type ForecastCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

type predictionService struct {
	stats        TeamStatsService
	configs      ConfigSource
	cache        ForecastCache
	cacheTTL     time.Duration
	maxGoals     int
	lastN        int
	baselineDays int
	logger       *zap.SugaredLogger
}

// PredictionConfig bundles the prediction service dependencies.
type PredictionConfig struct {
	Stats        TeamStatsService
	Configs      ConfigSource
	Cache        ForecastCache
	CacheTTL     time.Duration
	MaxGoals     int
	LastN        int
	BaselineDays int
	Logger       *zap.Logger
}

func NewPredictionService(cfg PredictionConfig) PredictionService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.MaxGoals <= 0 {
		cfg.MaxGoals = probability.DefaultMaxGoals
	}
	if cfg.LastN <= 0 {
		cfg.LastN = 10
	}
	if cfg.BaselineDays <= 0 {
		cfg.BaselineDays = 365
	}
	return &predictionService{
		stats:        cfg.Stats,
		configs:      cfg.Configs,
		cache:        cfg.Cache,
		cacheTTL:     cfg.CacheTTL,
		maxGoals:     cfg.MaxGoals,
		lastN:        cfg.LastN,
		baselineDays: cfg.BaselineDays,
		logger:       cfg.Logger.Sugar(),
	}
}

// ForecastMatch resolves the fixture, aggregates both teams' rolling
// averages and the league baseline, then evaluates the outcome model under
// the active configuration. Results are cached in Redis until the TTL
// expires or a new result for either team invalidates them.
func (s *predictionService) ForecastMatch(ctx context.Context, matchID string) (*models.MatchForecast, error) {
	cacheKey := "forecast:match:" + matchID

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached models.MatchForecast
			if json.Unmarshal(data, &cached) == nil {
				forecastCacheHits.Inc()
				return &cached, nil
			}
		}
	}

	start := time.Now()

	in, err := GatherFixtureInputs(ctx, s.stats, matchID, s.lastN, s.baselineDays)
	if err != nil {
		return nil, err
	}

	cfg := s.configs.GetActive()
	if cfg == nil {
		return nil, fmt.Errorf("no active model configuration")
	}

	leagueAvg := clamp(in.Baseline.AvgGoals, cfg.Thresholds.MinLeagueAvgGoals, cfg.Thresholds.MaxLeagueAvgGoals)

	forecast, err := s.evaluate(cfg,
		in.Home.GoalsForAvg, in.Home.GoalsAgainstAvg,
		in.Away.GoalsForAvg, in.Away.GoalsAgainstAvg,
		leagueAvg, cfg.ModelWeights.HomeAdvantage, s.maxGoals)
	if err != nil {
		return nil, err
	}

	forecast.MatchID = matchID
	forecast.HomeTeam = in.Fixture.HomeTeam
	forecast.AwayTeam = in.Fixture.AwayTeam

	forecastDuration.Observe(time.Since(start).Seconds())
	forecastsComputed.WithLabelValues("match").Inc()

	if s.cache != nil {
		if data, err := json.Marshal(forecast); err == nil {
			s.cache.Set(ctx, cacheKey, data, s.cacheTTL)
			// Index the key per team so a new result can evict it.
			for _, teamID := range []string{in.Fixture.HomeTeamID, in.Fixture.AwayTeamID} {
				idx := "forecast:team:" + teamID
				s.cache.SAdd(ctx, idx, cacheKey)
				s.cache.Expire(ctx, idx, s.cacheTTL)
			}
		}
	}

	return forecast, nil
}

// ForecastFromStats evaluates the model directly from caller-supplied team
// averages, using the active configuration for anything the request leaves
// unset. Nothing is cached: the inputs are not tied to a stored fixture.
func (s *predictionService) ForecastFromStats(ctx context.Context, req models.PredictFromStatsRequest) (*models.MatchForecast, error) {
	cfg := s.configs.GetActive()
	if cfg == nil {
		return nil, fmt.Errorf("no active model configuration")
	}

	leagueAvg := probability.DefaultLeagueAvgGoals
	if req.LeagueAvgGoals != nil {
		leagueAvg = *req.LeagueAvgGoals
	}
	homeAdv := cfg.ModelWeights.HomeAdvantage
	if req.HomeAdvantage != nil {
		homeAdv = *req.HomeAdvantage
	}
	maxGoals := s.maxGoals
	if req.MaxGoals != nil {
		maxGoals = *req.MaxGoals
	}

	start := time.Now()
	forecast, err := s.evaluate(cfg,
		req.HomeGoalsForAvg, req.HomeGoalsAgainstAvg,
		req.AwayGoalsForAvg, req.AwayGoalsAgainstAvg,
		leagueAvg, homeAdv, maxGoals)
	if err != nil {
		return nil, err
	}

	forecastDuration.Observe(time.Since(start).Seconds())
	forecastsComputed.WithLabelValues("stats").Inc()
	return forecast, nil
}

// InvalidateTeamForecasts drops every cached forecast involving the given
// teams. Called by the ingest path when a new result lands.
func (s *predictionService) InvalidateTeamForecasts(ctx context.Context, teamIDs ...string) {
	if s.cache == nil {
		return
	}

	for _, teamID := range teamIDs {
		idx := "forecast:team:" + teamID
		keys, err := s.cache.SMembers(ctx, idx).Result()
		if err != nil {
			if err != redis.Nil {
				s.logger.Warnw("Failed to read forecast index", "team", teamID, "error", err)
			}
			continue
		}
		if len(keys) > 0 {
			s.cache.Del(ctx, keys...)
		}
		s.cache.Del(ctx, idx)
	}
}

// evaluate runs the outcome model once and assembles the forecast.
func (s *predictionService) evaluate(cfg *models.ModelConfiguration, homeFor, homeAgainst, awayFor, awayAgainst, leagueAvg, homeAdv float64, maxGoals int) (*models.MatchForecast, error) {
	xg, probs, err := probability.FromStats(homeFor, homeAgainst, awayFor, awayAgainst, leagueAvg, homeAdv, maxGoals)
	if err != nil {
		return nil, err
	}

	likely, err := probability.MostLikelyScoreline(xg.HomeXG, xg.AwayXG, maxGoals)
	if err != nil {
		return nil, err
	}

	confidence := "low"
	if top := max3(probs.HomeWin, probs.Draw, probs.AwayWin); top >= cfg.Thresholds.ConfidenceThreshold {
		confidence = "high"
	}

	return &models.MatchForecast{
		ForecastID:    uuid.NewString(),
		ConfigVersion: cfg.Version,
		ExpectedGoals: xg,
		Probabilities: *probs,
		LikelyScore:   likely,
		Confidence:    confidence,
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
