package handlers

import (
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pitchside/prediction-api/internal/logic"
	"github.com/pitchside/prediction-api/internal/modelconfig"
	"github.com/pitchside/prediction-api/internal/models"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// IngestQueue defines the interface for the result ingestion worker pool
type IngestQueue interface {
	Enqueue(result *models.MatchResult) bool
	QueueDepth() int
}

type Config struct {
	WorkerPool IngestQueue
	Postgres   *pgxpool.Pool
	ClickHouse driver.Conn
	Redis      *redis.Client
	Logger     *zap.Logger
	// Services
	TeamStats  logic.TeamStatsService
	Prediction logic.PredictionService
	Configs    *modelconfig.Store
}

type Handler struct {
	pool       IngestQueue
	pg         *pgxpool.Pool
	ch         driver.Conn
	redis      *redis.Client
	logger     *zap.SugaredLogger
	validator  *validator.Validate
	teamStats  logic.TeamStatsService
	prediction logic.PredictionService
	configs    *modelconfig.Store
}

func New(cfg Config) *Handler {
	return &Handler{
		pool:       cfg.WorkerPool,
		pg:         cfg.Postgres,
		ch:         cfg.ClickHouse,
		redis:      cfg.Redis,
		logger:     cfg.Logger.Sugar(),
		validator:  validator.New(),
		teamStats:  cfg.TeamStats,
		prediction: cfg.Prediction,
		configs:    cfg.Configs,
	}
}
