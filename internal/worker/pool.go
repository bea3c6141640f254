// Package worker implements the buffered worker pool for async result
// ingestion. This decouples HTTP request handling from database writes,
// providing:
// - Backpressure handling via a bounded queue
// - Batch inserts for efficient ClickHouse writes
// - Graceful shutdown with flush guarantees

package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/pitchside/prediction-api/internal/models"
)

// Prometheus metrics
var (
	resultsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prediction_results_ingested_total",
		Help: "Total number of match results accepted for batching",
	})

	resultsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prediction_results_processed_total",
		Help: "Total number of match results written to ClickHouse",
	})

	resultsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prediction_results_failed_total",
		Help: "Total number of match results that failed processing",
	})

	resultsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prediction_results_dropped_total",
		Help: "Total number of match results dropped during shutdown",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "prediction_worker_queue_depth",
		Help: "Current depth of the ingest queue",
	})

	batchInsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "prediction_batch_insert_duration_seconds",
		Help:    "Duration of batch inserts to ClickHouse",
		Buckets: prometheus.DefBuckets,
	})
)

// Job represents one match result queued for persistence
type Job struct {
	Result    *models.MatchResult
	RawJSON   string
	Timestamp time.Time
}

// ForecastInvalidator evicts cached forecasts for the named teams.
// Satisfied by logic.PredictionService.
type ForecastInvalidator interface {
	InvalidateTeamForecasts(ctx context.Context, teamIDs ...string)
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	ClickHouse    driver.Conn
	Invalidator   ForecastInvalidator
	Logger        *zap.Logger
}

// Pool manages the workers that drain the result queue in batches
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go p.reportQueueDepth()

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop gracefully shuts down the worker pool. The queue is closed before
// the context is canceled so workers drain every buffered result: a closed
// channel still delivers its buffered values before reporting closed.
func (p *Pool) Stop() {
	p.logger.Info("Stopping worker pool...")
	close(p.jobQueue)
	p.wg.Wait()
	p.cancel()
	p.logger.Info("Worker pool stopped")
}

// Enqueue adds a result to the queue. Returns false when the pool has been
// stopped and the result was dropped.
func (p *Pool) Enqueue(result *models.MatchResult) bool {
	rawJSON, _ := json.Marshal(result)

	job := Job{
		Result:    result,
		RawJSON:   string(rawJSON),
		Timestamp: time.Now(),
	}

	// Protect against sending on closed channel
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue result (pool stopped)", "error", r)
		}
	}()

	select {
	case p.jobQueue <- job:
		resultsIngested.Inc()
		return true
	case <-p.ctx.Done():
		p.logger.Warn("Worker pool context canceled, dropping result")
		resultsDropped.Inc()
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// worker drains jobs from the queue in batches
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]Job, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		start := time.Now()
		if err := p.processBatch(batch); err != nil {
			p.logger.Errorw("Batch processing failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
			resultsFailed.Add(float64(len(batch)))
		} else {
			resultsProcessed.Add(float64(len(batch)))
		}
		batchInsertDuration.Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				// Channel closed, flush remaining
				flush()
				return
			}

			batch = append(batch, job)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-p.ctx.Done():
			flush()
			return
		}
	}
}

// processBatch writes a batch of results to ClickHouse, then evicts the
// cached forecasts of every team that appears in it.
func (p *Pool) processBatch(batch []Job) error {
	if len(batch) == 0 {
		return nil
	}

	ctx := context.Background()

	chBatch, err := p.config.ClickHouse.PrepareBatch(ctx, `
		INSERT INTO match_results (
			timestamp, match_id, league_id, home_team_id, away_team_id,
			home_goals, away_goals, season, raw_json
		)
	`)
	if err != nil {
		return err
	}

	teams := make(map[string]struct{})
	for _, job := range batch {
		row := convertToClickHouseResult(job.Result, job.RawJSON, job.Timestamp)

		if err := chBatch.Append(
			row.Timestamp,
			row.MatchID,
			row.LeagueID,
			row.HomeTeamID,
			row.AwayTeamID,
			row.HomeGoals,
			row.AwayGoals,
			row.Season,
			row.RawJSON,
		); err != nil {
			p.logger.Warnw("Failed to append result to batch", "error", err, "match_id", job.Result.MatchID)
			continue
		}

		teams[job.Result.HomeTeamID] = struct{}{}
		teams[job.Result.AwayTeamID] = struct{}{}
	}

	if err := chBatch.Send(); err != nil {
		p.logger.Errorw("Failed to send batch to ClickHouse", "error", err, "batchSize", len(batch))
		return err
	}

	// Evict stale forecasts AFTER the rows are durable, so a recomputed
	// forecast always sees the new results.
	if p.config.Invalidator != nil && len(teams) > 0 {
		teamIDs := make([]string, 0, len(teams))
		for id := range teams {
			teamIDs = append(teamIDs, id)
		}
		p.config.Invalidator.InvalidateTeamForecasts(ctx, teamIDs...)
	}

	return nil
}

// minValidUnixTimestamp is 2020-01-01 00:00:00 UTC in seconds. Results with
// an earlier or missing played_at get the ingestion wall-clock time instead.
const minValidUnixTimestamp = 1577836800

// convertToClickHouseResult normalizes a raw result for ClickHouse.
// receivedAt is the wall-clock time when the result was enqueued, used as
// fallback when played_at is absent or implausible.
func convertToClickHouseResult(result *models.MatchResult, rawJSON string, receivedAt time.Time) *models.ClickHouseResult {
	var ts time.Time
	if result.PlayedAt >= minValidUnixTimestamp {
		sec := int64(result.PlayedAt)
		nsec := int64((result.PlayedAt - float64(sec)) * 1e9)
		ts = time.Unix(sec, nsec)
	} else {
		ts = receivedAt
	}

	return &models.ClickHouseResult{
		Timestamp:  ts,
		MatchID:    result.MatchID,
		LeagueID:   result.LeagueID,
		HomeTeamID: result.HomeTeamID,
		AwayTeamID: result.AwayTeamID,
		HomeGoals:  uint8(result.HomeGoals),
		AwayGoals:  uint8(result.AwayGoals),
		Season:     result.Season,
		RawJSON:    rawJSON,
	}
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}
