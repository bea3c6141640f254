package handlers

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/pitchside/prediction-api/internal/modelconfig"
	"github.com/pitchside/prediction-api/internal/models"
)

// MockPredictionService implements logic.PredictionService for testing
type MockPredictionService struct {
	ForecastMatchFunc     func(ctx context.Context, matchID string) (*models.MatchForecast, error)
	ForecastFromStatsFunc func(ctx context.Context, req models.PredictFromStatsRequest) (*models.MatchForecast, error)
}

func (m *MockPredictionService) ForecastMatch(ctx context.Context, matchID string) (*models.MatchForecast, error) {
	if m.ForecastMatchFunc != nil {
		return m.ForecastMatchFunc(ctx, matchID)
	}
	return &models.MatchForecast{}, nil
}

func (m *MockPredictionService) ForecastFromStats(ctx context.Context, req models.PredictFromStatsRequest) (*models.MatchForecast, error) {
	if m.ForecastFromStatsFunc != nil {
		return m.ForecastFromStatsFunc(ctx, req)
	}
	return &models.MatchForecast{}, nil
}

func (m *MockPredictionService) InvalidateTeamForecasts(ctx context.Context, teamIDs ...string) {}

// MockIngestQueue implements IngestQueue for testing
type MockIngestQueue struct {
	Enqueued []*models.MatchResult
	Reject   bool
}

func (m *MockIngestQueue) Enqueue(result *models.MatchResult) bool {
	if m.Reject {
		return false
	}
	m.Enqueued = append(m.Enqueued, result)
	return true
}

func (m *MockIngestQueue) QueueDepth() int {
	return len(m.Enqueued)
}

var errNotFound = errors.New("fixture not found")

// newTestHandler wires a handler with mocks and a real file-backed config
// store in a temp dir.
func newTestHandler(t *testing.T, pred *MockPredictionService, queue *MockIngestQueue) *Handler {
	t.Helper()

	store, err := modelconfig.New(filepath.Join(t.TempDir(), "models.json"), zap.NewNop())
	if err != nil {
		t.Fatalf("modelconfig.New() error = %v", err)
	}

	if pred == nil {
		pred = &MockPredictionService{}
	}
	if queue == nil {
		queue = &MockIngestQueue{}
	}

	return New(Config{
		WorkerPool: queue,
		Logger:     zap.NewNop(),
		Prediction: pred,
		Configs:    store,
	})
}
