package logic

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pitchside/prediction-api/internal/models"
)

// PgPool defines the interface for the PostgreSQL connection pool
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// TeamStatsService aggregates rolling goal averages from historical results
type TeamStatsService interface {
	GetTeamAverages(ctx context.Context, teamID string, lastN int) (*models.TeamAverages, error)
	GetLeagueBaseline(ctx context.Context, leagueID string, days int) (*models.LeagueBaseline, error)
	GetFixture(ctx context.Context, matchID string) (*models.Fixture, error)
}

// PredictionService produces outcome forecasts for fixtures
type PredictionService interface {
	ForecastMatch(ctx context.Context, matchID string) (*models.MatchForecast, error)
	ForecastFromStats(ctx context.Context, req models.PredictFromStatsRequest) (*models.MatchForecast, error)
	InvalidateTeamForecasts(ctx context.Context, teamIDs ...string)
}
