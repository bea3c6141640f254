package logic

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"golang.org/x/sync/errgroup"

	"github.com/pitchside/prediction-api/internal/models"
)

type teamStatsService struct {
	ch driver.Conn
	pg PgPool
}

func NewTeamStatsService(ch driver.Conn, pg PgPool) TeamStatsService {
	return &teamStatsService{ch: ch, pg: pg}
}

// GetTeamAverages returns a team's rolling goals-for / goals-against
// averages over its last N finished matches, home and away combined.
func (s *teamStatsService) GetTeamAverages(ctx context.Context, teamID string, lastN int) (*models.TeamAverages, error) {
	if lastN <= 0 {
		lastN = 10
	}

	avgs := &models.TeamAverages{TeamID: teamID}

	// One pass over the team's recent results. A home row contributes
	// (home_goals for, away_goals against); an away row the reverse.
	query := `
		SELECT
			count() as matches,
			avg(if(home_team_id = ?, home_goals, away_goals)) as goals_for_avg,
			avg(if(home_team_id = ?, away_goals, home_goals)) as goals_against_avg
		FROM (
			SELECT home_team_id, home_goals, away_goals
			FROM match_results
			WHERE home_team_id = ? OR away_team_id = ?
			ORDER BY timestamp DESC
			LIMIT ?
		)
	`
	var matches uint64
	err := s.ch.QueryRow(ctx, query, teamID, teamID, teamID, teamID, lastN).Scan(
		&matches, &avgs.GoalsForAvg, &avgs.GoalsAgainstAvg,
	)
	if err != nil {
		return nil, fmt.Errorf("team averages query failed: %w", err)
	}
	avgs.Matches = int(matches)

	if avgs.Matches == 0 {
		return nil, fmt.Errorf("no results recorded for team %s", teamID)
	}

	return avgs, nil
}

// GetLeagueBaseline returns the league-wide average goals per match and the
// home-win share over a lookback window.
func (s *teamStatsService) GetLeagueBaseline(ctx context.Context, leagueID string, days int) (*models.LeagueBaseline, error) {
	if days <= 0 {
		days = 365
	}

	baseline := &models.LeagueBaseline{LeagueID: leagueID}

	query := `
		SELECT
			count() as matches,
			avg(home_goals + away_goals) as avg_goals,
			countIf(home_goals > away_goals) / count() as home_win_share
		FROM match_results
		WHERE league_id = ?
		  AND timestamp >= now() - INTERVAL ? DAY
	`
	var matches uint64
	err := s.ch.QueryRow(ctx, query, leagueID, days).Scan(
		&matches, &baseline.AvgGoals, &baseline.HomeWinShare,
	)
	if err != nil {
		return nil, fmt.Errorf("league baseline query failed: %w", err)
	}
	baseline.Matches = int(matches)

	if baseline.Matches == 0 {
		return nil, fmt.Errorf("no results recorded for league %s", leagueID)
	}

	return baseline, nil
}

// GetFixture resolves a match id to its two teams and league from Postgres.
func (s *teamStatsService) GetFixture(ctx context.Context, matchID string) (*models.Fixture, error) {
	f := &models.Fixture{MatchID: matchID}

	err := s.pg.QueryRow(ctx, `
		SELECT m.league_id, m.home_team_id, m.away_team_id, ht.name, at.name
		FROM matches m
		JOIN teams ht ON ht.id = m.home_team_id
		JOIN teams at ON at.id = m.away_team_id
		WHERE m.id = $1
	`, matchID).Scan(&f.LeagueID, &f.HomeTeamID, &f.AwayTeamID, &f.HomeTeam, &f.AwayTeam)
	if err != nil {
		return nil, fmt.Errorf("fixture lookup failed: %w", err)
	}

	return f, nil
}

// FixtureInputs bundles everything the prediction path needs for one match.
type FixtureInputs struct {
	Fixture  *models.Fixture
	Home     *models.TeamAverages
	Away     *models.TeamAverages
	Baseline *models.LeagueBaseline
}

// GatherFixtureInputs resolves the fixture, then fetches both teams'
// averages and the league baseline concurrently.
func GatherFixtureInputs(ctx context.Context, stats TeamStatsService, matchID string, lastN, baselineDays int) (*FixtureInputs, error) {
	fixture, err := stats.GetFixture(ctx, matchID)
	if err != nil {
		return nil, err
	}

	in := &FixtureInputs{Fixture: fixture}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		home, err := stats.GetTeamAverages(ctx, fixture.HomeTeamID, lastN)
		if err != nil {
			return fmt.Errorf("home team stats: %w", err)
		}
		in.Home = home
		return nil
	})

	g.Go(func() error {
		away, err := stats.GetTeamAverages(ctx, fixture.AwayTeamID, lastN)
		if err != nil {
			return fmt.Errorf("away team stats: %w", err)
		}
		in.Away = away
		return nil
	})

	g.Go(func() error {
		baseline, err := stats.GetLeagueBaseline(ctx, fixture.LeagueID, baselineDays)
		if err != nil {
			return fmt.Errorf("league baseline: %w", err)
		}
		in.Baseline = baseline
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return in, nil
}
