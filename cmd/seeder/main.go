package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"time"
)

// Config
const (
	API_URL     = "http://localhost:8080/api/v1/ingest/results"
	LEAGUE_ID   = "seed-league"
	SEASON      = "2025-26"
	MATCH_COUNT = 40
	TEAM_COUNT  = 8
)

// Result matches models.MatchResult structure
type Result struct {
	MatchID    string  `json:"match_id"`
	LeagueID   string  `json:"league_id"`
	HomeTeamID string  `json:"home_team_id"`
	AwayTeamID string  `json:"away_team_id"`
	HomeGoals  int     `json:"home_goals"`
	AwayGoals  int     `json:"away_goals"`
	PlayedAt   float64 `json:"played_at"`
	Season     string  `json:"season"`
}

// poissonSample draws a goal count with the given mean so the seeded
// history looks like real football scores rather than uniform noise.
func poissonSample(rng *rand.Rand, lambda float64) int {
	threshold := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= threshold {
			return k
		}
		k++
	}
}

func main() {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	results := make([]Result, 0, MATCH_COUNT)
	now := float64(time.Now().Unix())

	for i := 0; i < MATCH_COUNT; i++ {
		home := rng.Intn(TEAM_COUNT)
		away := rng.Intn(TEAM_COUNT)
		for away == home {
			away = rng.Intn(TEAM_COUNT)
		}

		// Home sides score a bit more on average
		results = append(results, Result{
			MatchID:    fmt.Sprintf("seed-match-%03d", i),
			LeagueID:   LEAGUE_ID,
			HomeTeamID: fmt.Sprintf("team-%d", home),
			AwayTeamID: fmt.Sprintf("team-%d", away),
			HomeGoals:  poissonSample(rng, 1.5),
			AwayGoals:  poissonSample(rng, 1.1),
			PlayedAt:   now - float64(i)*86400,
			Season:     SEASON,
		})
	}

	payload, err := json.Marshal(results)
	if err != nil {
		log.Fatalf("Failed to marshal results: %v", err)
	}

	log.Printf("Posting %d seeded results to %s", len(results), API_URL)

	req, err := http.NewRequest("POST", API_URL, bytes.NewBuffer(payload))
	if err != nil {
		log.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	log.Printf("Status: %s", resp.Status)
	log.Printf("Response: %s", string(body))

	if resp.StatusCode != http.StatusAccepted {
		log.Fatalf("Expected 202 Accepted, got %d", resp.StatusCode)
	}
	log.Println("Seeding complete")
}
