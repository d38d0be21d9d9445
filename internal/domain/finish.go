package domain

import (
	"math"
	"strings"
	"time"
)

// FinishRecord is one entry in the race rankings
type FinishRecord struct {
	ConnectionID string        `json:"connectionId"`
	Name         string        `json:"name"`
	Progress     int           `json:"progress"`
	Place        int           `json:"place"`
	FinishedAt   time.Time     `json:"finishedAt"`
	Elapsed      time.Duration `json:"elapsed"`
}

// RaceResult is a row in the race history log
type RaceResult struct {
	PlayerName string
	WPM        int
	Accuracy   float64
	RaceTime   time.Duration
	FinishedAt time.Time
}

// NewRaceResult builds the history row for a finish against the given race text.
// Accuracy is always 100 because a finish requires an exact transcript.
func NewRaceResult(record FinishRecord, raceText string) RaceResult {
	return RaceResult{
		PlayerName: record.Name,
		WPM:        WordsPerMinute(raceText, record.Elapsed),
		Accuracy:   100,
		RaceTime:   record.Elapsed,
		FinishedAt: record.FinishedAt,
	}
}

// WordsPerMinute returns the rounded typing speed for a text typed in elapsed
func WordsPerMinute(text string, elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	words := len(strings.Fields(text))
	return int(math.Round(float64(words) / elapsed.Minutes()))
}
