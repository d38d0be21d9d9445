package storage

import (
	"time"

	"typerace/internal/domain"
)

// RaceText is a row of the race text corpus
type RaceText struct {
	ID   uint   `gorm:"primaryKey"`
	Text string `gorm:"type:text;not null;uniqueIndex:idx_race_texts_text"`
}

func (RaceText) TableName() string { return "race_texts" }

// LeaderboardRow holds the accumulated points for one display name
type LeaderboardRow struct {
	PlayerName string `gorm:"primaryKey;size:128"`
	Points     int    `gorm:"not null;default:0"`
}

func (LeaderboardRow) TableName() string { return "leaderboard" }

// ToEntry converts the row to its domain representation
func (r LeaderboardRow) ToEntry() domain.LeaderboardEntry {
	return domain.LeaderboardEntry{Name: r.PlayerName, Points: r.Points}
}

// RaceHistory is one finished race
type RaceHistory struct {
	ID         uint      `gorm:"primaryKey"`
	PlayerName string    `gorm:"size:128;not null;index"`
	WPM        int       `gorm:"column:wpm;not null"`
	Accuracy   float64   `gorm:"not null"`
	RaceTime   int64     `gorm:"not null"` // milliseconds
	Date       time.Time `gorm:"not null"`
}

func (RaceHistory) TableName() string { return "race_history" }

// NewRaceHistory converts a race result to a history row
func NewRaceHistory(result domain.RaceResult) RaceHistory {
	return RaceHistory{
		PlayerName: result.PlayerName,
		WPM:        result.WPM,
		Accuracy:   result.Accuracy,
		RaceTime:   result.RaceTime.Milliseconds(),
		Date:       result.FinishedAt.UTC(),
	}
}
