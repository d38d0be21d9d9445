package domain

// LeaderboardEntry is a display name with its accumulated points
type LeaderboardEntry struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}
