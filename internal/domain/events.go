package domain

import "time"

// EventType represents the type of race event sent to clients
type EventType string

const (
	EventConnected         EventType = "connected"
	EventUpdatePlayers     EventType = "updatePlayers"
	EventCountdown         EventType = "countdown"
	EventRaceStarted       EventType = "raceStarted"
	EventProgressUpdate    EventType = "progressUpdate"
	EventRaceFinished      EventType = "raceFinished"
	EventLeaderboardUpdate EventType = "leaderboardUpdate"
	EventNewRaceReady      EventType = "newRaceReady"
)

// RaceEvent represents an event emitted by the race
type RaceEvent struct {
	Type         EventType   `json:"type"`
	ConnectionID string      `json:"-"` // If event is connection-specific
	Payload      interface{} `json:"payload,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
}

// NewEvent creates a new broadcast event
func NewEvent(eventType EventType, payload interface{}) *RaceEvent {
	return &RaceEvent{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// NewConnectionEvent creates a new event for a single connection
func NewConnectionEvent(eventType EventType, connectionID string, payload interface{}) *RaceEvent {
	return &RaceEvent{
		Type:         eventType,
		ConnectionID: connectionID,
		Payload:      payload,
		Timestamp:    time.Now(),
	}
}

// Payload types for different events

// ConnectedPayload is sent to a connection after it joins
type ConnectedPayload struct {
	ConnectionID string            `json:"connectionId"`
	Phase        Phase             `json:"phase"`
	RaceText     string            `json:"raceText"`
	Participants []ParticipantInfo `json:"participants"`
}

// RosterPayload carries a full roster snapshot
type RosterPayload struct {
	Participants []ParticipantInfo `json:"participants"`
}

// CountdownPayload is sent once per countdown tick
type CountdownPayload struct {
	SecondsRemaining int `json:"secondsRemaining"`
}

// RaceStartedPayload is sent when the race starts running
type RaceStartedPayload struct {
	RaceText  string    `json:"raceText"`
	StartedAt time.Time `json:"startedAt"`
}

// RaceFinishedPayload is sent once per race when the winner is declared
type RaceFinishedPayload struct {
	Winner    string `json:"winner"`
	ElapsedMS int64  `json:"elapsedMs"`
}

// LeaderboardPayload carries the top leaderboard entries
type LeaderboardPayload struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// NewRaceReadyPayload is sent when a fresh race is idle and ready to start
type NewRaceReadyPayload struct {
	RaceText string `json:"raceText"`
}
