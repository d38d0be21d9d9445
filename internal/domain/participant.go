package domain

import "time"

// Participant represents one connected contestant
type Participant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Progress  int       `json:"progress"`
	TypedText string    `json:"typedText"`
	Completed bool      `json:"completed"`
	JoinedAt  time.Time `json:"joinedAt"`

	seq int
}

// NewParticipant creates a new participant with the given connection ID and display name
func NewParticipant(id, name string) *Participant {
	return &Participant{
		ID:       id,
		Name:     name,
		JoinedAt: time.Now(),
	}
}

// ResetForNewRace clears the per-race fields
func (p *Participant) ResetForNewRace() {
	p.Progress = 0
	p.TypedText = ""
	p.Completed = false
}

// ParticipantInfo is the broadcast view of a participant
type ParticipantInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Progress  int    `json:"progress"`
	TypedText string `json:"typedText"`
	Completed bool   `json:"completed"`
}

// ToInfo converts a Participant to ParticipantInfo
func (p *Participant) ToInfo() ParticipantInfo {
	return ParticipantInfo{
		ID:        p.ID,
		Name:      p.Name,
		Progress:  p.Progress,
		TypedText: p.TypedText,
		Completed: p.Completed,
	}
}

// ClampProgress bounds a reported percentage to 0..100
func ClampProgress(progress int) int {
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}
