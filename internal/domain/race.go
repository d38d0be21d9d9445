package domain

import (
	"sort"
	"strings"
	"time"
)

// DefaultRaceText is used whenever the corpus cannot supply a text
const DefaultRaceText = "Typing is fun!"

// RaceState is the authoritative in-memory record of the current race.
// It is not safe for concurrent use; the owning session serializes all access.
type RaceState struct {
	Participants map[string]*Participant `json:"participants"`
	RaceText     string                  `json:"raceText"`
	Phase        Phase                   `json:"phase"`
	StartedAt    time.Time               `json:"startedAt,omitempty"`
	Rankings     []FinishRecord          `json:"rankings"`

	nextSeq int
}

// NewRaceState creates an idle race with the given text
func NewRaceState(text string) *RaceState {
	if strings.TrimSpace(text) == "" {
		text = DefaultRaceText
	}
	return &RaceState{
		Participants: make(map[string]*Participant),
		RaceText:     text,
		Phase:        PhaseIdle,
		Rankings:     make([]FinishRecord, 0),
	}
}

// AddParticipant inserts a participant, overwriting any previous entry for the same connection.
// An overwritten participant keeps its roster position.
func (r *RaceState) AddParticipant(id, name string) *Participant {
	participant := NewParticipant(id, name)
	if existing, ok := r.Participants[id]; ok {
		participant.seq = existing.seq
	} else {
		r.nextSeq++
		participant.seq = r.nextSeq
	}
	r.Participants[id] = participant
	return participant
}

// RemoveParticipant removes a participant from the roster
func (r *RaceState) RemoveParticipant(id string) error {
	if _, ok := r.Participants[id]; !ok {
		return ErrParticipantNotFound
	}
	delete(r.Participants, id)
	return nil
}

// GetParticipant returns a participant by connection ID
func (r *RaceState) GetParticipant(id string) (*Participant, error) {
	participant, ok := r.Participants[id]
	if !ok {
		return nil, ErrParticipantNotFound
	}
	return participant, nil
}

// ParticipantCount returns the roster size
func (r *RaceState) ParticipantCount() int {
	return len(r.Participants)
}

// SetProgress replaces a participant's progress and transcript
func (r *RaceState) SetProgress(id string, progress int, typedText string) error {
	participant, err := r.GetParticipant(id)
	if err != nil {
		return err
	}
	participant.Progress = ClampProgress(progress)
	participant.TypedText = typedText
	return nil
}

// Snapshot returns a copy of the roster in join order
func (r *RaceState) Snapshot() []ParticipantInfo {
	ordered := make([]*Participant, 0, len(r.Participants))
	for _, p := range r.Participants {
		ordered = append(ordered, p)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].seq < ordered[j].seq
	})

	infos := make([]ParticipantInfo, 0, len(ordered))
	for _, p := range ordered {
		infos = append(infos, p.ToInfo())
	}
	return infos
}

// CanStart checks if a countdown may begin
func (r *RaceState) CanStart(minParticipants int) bool {
	return r.Phase == PhaseIdle && len(r.Participants) >= minParticipants
}

// TransitionTo moves the race to the target phase if the transition is valid
func (r *RaceState) TransitionTo(target Phase) error {
	if !r.Phase.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	r.Phase = target
	return nil
}

// BeginRunning moves a counting-down race to running and captures the start time
func (r *RaceState) BeginRunning(at time.Time) error {
	if err := r.TransitionTo(PhaseRunning); err != nil {
		return err
	}
	r.StartedAt = at
	return nil
}

// IsWinningUpdate reports whether the participant's latest update wins the race
func (r *RaceState) IsWinningUpdate(id string) bool {
	if r.Phase != PhaseRunning {
		return false
	}
	participant, ok := r.Participants[id]
	if !ok || participant.Completed {
		return false
	}
	return participant.Progress >= 100 && MatchesRaceText(participant.TypedText, r.RaceText)
}

// RecordFinish appends the participant to the rankings and marks them completed
func (r *RaceState) RecordFinish(id string, at time.Time) (FinishRecord, error) {
	participant, err := r.GetParticipant(id)
	if err != nil {
		return FinishRecord{}, err
	}
	if participant.Completed {
		return FinishRecord{}, ErrAlreadyCompleted
	}

	participant.Completed = true
	record := FinishRecord{
		ConnectionID: participant.ID,
		Name:         participant.Name,
		Progress:     participant.Progress,
		Place:        len(r.Rankings) + 1,
		FinishedAt:   at,
	}
	if !r.StartedAt.IsZero() {
		record.Elapsed = at.Sub(r.StartedAt)
	}
	r.Rankings = append(r.Rankings, record)
	return record, nil
}

// Winner returns the first finisher, if any
func (r *RaceState) Winner() (FinishRecord, bool) {
	if len(r.Rankings) == 0 {
		return FinishRecord{}, false
	}
	return r.Rankings[0], true
}

// Reset clears every participant's race fields, installs a new text and returns to idle
func (r *RaceState) Reset(text string) {
	if strings.TrimSpace(text) == "" {
		text = DefaultRaceText
	}
	for _, participant := range r.Participants {
		participant.ResetForNewRace()
	}
	r.RaceText = text
	r.Phase = PhaseIdle
	r.StartedAt = time.Time{}
	r.Rankings = make([]FinishRecord, 0)
}

// View returns a detached copy of the race for inspection
func (r *RaceState) View() RaceView {
	rankings := make([]FinishRecord, len(r.Rankings))
	copy(rankings, r.Rankings)
	return RaceView{
		Phase:        r.Phase,
		RaceText:     r.RaceText,
		StartedAt:    r.StartedAt,
		Participants: r.Snapshot(),
		Rankings:     rankings,
	}
}

// RaceView is a read-only copy of the race state
type RaceView struct {
	Phase        Phase             `json:"phase"`
	RaceText     string            `json:"raceText"`
	StartedAt    time.Time         `json:"startedAt,omitempty"`
	Participants []ParticipantInfo `json:"participants"`
	Rankings     []FinishRecord    `json:"rankings"`
}

// MatchesRaceText compares a transcript to the race text ignoring surrounding whitespace
func MatchesRaceText(typed, raceText string) bool {
	return strings.TrimSpace(typed) == strings.TrimSpace(raceText)
}
