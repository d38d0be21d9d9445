package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runningRace(t *testing.T, text string, ids ...string) *RaceState {
	t.Helper()
	race := NewRaceState(text)
	for _, id := range ids {
		race.AddParticipant(id, "name-"+id)
	}
	require.NoError(t, race.TransitionTo(PhaseCountingDown))
	require.NoError(t, race.BeginRunning(time.Now()))
	return race
}

func TestNewRaceStateFallsBackToDefaultText(t *testing.T) {
	assert.Equal(t, DefaultRaceText, NewRaceState("").RaceText)
	assert.Equal(t, DefaultRaceText, NewRaceState("   ").RaceText)
	assert.Equal(t, "Hello", NewRaceState("Hello").RaceText)
	assert.Equal(t, PhaseIdle, NewRaceState("Hello").Phase)
}

func TestRosterConsistency(t *testing.T) {
	race := NewRaceState("Hello world")
	ids := []string{"a", "b", "c", "d", "e"}
	for _, id := range ids {
		race.AddParticipant(id, "name-"+id)
	}

	require.NoError(t, race.RemoveParticipant("b"))
	require.NoError(t, race.RemoveParticipant("d"))
	assert.ErrorIs(t, race.RemoveParticipant("d"), ErrParticipantNotFound)

	assert.Equal(t, 3, race.ParticipantCount())

	var remaining []string
	for _, p := range race.Snapshot() {
		remaining = append(remaining, p.ID)
	}
	assert.Equal(t, []string{"a", "c", "e"}, remaining)
}

func TestAddParticipantOverwritesAndKeepsPosition(t *testing.T) {
	race := NewRaceState("Hello world")
	race.AddParticipant("a", "Alice")
	race.AddParticipant("b", "Bob")
	require.NoError(t, race.SetProgress("a", 40, "Hello"))

	race.AddParticipant("a", "Alicia")

	snapshot := race.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "Alicia", snapshot[0].Name)
	assert.Equal(t, 0, snapshot[0].Progress)
	assert.Equal(t, "Bob", snapshot[1].Name)
}

func TestSetProgress(t *testing.T) {
	race := NewRaceState("Hello world")
	race.AddParticipant("a", "Alice")

	require.NoError(t, race.SetProgress("a", 80, "Hello wor"))
	require.NoError(t, race.SetProgress("a", 30, "Hel"))

	p, err := race.GetParticipant("a")
	require.NoError(t, err)
	assert.Equal(t, 30, p.Progress, "later smaller value overwrites")
	assert.Equal(t, "Hel", p.TypedText, "transcript is replaced")

	require.NoError(t, race.SetProgress("a", 250, ""))
	assert.Equal(t, 100, p.Progress)
	require.NoError(t, race.SetProgress("a", -5, ""))
	assert.Equal(t, 0, p.Progress)

	assert.ErrorIs(t, race.SetProgress("ghost", 50, "x"), ErrParticipantNotFound)
}

func TestCanStart(t *testing.T) {
	race := NewRaceState("Hello world")
	assert.False(t, race.CanStart(2))

	race.AddParticipant("a", "Alice")
	assert.False(t, race.CanStart(2))

	race.AddParticipant("b", "Bob")
	assert.True(t, race.CanStart(2))

	require.NoError(t, race.TransitionTo(PhaseCountingDown))
	assert.False(t, race.CanStart(2))
}

func TestPhaseTransitions(t *testing.T) {
	tests := []struct {
		from, to Phase
		valid    bool
	}{
		{PhaseIdle, PhaseCountingDown, true},
		{PhaseIdle, PhaseRunning, false},
		{PhaseCountingDown, PhaseRunning, true},
		{PhaseCountingDown, PhaseFinished, false},
		{PhaseRunning, PhaseFinished, true},
		{PhaseRunning, PhaseIdle, false},
		{PhaseFinished, PhaseIdle, true},
		{PhaseFinished, PhaseRunning, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.from.CanTransitionTo(tt.to))
		})
	}

	assert.True(t, PhaseRunning.AcceptsProgress())
	assert.False(t, PhaseFinished.AcceptsProgress())
	assert.False(t, PhaseIdle.AcceptsProgress())
}

func TestTrimInsensitiveMatching(t *testing.T) {
	race := runningRace(t, "Hello world", "a", "b")

	require.NoError(t, race.SetProgress("b", 100, "Hello World"))
	assert.False(t, race.IsWinningUpdate("b"), "case mismatch does not win")

	require.NoError(t, race.SetProgress("a", 100, "Hello world "))
	assert.True(t, race.IsWinningUpdate("a"), "trailing whitespace is ignored")
}

func TestIsWinningUpdateGuards(t *testing.T) {
	race := runningRace(t, "Hello world", "a", "b")

	require.NoError(t, race.SetProgress("a", 99, "Hello world"))
	assert.False(t, race.IsWinningUpdate("a"), "progress below 100")

	require.NoError(t, race.SetProgress("a", 100, "Hello worl"))
	assert.False(t, race.IsWinningUpdate("a"), "transcript mismatch")

	assert.False(t, race.IsWinningUpdate("ghost"))

	idle := NewRaceState("Hello world")
	idle.AddParticipant("a", "Alice")
	require.NoError(t, idle.SetProgress("a", 100, "Hello world"))
	assert.False(t, idle.IsWinningUpdate("a"), "race not running")
}

func TestRecordFinishOnlyOnce(t *testing.T) {
	race := runningRace(t, "Hello world", "a", "b")
	require.NoError(t, race.SetProgress("a", 100, "Hello world"))

	record, err := race.RecordFinish("a", race.StartedAt.Add(6*time.Second))
	require.NoError(t, err)
	assert.Equal(t, "name-a", record.Name)
	assert.Equal(t, 1, record.Place)
	assert.Equal(t, 6*time.Second, record.Elapsed)

	_, err = race.RecordFinish("a", time.Now())
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	assert.False(t, race.IsWinningUpdate("a"))

	require.NoError(t, race.TransitionTo(PhaseFinished))
	winner, ok := race.Winner()
	require.True(t, ok)
	assert.Equal(t, "a", winner.ConnectionID)
	assert.Len(t, race.Rankings, 1)

	completed := 0
	for _, p := range race.Snapshot() {
		if p.Completed {
			completed++
		}
	}
	assert.Equal(t, 1, completed)
}

func TestReset(t *testing.T) {
	race := runningRace(t, "Hello world", "a", "b")
	require.NoError(t, race.SetProgress("a", 100, "Hello world"))
	require.NoError(t, race.SetProgress("b", 40, "Hell"))
	_, err := race.RecordFinish("a", time.Now())
	require.NoError(t, err)
	require.NoError(t, race.TransitionTo(PhaseFinished))

	race.Reset("Next text")

	assert.Equal(t, PhaseIdle, race.Phase)
	assert.Equal(t, "Next text", race.RaceText)
	assert.True(t, race.StartedAt.IsZero())
	assert.Empty(t, race.Rankings)
	_, ok := race.Winner()
	assert.False(t, ok)
	require.Len(t, race.Snapshot(), 2)
	for _, p := range race.Snapshot() {
		assert.Equal(t, 0, p.Progress)
		assert.Equal(t, "", p.TypedText)
		assert.False(t, p.Completed)
	}

	race.Reset("")
	assert.Equal(t, DefaultRaceText, race.RaceText)
}

func TestViewIsDetached(t *testing.T) {
	race := runningRace(t, "Hello world", "a", "b")
	require.NoError(t, race.SetProgress("a", 100, "Hello world"))
	_, err := race.RecordFinish("a", time.Now())
	require.NoError(t, err)

	view := race.View()
	race.Reset("Other")

	assert.Equal(t, PhaseRunning, view.Phase)
	assert.Equal(t, "Hello world", view.RaceText)
	assert.Len(t, view.Rankings, 1)
	assert.Equal(t, 100, view.Participants[0].Progress)
}

func TestWordsPerMinute(t *testing.T) {
	assert.Equal(t, 0, WordsPerMinute("one two three", 0))
	assert.Equal(t, 60, WordsPerMinute("one two three four five six", 6*time.Second))
	assert.Equal(t, 2, WordsPerMinute("Typing is fun!", 90*time.Second))

	result := NewRaceResult(FinishRecord{Name: "Alice", Elapsed: 30 * time.Second}, "a b c d e")
	assert.Equal(t, "Alice", result.PlayerName)
	assert.Equal(t, 10, result.WPM)
	assert.Equal(t, float64(100), result.Accuracy)
	assert.Equal(t, 30*time.Second, result.RaceTime)
}
