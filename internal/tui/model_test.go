package tui

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typerace/internal/domain"
	"typerace/internal/transport/ws"
)

type sentMessage struct {
	Type    ws.MessageType
	Payload interface{}
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (s *recordingSender) Send(msgType ws.MessageType, payload interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{Type: msgType, Payload: payload})
	return s.err
}

func (s *recordingSender) last() sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[len(s.sent)-1]
}

func newTestModel() (Model, *recordingSender) {
	sender := &recordingSender{}
	return Model{sender: sender, name: "Alice", phase: domain.PhaseIdle}, sender
}

func event(t *testing.T, eventType domain.EventType, payload interface{}) serverMsg {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return serverMsg{Type: string(eventType), Payload: raw}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runCmd(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0, Progress("", "Hello world"))
	assert.Equal(t, 45, Progress("Hello", "Hello world"))
	assert.Equal(t, 54, Progress("Hello there", "Hello world"), "only the correct prefix counts")
	assert.Equal(t, 99, Progress("Hello world!!", "Hello world"))
	assert.Equal(t, 100, Progress("Hello world", "Hello world"))
	assert.Equal(t, 100, Progress("Hello world ", "Hello world"))
	assert.Equal(t, 0, Progress("x", ""))
}

func TestInitJoins(t *testing.T) {
	m, sender := newTestModel()

	batch := m.Init()
	require.NotNil(t, batch)
	for _, cmd := range batch().(tea.BatchMsg) {
		runCmd(cmd)
	}

	require.NotEmpty(t, sender.sent)
	assert.Equal(t, ws.MsgJoin, sender.sent[0].Type)
	assert.Equal(t, &ws.JoinPayload{Name: "Alice"}, sender.sent[0].Payload)
}

func TestTypingOnlyWhileRunning(t *testing.T) {
	m, sender := newTestModel()

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("H")})
	assert.Nil(t, cmd)
	assert.Empty(t, m.typed)

	m, _ = update(t, m, event(t, domain.EventRaceStarted, &domain.RaceStartedPayload{RaceText: "Hi there"}))
	assert.Equal(t, domain.PhaseRunning, m.phase)

	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("Hi")},
		{Type: tea.KeySpace},
		{Type: tea.KeyRunes, Runes: []rune("thx")},
		{Type: tea.KeyBackspace},
		{Type: tea.KeyRunes, Runes: []rune("ere")},
	} {
		m, cmd = update(t, m, key)
		runCmd(cmd)
	}

	assert.Equal(t, "Hi there", string(m.typed))
	last := sender.last()
	assert.Equal(t, ws.MsgUpdateProgress, last.Type)
	assert.Equal(t, &ws.UpdateProgressPayload{Progress: 100, TypedText: "Hi there"}, last.Payload)
}

func TestControlKeys(t *testing.T) {
	m, sender := newTestModel()

	tests := []struct {
		key  tea.KeyType
		want ws.MessageType
	}{
		{tea.KeyCtrlS, ws.MsgStartRace},
		{tea.KeyCtrlR, ws.MsgRetryRace},
		{tea.KeyCtrlL, ws.MsgGetLeaderboard},
	}
	for _, tt := range tests {
		_, cmd := update(t, m, tea.KeyMsg{Type: tt.key})
		runCmd(cmd)
		assert.Equal(t, tt.want, sender.last().Type)
	}

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestServerEvents(t *testing.T) {
	m, _ := newTestModel()

	m, _ = update(t, m, event(t, domain.EventConnected, &domain.ConnectedPayload{
		ConnectionID: "c1",
		Phase:        domain.PhaseIdle,
		RaceText:     "Hello world",
		Participants: []domain.ParticipantInfo{{ID: "c1", Name: "Alice"}},
	}))
	assert.Equal(t, "c1", m.connectionID)
	assert.Equal(t, "Hello world", m.raceText)

	m, _ = update(t, m, event(t, domain.EventCountdown, &domain.CountdownPayload{SecondsRemaining: 2}))
	assert.Equal(t, domain.PhaseCountingDown, m.phase)
	assert.Contains(t, m.View(), "Starting in 2")

	m, _ = update(t, m, event(t, domain.EventProgressUpdate, &domain.RosterPayload{
		Participants: []domain.ParticipantInfo{{ID: "c1", Name: "Alice", Progress: 50}, {ID: "c2", Name: "Bob"}},
	}))
	assert.Len(t, m.participants, 2)

	m, _ = update(t, m, event(t, domain.EventRaceFinished, &domain.RaceFinishedPayload{Winner: "Bob"}))
	assert.Equal(t, domain.PhaseFinished, m.phase)
	assert.Contains(t, m.View(), "Bob wins!")

	m, _ = update(t, m, event(t, domain.EventLeaderboardUpdate, &domain.LeaderboardPayload{
		Entries: []domain.LeaderboardEntry{{Name: "Bob", Points: 9}},
	}))
	assert.Contains(t, m.View(), "Bob - 9 pts")

	m, _ = update(t, m, event(t, domain.EventNewRaceReady, &domain.NewRaceReadyPayload{RaceText: "Next one"}))
	assert.Equal(t, domain.PhaseIdle, m.phase)
	assert.Equal(t, "Next one", m.raceText)
	assert.Empty(t, m.winner)

	m, _ = update(t, m, event(t, domain.EventType(ws.MsgError), &ws.ErrorPayload{Code: ws.ErrCodeNotJoined, Message: "Join the race first"}))
	assert.Contains(t, m.View(), "Join the race first")
}

func TestConnectionErrorQuits(t *testing.T) {
	m, _ := newTestModel()

	m, cmd := update(t, m, errMsg{errors.New("connection reset")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, strings.Contains(m.View(), "connection reset"))
}

func TestSendFailureReported(t *testing.T) {
	m, sender := newTestModel()
	sender.err = errors.New("broken pipe")

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	msg := runCmd(cmd)
	assert.IsType(t, errMsg{}, msg)
}
