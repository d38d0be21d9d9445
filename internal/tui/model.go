package tui

import (
	"encoding/json"

	tea "github.com/charmbracelet/bubbletea"

	"typerace/internal/domain"
	"typerace/internal/transport/ws"
)

// Model is the terminal race client
type Model struct {
	sender Sender
	next   tea.Cmd // reads the next server message, nil in tests
	name   string

	connectionID string
	phase        domain.Phase
	raceText     string
	typed        []rune
	participants []domain.ParticipantInfo
	countdown    int
	winner       string
	leaderboard  []domain.LeaderboardEntry
	notice       string
	err          error
}

// NewModel creates a model that joins as name once started
func NewModel(conn *Conn, name string) Model {
	return Model{
		sender: conn,
		next:   conn.Next(),
		name:   name,
		phase:  domain.PhaseIdle,
	}
}

// Init joins the race and starts listening
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.send(ws.MsgJoin, &ws.JoinPayload{Name: m.name}),
		m.send(ws.MsgGetLeaderboard, nil),
		m.next,
	)
}

// Update handles key presses and server messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case serverMsg:
		m.apply(Envelope(msg))
		return m, m.next
	case errMsg:
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

// handleKey maps keys to race commands and typing
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+s":
		return m, m.send(ws.MsgStartRace, nil)
	case "ctrl+r":
		return m, m.send(ws.MsgRetryRace, nil)
	case "ctrl+l":
		return m, m.send(ws.MsgGetLeaderboard, nil)
	}

	// Typing only counts while the race is running
	if m.phase != domain.PhaseRunning {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyBackspace:
		if len(m.typed) == 0 {
			return m, nil
		}
		m.typed = m.typed[:len(m.typed)-1]
	case tea.KeySpace:
		m.typed = append(m.typed, ' ')
	case tea.KeyRunes:
		m.typed = append(m.typed, msg.Runes...)
	default:
		return m, nil
	}

	typed := string(m.typed)
	return m, m.send(ws.MsgUpdateProgress, &ws.UpdateProgressPayload{
		Progress:  Progress(typed, m.raceText),
		TypedText: typed,
	})
}

// apply folds one server message into the model
func (m *Model) apply(env Envelope) {
	switch domain.EventType(env.Type) {
	case domain.EventConnected:
		var p domain.ConnectedPayload
		if decode(env.Payload, &p) {
			m.connectionID = p.ConnectionID
			m.phase = p.Phase
			m.raceText = p.RaceText
			m.participants = p.Participants
		}
	case domain.EventUpdatePlayers, domain.EventProgressUpdate:
		var p domain.RosterPayload
		if decode(env.Payload, &p) {
			m.participants = p.Participants
		}
	case domain.EventCountdown:
		var p domain.CountdownPayload
		if decode(env.Payload, &p) {
			m.phase = domain.PhaseCountingDown
			m.countdown = p.SecondsRemaining
		}
	case domain.EventRaceStarted:
		var p domain.RaceStartedPayload
		if decode(env.Payload, &p) {
			m.phase = domain.PhaseRunning
			m.raceText = p.RaceText
			m.typed = nil
			m.winner = ""
		}
	case domain.EventRaceFinished:
		var p domain.RaceFinishedPayload
		if decode(env.Payload, &p) {
			m.phase = domain.PhaseFinished
			m.winner = p.Winner
		}
	case domain.EventLeaderboardUpdate:
		var p domain.LeaderboardPayload
		if decode(env.Payload, &p) {
			m.leaderboard = p.Entries
		}
	case domain.EventNewRaceReady:
		var p domain.NewRaceReadyPayload
		if decode(env.Payload, &p) {
			m.phase = domain.PhaseIdle
			m.raceText = p.RaceText
			m.typed = nil
			m.winner = ""
			m.countdown = 0
		}
	case domain.EventType(ws.MsgError):
		var p ws.ErrorPayload
		if decode(env.Payload, &p) {
			m.notice = p.Message
		}
	}
}

// send returns a command that delivers one message to the server
func (m Model) send(msgType ws.MessageType, payload interface{}) tea.Cmd {
	sender := m.sender
	return func() tea.Msg {
		if err := sender.Send(msgType, payload); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func decode(raw json.RawMessage, v interface{}) bool {
	return len(raw) > 0 && json.Unmarshal(raw, v) == nil
}

// Progress is the correct prefix of typed as a percentage of the race text.
// Only an exact match reports 100.
func Progress(typed, raceText string) int {
	if domain.MatchesRaceText(typed, raceText) {
		return 100
	}

	target := []rune(raceText)
	if len(target) == 0 {
		return 0
	}

	correct := 0
	for i, r := range []rune(typed) {
		if i >= len(target) || r != target[i] {
			break
		}
		correct++
	}

	progress := correct * 100 / len(target)
	if progress > 99 {
		progress = 99
	}
	return progress
}
