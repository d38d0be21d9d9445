package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"typerace/internal/domain"
)

// inboxSize is the number of commands that may wait for the run loop
const inboxSize = 256

// Scoreboard persists leaderboard points and the race history log
type Scoreboard interface {
	AwardPoints(ctx context.Context, name string, points int) error
	TopEntries(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	RecordResult(ctx context.Context, result domain.RaceResult) error
}

// Settings holds the race timing and scoring parameters
type Settings struct {
	MinParticipants   int
	CountdownFrom     int
	CountdownInterval time.Duration
	AutoResetDelay    time.Duration
	RetryDelay        time.Duration
	WinnerPoints      int
	LeaderboardSize   int
	StoreTimeout      time.Duration
}

// DefaultSettings returns the default race settings
func DefaultSettings() Settings {
	return Settings{
		MinParticipants:   2,
		CountdownFrom:     3,
		CountdownInterval: 1 * time.Second,
		AutoResetDelay:    5 * time.Second,
		RetryDelay:        2 * time.Second,
		WinnerPoints:      9,
		LeaderboardSize:   10,
		StoreTimeout:      3 * time.Second,
	}
}

// Stats is a point-in-time summary of the race
type Stats struct {
	Participants int          `json:"participants"`
	Phase        domain.Phase `json:"phase"`
}

// RaceSession owns the race state and drives it through its lifecycle.
// Every inbound action, timer callback and store continuation runs on a single
// loop goroutine, so each transition is a run-to-completion step.
type RaceSession struct {
	state    *domain.RaceState
	settings Settings
	texts    *TextProvider
	scores   Scoreboard
	out      Broadcaster
	logger   *slog.Logger

	inbox   chan func()
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once

	// Owned by the run loop
	generation         uint64
	countdownRemaining int
	resetSeq           uint64
	resetTimer         *time.Timer
	resetDue           time.Time
}

// NewRaceSession creates a race session and starts its run loop
func NewRaceSession(settings Settings, texts *TextProvider, scores Scoreboard, out Broadcaster, logger *slog.Logger) *RaceSession {
	session := &RaceSession{
		state:    domain.NewRaceState(texts.fallback),
		settings: settings,
		texts:    texts,
		scores:   scores,
		out:      out,
		logger:   logger,
		inbox:    make(chan func(), inboxSize),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}

	go session.run()

	return session
}

// run executes queued commands one at a time
func (s *RaceSession) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.done:
			return
		case fn := <-s.inbox:
			fn()
		}
	}
}

// post queues a command without waiting for it. Used by timers and store continuations.
func (s *RaceSession) post(fn func()) bool {
	select {
	case s.inbox <- fn:
		return true
	case <-s.done:
		return false
	}
}

// exec queues a command and waits until the run loop has executed it.
// Must never be called from the run loop itself.
func (s *RaceSession) exec(fn func()) {
	finished := make(chan struct{})
	if !s.post(func() {
		defer close(finished)
		fn()
	}) {
		return
	}
	select {
	case <-finished:
	case <-s.done:
	}
}

// Join adds a participant and broadcasts the new roster
func (s *RaceSession) Join(connectionID, name string) {
	s.exec(func() {
		s.state.AddParticipant(connectionID, name)
		s.logger.Info("participant joined", "connectionID", connectionID, "name", name)

		s.out.Send(connectionID, domain.NewConnectionEvent(domain.EventConnected, connectionID, &domain.ConnectedPayload{
			ConnectionID: connectionID,
			Phase:        s.state.Phase,
			RaceText:     s.state.RaceText,
			Participants: s.state.Snapshot(),
		}))
		s.broadcastRoster(domain.EventUpdatePlayers)
	})
}

// Leave removes a participant and broadcasts the new roster
func (s *RaceSession) Leave(connectionID string) {
	s.exec(func() {
		if err := s.state.RemoveParticipant(connectionID); err != nil {
			return
		}
		s.logger.Info("participant left", "connectionID", connectionID, "phase", s.state.Phase)
		s.broadcastRoster(domain.EventUpdatePlayers)
	})
}

// StartRace begins the countdown if the race is idle and enough participants are present
func (s *RaceSession) StartRace(connectionID string) {
	s.exec(func() {
		s.handleStart(connectionID)
	})
}

// UpdateProgress records a participant's progress and declares the winner
func (s *RaceSession) UpdateProgress(connectionID string, progress int, typedText string) {
	s.exec(func() {
		s.handleProgress(connectionID, progress, typedText)
	})
}

// RequestLeaderboard broadcasts the current top entries to every participant
func (s *RaceSession) RequestLeaderboard() {
	s.exec(s.publishLeaderboard)
}

// Retry schedules a new race after the retry delay
func (s *RaceSession) Retry(connectionID string) {
	s.exec(func() {
		s.logger.Debug("retry requested", "connectionID", connectionID, "phase", s.state.Phase)
		s.scheduleReset(s.settings.RetryDelay)
	})
}

// PrepareNextRace fetches a fresh text immediately and announces the race
func (s *RaceSession) PrepareNextRace() {
	s.exec(func() {
		s.scheduleReset(0)
	})
}

// View returns a copy of the current race state
func (s *RaceSession) View() domain.RaceView {
	var view domain.RaceView
	s.exec(func() {
		view = s.state.View()
	})
	return view
}

// Stats returns a summary of the current race
func (s *RaceSession) Stats() Stats {
	var stats Stats
	s.exec(func() {
		stats = Stats{
			Participants: s.state.ParticipantCount(),
			Phase:        s.state.Phase,
		}
	})
	return stats
}

// Leaderboard reads the top entries directly from the store
func (s *RaceSession) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	return s.scores.TopEntries(ctx, s.settings.LeaderboardSize)
}

// handleStart moves an idle race into the countdown
func (s *RaceSession) handleStart(connectionID string) {
	if !s.state.CanStart(s.settings.MinParticipants) {
		s.logger.Debug("start request ignored",
			"connectionID", connectionID,
			"phase", s.state.Phase,
			"participants", s.state.ParticipantCount(),
		)
		return
	}

	if err := s.state.TransitionTo(domain.PhaseCountingDown); err != nil {
		s.logger.Error("failed to begin countdown", "error", err)
		return
	}

	s.logger.Info("countdown started", "participants", s.state.ParticipantCount())
	s.countdownRemaining = s.settings.CountdownFrom
	s.scheduleTick(s.generation)
}

// scheduleTick queues the next countdown tick for the given race generation
func (s *RaceSession) scheduleTick(generation uint64) {
	time.AfterFunc(s.settings.CountdownInterval, func() {
		s.post(func() {
			s.countdownTick(generation)
		})
	})
}

// countdownTick broadcasts the remaining count and starts the race once it passes zero
func (s *RaceSession) countdownTick(generation uint64) {
	if generation != s.generation || s.state.Phase != domain.PhaseCountingDown {
		return
	}

	s.out.Broadcast(domain.NewEvent(domain.EventCountdown, &domain.CountdownPayload{
		SecondsRemaining: s.countdownRemaining,
	}))

	s.countdownRemaining--
	if s.countdownRemaining >= 0 {
		s.scheduleTick(generation)
		return
	}

	startedAt := time.Now()
	if err := s.state.BeginRunning(startedAt); err != nil {
		s.logger.Error("failed to start race", "error", err)
		return
	}

	s.logger.Info("race started", "participants", s.state.ParticipantCount())
	s.out.Broadcast(domain.NewEvent(domain.EventRaceStarted, &domain.RaceStartedPayload{
		RaceText:  s.state.RaceText,
		StartedAt: startedAt,
	}))
}

// handleProgress applies a progress update and checks the single-winner guard
func (s *RaceSession) handleProgress(connectionID string, progress int, typedText string) {
	if !s.state.Phase.AcceptsProgress() {
		return
	}

	if err := s.state.SetProgress(connectionID, progress, typedText); err != nil {
		return
	}

	s.broadcastRoster(domain.EventProgressUpdate)

	if !s.state.IsWinningUpdate(connectionID) {
		return
	}

	record, err := s.state.RecordFinish(connectionID, time.Now())
	if err != nil {
		s.logger.Error("failed to record finish", "connectionID", connectionID, "error", err)
		return
	}
	if err := s.state.TransitionTo(domain.PhaseFinished); err != nil {
		s.logger.Error("failed to finish race", "error", err)
		return
	}

	s.logger.Info("race won", "name", record.Name, "elapsed", record.Elapsed)
	s.out.Broadcast(domain.NewEvent(domain.EventRaceFinished, &domain.RaceFinishedPayload{
		Winner:    record.Name,
		ElapsedMS: record.Elapsed.Milliseconds(),
	}))

	s.awardWinner(record, domain.NewRaceResult(record, s.state.RaceText))
	s.scheduleReset(s.settings.AutoResetDelay)
}

// awardWinner persists the win off the loop and broadcasts the refreshed leaderboard
func (s *RaceSession) awardWinner(record domain.FinishRecord, result domain.RaceResult) {
	points := s.settings.WinnerPoints
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.settings.StoreTimeout)
		defer cancel()

		if err := s.scores.AwardPoints(ctx, record.Name, points); err != nil {
			s.logger.Error("failed to update leaderboard", "name", record.Name, "points", points, "error", err)
		}
		if err := s.scores.RecordResult(ctx, result); err != nil {
			s.logger.Error("failed to record race result", "name", record.Name, "error", err)
		}

		entries := s.readLeaderboard(ctx)
		s.post(func() {
			s.broadcastLeaderboard(entries)
		})
	}()
}

// publishLeaderboard reads the leaderboard off the loop and broadcasts it
func (s *RaceSession) publishLeaderboard() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.settings.StoreTimeout)
		defer cancel()

		entries := s.readLeaderboard(ctx)
		s.post(func() {
			s.broadcastLeaderboard(entries)
		})
	}()
}

// readLeaderboard returns the top entries, or an empty list if the store fails
func (s *RaceSession) readLeaderboard(ctx context.Context) []domain.LeaderboardEntry {
	entries, err := s.scores.TopEntries(ctx, s.settings.LeaderboardSize)
	if err != nil {
		s.logger.Warn("failed to fetch leaderboard", "error", err)
		return []domain.LeaderboardEntry{}
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	return entries
}

// scheduleReset arms the reset timer. Only one reset is pending at a time;
// a new request replaces the pending one only if it would fire sooner.
func (s *RaceSession) scheduleReset(delay time.Duration) {
	due := time.Now().Add(delay)
	if s.resetTimer != nil {
		if !due.Before(s.resetDue) {
			return
		}
		s.resetTimer.Stop()
	}

	s.resetSeq++
	seq := s.resetSeq
	s.resetDue = due
	s.resetTimer = time.AfterFunc(delay, func() {
		s.post(func() {
			s.beginReset(seq)
		})
	})
}

// beginReset fetches the next race text off the loop
func (s *RaceSession) beginReset(seq uint64) {
	if seq != s.resetSeq || s.resetTimer == nil {
		return
	}
	s.resetTimer = nil

	generation := s.generation
	phase := s.state.Phase
	previous := s.state.RaceText

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.settings.StoreTimeout)
		defer cancel()

		text := s.texts.Next(ctx, previous)
		s.post(func() {
			s.applyReset(generation, phase, text)
		})
	}()
}

// applyReset installs the new race unless the race moved on while the text was fetched
func (s *RaceSession) applyReset(generation uint64, phase domain.Phase, text string) {
	if generation != s.generation || phase != s.state.Phase {
		s.logger.Debug("dropping stale reset", "phase", s.state.Phase)
		return
	}

	s.generation++
	s.state.Reset(text)

	s.logger.Info("new race ready", "participants", s.state.ParticipantCount())
	s.out.Broadcast(domain.NewEvent(domain.EventNewRaceReady, &domain.NewRaceReadyPayload{
		RaceText: s.state.RaceText,
	}))
	s.broadcastRoster(domain.EventUpdatePlayers)
}

// broadcastRoster sends the full roster snapshot to every connection
func (s *RaceSession) broadcastRoster(eventType domain.EventType) {
	s.out.Broadcast(domain.NewEvent(eventType, &domain.RosterPayload{
		Participants: s.state.Snapshot(),
	}))
}

// broadcastLeaderboard sends leaderboard entries to every connection
func (s *RaceSession) broadcastLeaderboard(entries []domain.LeaderboardEntry) {
	s.out.Broadcast(domain.NewEvent(domain.EventLeaderboardUpdate, &domain.LeaderboardPayload{
		Entries: entries,
	}))
}

// Close stops the run loop. Pending timers and store calls become no-ops.
func (s *RaceSession) Close() {
	s.once.Do(func() {
		close(s.done)
	})
	<-s.stopped
}
