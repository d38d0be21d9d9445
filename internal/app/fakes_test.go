package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"typerace/internal/domain"
)

var errStoreDown = errors.New("store unavailable")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingBroadcaster keeps every event in emission order
type recordingBroadcaster struct {
	mu       sync.Mutex
	events   []*domain.RaceEvent
	targeted map[string][]*domain.RaceEvent
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{targeted: make(map[string][]*domain.RaceEvent)}
}

func (b *recordingBroadcaster) Broadcast(event *domain.RaceEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBroadcaster) Send(connectionID string, event *domain.RaceEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.targeted[connectionID] = append(b.targeted[connectionID], event)
}

func (b *recordingBroadcaster) ofType(eventType domain.EventType) []*domain.RaceEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []*domain.RaceEvent
	for _, e := range b.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (b *recordingBroadcaster) count(eventType domain.EventType) int {
	return len(b.ofType(eventType))
}

func (b *recordingBroadcaster) types() []domain.EventType {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.EventType, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Type)
	}
	return out
}

func (b *recordingBroadcaster) sentTo(connectionID string) []*domain.RaceEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*domain.RaceEvent(nil), b.targeted[connectionID]...)
}

// memoryScoreboard is an in-memory Scoreboard
type memoryScoreboard struct {
	mu        sync.Mutex
	points    map[string]int
	awards    int
	results   []domain.RaceResult
	failAward bool
	failRead  bool
}

func newMemoryScoreboard() *memoryScoreboard {
	return &memoryScoreboard{points: make(map[string]int)}
}

func (s *memoryScoreboard) AwardPoints(ctx context.Context, name string, points int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAward {
		return errStoreDown
	}
	s.awards++
	s.points[name] += points
	return nil
}

func (s *memoryScoreboard) TopEntries(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRead {
		return nil, errStoreDown
	}
	entries := make([]domain.LeaderboardEntry, 0, len(s.points))
	for name, points := range s.points {
		entries = append(entries, domain.LeaderboardEntry{Name: name, Points: points})
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *memoryScoreboard) RecordResult(ctx context.Context, result domain.RaceResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	return nil
}

func (s *memoryScoreboard) awardCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awards
}

func (s *memoryScoreboard) pointsFor(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.points[name]
}

func (s *memoryScoreboard) resultCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// sequenceSource returns its texts in order, repeating the last one
type sequenceSource struct {
	mu    sync.Mutex
	texts []string
	err   error
	calls int
}

func (s *sequenceSource) RandomText(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if len(s.texts) == 0 {
		return "", domain.ErrNoRaceTexts
	}
	text := s.texts[0]
	if len(s.texts) > 1 {
		s.texts = s.texts[1:]
	}
	return text, nil
}
