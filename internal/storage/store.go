package storage

import (
	"context"
	"fmt"

	"typerace/internal/domain"
)

// Supported storage drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// TextStorage holds the race text corpus
type TextStorage interface {
	RandomText(ctx context.Context) (string, error)
	AddTexts(ctx context.Context, texts []string) (int, error)
}

// LeaderboardStorage accumulates points per display name
type LeaderboardStorage interface {
	AwardPoints(ctx context.Context, name string, points int) error
	TopEntries(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// HistoryStorage appends finished races to the history log
type HistoryStorage interface {
	RecordResult(ctx context.Context, result domain.RaceResult) error
}

// Store is the full persistence surface used by the server
type Store interface {
	TextStorage
	LeaderboardStorage
	HistoryStorage
	Close() error
}

// Open connects to the configured backend and brings its schema up to date.
// For sqlite the dsn is a file path; for postgres it is a connection URL.
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		store, err := OpenSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverPostgres:
		store, err := OpenPostgres(dsn)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}
