package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"typerace/internal/domain"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// SQLiteStore persists texts, points and history in a SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens the database at path and applies pending migrations
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is not set")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer; an in-memory database lives on one connection
	db.SetMaxOpenConns(1)

	if err := migrateSQLite(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// migrateSQLite applies the embedded migrations
func migrateSQLite(db *sql.DB) error {
	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("migration setup: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// RandomText returns one random text from the corpus
func (s *SQLiteStore) RandomText(ctx context.Context) (string, error) {
	var text string
	err := s.db.QueryRowContext(ctx, `SELECT text FROM race_texts ORDER BY RANDOM() LIMIT 1`).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNoRaceTexts
	}
	if err != nil {
		return "", fmt.Errorf("select race text: %w", err)
	}
	return text, nil
}

// AddTexts inserts texts into the corpus, skipping duplicates, and returns how many were added
func (s *SQLiteStore) AddTexts(ctx context.Context, texts []string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert texts: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO race_texts (text) VALUES (?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert texts: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, text := range texts {
		res, err := stmt.ExecContext(ctx, text)
		if err != nil {
			return 0, fmt.Errorf("insert race text: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert texts: %w", err)
	}
	return inserted, nil
}

// AwardPoints adds points to a display name, creating the entry if needed
func (s *SQLiteStore) AwardPoints(ctx context.Context, name string, points int) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO leaderboard (player_name, points)
		VALUES (?, ?)
		ON CONFLICT(player_name)
		DO UPDATE SET points = points + excluded.points`, name, points)
	if err != nil {
		return fmt.Errorf("upsert leaderboard entry: %w", err)
	}
	return nil
}

// TopEntries returns the highest scoring entries, ties ordered by name
func (s *SQLiteStore) TopEntries(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT player_name, points
		FROM leaderboard
		ORDER BY points DESC, player_name ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var entry domain.LeaderboardEntry
		if err := rows.Scan(&entry.Name, &entry.Points); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	return entries, nil
}

// RecordResult appends a race result to the history log
func (s *SQLiteStore) RecordResult(ctx context.Context, result domain.RaceResult) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO race_history (player_name, wpm, accuracy, race_time, date)
		VALUES (?, ?, ?, ?, ?)`,
		result.PlayerName, result.WPM, result.Accuracy, result.RaceTime.Milliseconds(), result.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert race history: %w", err)
	}
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
