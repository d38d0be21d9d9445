package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"typerace/internal/domain"
)

// PostgresStore persists texts, points and history in Postgres through GORM
type PostgresStore struct {
	db *gorm.DB
}

// OpenPostgres connects using the given URL and auto-migrates the tables
func OpenPostgres(dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	if err := conn.AutoMigrate(&RaceText{}, &LeaderboardRow{}, &RaceHistory{}); err != nil {
		return nil, fmt.Errorf("migrate postgres database: %w", err)
	}

	return &PostgresStore{db: conn}, nil
}

// RandomText returns one random text from the corpus
func (s *PostgresStore) RandomText(ctx context.Context) (string, error) {
	var row RaceText
	err := s.db.WithContext(ctx).Order("RANDOM()").Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", domain.ErrNoRaceTexts
	}
	if err != nil {
		return "", fmt.Errorf("select race text: %w", err)
	}
	return row.Text, nil
}

// AddTexts inserts texts into the corpus, skipping duplicates, and returns how many were added
func (s *PostgresStore) AddTexts(ctx context.Context, texts []string) (int, error) {
	if len(texts) == 0 {
		return 0, nil
	}

	rows := make([]RaceText, 0, len(texts))
	for _, text := range texts {
		rows = append(rows, RaceText{Text: text})
	}

	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if res.Error != nil {
		return 0, fmt.Errorf("insert race texts: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

// AwardPoints adds points to a display name, creating the entry if needed
func (s *PostgresStore) AwardPoints(ctx context.Context, name string, points int) error {
	row := LeaderboardRow{PlayerName: name, Points: points}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "player_name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"points": gorm.Expr("leaderboard.points + ?", points),
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert leaderboard entry: %w", err)
	}
	return nil
}

// TopEntries returns the highest scoring entries, ties ordered by name
func (s *PostgresStore) TopEntries(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	var rows []LeaderboardRow
	err := s.db.WithContext(ctx).
		Order("points DESC").
		Order("player_name ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.ToEntry())
	}
	return entries, nil
}

// RecordResult appends a race result to the history log
func (s *PostgresStore) RecordResult(ctx context.Context, result domain.RaceResult) error {
	row := NewRaceHistory(result)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert race history: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
