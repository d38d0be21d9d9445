package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"typerace/internal/config"
	"typerace/internal/storage"
)

func main() {
	filePath := flag.String("file", "", "path to race texts csv (defaults to the built-in seed texts)")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Warn("failed to load .env file", "error", err)
	}
	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	store, err := storage.Open(cfg.Storage.Driver, cfg.StorageDSN())
	if err != nil {
		logger.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	texts := storage.SeedTexts
	if *filePath != "" {
		file, err := os.Open(*filePath)
		if err != nil {
			logger.Error("failed to open texts file", "file", *filePath, "error", err)
			os.Exit(1)
		}
		texts, err = readTexts(file)
		file.Close()
		if err != nil {
			logger.Error("failed to read texts", "file", *filePath, "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	inserted, err := store.AddTexts(ctx, texts)
	if err != nil {
		logger.Error("failed to load texts", "error", err)
		os.Exit(1)
	}

	logger.Info("loaded race texts", "read", len(texts), "inserted", inserted)
}

// readTexts reads race texts from a CSV whose first row is a header.
// Only the first column is used; blank texts are skipped.
func readTexts(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var texts []string
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		text := strings.TrimSpace(row[0])
		if text == "" {
			continue
		}
		texts = append(texts, text)
	}
	return texts, nil
}
