package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"typerace/internal/domain"
)

// maxRepeatAttempts bounds how often the provider re-draws to avoid the previous text
const maxRepeatAttempts = 3

// TextSource supplies random race texts from a corpus
type TextSource interface {
	RandomText(ctx context.Context) (string, error)
}

// TextProvider picks the next race text, falling back to a fixed default
type TextProvider struct {
	source   TextSource
	fallback string
	logger   *slog.Logger
}

// NewTextProvider creates a text provider. A nil source always yields the fallback.
func NewTextProvider(source TextSource, fallback string, logger *slog.Logger) *TextProvider {
	if strings.TrimSpace(fallback) == "" {
		fallback = domain.DefaultRaceText
	}
	return &TextProvider{
		source:   source,
		fallback: fallback,
		logger:   logger,
	}
}

// Next returns a race text different from previous when the corpus allows it
func (p *TextProvider) Next(ctx context.Context, previous string) string {
	var text string
	for attempts := 0; attempts < maxRepeatAttempts; attempts++ {
		candidate, ok := p.fetch(ctx)
		if !ok {
			if text != "" {
				return text
			}
			return p.fallback
		}
		text = candidate
		if candidate != previous {
			return candidate
		}
	}

	// The corpus only offers the previous text
	return text
}

func (p *TextProvider) fetch(ctx context.Context) (string, bool) {
	if p.source == nil {
		return "", false
	}

	text, err := p.source.RandomText(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoRaceTexts) {
			p.logger.Debug("race text corpus empty, using default text")
		} else {
			p.logger.Warn("failed to fetch race text, using default text", "error", err)
		}
		return "", false
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	return text, true
}
