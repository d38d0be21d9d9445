package domain

import "errors"

// Domain errors
var (
	ErrParticipantNotFound = errors.New("participant not found")
	ErrAlreadyCompleted    = errors.New("participant already completed this race")
	ErrInvalidTransition   = errors.New("invalid phase transition")
	ErrNoRaceTexts         = errors.New("race text corpus is empty")
)
