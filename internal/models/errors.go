package models

import "errors"

// Custom errors
var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateKey        = errors.New("duplicate key violation")
	ErrInvalidID           = errors.New("invalid ID format")
	ErrInvalidOdds         = errors.New("odds must be finite and greater than 1")
	ErrDuplicateBet        = errors.New("game already has a bet this run")
	ErrChronologyViolation = errors.New("game start time out of chronological order")
	ErrBankrollExhausted   = errors.New("bankroll exhausted")
)
