package database

import "errors"

var (
	// ErrNotFound is returned when a row does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidState is returned when a state transition is not allowed,
	// e.g. completing a pomodoro that already finished
	ErrInvalidState = errors.New("invalid state transition")
)
