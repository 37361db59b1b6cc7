package contract

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrPromptMissing      = errors.New("required prompt is missing")
	ErrInvalidGraph       = errors.New("invalid specialist graph")
	ErrToolNotFound       = errors.New("tool not found")
	ErrToolNotAllowed     = errors.New("tool not allowed for specialist")
	ErrInvalidHandoff     = errors.New("invalid handoff target")
	ErrBackendUnavailable = errors.New("generation backend unavailable")
	ErrBackend            = errors.New("generation backend failed")
	ErrSessionNotFound    = errors.New("session not found")
	ErrTurnCanceled       = errors.New("turn canceled")
)
