package common

import "errors"

// Error kinds shared across the backend and the bot layer. Handlers
// dispatch on these with errors.Is to decide what the user sees.
var (
	ErrNotFound    = errors.New("referenced entity does not exist")
	ErrForbidden   = errors.New("actor is not allowed to perform this action")
	ErrValidation  = errors.New("input failed validation")
	ErrTimeout     = errors.New("awaited interaction timed out")
	ErrMaintenance = errors.New("game API is under maintenance")
)
