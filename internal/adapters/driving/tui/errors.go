package tui

import "errors"

// ErrMissingAssistantService is returned when the assistant is not provided.
var ErrMissingAssistantService = errors.New("tui: assistant service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
