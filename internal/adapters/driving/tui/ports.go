// Package tui provides the interactive chat interface for canvai.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/canvai/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Assistant answers questions end to end.
	Assistant driving.AssistantService
}

// NewPorts creates a Ports aggregate.
func NewPorts(assistant driving.AssistantService) *Ports {
	return &Ports{Assistant: assistant}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Assistant == nil {
		return ErrMissingAssistantService
	}
	return nil
}
