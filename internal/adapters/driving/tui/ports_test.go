package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPorts(t *testing.T) {
	assistant := &mockAssistant{}

	ports := NewPorts(assistant)

	assert.Same(t, assistant, ports.Assistant)
	assert.NoError(t, ports.Validate())
}

func TestPorts_Validate(t *testing.T) {
	var nilPorts *Ports

	assert.ErrorIs(t, nilPorts.Validate(), ErrInvalidPorts)
	assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingAssistantService)
}

func TestErrors_AreDistinct(t *testing.T) {
	assert.NotEqual(t, ErrInvalidPorts, ErrMissingAssistantService)
	assert.Contains(t, ErrMissingAssistantService.Error(), "tui:")
}
