package mcp

import (
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls.
type Ports struct {
	Documents  driving.DocumentGenerationService
	Similar    driving.SimilarGenerationService
	Refinement driving.RefinementService
	Questions  driving.QuestionService

	// OwnerID is the owner every tool call acts for. An MCP session has a
	// single local user, so it is fixed at startup.
	OwnerID string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Documents == nil || p.Similar == nil || p.Refinement == nil || p.Questions == nil {
		return ErrMissingService
	}
	if p.OwnerID == "" {
		return ErrMissingOwner
	}
	return nil
}
