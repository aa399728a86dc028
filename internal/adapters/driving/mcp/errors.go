// Package mcp provides an MCP (Model Context Protocol) server adapter for quest.
// It lets AI assistants generate, refine and inspect quiz questions.
package mcp

import (
	"errors"
	"fmt"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

// Errors returned by Ports.Validate.
var (
	ErrMissingService = errors.New("mcp: all services are required")
	ErrMissingOwner   = errors.New("mcp: owner ID is required")
)

// toolError prefixes a service error with its stable kind.
func toolError(err error) error {
	return fmt.Errorf("[%s] %w", domain.ErrorKind(err), err)
}
