package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for quest resources.
	uriScheme = "quest://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "questions/recent",
		Name:        "recent-questions",
		Description: "Recent generation sessions and their questions",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "questions/{questionId}",
		Name:        "question",
		Description: "A single generated question",
		MIMEType:    "application/json",
	}, s.handleQuestionResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sessions/{sessionId}/questions",
		Name:        "session-questions",
		Description: "The questions generated in one session",
		MIMEType:    "application/json",
	}, s.handleSessionResource)
}

// handleRecentResource returns the owner's recent sessions.
func (s *Server) handleRecentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	summaries, err := s.ports.Questions.Recent(ctx, s.ports.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("listing recent questions: %w", err)
	}
	return jsonResource(req.Params.URI, summaries)
}

// handleQuestionResource returns one question.
func (s *Server) handleQuestionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// quest://questions/{questionId}
	id := extractQuestionID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	q, err := s.ports.Questions.Get(ctx, s.ports.OwnerID, id)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResource(req.Params.URI, contentOutput(q.ID, q.SessionID, &q.QuestionContent))
}

// handleSessionResource returns the questions of a session.
func (s *Server) handleSessionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// quest://sessions/{sessionId}/questions
	id := extractSessionID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	questions, err := s.ports.Questions.ListBySession(ctx, s.ports.OwnerID, id)
	if err != nil {
		return nil, fmt.Errorf("listing session questions: %w", err)
	}
	return jsonResource(req.Params.URI, questionOutputs(questions))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractQuestionID extracts the ID from quest://questions/{questionId}.
func extractQuestionID(uri string) string {
	const prefix = uriScheme + "questions/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if id == "recent" || strings.Contains(id, "/") {
		return ""
	}
	return id
}

// extractSessionID extracts the ID from quest://sessions/{sessionId}/questions.
func extractSessionID(uri string) string {
	const prefix = uriScheme + "sessions/"
	const suffix = "/questions"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}
	return strings.TrimSuffix(uri, suffix)
}
