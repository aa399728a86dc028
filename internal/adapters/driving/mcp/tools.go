package mcp

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

// QuestionOutput is a question as returned to the assistant.
type QuestionOutput struct {
	ID              string            `json:"id"`
	SessionID       string            `json:"session_id,omitempty"`
	QuestionType    string            `json:"question_type"`
	QuestionText    string            `json:"question_text"`
	Options         map[string]string `json:"options,omitempty"`
	CorrectAnswer   string            `json:"correct_answer"`
	Explanation     string            `json:"explanation"`
	Tags            map[string]any    `json:"tags,omitempty"`
	ConfidenceScore *float64          `json:"confidence_score,omitempty"`
}

// GenerateOutput is the output schema for both generation tools.
type GenerateOutput struct {
	SessionID  string           `json:"session_id"`
	DocumentID string           `json:"document_id,omitempty"`
	Questions  []QuestionOutput `json:"questions"`
	Count      int              `json:"count"`
}

// GenerateFromDocumentInput is the input schema for generate_from_document.
type GenerateFromDocumentInput struct {
	Path         string `json:"path" jsonschema:"path to a local PDF file"`
	Quantity     int    `json:"quantity,omitempty" jsonschema:"number of questions, 1-50 (default 10)"`
	QuestionType string `json:"question_type,omitempty" jsonschema:"mcq or open (default mcq)"`
}

// GenerateSimilarInput is the input schema for generate_similar.
type GenerateSimilarInput struct {
	ImagePath   string `json:"image_path" jsonschema:"path to an image of an existing question"`
	Instruction string `json:"instruction" jsonschema:"how the new questions should differ from the original"`
	Quantity    int    `json:"quantity,omitempty" jsonschema:"number of questions, 1-20 (default 10)"`
	Difficulty  string `json:"difficulty,omitempty" jsonschema:"easy, medium or hard (default easy)"`
}

// RefineInput is the input schema for refine_question.
type RefineInput struct {
	QuestionID  string `json:"question_id" jsonschema:"ID of the question to refine"`
	Instruction string `json:"instruction" jsonschema:"the change to make, 2-500 characters"`
}

// RefineOutput is the output schema for refine_question.
type RefineOutput struct {
	QuestionID string         `json:"question_id"`
	Version    int            `json:"version"`
	Question   QuestionOutput `json:"question"`
}

// VersionsInput is the input schema for get_question_versions.
type VersionsInput struct {
	QuestionID string `json:"question_id" jsonschema:"ID of the question"`
}

// VersionOutput is one entry of a question's history.
type VersionOutput struct {
	Version     int            `json:"version"`
	Instruction string         `json:"instruction"`
	CreatedAt   string         `json:"created_at"`
	Question    QuestionOutput `json:"question"`
}

// VersionsOutput is the output schema for get_question_versions.
type VersionsOutput struct {
	QuestionID string          `json:"question_id"`
	Versions   []VersionOutput `json:"versions"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_from_document",
		Description: "Generate quiz questions grounded in a local PDF",
	}, s.handleGenerateFromDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_similar",
		Description: "Generate new questions modelled on an image of an existing question",
	}, s.handleGenerateSimilar)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "refine_question",
		Description: "Apply an instruction to a question and store the result as a new version",
	}, s.handleRefine)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_question_versions",
		Description: "List a question's version history, newest first",
	}, s.handleVersions)
}

func (s *Server) handleGenerateFromDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateFromDocumentInput,
) (*mcp.CallToolResult, GenerateOutput, error) {
	data, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, GenerateOutput{}, fmt.Errorf("reading %s: %w", input.Path, err)
	}

	result, err := s.ports.Documents.Generate(ctx, s.ports.OwnerID, domain.DocumentGenerateRequest{
		Filename:     filepath.Base(input.Path),
		Data:         data,
		Quantity:     input.Quantity,
		QuestionType: domain.QuestionType(input.QuestionType),
	})
	if err != nil {
		return nil, GenerateOutput{}, toolError(err)
	}

	return nil, GenerateOutput{
		SessionID:  result.SessionID,
		DocumentID: result.DocumentID,
		Questions:  questionOutputs(result.Questions),
		Count:      len(result.Questions),
	}, nil
}

func (s *Server) handleGenerateSimilar(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateSimilarInput,
) (*mcp.CallToolResult, GenerateOutput, error) {
	data, err := os.ReadFile(input.ImagePath)
	if err != nil {
		return nil, GenerateOutput{}, fmt.Errorf("reading %s: %w", input.ImagePath, err)
	}

	result, err := s.ports.Similar.Generate(ctx, s.ports.OwnerID, domain.SimilarGenerateRequest{
		Image:       data,
		ImageMime:   http.DetectContentType(data),
		Instruction: input.Instruction,
		Quantity:    input.Quantity,
		Difficulty:  domain.Difficulty(input.Difficulty),
	})
	if err != nil {
		return nil, GenerateOutput{}, toolError(err)
	}

	return nil, GenerateOutput{
		SessionID: result.SessionID,
		Questions: questionOutputs(result.Questions),
		Count:     len(result.Questions),
	}, nil
}

func (s *Server) handleRefine(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RefineInput,
) (*mcp.CallToolResult, RefineOutput, error) {
	result, err := s.ports.Refinement.Refine(ctx, s.ports.OwnerID, input.QuestionID, input.Instruction)
	if err != nil {
		return nil, RefineOutput{}, toolError(err)
	}

	return nil, RefineOutput{
		QuestionID: result.QuestionID,
		Version:    result.Version,
		Question:   contentOutput(result.QuestionID, "", &result.Question),
	}, nil
}

func (s *Server) handleVersions(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input VersionsInput,
) (*mcp.CallToolResult, VersionsOutput, error) {
	versions, err := s.ports.Questions.Versions(ctx, s.ports.OwnerID, input.QuestionID)
	if err != nil {
		return nil, VersionsOutput{}, toolError(err)
	}

	output := VersionsOutput{
		QuestionID: input.QuestionID,
		Versions:   make([]VersionOutput, len(versions)),
	}
	for i := range versions {
		v := &versions[i]
		output.Versions[i] = VersionOutput{
			Version:     v.Version,
			Instruction: v.Instruction,
			CreatedAt:   v.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			Question:    contentOutput(v.QuestionID, "", &v.Content),
		}
	}
	return nil, output, nil
}

func questionOutputs(questions []domain.Question) []QuestionOutput {
	out := make([]QuestionOutput, len(questions))
	for i := range questions {
		out[i] = contentOutput(questions[i].ID, questions[i].SessionID, &questions[i].QuestionContent)
	}
	return out
}

func contentOutput(id, sessionID string, c *domain.QuestionContent) QuestionOutput {
	return QuestionOutput{
		ID:              id,
		SessionID:       sessionID,
		QuestionType:    string(c.QuestionType),
		QuestionText:    c.QuestionText,
		Options:         c.Options,
		CorrectAnswer:   c.CorrectAnswer,
		Explanation:     c.Explanation,
		Tags:            c.Tags,
		ConfidenceScore: c.ConfidenceScore,
	}
}
