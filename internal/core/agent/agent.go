// Package agent implements the structured-output agent loop shared by the
// document, similarity and refinement question agents.
//
// An agent sends a message log to a chat model and decodes the reply. When
// the reply is not valid JSON or breaks the question schema, the exact error
// is quoted back to the model in a corrective user turn and the model is
// asked again, up to MaxRetries times.
package agent

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
	"github.com/busraauz/ai-quest-platform/internal/logger"
)

// Protocol holds the model and retry policy shared by every agent.
type Protocol struct {
	// Model answers every call.
	Model driven.ChatModel

	// MaxRetries is the number of corrective retries after the first call.
	MaxRetries int

	// Temperature is fixed for every call.
	Temperature float64

	// CallTimeout bounds each model call. Zero means no per-call bound.
	CallTimeout time.Duration
}

// NewProtocol builds a protocol from agent settings.
func NewProtocol(model driven.ChatModel, settings domain.AgentSettings) Protocol {
	return Protocol{
		Model:       model,
		MaxRetries:  settings.MaxRetries,
		Temperature: settings.Temperature,
		CallTimeout: settings.CallTimeout,
	}
}

// Attempts returns the maximum number of model calls per run.
func (p Protocol) Attempts() int {
	return max(p.MaxRetries, 0) + 1
}

// Task describes one agent run.
type Task[T any] struct {
	// Name identifies the agent in logs and errors.
	Name string

	// Messages is the initial message log.
	Messages []driven.ChatMessage

	// Decode parses and validates a raw model reply.
	Decode func(raw string) (T, error)

	// Feedback builds the corrective user turn for a decode error.
	Feedback func(err error) string
}

// Run executes task under p and returns the first reply that decodes.
//
// Decode failures append a corrective user turn. Model call failures,
// including per-call timeouts, consume an attempt without one. Cancelling ctx
// stops the loop immediately with ctx's error. When every attempt fails Run
// returns a *domain.AgentExhaustedError wrapping the last failure.
func Run[T any](ctx context.Context, p Protocol, task Task[T]) (T, error) {
	var zero T
	if p.Model == nil {
		return zero, domain.ErrLLMUnavailable
	}

	attempts := p.Attempts()
	transcript := NewTranscript(task.Messages...)

	logger.Section("Agent: " + task.Name)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		start := time.Now()
		raw, err := p.call(ctx, transcript)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return zero, ctxErr
			}
			lastErr = fmt.Errorf("call model: %w", err)
			logger.Warn("%s attempt %d/%d: %v", task.Name, attempt, attempts, lastErr)
			continue
		}
		logger.Debug("%s attempt %d/%d: %d bytes in %s", task.Name, attempt, attempts, len(raw), logger.Since(start))

		out, err := task.Decode(raw)
		if err == nil {
			return out, nil
		}

		lastErr = err
		logger.Warn("%s attempt %d/%d: %v", task.Name, attempt, attempts, err)
		transcript = transcript.Append(driven.ChatMessage{
			Role:    driven.RoleUser,
			Content: task.Feedback(err),
		})
	}

	return zero, &domain.AgentExhaustedError{Agent: task.Name, Attempts: attempts, LastErr: lastErr}
}

func (p Protocol) call(ctx context.Context, t Transcript) (string, error) {
	if p.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.CallTimeout)
		defer cancel()
	}
	return p.Model.Chat(ctx, t.Messages(), driven.ChatOptions{
		Temperature: p.Temperature,
		JSONMode:    true,
	})
}

// Transcript is an immutable message log. Append returns a new log and
// leaves the receiver unchanged.
type Transcript struct {
	msgs []driven.ChatMessage
}

// NewTranscript returns a log holding a copy of msgs.
func NewTranscript(msgs ...driven.ChatMessage) Transcript {
	return Transcript{msgs: slices.Clone(msgs)}
}

// Append returns a new log with msgs added at the end.
func (t Transcript) Append(msgs ...driven.ChatMessage) Transcript {
	out := make([]driven.ChatMessage, 0, len(t.msgs)+len(msgs))
	out = append(out, t.msgs...)
	out = append(out, msgs...)
	return Transcript{msgs: out}
}

// Messages returns a copy of the log.
func (t Transcript) Messages() []driven.ChatMessage {
	return slices.Clone(t.msgs)
}

// Len returns the number of messages.
func (t Transcript) Len() int {
	return len(t.msgs)
}
