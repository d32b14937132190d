// Package service runs one chat turn: assemble the memory context, ask the
// model, remember the exchange.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyInput is returned by Turn for blank user input.
var ErrEmptyInput = errors.New("empty input")

// ContextBuilder produces the memory context for the next model call.
type ContextBuilder interface {
	BuildContext(ctx context.Context) (string, error)
}

// Replier calls the model.
type Replier interface {
	Reply(ctx context.Context, systemPrompt, contextBlock, userInput string) (string, error)
}

// Recorder persists a finished exchange.
type Recorder interface {
	Append(ctx context.Context, userInput, aiResponse, emotionTag, category string) error
}

// Assistant processes user turns one at a time.
type Assistant struct {
	contexts     ContextBuilder
	replier      Replier
	recorder     Recorder
	systemPrompt string
	sessionID    string
	logger       *slog.Logger
}

// AssistantConfig holds the collaborators of an Assistant.
type AssistantConfig struct {
	Contexts     ContextBuilder
	Replier      Replier
	Recorder     Recorder
	SystemPrompt string
	Logger       *slog.Logger
}

// NewAssistant creates an assistant with a fresh session id.
func NewAssistant(cfg AssistantConfig) *Assistant {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		contexts:     cfg.Contexts,
		replier:      cfg.Replier,
		recorder:     cfg.Recorder,
		systemPrompt: cfg.SystemPrompt,
		sessionID:    uuid.NewString(),
		logger:       logger,
	}
}

// SessionID identifies this assistant's run in the logs.
func (a *Assistant) SessionID() string {
	return a.sessionID
}

// Turn answers one user message.
//
// A failure to build the context or to reach the model is returned and
// nothing is stored. A failure to store the finished exchange is only logged:
// the user still gets the reply, the turn is just not remembered.
func (a *Assistant) Turn(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrEmptyInput
	}

	start := time.Now()
	logger := a.logger.With("session_id", a.sessionID, "turn_id", uuid.NewString())

	contextBlock, err := a.contexts.BuildContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to build context: %w", err)
	}

	reply, err := a.replier.Reply(ctx, a.systemPrompt, contextBlock, input)
	if err != nil {
		logger.Error("model call failed", "err", err, "duration_ms", time.Since(start).Milliseconds())
		return "", err
	}

	if err := a.recorder.Append(ctx, input, reply, "", ""); err != nil {
		logger.Warn("exchange not remembered", "err", err)
	}

	logger.Info("turn completed",
		"message_length", len(input),
		"context_length", len(contextBlock),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return reply, nil
}

var exitCommands = []string{"exit", "quit", "退出"}

// IsExitCommand reports whether input asks to end the chat.
func IsExitCommand(input string) bool {
	input = strings.ToLower(strings.TrimSpace(input))
	for _, cmd := range exitCommands {
		if input == cmd {
			return true
		}
	}
	return false
}
