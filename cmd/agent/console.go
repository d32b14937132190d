package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"google.golang.org/adk/agent"
	adkmemory "google.golang.org/adk/memory"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"github.com/easeaico/adk-companion-agent/internal/service"
)

const (
	consoleAppName = "companion"
	consoleUserID  = "user"
)

var errNoReply = errors.New("agent returned no text")

// runConsole chats with the agent through an adk runner that has the memory
// service attached. After every answered turn the session is handed to
// AddSession, so exchanges the model did not save itself are still kept.
func runConsole(ctx context.Context, in io.Reader, out io.Writer, rootAgent agent.Agent, mem adkmemory.Service, name string, logger *slog.Logger) error {
	sessions := session.InMemoryService()
	created, err := sessions.Create(ctx, &session.CreateRequest{
		AppName: consoleAppName,
		UserID:  consoleUserID,
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	sessionID := created.Session.ID()

	r, err := runner.New(runner.Config{
		AppName:        consoleAppName,
		Agent:          rootAgent,
		SessionService: sessions,
		MemoryService:  mem,
	})
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	logger = logger.With("session_id", sessionID)
	fmt.Fprintf(out, "%s is here. Type exit, quit or 退出 to leave.\n", name)

	lines, scanErr := readLines(ctx, in)
	for {
		fmt.Fprint(out, "you: ")

		line, ok := nextLine(ctx, lines)
		if !ok {
			fmt.Fprintln(out)
			return scanResult(scanErr)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if service.IsExitCommand(line) {
			fmt.Fprintf(out, "%s: Bye.\n", name)
			return nil
		}

		reply, err := runTurn(ctx, r, sessionID, line)
		if err != nil {
			logger.Error("agent turn failed", "err", err)
			fmt.Fprintf(out, "%s: (no answer this time: %v)\n", name, err)
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", name, reply)

		got, err := sessions.Get(ctx, &session.GetRequest{
			AppName:   consoleAppName,
			UserID:    consoleUserID,
			SessionID: sessionID,
		})
		if err != nil {
			logger.Warn("exchange not remembered", "err", err)
			continue
		}
		if err := mem.AddSession(ctx, got.Session); err != nil {
			logger.Warn("exchange not remembered", "err", err)
		}
	}
}

// runTurn sends one user message and collects the agent's final text.
func runTurn(ctx context.Context, r *runner.Runner, sessionID, input string) (string, error) {
	msg := genai.NewContentFromText(input, genai.RoleUser)

	var reply strings.Builder
	for event, err := range r.Run(ctx, consoleUserID, sessionID, msg, agent.RunConfig{
		StreamingMode: agent.StreamingModeNone,
	}) {
		if err != nil {
			return "", err
		}
		if event == nil || event.Content == nil || !event.IsFinalResponse() {
			continue
		}
		for _, part := range event.Content.Parts {
			if part.Text != "" && !part.Thought {
				reply.WriteString(part.Text)
			}
		}
	}

	if reply.Len() == 0 {
		return "", errNoReply
	}
	return strings.TrimSpace(reply.String()), nil
}
