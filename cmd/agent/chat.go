package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/easeaico/adk-companion-agent/internal/llm"
	"github.com/easeaico/adk-companion-agent/internal/memory"
	"github.com/easeaico/adk-companion-agent/internal/service"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat in the terminal (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c, err := setup(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = c.store.Close() }()

			client, err := llm.NewClient(ctx, c.cfg.APIKey, llm.Options{
				Model:       c.cfg.ModelName,
				Temperature: c.cfg.Temperature,
				TopP:        c.cfg.TopP,
			})
			if err != nil {
				return fmt.Errorf("failed to create model client: %w", err)
			}

			assistant := service.NewAssistant(service.AssistantConfig{
				Contexts: c.assembler,
				Replier:  client,
				Recorder: c.store,
				SystemPrompt: service.BuildSystemPrompt(service.PromptOptions{
					Name:    c.cfg.AssistantName,
					Persona: c.cfg.Persona,
				}),
				Logger: c.logger,
			})
			c.logger.Info("chat session started", "session_id", assistant.SessionID())

			return runChat(ctx, os.Stdin, os.Stdout, assistant, c.cfg.AssistantName)
		},
	}
}

// readLines feeds the lines of in to a channel until EOF or cancellation. The
// scanner's final error is delivered on the second channel.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()
	return lines, scanErr
}

// nextLine waits for the next input line; ok is false on EOF or cancellation.
func nextLine(ctx context.Context, lines <-chan string) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-lines:
		return line, ok
	}
}

// scanResult reports a read error, if the reader stopped on one.
func scanResult(scanErr <-chan error) error {
	select {
	case err := <-scanErr:
		return err
	default:
		return nil
	}
}

// turner answers one chat message.
type turner interface {
	Turn(ctx context.Context, input string) (string, error)
}

// runChat reads messages line by line until an exit word, EOF or
// cancellation. Model failures are shown and the loop continues; losing the
// store ends the session.
func runChat(ctx context.Context, in io.Reader, out io.Writer, a turner, name string) error {
	fmt.Fprintf(out, "%s is here. Type exit, quit or 退出 to leave.\n", name)

	lines, scanErr := readLines(ctx, in)
	for {
		fmt.Fprint(out, "you: ")

		line, ok := nextLine(ctx, lines)
		if !ok {
			fmt.Fprintln(out)
			return scanResult(scanErr)
		}

		if service.IsExitCommand(line) {
			fmt.Fprintf(out, "%s: Bye.\n", name)
			return nil
		}

		reply, err := a.Turn(ctx, line)
		switch {
		case errors.Is(err, service.ErrEmptyInput):
			continue
		case errors.Is(err, memory.ErrStorageUnavailable):
			return err
		case err != nil:
			fmt.Fprintf(out, "%s: (no answer this time: %v)\n", name, err)
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", name, reply)
	}
}
