// Package main is the entry point for the companion agent.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/easeaico/adk-companion-agent/internal/config"
	"github.com/easeaico/adk-companion-agent/internal/memory"
)

func main() {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		cancel()
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	chat := newChatCmd()
	root := &cobra.Command{
		Use:           "companion",
		Short:         "A chat companion that remembers you",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          chat.RunE,
	}
	root.AddCommand(chat, newADKCmd())
	return root
}

// components holds everything both commands share.
type components struct {
	cfg        config.Config
	logger     *slog.Logger
	store      memory.Store
	summarizer *memory.ProfileSummarizer
	assembler  *memory.ContextAssembler
}

// setup loads the configuration, installs the logger and opens the memory
// store. A store that cannot be initialized ends the run.
func setup(ctx context.Context) (*components, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	store, err := memory.NewStore(cfg.DBType, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory store: %w", err)
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize memory store: %w", err)
	}

	format := memory.DefaultContextFormat()
	if cfg.ContextLanguage == "zh" {
		format = memory.ChineseContextFormat(cfg.AssistantName)
	}
	format.MaxRunes = cfg.ContextMaxRunes

	summarizer := memory.NewProfileSummarizer(store, logger)
	logger.Info("memory store ready", "backend", cfg.DBType, "model", cfg.ModelName)

	return &components{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		summarizer: summarizer,
		assembler:  memory.NewContextAssembler(store, summarizer, format),
	}, nil
}
