package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/cmd/launcher"
	"google.golang.org/adk/cmd/launcher/full"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"

	"github.com/easeaico/adk-companion-agent/internal/memory"
	"github.com/easeaico/adk-companion-agent/internal/service"
	"github.com/easeaico/adk-companion-agent/internal/tools"
)

func newADKCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "adk [console | launcher args]",
		Short:              "Run the companion as an ADK agent with memory tools (console by default, or any ADK launcher mode)",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := setup(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = c.store.Close() }()

			memoryService := memory.NewService(c.store, c.logger)
			agentTools, err := tools.BuildTools(tools.ToolsConfig{
				Store:    c.store,
				Contexts: c.assembler,
				Profile:  c.summarizer,
				Searcher: memoryService,
			})
			if err != nil {
				return fmt.Errorf("failed to build tools: %w", err)
			}

			// Create LLM model using ADK's gemini wrapper
			llmModel, err := gemini.NewModel(ctx, c.cfg.ModelName, &genai.ClientConfig{
				APIKey:  c.cfg.APIKey,
				Backend: genai.BackendGeminiAPI,
			})
			if err != nil {
				return fmt.Errorf("failed to create LLM model: %w", err)
			}

			llmAgent, err := llmagent.New(llmagent.Config{
				Name:        "companion",
				Description: "A chat companion that remembers the user's recent conversations, topics and moods",
				Model:       llmModel,
				Instruction: service.BuildSystemPrompt(service.PromptOptions{
					Name:      c.cfg.AssistantName,
					Persona:   c.cfg.Persona,
					WithTools: true,
				}),
				GenerateContentConfig: &genai.GenerateContentConfig{
					Temperature: genai.Ptr(c.cfg.Temperature),
					TopP:        genai.Ptr(c.cfg.TopP),
				},
				Tools: agentTools,
			})
			if err != nil {
				return fmt.Errorf("failed to create agent: %w", err)
			}

			// The console runs on its own runner so the memory service sees
			// every session; the full launcher does not forward it.
			if len(args) == 0 || (len(args) == 1 && args[0] == "console") {
				return runConsole(ctx, os.Stdin, os.Stdout, llmAgent, memoryService, c.cfg.AssistantName, c.logger)
			}

			config := &launcher.Config{
				AgentLoader: agent.NewSingleLoader(llmAgent),
			}
			l := full.NewLauncher()
			if err := l.Execute(ctx, config, args); err != nil {
				return fmt.Errorf("failed to run agent: %w\n\n%s", err, l.CommandLineSyntax())
			}
			return nil
		},
	}
}
