// Package tools defines the ADK tools that give the companion agent access to
// its long-term memory.
package tools

import (
	"fmt"

	"github.com/easeaico/adk-companion-agent/internal/memory"

	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"
)

const (
	recallContextName      = "recall_context"
	getUserProfileName     = "get_user_profile"
	listRecentMemoriesName = "list_recent_memories"
	searchMemoriesName     = "search_memories"
	saveMemoryName         = memory.SaveMemoryToolName
)

// ToolsConfig holds dependencies for creating tools.
type ToolsConfig struct {
	Store    MemoryStore
	Contexts ContextBuilder
	Profile  ProfileSource
	Searcher Searcher
}

// --- Tool Input Structs ---

// RecallContextArgs is the input for recall_context tool.
type RecallContextArgs struct{}

// GetUserProfileArgs is the input for get_user_profile tool.
type GetUserProfileArgs struct{}

// ListRecentMemoriesArgs is the input for list_recent_memories tool.
type ListRecentMemoriesArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"How many exchanges to return (default 5 and at most 20)"`
}

// SearchMemoriesArgs is the input for search_memories tool.
type SearchMemoriesArgs struct {
	Query string `json:"query" jsonschema:"Word or phrase to look for in past exchanges"`
}

// SaveMemoryArgs is the input for save_memory tool.
type SaveMemoryArgs struct {
	UserInput  string `json:"user_input" jsonschema:"The user's message"`
	AIResponse string `json:"ai_response" jsonschema:"Your reply to that message"`
	EmotionTag string `json:"emotion_tag,omitempty" jsonschema:"The user's mood in one word such as happy or tired; empty if unclear"`
	Category   string `json:"category,omitempty" jsonschema:"Topic of the exchange such as work or life or hobby or health; defaults to general"`
}

// --- Tool Constructors ---

func createRecallContextTool(h *Handler) (tool.Tool, error) {
	handler := func(ctx tool.Context, _ RecallContextArgs) (ToolResult, error) {
		return h.RecallContext(ctx), nil
	}

	return functiontool.New(functiontool.Config{
		Name:        recallContextName,
		Description: "Returns the most recent exchanges with the user and a summary of their preferences. Call it before answering.",
	}, handler)
}

func createGetUserProfileTool(h *Handler) (tool.Tool, error) {
	handler := func(ctx tool.Context, _ GetUserProfileArgs) (ToolResult, error) {
		return h.UserProfile(ctx), nil
	}

	return functiontool.New(functiontool.Config{
		Name:        getUserProfileName,
		Description: "Returns the topics the user talks about most and their most common moods.",
	}, handler)
}

func createListRecentMemoriesTool(h *Handler) (tool.Tool, error) {
	handler := func(ctx tool.Context, args ListRecentMemoriesArgs) (ToolResult, error) {
		return h.RecentMemories(ctx, args.Limit), nil
	}

	return functiontool.New(functiontool.Config{
		Name:        listRecentMemoriesName,
		Description: "Lists stored exchanges with the user, newest first, including mood and topic labels.",
	}, handler)
}

func createSearchMemoriesTool(h *Handler) (tool.Tool, error) {
	handler := func(ctx tool.Context, args SearchMemoriesArgs) (ToolResult, error) {
		return h.SearchMemories(ctx, args.Query), nil
	}

	return functiontool.New(functiontool.Config{
		Name:        searchMemoriesName,
		Description: "Finds older exchanges with the user that mention a word or phrase, newest first.",
	}, handler)
}

func createSaveMemoryTool(h *Handler) (tool.Tool, error) {
	handler := func(ctx tool.Context, args SaveMemoryArgs) (ToolResult, error) {
		return h.SaveMemory(ctx, args.UserInput, args.AIResponse, args.EmotionTag, args.Category), nil
	}

	return functiontool.New(functiontool.Config{
		Name:        saveMemoryName,
		Description: "Remembers one exchange with the user together with their mood and the topic category.",
	}, handler)
}

// BuildTools creates all agent tools with the given configuration.
func BuildTools(cfg ToolsConfig) ([]tool.Tool, error) {
	h := NewHandler(cfg.Store, cfg.Contexts, cfg.Profile, cfg.Searcher)

	constructors := []struct {
		name   string
		create func(*Handler) (tool.Tool, error)
	}{
		{recallContextName, createRecallContextTool},
		{getUserProfileName, createGetUserProfileTool},
		{listRecentMemoriesName, createListRecentMemoriesTool},
		{searchMemoriesName, createSearchMemoriesTool},
		{saveMemoryName, createSaveMemoryTool},
	}

	tools := make([]tool.Tool, 0, len(constructors))
	for _, c := range constructors {
		t, err := c.create(h)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s tool: %w", c.name, err)
		}
		tools = append(tools, t)
	}
	return tools, nil
}
