package tools

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/easeaico/adk-companion-agent/internal/memory"
	adkmemory "google.golang.org/adk/memory"
)

const (
	// DefaultRecentLimit is used by list_recent_memories when no limit is given.
	DefaultRecentLimit = 5
	// MaxRecentLimit caps list_recent_memories.
	MaxRecentLimit = 20
	// maxMessageBytes caps each quoted message in tool output.
	maxMessageBytes = 500
)

// MemoryStore is the part of memory.Store the tools use.
type MemoryStore interface {
	Append(ctx context.Context, userInput, aiResponse, emotionTag, category string) error
	Recent(ctx context.Context, limit int) ([]memory.MemoryRecord, error)
}

// ContextBuilder renders the memory context block.
type ContextBuilder interface {
	BuildContext(ctx context.Context) (string, error)
}

// ProfileSource summarizes the user's preferences.
type ProfileSource interface {
	Summarize(ctx context.Context) memory.UserProfile
}

// Searcher looks up stored exchanges by text.
type Searcher interface {
	Search(ctx context.Context, req *adkmemory.SearchRequest) (*adkmemory.SearchResponse, error)
}

// Handler provides implementations for all agent tools.
type Handler struct {
	store    MemoryStore
	contexts ContextBuilder
	profile  ProfileSource
	searcher Searcher
}

// NewHandler creates a new tool handler with the given dependencies.
func NewHandler(store MemoryStore, contexts ContextBuilder, profile ProfileSource, searcher Searcher) *Handler {
	return &Handler{
		store:    store,
		contexts: contexts,
		profile:  profile,
		searcher: searcher,
	}
}

// ToolResult represents the result of a tool execution.
type ToolResult struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// MemoryItem is one stored exchange as shown to the model.
type MemoryItem struct {
	ID         int64  `json:"id"`
	Timestamp  string `json:"timestamp"`
	UserInput  string `json:"user_input"`
	AIResponse string `json:"ai_response"`
	EmotionTag string `json:"emotion_tag,omitempty"`
	Category   string `json:"category"`
}

// RecallContext returns the recent history and preference block.
func (h *Handler) RecallContext(ctx context.Context) ToolResult {
	block, err := h.contexts.BuildContext(ctx)
	if err != nil {
		return ToolResult{Success: false, Error: fmt.Sprintf("failed to recall context: %v", err)}
	}
	if block == "" {
		return ToolResult{Success: true, Data: "No memories yet."}
	}
	return ToolResult{Success: true, Data: block}
}

// UserProfile returns the user's frequent topics and common moods.
func (h *Handler) UserProfile(ctx context.Context) ToolResult {
	p := h.profile.Summarize(ctx)
	if p.IsEmpty() {
		return ToolResult{Success: true, Data: "No preferences known yet."}
	}
	return ToolResult{Success: true, Data: p}
}

// RecentMemories lists up to limit stored exchanges, newest first.
func (h *Handler) RecentMemories(ctx context.Context, limit int) ToolResult {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	limit = min(limit, MaxRecentLimit)

	records, err := h.store.Recent(ctx, limit)
	if err != nil {
		return ToolResult{Success: false, Error: fmt.Sprintf("failed to list memories: %v", err)}
	}
	if len(records) == 0 {
		return ToolResult{Success: true, Data: "No memories yet."}
	}

	items := make([]MemoryItem, 0, len(records))
	for _, rec := range records {
		items = append(items, MemoryItem{
			ID:         rec.ID,
			Timestamp:  rec.Timestamp.Format(time.RFC3339),
			UserInput:  truncateString(rec.UserInput, maxMessageBytes),
			AIResponse: truncateString(rec.AIResponse, maxMessageBytes),
			EmotionTag: rec.EmotionTag,
			Category:   rec.Category,
		})
	}
	return ToolResult{Success: true, Data: items}
}

// SearchResult is one stored exchange matching a search query.
type SearchResult struct {
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

// SearchMemories returns the stored exchanges mentioning query, newest first.
func (h *Handler) SearchMemories(ctx context.Context, query string) ToolResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return ToolResult{Success: false, Error: "query is required"}
	}

	resp, err := h.searcher.Search(ctx, &adkmemory.SearchRequest{Query: query})
	if err != nil {
		return ToolResult{Success: false, Error: fmt.Sprintf("failed to search memories: %v", err)}
	}
	if len(resp.Memories) == 0 {
		return ToolResult{Success: true, Data: "Nothing about that in memory."}
	}

	results := make([]SearchResult, 0, len(resp.Memories))
	for _, entry := range resp.Memories {
		var parts []string
		if entry.Content != nil {
			for _, part := range entry.Content.Parts {
				if part != nil && part.Text != "" {
					parts = append(parts, part.Text)
				}
			}
		}
		results = append(results, SearchResult{
			Timestamp: entry.Timestamp.Format(time.RFC3339),
			Text:      truncateString(strings.Join(parts, "\n"), 2*maxMessageBytes),
		})
	}
	return ToolResult{Success: true, Data: results}
}

// SaveMemory stores one exchange with its mood and topic labels.
func (h *Handler) SaveMemory(ctx context.Context, userInput, aiResponse, emotionTag, category string) ToolResult {
	userInput = strings.TrimSpace(userInput)
	aiResponse = strings.TrimSpace(aiResponse)
	if userInput == "" || aiResponse == "" {
		return ToolResult{Success: false, Error: "user_input and ai_response are both required"}
	}

	emotionTag = strings.ToLower(strings.TrimSpace(emotionTag))
	category = strings.ToLower(strings.TrimSpace(category))

	if err := h.store.Append(ctx, userInput, aiResponse, emotionTag, category); err != nil {
		return ToolResult{Success: false, Error: fmt.Sprintf("failed to save memory: %v", err)}
	}
	return ToolResult{Success: true, Data: "Memory saved."}
}

// truncateString cuts s to at most maxBytes bytes without splitting a rune.
func truncateString(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
