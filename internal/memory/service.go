package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	adkmemory "google.golang.org/adk/memory"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

// SearchWindow is how many of the newest records Service.Search scans.
const SearchWindow = 50

// SaveMemoryToolName is the tool the agent calls to store a tagged exchange
// itself. An exchange that called it is not ingested again by AddSession.
const SaveMemoryToolName = "save_memory"

// Service exposes the conversation log as an adk memory.Service.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a memory service over store.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// AddSession implements memory.Service interface.
// It stores the last exchange of the session, the final user message and the
// agent's last reply after it, as one untagged record. Earlier exchanges were
// offered on earlier calls, so a session can be added after every turn.
func (s *Service) AddSession(ctx context.Context, sess session.Session) error {
	var userInput, agentResponse string
	hasExplicitSave := false

	for event := range sess.Events().All() {
		if event.Content == nil {
			continue
		}

		text := strings.Join(extractTextFromContent([]*genai.Content{event.Content}), " ")
		if event.Author == "user" {
			if text != "" {
				userInput, agentResponse, hasExplicitSave = text, "", false
			}
			continue
		}
		if text != "" {
			agentResponse = text
		}

		for _, part := range event.Content.Parts {
			if part.FunctionCall != nil && part.FunctionCall.Name == SaveMemoryToolName {
				hasExplicitSave = true
			}
		}
	}

	// The agent already stored this exchange with its own tags.
	if hasExplicitSave {
		return nil
	}

	if userInput == "" || agentResponse == "" {
		return nil
	}

	if err := s.store.Append(ctx, userInput, agentResponse, "", ""); err != nil {
		return fmt.Errorf("failed to save session to memory: %w", err)
	}

	s.logger.Debug("memory: session ingested", "session_id", sess.ID(), "user_id", sess.UserID())
	return nil
}

// Search implements memory.Service interface.
// It returns the records among the newest SearchWindow whose input or reply
// contains the query, ignoring case, newest first. An empty query matches
// every record in the window.
func (s *Service) Search(ctx context.Context, req *adkmemory.SearchRequest) (*adkmemory.SearchResponse, error) {
	records, err := s.store.Recent(ctx, SearchWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to search memories: %w", err)
	}

	query := strings.ToLower(strings.TrimSpace(req.Query))
	memories := make([]adkmemory.Entry, 0, len(records))
	for _, rec := range records {
		if query != "" &&
			!strings.Contains(strings.ToLower(rec.UserInput), query) &&
			!strings.Contains(strings.ToLower(rec.AIResponse), query) {
			continue
		}

		// genai.Text returns []*Content, we need the first one
		contentParts := genai.Text(formatEntry(rec))
		if len(contentParts) == 0 {
			continue
		}

		memories = append(memories, adkmemory.Entry{
			Content:   contentParts[0],
			Author:    "memory",
			Timestamp: rec.Timestamp,
		})
	}

	return &adkmemory.SearchResponse{Memories: memories}, nil
}

func formatEntry(rec MemoryRecord) string {
	parts := []string{
		"user: " + rec.UserInput,
		"assistant: " + rec.AIResponse,
	}
	if rec.Category != "" && rec.Category != DefaultCategory {
		parts = append(parts, "category: "+rec.Category)
	}
	if rec.EmotionTag != "" {
		parts = append(parts, "mood: "+rec.EmotionTag)
	}
	return strings.Join(parts, "\n")
}

// extractTextFromContent extracts text from genai.Content parts
func extractTextFromContent(content []*genai.Content) []string {
	var texts []string
	for _, c := range content {
		for _, part := range c.Parts {
			if text := part.Text; text != "" {
				texts = append(texts, text)
			}
		}
	}
	return texts
}

var _ adkmemory.Service = (*Service)(nil)
