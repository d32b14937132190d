package memory

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"

	adkmemory "google.golang.org/adk/memory"
	"google.golang.org/adk/model"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

// mockStore is an in-memory Store for testing
type mockStore struct {
	records   []MemoryRecord
	appendErr error
	recentErr error
}

func (m *mockStore) Init(ctx context.Context) error {
	return nil
}

func (m *mockStore) Append(ctx context.Context, userInput, aiResponse, emotionTag, category string) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.records = append(m.records, MemoryRecord{
		ID:         int64(len(m.records) + 1),
		Timestamp:  time.Date(2024, 5, 1, 9, 0, len(m.records), 0, time.UTC),
		UserInput:  userInput,
		AIResponse: aiResponse,
		EmotionTag: emotionTag,
		Category:   normalizeCategory(category),
	})
	return nil
}

func (m *mockStore) Recent(ctx context.Context, limit int) ([]MemoryRecord, error) {
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	var out []MemoryRecord
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *mockStore) GroupCounts(ctx context.Context, limit int) ([]GroupCount, error) {
	return nil, nil
}

func (m *mockStore) Close() error {
	return nil
}

// mockSession is a mock implementation of session.Session for testing
type mockSession struct {
	id       string
	appName  string
	userID   string
	events   []*session.Event
	lastTime time.Time
}

func (m *mockSession) ID() string {
	return m.id
}

func (m *mockSession) AppName() string {
	return m.appName
}

func (m *mockSession) UserID() string {
	return m.userID
}

func (m *mockSession) State() session.State {
	return &mockState{}
}

// mockState is a simple implementation of session.State for testing
type mockState struct{}

func (m *mockState) Get(key string) (any, error) {
	return nil, errors.New("key not found")
}

func (m *mockState) Set(key string, value any) error {
	return nil
}

func (m *mockState) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {}
}

func (m *mockSession) Events() session.Events {
	return &mockEvents{events: m.events}
}

func (m *mockSession) LastUpdateTime() time.Time {
	return m.lastTime
}

// mockEvents is a mock implementation of session.Events
type mockEvents struct {
	events []*session.Event
}

func (m *mockEvents) All() iter.Seq[*session.Event] {
	return func(yield func(*session.Event) bool) {
		for _, e := range m.events {
			if !yield(e) {
				return
			}
		}
	}
}

func (m *mockEvents) Len() int {
	return len(m.events)
}

func (m *mockEvents) At(i int) *session.Event {
	if i < 0 || i >= len(m.events) {
		return nil
	}
	return m.events[i]
}

func textEvent(author, text string) *session.Event {
	return &session.Event{
		Author: author,
		LLMResponse: model.LLMResponse{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		},
	}
}

func newMockSession(events ...*session.Event) *mockSession {
	return &mockSession{
		id:       "session-1",
		appName:  "companion",
		userID:   "user",
		events:   events,
		lastTime: time.Now(),
	}
}

func TestService_AddSession(t *testing.T) {
	tests := []struct {
		name      string
		session   *mockSession
		wantSaved []MemoryRecord
	}{
		{
			name: "stores last exchange",
			session: newMockSession(
				textEvent("user", "first question"),
				textEvent("companion", "first answer"),
				textEvent("user", "I had a long day at work"),
				textEvent("companion", "Then rest, you earned it."),
			),
			wantSaved: []MemoryRecord{{
				UserInput:  "I had a long day at work",
				AIResponse: "Then rest, you earned it.",
				Category:   DefaultCategory,
			}},
		},
		{
			name: "skips when agent stored the exchange itself",
			session: newMockSession(
				textEvent("user", "remember I like jazz"),
				&session.Event{
					Author: "companion",
					LLMResponse: model.LLMResponse{
						Content: &genai.Content{Parts: []*genai.Part{{
							FunctionCall: &genai.FunctionCall{Name: SaveMemoryToolName},
						}}},
					},
				},
				textEvent("companion", "Noted."),
			),
		},
		{
			name: "earlier explicit save does not hide a later exchange",
			session: newMockSession(
				textEvent("user", "remember I like jazz"),
				&session.Event{
					Author: "companion",
					LLMResponse: model.LLMResponse{
						Content: &genai.Content{Parts: []*genai.Part{{
							FunctionCall: &genai.FunctionCall{Name: SaveMemoryToolName},
						}}},
					},
				},
				textEvent("companion", "Noted."),
				textEvent("user", "what should I cook"),
				textEvent("companion", "Pasta."),
			),
			wantSaved: []MemoryRecord{{
				UserInput:  "what should I cook",
				AIResponse: "Pasta.",
				Category:   DefaultCategory,
			}},
		},
		{
			name: "unanswered last message does not repeat the previous exchange",
			session: newMockSession(
				textEvent("user", "hi"),
				textEvent("companion", "hello"),
				textEvent("user", "are you there?"),
			),
		},
		{
			name:    "skips without user input",
			session: newMockSession(textEvent("companion", "Hello there")),
		},
		{
			name:    "skips without agent reply",
			session: newMockSession(textEvent("user", "anyone?")),
		},
		{
			name: "ignores events without content",
			session: newMockSession(
				&session.Event{Author: "user"},
				textEvent("user", "hi"),
				textEvent("companion", "hello"),
			),
			wantSaved: []MemoryRecord{{UserInput: "hi", AIResponse: "hello", Category: DefaultCategory}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{}
			svc := NewService(store, nil)

			if err := svc.AddSession(context.Background(), tt.session); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(store.records) != len(tt.wantSaved) {
				t.Fatalf("expected %d saved records, got %d", len(tt.wantSaved), len(store.records))
			}
			for i, want := range tt.wantSaved {
				got := store.records[i]
				if got.UserInput != want.UserInput || got.AIResponse != want.AIResponse || got.Category != want.Category {
					t.Errorf("record %d: expected %+v, got %+v", i, want, got)
				}
			}
		})
	}
}

func TestService_AddSessionStoreError(t *testing.T) {
	store := &mockStore{appendErr: ErrStorageWrite}
	svc := NewService(store, nil)

	err := svc.AddSession(context.Background(), newMockSession(
		textEvent("user", "hi"),
		textEvent("companion", "hello"),
	))
	if !errors.Is(err, ErrStorageWrite) {
		t.Errorf("expected ErrStorageWrite, got %v", err)
	}
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	_ = store.Append(ctx, "Work was brutal today", "Sorry to hear that", "tired", "work")
	_ = store.Append(ctx, "Went hiking", "Sounds lovely", "happy", "life")
	_ = store.Append(ctx, "More WORK tomorrow", "Pace yourself", "", "")

	svc := NewService(store, nil)

	tests := []struct {
		name      string
		query     string
		wantTexts []string
	}{
		{
			name:  "case insensitive match newest first",
			query: "work",
			wantTexts: []string{
				"user: More WORK tomorrow\nassistant: Pace yourself",
				"user: Work was brutal today\nassistant: Sorry to hear that\ncategory: work\nmood: tired",
			},
		},
		{
			name:      "matches assistant reply",
			query:     "lovely",
			wantTexts: []string{"user: Went hiking\nassistant: Sounds lovely\ncategory: life\nmood: happy"},
		},
		{
			name:  "no match",
			query: "piano",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Search(ctx, &adkmemory.SearchRequest{Query: tt.query})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(resp.Memories) != len(tt.wantTexts) {
				t.Fatalf("expected %d memories, got %d", len(tt.wantTexts), len(resp.Memories))
			}
			for i, want := range tt.wantTexts {
				got := extractTextFromContent([]*genai.Content{resp.Memories[i].Content})
				if len(got) != 1 || got[0] != want {
					t.Errorf("memory %d: expected %q, got %q", i, want, got)
				}
				if resp.Memories[i].Author != "memory" {
					t.Errorf("memory %d: unexpected author %q", i, resp.Memories[i].Author)
				}
			}
		})
	}
}

func TestService_SearchEmptyQueryReturnsWindow(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	for range SearchWindow + 5 {
		_ = store.Append(ctx, "q", "a", "", "")
	}

	resp, err := NewService(store, nil).Search(ctx, &adkmemory.SearchRequest{Query: "  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Memories) != SearchWindow {
		t.Errorf("expected %d memories, got %d", SearchWindow, len(resp.Memories))
	}
}

func TestService_SearchStoreError(t *testing.T) {
	store := &mockStore{recentErr: ErrStorageUnavailable}

	_, err := NewService(store, nil).Search(context.Background(), &adkmemory.SearchRequest{Query: "x"})
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable, got %v", err)
	}
}
