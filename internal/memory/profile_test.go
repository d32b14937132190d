package memory

import (
	"context"
	"errors"
	"slices"
	"testing"
)

// stubCounter returns fixed groups or an error.
type stubCounter struct {
	groups    []GroupCount
	err       error
	lastLimit int
}

func (s *stubCounter) GroupCounts(ctx context.Context, limit int) ([]GroupCount, error) {
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.groups, nil
}

func TestProfileSummarizer_Summarize(t *testing.T) {
	tests := []struct {
		name       string
		groups     []GroupCount
		wantTopics []string
		wantMoods  []string
	}{
		{
			name: "empty log",
		},
		{
			name: "general is never a topic",
			groups: []GroupCount{
				{Category: "general", EmotionTag: "", Count: 10},
				{Category: "work", EmotionTag: "tired", Count: 2},
			},
			wantTopics: []string{"work"},
			wantMoods:  []string{"tired"},
		},
		{
			name: "only general and untagged",
			groups: []GroupCount{
				{Category: "general", EmotionTag: "", Count: 4},
			},
		},
		{
			name: "shared category is kept twice",
			groups: []GroupCount{
				{Category: "work", EmotionTag: "tired", Count: 3},
				{Category: "work", EmotionTag: "happy", Count: 2},
				{Category: "general", EmotionTag: "happy", Count: 1},
			},
			wantTopics: []string{"work", "work"},
			wantMoods:  []string{"tired", "happy", "happy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := &stubCounter{groups: tt.groups}
			profile := NewProfileSummarizer(counter, nil).Summarize(context.Background())

			if counter.lastLimit != ProfileGroups {
				t.Errorf("expected limit %d, got %d", ProfileGroups, counter.lastLimit)
			}
			if !slices.Equal(profile.FrequentTopics, tt.wantTopics) {
				t.Errorf("topics: expected %v, got %v", tt.wantTopics, profile.FrequentTopics)
			}
			if !slices.Equal(profile.CommonMoods, tt.wantMoods) {
				t.Errorf("moods: expected %v, got %v", tt.wantMoods, profile.CommonMoods)
			}
		})
	}
}

func TestProfileSummarizer_StorageErrorYieldsEmptyProfile(t *testing.T) {
	counter := &stubCounter{err: errors.New("disk on fire")}

	profile := NewProfileSummarizer(counter, nil).Summarize(context.Background())
	if !profile.IsEmpty() {
		t.Errorf("expected empty profile, got %+v", profile)
	}
}

// TestProfileSummarizer_MixedScenario runs the four-record scenario against
// SQLite. All groups tie at one, so only membership is asserted.
func TestProfileSummarizer_MixedScenario(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	categories := []string{"work", "work", "life", "general"}
	emotions := []string{"happy", "tired", "happy", ""}
	for i := range categories {
		if err := store.Append(ctx, "q", "a", emotions[i], categories[i]); err != nil {
			t.Fatalf("failed to append: %v", err)
		}
	}

	recent, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("failed to read recent: %v", err)
	}
	wantRecent := []GroupCount{
		{Category: "general", EmotionTag: ""},
		{Category: "life", EmotionTag: "happy"},
		{Category: "work", EmotionTag: "tired"},
	}
	for i, rec := range recent {
		if rec.Category != wantRecent[i].Category || rec.EmotionTag != wantRecent[i].EmotionTag {
			t.Errorf("recent %d: expected %s/%s, got %s/%s", i,
				wantRecent[i].Category, wantRecent[i].EmotionTag, rec.Category, rec.EmotionTag)
		}
	}

	profile := NewProfileSummarizer(store, nil).Summarize(ctx)

	if len(profile.FrequentTopics) > ProfileGroups || len(profile.CommonMoods) > ProfileGroups {
		t.Fatalf("profile exceeds %d groups: %+v", ProfileGroups, profile)
	}
	for _, topic := range profile.FrequentTopics {
		if !slices.Contains([]string{"work", "life"}, topic) {
			t.Errorf("unexpected topic %q", topic)
		}
	}
	for _, mood := range profile.CommonMoods {
		if !slices.Contains([]string{"happy", "tired"}, mood) {
			t.Errorf("unexpected mood %q", mood)
		}
	}
	if slices.Contains(profile.FrequentTopics, DefaultCategory) {
		t.Errorf("general must not be a topic: %v", profile.FrequentTopics)
	}
}

// TestProfileSummarizer_GeneralDominates tests that a dominant "general"
// category still stays out of the topics.
func TestProfileSummarizer_GeneralDominates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for range 5 {
		if err := store.Append(ctx, "q", "a", "", ""); err != nil {
			t.Fatalf("failed to append: %v", err)
		}
	}
	if err := store.Append(ctx, "q", "a", "excited", "hobby"); err != nil {
		t.Fatalf("failed to append: %v", err)
	}

	profile := NewProfileSummarizer(store, nil).Summarize(ctx)
	if !slices.Equal(profile.FrequentTopics, []string{"hobby"}) {
		t.Errorf("expected [hobby], got %v", profile.FrequentTopics)
	}
	if !slices.Equal(profile.CommonMoods, []string{"excited"}) {
		t.Errorf("expected [excited], got %v", profile.CommonMoods)
	}
}
