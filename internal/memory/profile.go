package memory

import (
	"context"
	"log/slog"
)

// ProfileGroups is how many (category, emotion tag) groups feed a profile.
const ProfileGroups = 3

// GroupCounter is the part of Store the summarizer needs.
type GroupCounter interface {
	GroupCounts(ctx context.Context, limit int) ([]GroupCount, error)
}

// ProfileSummarizer derives a UserProfile from the conversation log.
type ProfileSummarizer struct {
	store  GroupCounter
	logger *slog.Logger
}

// NewProfileSummarizer creates a summarizer over store.
func NewProfileSummarizer(store GroupCounter, logger *slog.Logger) *ProfileSummarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileSummarizer{store: store, logger: logger}
}

// Summarize takes the top ProfileGroups (category, emotion tag) groups and
// splits them into topics and moods. The "general" category and empty tags
// are skipped. A category shared by two top groups appears twice.
//
// Summarize does not fail: a storage error is logged and yields an empty
// profile, since the profile only personalizes the prompt.
func (p *ProfileSummarizer) Summarize(ctx context.Context) UserProfile {
	groups, err := p.store.GroupCounts(ctx, ProfileGroups)
	if err != nil {
		p.logger.Warn("memory: failed to summarize user profile", "err", err)
		return UserProfile{}
	}
	return profileFromGroups(groups)
}

func profileFromGroups(groups []GroupCount) UserProfile {
	var profile UserProfile
	for _, g := range groups {
		if g.Category != DefaultCategory && g.Category != "" {
			profile.FrequentTopics = append(profile.FrequentTopics, g.Category)
		}
		if g.EmotionTag != "" {
			profile.CommonMoods = append(profile.CommonMoods, g.EmotionTag)
		}
	}
	return profile
}
