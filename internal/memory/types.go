// Package memory provides the conversation log of the companion agent and
// the two views derived from it: the user profile and the context block that
// is handed to the model on every turn.
package memory

import "time"

// DefaultCategory is stored when the caller does not classify an exchange.
const DefaultCategory = "general"

// MemoryRecord is one logged exchange between the user and the assistant.
// Records are written once and never updated or deleted.
type MemoryRecord struct {
	ID         int64
	Timestamp  time.Time
	UserInput  string
	AIResponse string
	EmotionTag string // empty means unset
	Category   string
}

// GroupCount is the number of records sharing a (category, emotion tag) pair.
type GroupCount struct {
	Category   string
	EmotionTag string
	Count      int
}

// UserProfile is a lightweight summary recomputed from the log on demand.
// It is never persisted.
type UserProfile struct {
	FrequentTopics []string `json:"frequent_topics,omitempty"`
	CommonMoods    []string `json:"common_moods,omitempty"`
}

// IsEmpty reports whether the profile carries no signal at all.
func (p UserProfile) IsEmpty() bool {
	return len(p.FrequentTopics) == 0 && len(p.CommonMoods) == 0
}
