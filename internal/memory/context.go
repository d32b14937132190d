package memory

import (
	"context"
	"fmt"
	"strings"
)

// DefaultRecentTurns is how many past exchanges go into the context block.
const DefaultRecentTurns = 3

// ContextFormat holds the wording of the assembled context block.
type ContextFormat struct {
	Header         string // first line before the recent exchanges
	UserLabel      string
	AssistantLabel string
	ProfileHeader  string // starts the preference line
	TopicsLabel    string
	MoodsLabel     string
	ListSeparator  string // joins topics and moods
	ClauseEnd      string // ends the topics clause and the moods clause
	MaxRunes       int    // caps each quoted message; 0 disables
}

// DefaultContextFormat returns the English wording.
func DefaultContextFormat() ContextFormat {
	return ContextFormat{
		Header:         "Recent conversation:",
		UserLabel:      "user",
		AssistantLabel: "assistant",
		ProfileHeader:  "User preferences: ",
		TopicsLabel:    "often talks about ",
		MoodsLabel:     "common moods ",
		ListSeparator:  ", ",
		ClauseEnd:      "; ",
	}
}

// ChineseContextFormat returns the Chinese wording, with the assistant
// speaking under its own name.
func ChineseContextFormat(assistantName string) ContextFormat {
	return ContextFormat{
		Header:         "最近的对话记录：",
		UserLabel:      "用户",
		AssistantLabel: assistantName,
		ProfileHeader:  "用户偏好信息：",
		TopicsLabel:    "经常讨论",
		MoodsLabel:     "常见情绪",
		ListSeparator:  "、",
		ClauseEnd:      "；",
	}
}

// RecentReader is the part of Store the assembler reads history from.
type RecentReader interface {
	Recent(ctx context.Context, limit int) ([]MemoryRecord, error)
}

// Summarizer produces the current user profile.
type Summarizer interface {
	Summarize(ctx context.Context) UserProfile
}

// ContextAssembler builds the text block handed to the model on each turn:
// the last few exchanges followed by a one-line preference summary.
type ContextAssembler struct {
	history RecentReader
	profile Summarizer
	format  ContextFormat
	turns   int
}

// NewContextAssembler creates an assembler reading DefaultRecentTurns
// exchanges.
func NewContextAssembler(history RecentReader, profile Summarizer, format ContextFormat) *ContextAssembler {
	return &ContextAssembler{
		history: history,
		profile: profile,
		format:  format,
		turns:   DefaultRecentTurns,
	}
}

// BuildContext returns the context block, or "" when nothing is stored.
//
// Exchanges keep the order Recent returns them in, newest first. The
// preference line is appended after a newline only when the profile has at
// least one topic or mood.
func (a *ContextAssembler) BuildContext(ctx context.Context) (string, error) {
	records, err := a.history.Recent(ctx, a.turns)
	if err != nil {
		return "", fmt.Errorf("failed to load recent memories: %w", err)
	}

	history := a.formatHistory(records)
	prefs := a.formatProfile(a.profile.Summarize(ctx))
	if prefs == "" {
		return history, nil
	}
	return history + "\n" + prefs, nil
}

func (a *ContextAssembler) formatHistory(records []MemoryRecord) string {
	if len(records) == 0 {
		return ""
	}

	f := a.format
	var sb strings.Builder
	sb.WriteString(f.Header)
	sb.WriteString("\n")
	for _, rec := range records {
		fmt.Fprintf(&sb, "%s: %s\n", f.UserLabel, truncateRunes(rec.UserInput, f.MaxRunes))
		fmt.Fprintf(&sb, "%s: %s\n", f.AssistantLabel, truncateRunes(rec.AIResponse, f.MaxRunes))
	}
	return sb.String()
}

func (a *ContextAssembler) formatProfile(p UserProfile) string {
	if p.IsEmpty() {
		return ""
	}

	f := a.format
	var sb strings.Builder
	sb.WriteString(f.ProfileHeader)
	if len(p.FrequentTopics) > 0 {
		sb.WriteString(f.TopicsLabel)
		sb.WriteString(strings.Join(p.FrequentTopics, f.ListSeparator))
		sb.WriteString(f.ClauseEnd)
	}
	if len(p.CommonMoods) > 0 {
		sb.WriteString(f.MoodsLabel)
		sb.WriteString(strings.Join(p.CommonMoods, f.ListSeparator))
		sb.WriteString(f.ClauseEnd)
	}
	return strings.TrimRight(sb.String(), " ")
}

// truncateRunes keeps the first limit runes of s and marks the cut with an
// ellipsis. Multi-byte characters are never split. limit <= 0 leaves s untouched.
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
