package memory

import (
	"context"
	"fmt"
	"time"
)

// Store defines the contract for the conversation log.
//
// Implementations acquire the storage resource for the duration of a single
// call and release it before returning. They do not serialize concurrent
// writers; callers that share a Store across goroutines must do that themselves.
type Store interface {
	// Init creates the storage location and schema if they do not exist.
	// It is safe to call on every process start.
	Init(ctx context.Context) error

	// Append persists one exchange stamped with the current time.
	// An empty category is stored as DefaultCategory.
	Append(ctx context.Context, userInput, aiResponse, emotionTag, category string) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]MemoryRecord, error)

	// GroupCounts returns the limit most frequent (category, emotion tag)
	// pairs. Equal counts are ordered most recently written group first.
	GroupCounts(ctx context.Context, limit int) ([]GroupCount, error)

	// Close releases any resources held by the store.
	Close() error
}

// timestampLayout is fixed width so that lexical order on the stored text
// matches chronological order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		timestampLayout,
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999",
		"2006-01-02 15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse timestamp: %s", s)
}

func normalizeCategory(category string) string {
	if category == "" {
		return DefaultCategory
	}
	return category
}

func checkLimit(limit int) error {
	if limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidArgument, limit)
	}
	return nil
}
