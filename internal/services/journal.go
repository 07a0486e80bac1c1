package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/banter-engine/pkg/banter"
	"github.com/jwebster45206/banter-engine/pkg/trigger"
)

const (
	journalKeyPrefix = "banter:"
	journalMaxLen    = 50
	journalTTL       = 24 * time.Hour
)

// JournalEntry is one recorded exchange in a session's banter journal.
type JournalEntry struct {
	RequestID   string        `json:"request_id"`
	TriggerType trigger.Type  `json:"trigger_type"`
	Lines       []banter.Line `json:"lines"`
	CreatedAt   time.Time     `json:"created_at"`
}

// BanterJournal persists recent exchanges per session in Redis so that
// a session can be inspected after the fact. Writes are best effort;
// the caller logs and moves on when they fail.
type BanterJournal struct {
	client *redis.Client
}

// NewBanterJournal creates a journal backed by the given Redis URL.
func NewBanterJournal(redisURL string) (*BanterJournal, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return &BanterJournal{client: redis.NewClient(opts)}, nil
}

// NewBanterJournalFromClient wraps an existing client. Used by tests.
func NewBanterJournalFromClient(client *redis.Client) *BanterJournal {
	return &BanterJournal{client: client}
}

// Ping verifies connectivity.
func (j *BanterJournal) Ping(ctx context.Context) error {
	return j.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (j *BanterJournal) Close() error {
	return j.client.Close()
}

func journalKey(sessionID string) string {
	return journalKeyPrefix + sessionID
}

// Record appends an entry to the session's journal, trims the list to
// the most recent entries, and refreshes the session TTL.
func (j *BanterJournal) Record(ctx context.Context, sessionID string, entry JournalEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal journal entry: %w", err)
	}

	key := journalKey(sessionID)
	pipe := j.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, journalMaxLen-1)
	pipe.Expire(ctx, key, journalTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record journal entry: %w", err)
	}
	return nil
}

// Recent returns up to n entries for the session, newest first.
func (j *BanterJournal) Recent(ctx context.Context, sessionID string, n int) ([]JournalEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := j.client.LRange(ctx, journalKey(sessionID), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	entries := make([]JournalEntry, 0, len(raw))
	for _, item := range raw {
		var entry JournalEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal journal entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
