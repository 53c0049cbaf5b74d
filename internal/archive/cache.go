package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKey = "capitalquiz:highscores"
	redisTTL = 10 * time.Minute
)

// Cached wraps an Archive so the game never stalls on it. Reads fall
// back to a redis snapshot, then to the last list served in-process,
// then to empty, never an error. Failed writes are parked locally and
// retried on the next append.
type Cached struct {
	store  Archive
	rdb    *redis.Client // optional
	logger *slog.Logger

	mu      sync.Mutex
	last    []HighScoreRecord
	pending []HighScoreRecord
}

func NewCached(store Archive, rdb *redis.Client, logger *slog.Logger) *Cached {
	return &Cached{store: store, rdb: rdb, logger: logger}
}

func (c *Cached) TopScores(ctx context.Context) ([]HighScoreRecord, error) {
	scores, err := c.store.TopScores(ctx)
	if err == nil {
		c.remember(ctx, scores)
		return scores, nil
	}
	c.logger.Warn("score store unavailable, serving cached scores", "error", err)

	if c.rdb != nil {
		if data, rerr := c.rdb.Get(ctx, redisKey).Bytes(); rerr == nil {
			var cached []HighScoreRecord
			if json.Unmarshal(data, &cached) == nil {
				return cached, nil
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return []HighScoreRecord{}, nil
	}
	last := make([]HighScoreRecord, len(c.last))
	copy(last, c.last)
	return last, nil
}

func (c *Cached) Append(ctx context.Context, rec HighScoreRecord) error {
	c.mu.Lock()
	batch := append(c.pending, rec)
	c.pending = nil
	c.mu.Unlock()

	var failed []HighScoreRecord
	var firstErr error
	for _, r := range batch {
		if err := c.store.Append(ctx, r); err != nil {
			failed = append(failed, r)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if len(failed) > 0 {
		c.mu.Lock()
		c.pending = append(c.pending, failed...)
		c.mu.Unlock()
		c.logger.Warn("score store unavailable, deferring results",
			"deferred", len(failed), "error", firstErr)
		return fmt.Errorf("%w: %v", ErrDeferred, firstErr)
	}
	return nil
}

// pendingCount reports how many writes are parked awaiting retry.
func (c *Cached) pendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Cached) remember(ctx context.Context, scores []HighScoreRecord) {
	c.mu.Lock()
	c.last = make([]HighScoreRecord, len(scores))
	copy(c.last, scores)
	c.mu.Unlock()

	if c.rdb == nil {
		return
	}
	data, err := json.Marshal(scores)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, redisKey, data, redisTTL).Err(); err != nil {
		c.logger.Warn("caching scores to redis failed", "error", err)
	}
}
